package main

import (
	"github.com/gomlx/cub200/pkg/cub"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotClassHistogram saves a bar chart with the number of examples per label of ds to filePath.
// The format is taken from the file extension.
func plotClassHistogram(ds *cub.LabelDataset, filePath string) error {
	counts := ds.ClassCounts()
	values := make(plotter.Values, len(counts))
	for label, count := range counts {
		values[label] = float64(count)
	}

	p := plot.New()
	p.Title.Text = "CUB-200-2011 (" + ds.Split.String() + "): examples per class"
	p.X.Label.Text = "label"
	p.Y.Label.Text = "# examples"
	bars, err := plotter.NewBarChart(values, vg.Points(2))
	if err != nil {
		return errors.Wrap(err, "failed to create class histogram")
	}
	bars.LineStyle.Width = 0
	p.Add(bars, plotter.NewGrid())
	if err = p.Save(10*vg.Inch, 4*vg.Inch, filePath); err != nil {
		return errors.Wrapf(err, "failed to save class histogram to %q", filePath)
	}
	return nil
}
