package main

import (
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/gomlx/cub200/pkg/cub"
	"github.com/pkg/errors"
)

// annotationsDataFrame returns one row per example of ds, in index order, with the columns
// image_id, path, label, y_min, x_min, y_max and x_max.
func annotationsDataFrame(ds *cub.LabelDataset) dataframe.DataFrame {
	n := ds.Len()
	ids := make([]int, n)
	labels := make([]int, n)
	var coords [4][]float64
	for c := range coords {
		coords[c] = make([]float64, n)
	}
	for ii := range n {
		ids[ii] = ds.ImageID(ii)
		labels[ii] = int(ds.Label(ii))
		box := ds.BBox(ii)
		for c := range coords {
			coords[c][ii] = float64(box[c])
		}
	}
	return dataframe.New(
		series.New(ids, series.Int, "image_id"),
		series.New(ds.Paths(), series.String, "path"),
		series.New(labels, series.Int, "label"),
		series.New(coords[0], series.Float, "y_min"),
		series.New(coords[1], series.Float, "x_min"),
		series.New(coords[2], series.Float, "y_max"),
		series.New(coords[3], series.Float, "x_max"),
	)
}

// exportCSV writes the annotations of ds to filePath, see annotationsDataFrame.
func exportCSV(ds *cub.LabelDataset, filePath string) error {
	df := annotationsDataFrame(ds)
	if df.Err != nil {
		return errors.Wrap(df.Err, "failed to build annotations table")
	}
	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", filePath)
	}
	if err = df.WriteCSV(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write annotations to %q", filePath)
	}
	return errors.Wrapf(f.Close(), "failed to close %q", filePath)
}
