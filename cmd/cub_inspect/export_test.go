package main

import (
	"os"
	"path"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/gomlx/cub200/pkg/cub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createAnnotations writes the annotation files of a 3 images CUB tree. Images are not needed,
// since nothing here reads them.
func createAnnotations(t *testing.T) string {
	dataDir := t.TempDir()
	files := map[string]string{
		cub.ImagesFile:          "1 001.A/a_1.jpg\n2 002.B/b_2.jpg\n3 002.B/b_3.jpg\n",
		cub.SplitFile:           "1 1\n2 0\n3 1\n",
		cub.ImageClassLabelFile: "1 1\n2 2\n3 2\n",
		cub.BoundingBoxesFile:   "1 10.0 20.0 30.0 40.0\n2 0.0 0.0 5.0 5.0\n3 1.5 2.5 3.0 4.0\n",
	}
	for name, contents := range files {
		require.NoError(t, os.WriteFile(path.Join(dataDir, name), []byte(contents), 0644))
	}
	return dataDir
}

func TestExportCSV(t *testing.T) {
	ds, err := cub.NewLabelDataset(cub.Config{DataDir: createAnnotations(t), Split: cub.SplitTrain, ReturnBBox: true})
	require.NoError(t, err)
	csvPath := path.Join(t.TempDir(), "train.csv")
	require.NoError(t, exportCSV(ds, csvPath))

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	df := dataframe.ReadCSV(f)
	require.NoError(t, df.Err)
	assert.Equal(t, []string{"image_id", "path", "label", "y_min", "x_min", "y_max", "x_max"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"001.A/a_1.jpg", "002.B/b_3.jpg"}, df.Col("path").Records())
	assert.Equal(t, []float64{0, 1}, df.Col("label").Float())
	assert.Equal(t, []float64{20, 2.5}, df.Col("y_min").Float())
	assert.Equal(t, []float64{10, 1.5}, df.Col("x_min").Float())
	assert.Equal(t, []float64{60, 6.5}, df.Col("y_max").Float())
	assert.Equal(t, []float64{40, 4.5}, df.Col("x_max").Float())
}

func TestPlotClassHistogram(t *testing.T) {
	ds, err := cub.NewLabelDataset(cub.Config{DataDir: createAnnotations(t), Split: cub.SplitTrainTest, ReturnBBox: true})
	require.NoError(t, err)
	plotPath := path.Join(t.TempDir(), "classes.png")
	require.NoError(t, plotClassHistogram(ds, plotPath))
	info, err := os.Stat(plotPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
