// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package cub provides the Caltech-UCSD Birds-200-2011 (CUB) dataset: it downloads and caches the
// files, parses the annotations and serves examples by index, either as Go values or as
// GoMLX tensors, and a `train.Dataset` implementation that can be used to train models
// using GoMLX (http://github.com/gomlx/gomlx/).
//
// The dataset's home page is https://www.vision.caltech.edu/datasets/cub_200_2011/
//
// Two datasets are provided:
//
//   - LabelDataset: yields (img, label), optionally followed by bbox and prob_map.
//   - KeypointDataset: yields (img, point, visible), optionally followed by bbox and prob_map.
//
// Usage example:
//
//	ds, err := cub.NewLabelDataset(cub.Config{DataDir: cub.AutoDir, Split: cub.SplitTrain, ReturnBBox: true})
//	if err != nil { ... }
//	example, err := ds.Get(0)
//	img, label, bbox := example.Values[0].(*cub.Image), example.Values[1].(int32), example.Values[2].(cub.BBox)
package cub

const (
	// NumLabels is the number of bird species in the dataset.
	NumLabels = 200

	// NumKeypoints is the number of annotated parts (keypoints) per image.
	NumKeypoints = 15

	// AutoDir is the sentinel directory value that makes the dataset resolve (and download if needed)
	// the directory under DatasetRoot.
	AutoDir = "auto"
)

// Keys of the fields served by the datasets.
const (
	KeyImage   = "img"
	KeyLabel   = "label"
	KeyBBox    = "bbox"
	KeyProbMap = "prob_map"
	KeyPoint   = "point"
	KeyVisible = "visible"
)

// Annotation files, relative to the data directory.
const (
	ImagesFile          = "images.txt"
	SplitFile           = "train_test_split.txt"
	ImageClassLabelFile = "image_class_labels.txt"
	BoundingBoxesFile   = "bounding_boxes.txt"
	ClassesFile         = "classes.txt"
	PartsFile           = "parts/parts.txt"
	PartLocationsFile   = "parts/part_locs.txt"
	ImagesSubdir        = "images"
)

// Config holds the parameters used to build the datasets.
type Config struct {
	// DataDir is the root of the CUB_200_2011 directory (the one holding images.txt).
	// If set to AutoDir, it is resolved under <DatasetRoot>/cub and downloaded if missing.
	DataDir string

	// Split selects the subset of the examples.
	Split Split

	// ReturnBBox adds the KeyBBox field to each example.
	ReturnBBox bool

	// ProbMapDir is the root of the segmentations (probability maps) directory.
	// If set to AutoDir, it is resolved under <DatasetRoot>/cub and downloaded if missing.
	// Only used if ReturnProbMap is set.
	ProbMapDir string

	// ReturnProbMap adds the KeyProbMap field to each example.
	ReturnProbMap bool
}

// DefaultConfig returns the configuration with automatic directories, SplitTrainTest and no
// optional fields.
func DefaultConfig() Config {
	return Config{
		DataDir:    AutoDir,
		Split:      SplitTrainTest,
		ProbMapDir: AutoDir,
	}
}
