// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"slices"

	"github.com/pkg/errors"
)

// LabelDataset serves CUB images with their class labels.
//
// Each example holds the fields:
//
//   - KeyImage: *Image, RGB shaped (3, H, W), values in [0, 255].
//   - KeyLabel: int32, the class in [0, NumLabels-1].
//   - KeyBBox: BBox, (y_min, x_min, y_max, x_max). Only if Config.ReturnBBox.
//   - KeyProbMap: *ProbMap, shaped (H, W), values in [0, 1]. Only if Config.ReturnProbMap.
type LabelDataset struct {
	*Base
	labels []int32
}

// NewLabelDataset reads the annotations of the split selected in config.
//
// Images (and probability maps) are only read when examples are requested.
func NewLabelDataset(config Config) (*LabelDataset, error) {
	base, err := NewBase(config)
	if err != nil {
		return nil, err
	}
	ds := &LabelDataset{Base: base}
	labelsByID, err := readClassLabels(base.DataDir, base.idSet)
	if err != nil {
		return nil, err
	}
	ds.labels = make([]int32, len(base.imageIDs))
	for ii, id := range base.imageIDs {
		label, found := labelsByID[id]
		if !found {
			return nil, errors.Errorf("image %d (%q) has no label in %q", id, base.paths[ii], ImageClassLabelFile)
		}
		ds.labels[ii] = label
	}

	ds.AddGetter(KeyImage, func(i int) (any, error) { return ds.ReadImage(i) })
	ds.AddGetter(KeyLabel, func(i int) (any, error) { return ds.labels[i], nil })
	if err = ds.withKeys(config, KeyImage, KeyLabel); err != nil {
		return nil, err
	}
	return ds, nil
}

// Label returns the 0-based class of example i.
func (ds *LabelDataset) Label(i int) int32 {
	return ds.labels[i]
}

// Labels returns the labels of all examples, in index order.
func (ds *LabelDataset) Labels() []int32 {
	return slices.Clone(ds.labels)
}

// LabelNames returns the names of the classes, indexed by label.
func (ds *LabelDataset) LabelNames() ([]string, error) {
	return ReadLabelNames(ds.DataDir)
}

// ClassCounts returns the number of examples of each class.
func (ds *LabelDataset) ClassCounts() []int {
	counts := make([]int, NumLabels)
	for _, label := range ds.labels {
		counts[label]++
	}
	return counts
}
