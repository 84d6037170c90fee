// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// Keypoints of the 15 parts of a bird (beak, crown, left eye, ...), see ReadPartNames.
type Keypoints struct {
	// Points as (y, x) in pixels. Invisible points are (0, 0).
	Points [NumKeypoints][2]float32

	// Visible tells whether each part is visible in the image.
	Visible [NumKeypoints]bool
}

// PointsTensor returns the points as a float32 tensor shaped [1, NumKeypoints, 2], with (y, x) in the last axis.
func (kp *Keypoints) PointsTensor() *tensors.Tensor {
	flat := make([]float32, 0, 2*NumKeypoints)
	for _, p := range kp.Points {
		flat = append(flat, p[0], p[1])
	}
	return tensors.FromFlatDataAndDimensions(flat, 1, NumKeypoints, 2)
}

// VisibleTensor returns the visibility flags as a bool tensor shaped [1, NumKeypoints].
func (kp *Keypoints) VisibleTensor() *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions(kp.Visible[:], 1, NumKeypoints)
}

// KeypointDataset serves CUB images with the locations of the bird parts.
//
// Each example holds the fields:
//
//   - KeyImage: *Image, RGB shaped (3, H, W), values in [0, 255].
//   - KeyPoint: [1][NumKeypoints][2]float32, shaped (1, 15, 2) with (y, x) of each part.
//   - KeyVisible: [1][NumKeypoints]bool, shaped (1, 15).
//   - KeyBBox: BBox, (y_min, x_min, y_max, x_max). Only if Config.ReturnBBox.
//   - KeyProbMap: *ProbMap, shaped (H, W), values in [0, 1]. Only if Config.ReturnProbMap.
type KeypointDataset struct {
	*Base
	keypoints []Keypoints
}

// NewKeypointDataset reads the annotations of the split selected in config.
//
// Every image of the split must have all NumKeypoints parts annotated.
func NewKeypointDataset(config Config) (*KeypointDataset, error) {
	base, err := NewBase(config)
	if err != nil {
		return nil, err
	}
	ds := &KeypointDataset{Base: base}
	partsByID, err := readPartLocations(base.DataDir, base.idSet)
	if err != nil {
		return nil, err
	}
	ds.keypoints = make([]Keypoints, len(base.imageIDs))
	for ii, id := range base.imageIDs {
		kp, found := partsByID[id]
		if !found {
			return nil, errors.Errorf("image %d (%q) has no parts in %q", id, base.paths[ii], PartLocationsFile)
		}
		if missing := kp.missing(); len(missing) > 0 {
			return nil, errors.Errorf("image %d (%q) is missing parts %v in %q", id, base.paths[ii], missing, PartLocationsFile)
		}
		ds.keypoints[ii] = Keypoints{Points: kp.Points, Visible: kp.Visible}
	}

	ds.AddGetter(KeyImage, func(i int) (any, error) { return ds.ReadImage(i) })
	ds.AddGetter(KeyPoint, func(i int) (any, error) {
		return [1][NumKeypoints][2]float32{ds.keypoints[i].Points}, nil
	})
	ds.AddGetter(KeyVisible, func(i int) (any, error) {
		return [1][NumKeypoints]bool{ds.keypoints[i].Visible}, nil
	})
	if err = ds.withKeys(config, KeyImage, KeyPoint, KeyVisible); err != nil {
		return nil, err
	}
	return ds, nil
}

// Keypoints returns the parts locations and visibility of example i.
func (ds *KeypointDataset) Keypoints(i int) Keypoints {
	return ds.keypoints[i]
}

// PartNames returns the names of the parts, in keypoint order.
func (ds *KeypointDataset) PartNames() ([]string, error) {
	return ReadPartNames(ds.DataDir)
}
