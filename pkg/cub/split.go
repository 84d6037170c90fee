// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

// Split of the dataset.
type Split int

//go:generate enumer -type=Split -trimprefix=Split -transform=lower -values -text split.go

const (
	// SplitTrain selects the 5994 training images.
	SplitTrain Split = iota

	// SplitTest selects the 5794 test images.
	SplitTest

	// SplitTrainTest selects all 11788 images.
	SplitTrainTest
)

// Includes returns whether an image with the given "is_training_image" flag belongs to the split.
func (s Split) Includes(isTrain bool) bool {
	switch s {
	case SplitTrain:
		return isTrain
	case SplitTest:
		return !isTrain
	case SplitTrainTest:
		return true
	}
	return false
}

// Set implements flag.Value, so a Split can be used as a command-line flag.
func (s *Split) Set(name string) error {
	split, err := SplitString(name)
	if err != nil {
		return err
	}
	*s = split
	return nil
}
