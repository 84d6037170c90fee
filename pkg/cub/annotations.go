// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"bufio"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// This file contains the parsers of the CUB annotation files. They are all plain text
// files with one record per line, with whitespace separated columns.

// readTokens calls fn with the whitespace separated tokens of each non-empty line of filePath.
// lineNum is 1-based.
func readTokens(filePath string, fn func(lineNum int, tokens []string) error) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to open annotations file %q", filePath)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if err = fn(lineNum, tokens); err != nil {
			return errors.WithMessagef(err, "in %s:%d", filePath, lineNum)
		}
	}
	if err = scanner.Err(); err != nil {
		return errors.Wrapf(err, "failed reading annotations file %q", filePath)
	}
	return nil
}

// expectColumns returns an error if tokens doesn't have exactly n columns.
func expectColumns(tokens []string, n int) error {
	if len(tokens) != n {
		return errors.Errorf("expected %d columns, got %d: %q", n, len(tokens), tokens)
	}
	return nil
}

// parseInt parses a base-10 integer token.
func parseInt[T constraints.Signed](token string) (T, error) {
	var zero T
	v, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return zero, errors.Wrapf(err, "invalid integer %q", token)
	}
	if int64(T(v)) != v {
		return zero, errors.Errorf("integer %q out of range", token)
	}
	return T(v), nil
}

// parseFloat parses a floating point token.
func parseFloat[T constraints.Float](token string) (T, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid number %q", token)
	}
	return T(v), nil
}

// imageEntry is one row of images.txt.
type imageEntry struct {
	ID   int
	Path string
}

// readImagePaths reads images.txt and returns the entries in file order.
func readImagePaths(dataDir string) (entries []imageEntry, err error) {
	err = readTokens(path.Join(dataDir, ImagesFile), func(_ int, tokens []string) error {
		if err := expectColumns(tokens, 2); err != nil {
			return err
		}
		id, err := parseInt[int](tokens[0])
		if err != nil {
			return err
		}
		entries = append(entries, imageEntry{ID: id, Path: tokens[1]})
		return nil
	})
	return
}

// readSplitIDs reads train_test_split.txt and returns the ids of the images in split.
func readSplitIDs(dataDir string, split Split) (ids sets.Set[int], err error) {
	if !split.IsASplit() {
		return nil, errors.Errorf("invalid split %s", split)
	}
	ids = sets.Make[int]()
	err = readTokens(path.Join(dataDir, SplitFile), func(_ int, tokens []string) error {
		if err := expectColumns(tokens, 2); err != nil {
			return err
		}
		id, err := parseInt[int](tokens[0])
		if err != nil {
			return err
		}
		var isTrain bool
		switch tokens[1] {
		case "1":
			isTrain = true
		case "0":
			isTrain = false
		default:
			return errors.Errorf("invalid is_training_image flag %q for image %d", tokens[1], id)
		}
		if split.Includes(isTrain) {
			ids.Insert(id)
		}
		return nil
	})
	return
}

// readClassLabels reads image_class_labels.txt for the images in ids, and returns the labels
// converted to 0-based.
func readClassLabels(dataDir string, ids sets.Set[int]) (labels map[int]int32, err error) {
	labels = make(map[int]int32, len(ids))
	err = readTokens(path.Join(dataDir, ImageClassLabelFile), func(_ int, tokens []string) error {
		if err := expectColumns(tokens, 2); err != nil {
			return err
		}
		id, err := parseInt[int](tokens[0])
		if err != nil {
			return err
		}
		if !ids.Has(id) {
			return nil
		}
		classID, err := parseInt[int32](tokens[1])
		if err != nil {
			return err
		}
		if classID < 1 || classID > NumLabels {
			return errors.Errorf("class id %d for image %d out of range [1, %d]", classID, id, NumLabels)
		}
		if _, found := labels[id]; found {
			return errors.Errorf("image %d annotated more than once", id)
		}
		labels[id] = classID - 1
		return nil
	})
	return
}

// readBoundingBoxes reads bounding_boxes.txt for the images in ids. The boxes are converted from
// (x, y, width, height) to (y_min, x_min, y_max, x_max).
func readBoundingBoxes(dataDir string, ids sets.Set[int]) (boxes map[int]BBox, err error) {
	boxes = make(map[int]BBox, len(ids))
	err = readTokens(path.Join(dataDir, BoundingBoxesFile), func(_ int, tokens []string) error {
		if err := expectColumns(tokens, 5); err != nil {
			return err
		}
		id, err := parseInt[int](tokens[0])
		if err != nil {
			return err
		}
		if !ids.Has(id) {
			return nil
		}
		var xywh [4]float32
		for ii := range xywh {
			if xywh[ii], err = parseFloat[float32](tokens[1+ii]); err != nil {
				return err
			}
		}
		if _, found := boxes[id]; found {
			return errors.Errorf("image %d annotated more than once", id)
		}
		boxes[id] = BBoxFromXYWH(xywh[0], xywh[1], xywh[2], xywh[3])
		return nil
	})
	return
}

// readNames reads a file of "<1-based id> <name ...>" rows, where names may contain spaces,
// and returns the names indexed by id-1. All ids in [1, count] must be present.
func readNames(filePath string, count int) (names []string, err error) {
	names = make([]string, count)
	err = readTokens(filePath, func(_ int, tokens []string) error {
		if len(tokens) < 2 {
			return errors.Errorf("expected id and name, got %q", tokens)
		}
		id, err := parseInt[int](tokens[0])
		if err != nil {
			return err
		}
		if id < 1 || id > count {
			return errors.Errorf("id %d out of range [1, %d]", id, count)
		}
		names[id-1] = strings.Join(tokens[1:], " ")
		return nil
	})
	if err != nil {
		return nil, err
	}
	for ii, name := range names {
		if name == "" {
			return nil, errors.Errorf("%q has no entry for id %d", filePath, ii+1)
		}
	}
	return names, nil
}

// keypoints of one image: (y, x) per part, and visibility.
type keypoints struct {
	Points  [NumKeypoints][2]float32
	Visible [NumKeypoints]bool
	seen    [NumKeypoints]bool
}

// missing returns the 1-based ids of the parts not annotated.
func (kp *keypoints) missing() (partIDs []int) {
	for ii, seen := range kp.seen {
		if !seen {
			partIDs = append(partIDs, ii+1)
		}
	}
	return
}

// readPartLocations reads parts/part_locs.txt for the images in ids.
//
// The file holds one row per (image, part): "<image_id> <part_id> <x> <y> <visible>".
// Points are stored as (y, x). Invisible parts are annotated with (0, 0).
func readPartLocations(dataDir string, ids sets.Set[int]) (parts map[int]*keypoints, err error) {
	parts = make(map[int]*keypoints, len(ids))
	err = readTokens(path.Join(dataDir, PartLocationsFile), func(_ int, tokens []string) error {
		if err := expectColumns(tokens, 5); err != nil {
			return err
		}
		id, err := parseInt[int](tokens[0])
		if err != nil {
			return err
		}
		if !ids.Has(id) {
			return nil
		}
		partID, err := parseInt[int](tokens[1])
		if err != nil {
			return err
		}
		if partID < 1 || partID > NumKeypoints {
			return errors.Errorf("part id %d for image %d out of range [1, %d]", partID, id, NumKeypoints)
		}
		x, err := parseFloat[float32](tokens[2])
		if err != nil {
			return err
		}
		y, err := parseFloat[float32](tokens[3])
		if err != nil {
			return err
		}
		visible, err := parseInt[int](tokens[4])
		if err != nil {
			return err
		}
		kp := parts[id]
		if kp == nil {
			kp = &keypoints{}
			parts[id] = kp
		}
		if kp.seen[partID-1] {
			return errors.Errorf("part %d of image %d annotated more than once", partID, id)
		}
		kp.seen[partID-1] = true
		kp.Points[partID-1] = [2]float32{y, x}
		kp.Visible[partID-1] = visible != 0
		return nil
	})
	return
}

// ReadLabelNames returns the names of the 200 classes, from classes.txt, indexed by the 0-based label.
func ReadLabelNames(dataDir string) ([]string, error) {
	return readNames(path.Join(dataDir, ClassesFile), NumLabels)
}

// ReadPartNames returns the names of the 15 parts (keypoints), from parts/parts.txt, in keypoint order.
func ReadPartNames(dataDir string) ([]string, error) {
	return readNames(path.Join(dataDir, PartsFile), NumKeypoints)
}
