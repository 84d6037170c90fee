// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"path"
	"slices"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Getter returns one field of the example at index i.
type Getter func(i int) (any, error)

// Example is the tuple of fields served for one index, in the order of the dataset keys.
type Example struct {
	Keys   []string
	Values []any
}

// Value returns the value for the given key, and whether it is present in the example.
func (e Example) Value(key string) (value any, found bool) {
	idx := slices.Index(e.Keys, key)
	if idx < 0 {
		return nil, false
	}
	return e.Values[idx], true
}

// Len returns the number of fields in the example.
func (e Example) Len() int { return len(e.Values) }

// Base holds the fields shared by all CUB datasets: the resolved directories, the image ids and paths
// of the split, the bounding boxes, and the registry of getters used to build examples.
//
// It is immutable after construction, and it is safe for concurrent use.
type Base struct {
	// DataDir is the resolved root of the CUB_200_2011 directory.
	DataDir string

	// ProbMapDir is the resolved root of the segmentations. Empty if probability maps were not requested.
	ProbMapDir string

	// Split of the dataset.
	Split Split

	imageIDs     []int
	idSet        sets.Set[int]
	paths        []string
	pathToIndex  map[string]int
	bboxes       []BBox
	probMapPaths []string

	getters map[string]Getter
	keys    []string
}

// NewBase resolves the directories in config and reads the image paths and bounding boxes of the split.
//
// The returned Base has the getters KeyBBox and KeyProbMap registered, but no keys selected.
func NewBase(config Config) (*Base, error) {
	if !config.Split.IsASplit() {
		return nil, errors.Errorf("invalid split %s", config.Split)
	}
	dataDir, err := ResolveDataDir(config.DataDir)
	if err != nil {
		return nil, err
	}
	b := &Base{
		DataDir: dataDir,
		Split:   config.Split,
		getters: make(map[string]Getter),
	}
	if config.ReturnProbMap {
		b.ProbMapDir, err = ResolveProbMapDir(config.ProbMapDir)
		if err != nil {
			return nil, err
		}
	}

	b.idSet, err = readSplitIDs(dataDir, config.Split)
	if err != nil {
		return nil, err
	}
	entries, err := readImagePaths(dataDir)
	if err != nil {
		return nil, err
	}
	b.imageIDs = make([]int, 0, len(b.idSet))
	b.paths = make([]string, 0, len(b.idSet))
	b.pathToIndex = make(map[string]int, len(b.idSet))
	for _, entry := range entries {
		if !b.idSet.Has(entry.ID) {
			continue
		}
		if _, found := b.pathToIndex[entry.Path]; found {
			return nil, errors.Errorf("image path %q listed more than once in %q", entry.Path, ImagesFile)
		}
		b.pathToIndex[entry.Path] = len(b.paths)
		b.imageIDs = append(b.imageIDs, entry.ID)
		b.paths = append(b.paths, entry.Path)
	}
	if len(b.paths) != len(b.idSet) {
		return nil, errors.Errorf("%q lists %d images for split %s, but %q only has paths for %d of them",
			SplitFile, len(b.idSet), config.Split, ImagesFile, len(b.paths))
	}

	boxes, err := readBoundingBoxes(dataDir, b.idSet)
	if err != nil {
		return nil, err
	}
	b.bboxes = make([]BBox, len(b.imageIDs))
	for ii, id := range b.imageIDs {
		box, found := boxes[id]
		if !found {
			return nil, errors.Errorf("image %d (%q) has no bounding box in %q", id, b.paths[ii], BoundingBoxesFile)
		}
		b.bboxes[ii] = box
	}

	if b.ProbMapDir != "" {
		b.probMapPaths = make([]string, len(b.paths))
		for ii, p := range b.paths {
			b.probMapPaths[ii] = path.Join(b.ProbMapDir, strings.TrimSuffix(p, path.Ext(p))+".png")
		}
	}

	b.AddGetter(KeyBBox, func(i int) (any, error) { return b.BBox(i), nil })
	b.AddGetter(KeyProbMap, func(i int) (any, error) { return b.ProbMap(i) })
	klog.V(1).Infof("CUB %s split: %d images in %q", b.Split, len(b.paths), b.DataDir)
	return b, nil
}

// AddGetter registers the getter for the field key, replacing any previous one.
func (b *Base) AddGetter(key string, getter Getter) {
	b.getters[key] = getter
}

// SetKeys selects the fields (and their order) of the examples returned by Get.
// All keys must have a registered getter.
func (b *Base) SetKeys(keys ...string) error {
	for _, key := range keys {
		if _, found := b.getters[key]; !found {
			return errors.Errorf("no getter registered for key %q", key)
		}
	}
	b.keys = slices.Clone(keys)
	return nil
}

// Keys returns the fields of the examples returned by Get.
func (b *Base) Keys() []string {
	return slices.Clone(b.keys)
}

// Len returns the number of examples in the split.
func (b *Base) Len() int {
	return len(b.paths)
}

// checkIndex returns an error if i is out of range.
func (b *Base) checkIndex(i int) error {
	if i < 0 || i >= len(b.paths) {
		return errors.Errorf("example index %d out of range: dataset (split %s) has %d examples", i, b.Split, len(b.paths))
	}
	return nil
}

// Get returns the example at index i, with the fields given by Keys.
// It fails if any of the fields fails: there are no partial results.
func (b *Base) Get(i int) (Example, error) {
	if err := b.checkIndex(i); err != nil {
		return Example{}, err
	}
	example := Example{
		Keys:   slices.Clone(b.keys),
		Values: make([]any, len(b.keys)),
	}
	for ii, key := range b.keys {
		value, err := b.getters[key](i)
		if err != nil {
			return Example{}, errors.WithMessagef(err, "failed to get %q of example %d (%q)", key, i, b.paths[i])
		}
		example.Values[ii] = value
	}
	return example, nil
}

// GetField returns the field key of the example at index i, whether key is selected or not.
func (b *Base) GetField(i int, key string) (any, error) {
	if err := b.checkIndex(i); err != nil {
		return nil, err
	}
	getter, found := b.getters[key]
	if !found {
		return nil, errors.Errorf("no getter registered for key %q", key)
	}
	return getter(i)
}

// Paths returns the relative paths (under the "images" subdirectory) of the images, in index order.
func (b *Base) Paths() []string {
	return slices.Clone(b.paths)
}

// Path returns the relative path of image i.
func (b *Base) Path(i int) string {
	return b.paths[i]
}

// ImagePath returns the full path to image i.
func (b *Base) ImagePath(i int) string {
	return path.Join(b.DataDir, ImagesSubdir, b.paths[i])
}

// ImageID returns the 1-based image id (as used in the annotation files) of example i.
func (b *Base) ImageID(i int) int {
	return b.imageIDs[i]
}

// IndexOf returns the index of the image with the given relative path, or -1 if it is not in the split.
func (b *Base) IndexOf(imagePath string) int {
	idx, found := b.pathToIndex[imagePath]
	if !found {
		return -1
	}
	return idx
}

// Contains returns whether the image with the given relative path is in the split.
func (b *Base) Contains(imagePath string) bool {
	_, found := b.pathToIndex[imagePath]
	return found
}

// BBox returns the bounding box of example i.
func (b *Base) BBox(i int) BBox {
	return b.bboxes[i]
}

// ProbMap reads the probability map of example i. It fails if the dataset was not configured
// with ReturnProbMap.
func (b *Base) ProbMap(i int) (*ProbMap, error) {
	if b.probMapPaths == nil {
		return nil, errors.New("dataset not configured with probability maps (Config.ReturnProbMap)")
	}
	if err := b.checkIndex(i); err != nil {
		return nil, err
	}
	return ReadProbMap(b.probMapPaths[i])
}

// ReadImage reads image i.
func (b *Base) ReadImage(i int) (*Image, error) {
	if err := b.checkIndex(i); err != nil {
		return nil, err
	}
	return ReadImage(b.ImagePath(i))
}

// withKeys selects the given base keys followed by the optional ones requested in config.
func (b *Base) withKeys(config Config, keys ...string) error {
	if config.ReturnBBox {
		keys = append(keys, KeyBBox)
	}
	if config.ReturnProbMap {
		keys = append(keys, KeyProbMap)
	}
	return b.SetKeys(keys...)
}
