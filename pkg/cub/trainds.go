// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"fmt"
	"image"
	"io"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	timage "github.com/gomlx/gomlx/pkg/core/tensors/images"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Dataset implements train.Dataset over a LabelDataset, yielding batches of images resized
// to a fixed size, ready for training a classifier.
//
// Yield returns:
//
//   - inputs: the images batch, shaped `[batch_size, size, size, 3]` with values in [0, 1], and the
//     indices of the examples as int32, shaped `[batch_size]`. If WithBBox is set, a third input with
//     the bounding boxes shaped `[batch_size, 4]`, normalized to [0, 1] of the original image size.
//   - labels: the classes as int32, shaped `[batch_size]`.
//
// The last batch of a finite epoch may be smaller than batchSize.
//
// Yield is safe for concurrent use, so images can be decoded in parallel by wrapping the dataset
// with `datasets.Parallel(tds)` (package github.com/gomlx/gomlx/pkg/ml/datasets). The parallel
// dataset doesn't preserve the order of the batches.
type Dataset struct {
	name      string
	ds        *LabelDataset
	batchSize int
	size      int
	dtype     dtypes.DType
	toTensor  *timage.ToTensorConfig

	infinite bool
	withBBox bool
	shuffle  *rand.Rand

	// mu protects next and order.
	mu    sync.Mutex
	next  int
	order []int
}

var _ train.Dataset = (*Dataset)(nil)

// NewDataset creates a train.Dataset that yields batches of batchSize examples from ds, with images
// resized (the shortest side to size, preserving the ratio) and cropped at the center to `size x size`.
//
// dtype must be Float32, Float64 or Float16.
// By default, it goes over the examples in order, once: see Shuffle and Infinite.
func NewDataset(name string, ds *LabelDataset, batchSize, size int, dtype dtypes.DType) (*Dataset, error) {
	if batchSize <= 0 {
		return nil, errors.Errorf("invalid batch size %d for dataset %q", batchSize, name)
	}
	if size <= 0 {
		return nil, errors.Errorf("invalid image size %d for dataset %q", size, name)
	}
	switch dtype {
	case dtypes.Float32, dtypes.Float64, dtypes.Float16:
	default:
		return nil, errors.Errorf("dtype %s not supported for dataset %q, use Float32, Float64 or Float16", dtype, name)
	}
	tds := &Dataset{
		name:      name,
		ds:        ds,
		batchSize: batchSize,
		size:      size,
		dtype:     dtype,
		toTensor:  timage.ToTensor(dtype),
	}
	tds.Reset()
	return tds, nil
}

// Shuffle configures the dataset to shuffle the examples at every epoch (on Reset), using rng.
// If the dataset is Infinite, examples are sampled with replacement.
//
// It returns itself, to allow cascading configuration calls.
func (tds *Dataset) Shuffle(rng *rand.Rand) *Dataset {
	tds.shuffle = rng
	tds.Reset()
	return tds
}

// Infinite configures the dataset to loop indefinitely. Typically used for training with
// `train.Loop.RunSteps()`. Don't use it with `train.Loop.RunEpochs()`.
//
// It returns itself, to allow cascading configuration calls.
func (tds *Dataset) Infinite(infinite bool) *Dataset {
	tds.infinite = infinite
	tds.Reset()
	return tds
}

// WithBBox adds the normalized bounding boxes to the inputs.
//
// It returns itself, to allow cascading configuration calls.
func (tds *Dataset) WithBBox() *Dataset {
	tds.withBBox = true
	return tds
}

// Name implements train.Dataset.
func (tds *Dataset) Name() string { return tds.name }

// ShortName implements train.HasShortName: the first 3 characters of the name, or the whole
// name if shorter.
func (tds *Dataset) ShortName() string {
	if len(tds.name) <= 3 {
		return tds.name
	}
	return tds.name[:3]
}

// Reset implements train.Dataset. It restarts the epoch, reshuffling the examples if configured.
func (tds *Dataset) Reset() {
	tds.mu.Lock()
	defer tds.mu.Unlock()
	tds.next = 0
	n := tds.ds.Len()
	if len(tds.order) != n {
		tds.order = make([]int, n)
	}
	for ii := range tds.order {
		tds.order[ii] = ii
	}
	if tds.shuffle != nil && !tds.infinite {
		tds.shuffle.Shuffle(n, func(i, j int) {
			tds.order[i], tds.order[j] = tds.order[j], tds.order[i]
		})
	}
}

// nextIndices returns the indices of the examples of the next batch, or io.EOF at the end of the epoch.
func (tds *Dataset) nextIndices() ([]int, error) {
	tds.mu.Lock()
	defer tds.mu.Unlock()
	n := len(tds.order)
	if n == 0 {
		return nil, io.EOF
	}
	indices := make([]int, 0, tds.batchSize)
	for len(indices) < tds.batchSize {
		if tds.infinite {
			if tds.shuffle != nil {
				indices = append(indices, tds.shuffle.IntN(n))
				continue
			}
			indices = append(indices, tds.order[tds.next])
			tds.next = (tds.next + 1) % n
			continue
		}
		if tds.next >= n {
			break
		}
		indices = append(indices, tds.order[tds.next])
		tds.next++
	}
	if len(indices) == 0 {
		return nil, io.EOF
	}
	return indices, nil
}

// Yield implements train.Dataset.
func (tds *Dataset) Yield() (spec any, inputs, labels []*tensors.Tensor, err error) {
	indices, err := tds.nextIndices()
	if err != nil {
		return
	}
	images := make([]image.Image, len(indices))
	indicesI32 := make([]int32, len(indices))
	labelsI32 := make([]int32, len(indices))
	var boxes []float32
	if tds.withBBox {
		boxes = make([]float32, 4*len(indices))
	}
	for ii, idx := range indices {
		imagePath := tds.ds.ImagePath(idx)
		img, openErr := imaging.Open(imagePath)
		if openErr != nil {
			err = errors.Wrapf(openErr, "failed to read image #%d (%q) for dataset %q", idx, imagePath, tds.name)
			return
		}
		if tds.withBBox {
			copy(boxes[4*ii:], normalizeBBox(tds.ds.BBox(idx), img.Bounds().Size()))
		}
		images[ii] = ResizeAndCrop(img, tds.size)
		indicesI32[ii] = int32(idx)
		labelsI32[ii] = tds.ds.Label(idx)
	}

	var imagesT *tensors.Tensor
	err = exceptions.TryCatch[error](func() {
		imagesT = tds.toTensor.Batch(images)
	})
	if err != nil {
		err = errors.WithMessagef(err, "failed to convert images to tensor for dataset %q", tds.name)
		return
	}
	spec = tds
	inputs = []*tensors.Tensor{imagesT, tensors.FromValue(indicesI32)}
	if tds.withBBox {
		inputs = append(inputs, tds.floatTensor(boxes, len(indices), 4))
	}
	labels = []*tensors.Tensor{tensors.FromValue(labelsI32)}
	return
}

// floatTensor converts the float32 values to a tensor of the dataset dtype.
func (tds *Dataset) floatTensor(values []float32, dimensions ...int) *tensors.Tensor {
	switch tds.dtype {
	case dtypes.Float64:
		converted := make([]float64, len(values))
		for ii, v := range values {
			converted[ii] = float64(v)
		}
		return tensors.FromFlatDataAndDimensions(converted, dimensions...)
	case dtypes.Float16:
		converted := make([]float16.Float16, len(values))
		for ii, v := range values {
			converted[ii] = float16.Fromfloat32(v)
		}
		return tensors.FromFlatDataAndDimensions(converted, dimensions...)
	}
	return tensors.FromFlatDataAndDimensions(values, dimensions...)
}

// normalizeBBox returns the box coordinates divided by the image height (y) and width (x).
func normalizeBBox(box BBox, imgSize image.Point) []float32 {
	h, w := float32(imgSize.Y), float32(imgSize.X)
	return []float32{box[0] / h, box[1] / w, box[2] / h, box[3] / w}
}

// ResizeAndCrop resizes img so its shortest side is size, preserving the ratio, and crops
// the center `size x size` square.
func ResizeAndCrop(img image.Image, size int) image.Image {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width < height {
		ratio := float64(width) / float64(size)
		width = size
		height = max(size, int(math.Round(float64(height)/ratio)))
	} else if height < width {
		ratio := float64(height) / float64(size)
		height = size
		width = max(size, int(math.Round(float64(width)/ratio)))
	} else {
		width = size
		height = size
	}
	resized := imaging.Resize(img, width, height, imaging.Linear)
	return imaging.CropCenter(resized, size, size)
}

// String implements fmt.Stringer.
func (tds *Dataset) String() string {
	return fmt.Sprintf("%s: %d examples (split %s), batch size %d, images %dx%d %s",
		tds.name, tds.ds.Len(), tds.ds.Split, tds.batchSize, tds.size, tds.size, tds.dtype)
}
