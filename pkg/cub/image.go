// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// Image is an RGB image stored channels-first, as float32 values in [0, 255].
type Image struct {
	Height, Width int

	// Pixels in CHW order: Pixels[c*Height*Width + y*Width + x].
	Pixels []float32
}

// At returns the value of channel c (0: red, 1: green, 2: blue) at (y, x).
func (img *Image) At(c, y, x int) float32 {
	return img.Pixels[(c*img.Height+y)*img.Width+x]
}

// Shape returns the dimensions of the image: (3, Height, Width).
func (img *Image) Shape() [3]int {
	return [3]int{3, img.Height, img.Width}
}

// Tensor returns the image as a float32 tensor shaped [3, height, width].
func (img *Image) Tensor() *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions(img.Pixels, 3, img.Height, img.Width)
}

// ImageFromImage converts any image.Image (grayscale, CMYK, paletted, ...) to an RGB Image.
// The alpha channel is dropped.
func ImageFromImage(src image.Image) *Image {
	nrgba := imaging.Clone(src)
	bounds := nrgba.Bounds()
	height, width := bounds.Dy(), bounds.Dx()
	planeSize := height * width
	img := &Image{
		Height: height,
		Width:  width,
		Pixels: make([]float32, 3*planeSize),
	}
	for y := range height {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*width]
		for x := range width {
			offset := y*width + x
			img.Pixels[offset] = float32(row[4*x])
			img.Pixels[planeSize+offset] = float32(row[4*x+1])
			img.Pixels[2*planeSize+offset] = float32(row[4*x+2])
		}
	}
	return img
}

// ReadImage reads and decodes the image in filePath, and converts it to RGB.
func ReadImage(filePath string) (*Image, error) {
	img, err := imaging.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image %q", filePath)
	}
	return ImageFromImage(img), nil
}

// ProbMap is the probability of each pixel belonging to the bird, with values in [0, 1].
type ProbMap struct {
	Height, Width int

	// Values in row-major order: Values[y*Width + x].
	Values []float32
}

// At returns the probability at (y, x).
func (pm *ProbMap) At(y, x int) float32 {
	return pm.Values[y*pm.Width+x]
}

// Tensor returns the probability map as a float32 tensor shaped [height, width].
func (pm *ProbMap) Tensor() *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions(pm.Values, pm.Height, pm.Width)
}

// ReadProbMap reads a segmentation image (usually a PNG) and converts its gray levels to
// probabilities in [0, 1].
func ReadProbMap(filePath string) (*ProbMap, error) {
	img, err := imaging.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read probability map %q", filePath)
	}
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	pm := &ProbMap{
		Height: bounds.Dy(),
		Width:  bounds.Dx(),
	}
	pm.Values = make([]float32, pm.Height*pm.Width)
	for y := range pm.Height {
		row := gray.Pix[y*gray.Stride:]
		for x := range pm.Width {
			pm.Values[y*pm.Width+x] = float32(row[4*x]) / 255
		}
	}
	return pm, nil
}

// BBox is a bounding box around the bird, as (y_min, x_min, y_max, x_max) in pixels.
type BBox [4]float32

// BBoxFromXYWH converts the (x, y, width, height) annotation format to a BBox.
func BBoxFromXYWH(x, y, w, h float32) BBox {
	return BBox{y, x, y + h, x + w}
}

// Height of the box.
func (b BBox) Height() float32 { return b[2] - b[0] }

// Width of the box.
func (b BBox) Width() float32 { return b[3] - b[1] }

// Tensor returns the box as a float32 tensor shaped [1, 4].
func (b BBox) Tensor() *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions(b[:], 1, 4)
}
