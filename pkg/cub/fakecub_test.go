// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRecord describes one image of the synthetic CUB tree used in tests.
type fakeRecord struct {
	ID      int
	Path    string
	ClassID int // 1-based, as in the annotation files.
	IsTrain bool
	XYWH    [4]float32
	Gray    bool
}

const (
	fakeWidth  = 12
	fakeHeight = 8

	hummingbirdPath = "068.Ruby_throated_Hummingbird/Ruby_Throated_Hummingbird_0119_57575.jpg"
	starlingPath    = "134.Cape_Glossy_Starling/Cape_Glossy_Starling_0081_129220.jpg"
)

var fakeRecords = []fakeRecord{
	{ID: 1, Path: "001.Black_footed_Albatross/Black_Footed_Albatross_0001_796111.jpg", ClassID: 1, IsTrain: true, XYWH: [4]float32{1, 2, 4, 3}},
	{ID: 2, Path: "001.Black_footed_Albatross/Black_Footed_Albatross_0002_55.jpg", ClassID: 1, IsTrain: false, XYWH: [4]float32{0, 0, 12, 8}},
	{ID: 3, Path: hummingbirdPath, ClassID: 68, IsTrain: true, XYWH: [4]float32{159, 232, 114, 113}},
	{ID: 4, Path: starlingPath, ClassID: 134, IsTrain: false, XYWH: [4]float32{223, 50, 268, 198}},
	{ID: 5, Path: "200.Common_Yellowthroat/Common_Yellowthroat_0003_190521.jpg", ClassID: 200, IsTrain: true, XYWH: [4]float32{2, 1, 3, 3}, Gray: true},
}

// fakePixel returns the RGB color of the synthetic image id at (x, y).
func fakePixel(id, x, y int) (r, g, b uint8) {
	return uint8(x * 10), uint8(y * 20), uint8(id)
}

// fakeGray returns the gray level of the synthetic grayscale image at (x, y).
func fakeGray(x, y int) uint8 {
	return uint8(x + y*fakeWidth)
}

// fakePoint returns the (x, y, visible) annotation of part (1-based) of image id.
func fakePoint(id, part int) (x, y float32, visible bool) {
	if part%3 == 0 {
		return 0, 0, false
	}
	return float32(id*10 + part), float32(id*100 + part), true
}

// fakeProbLevel returns the gray level of the synthetic segmentation at (x, y).
func fakeProbLevel(x, _ int) uint8 {
	if x < fakeWidth/2 {
		return 255
	}
	return 51
}

func writeFile(t *testing.T, filePath, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path.Dir(filePath), 0755))
	require.NoError(t, os.WriteFile(filePath, []byte(contents), 0644))
}

// writePNG encodes img as PNG in filePath. Images are PNG-encoded even when named ".jpg", so pixel
// values are exact: decoding detects the format from the contents.
func writePNG(t *testing.T, filePath string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path.Dir(filePath), 0755))
	f, err := os.Create(filePath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// createFakeCUB writes a small CUB tree (annotations, images and segmentations) with fakeRecords
// under a temporary directory, and returns the data and probability maps directories.
func createFakeCUB(t *testing.T) (dataDir, probMapDir string) {
	t.Helper()
	root := t.TempDir()
	dataDir = path.Join(root, "CUB_200_2011")
	probMapDir = path.Join(root, "segmentations")

	var images, split, labels, boxes, partLocs strings.Builder
	for _, rec := range fakeRecords {
		_, _ = fmt.Fprintf(&images, "%d %s\n", rec.ID, rec.Path)
		isTrain := 0
		if rec.IsTrain {
			isTrain = 1
		}
		_, _ = fmt.Fprintf(&split, "%d %d\n", rec.ID, isTrain)
		_, _ = fmt.Fprintf(&labels, "%d %d\n", rec.ID, rec.ClassID)
		_, _ = fmt.Fprintf(&boxes, "%d %.1f %.1f %.1f %.1f\n", rec.ID, rec.XYWH[0], rec.XYWH[1], rec.XYWH[2], rec.XYWH[3])
		for part := 1; part <= NumKeypoints; part++ {
			x, y, visible := fakePoint(rec.ID, part)
			v := 0
			if visible {
				v = 1
			}
			_, _ = fmt.Fprintf(&partLocs, "%d %d %.1f %.1f %d\n", rec.ID, part, x, y, v)
		}

		var img image.Image
		if rec.Gray {
			gray := image.NewGray(image.Rect(0, 0, fakeWidth, fakeHeight))
			for y := range fakeHeight {
				for x := range fakeWidth {
					gray.SetGray(x, y, color.Gray{Y: fakeGray(x, y)})
				}
			}
			img = gray
		} else {
			rgba := image.NewRGBA(image.Rect(0, 0, fakeWidth, fakeHeight))
			for y := range fakeHeight {
				for x := range fakeWidth {
					r, g, b := fakePixel(rec.ID, x, y)
					rgba.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
				}
			}
			img = rgba
		}
		writePNG(t, path.Join(dataDir, ImagesSubdir, rec.Path), img)

		seg := image.NewGray(image.Rect(0, 0, fakeWidth, fakeHeight))
		for y := range fakeHeight {
			for x := range fakeWidth {
				seg.SetGray(x, y, color.Gray{Y: fakeProbLevel(x, y)})
			}
		}
		writePNG(t, path.Join(probMapDir, strings.TrimSuffix(rec.Path, ".jpg")+".png"), seg)
	}

	var classes strings.Builder
	for ii := 1; ii <= NumLabels; ii++ {
		_, _ = fmt.Fprintf(&classes, "%d %03d.Class_%d\n", ii, ii, ii)
	}
	var parts strings.Builder
	for ii := 1; ii <= NumKeypoints; ii++ {
		_, _ = fmt.Fprintf(&parts, "%d part number %d\n", ii, ii)
	}

	writeFile(t, path.Join(dataDir, ImagesFile), images.String())
	writeFile(t, path.Join(dataDir, SplitFile), split.String())
	writeFile(t, path.Join(dataDir, ImageClassLabelFile), labels.String())
	writeFile(t, path.Join(dataDir, BoundingBoxesFile), boxes.String())
	writeFile(t, path.Join(dataDir, ClassesFile), classes.String())
	writeFile(t, path.Join(dataDir, PartsFile), parts.String())
	writeFile(t, path.Join(dataDir, PartLocationsFile), partLocs.String())
	return
}

// fakeSplitRecords returns the fakeRecords in split, in file order.
func fakeSplitRecords(split Split) (records []fakeRecord) {
	for _, rec := range fakeRecords {
		if split.Includes(rec.IsTrain) {
			records = append(records, rec)
		}
	}
	return
}
