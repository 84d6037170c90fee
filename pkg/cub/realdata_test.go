// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"flag"
	"path"
	"testing"

	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flagCUBData = flag.String("cub_data", "", "Directory with an extracted CUB_200_2011 dataset. "+
	"If empty, tests on the real dataset are skipped.")

// realExample is an image of the real dataset with its known annotations.
type realExample struct {
	ImageID  int
	Path     string
	ClassID  int
	XYWH     [4]float32
	Visible  [NumKeypoints]bool
	PointsXY [NumKeypoints][2]float32
}

var (
	realTrainExample = realExample{
		ImageID: 3930,
		Path:    hummingbirdPath,
		ClassID: 68,
		XYWH:    [4]float32{159, 232, 114, 113},
		Visible: [NumKeypoints]bool{true, true, true, true, true, true, false, true, false, true, true, true, true, true, true},
		PointsXY: [NumKeypoints][2]float32{
			{203, 275}, {256, 248}, {238, 298}, {241, 281}, {230, 237}, {238, 241}, {0, 0}, {237, 315},
			{0, 0}, {214, 263}, {225, 247}, {212, 321}, {201, 296}, {169, 339}, {243, 257}},
	}
	realTestExample = realExample{
		ImageID: 7859,
		Path:    starlingPath,
		ClassID: 134,
		XYWH:    [4]float32{223, 50, 268, 198},
		Visible: [NumKeypoints]bool{true, true, true, true, true, true, true, true, true, true, false, true, false, true, true},
		PointsXY: [NumKeypoints][2]float32{
			{344, 90}, {236, 83}, {320, 162}, {276, 126}, {268, 63}, {251, 73}, {260, 77}, {322, 191},
			{342, 119}, {306, 64}, {0, 0}, {349, 203}, {0, 0}, {458, 185}, {260, 97}},
	}
	realExampleCount = map[Split]int{SplitTrain: 5994, SplitTest: 5794, SplitTrainTest: 5994 + 5794}
)

// realDataDir returns the directory given by -cub_data, or skips the test.
func realDataDir(t *testing.T) string {
	if *flagCUBData == "" {
		t.Skip("-cub_data not set, skipping test on the real CUB dataset")
	}
	dataDir, err := fsutil.ReplaceTildeInDir(*flagCUBData)
	require.NoError(t, err)
	if !fsutil.MustFileExists(path.Join(dataDir, ImagesFile)) {
		t.Skipf("%q not found in -cub_data=%q, skipping test on the real CUB dataset", ImagesFile, dataDir)
	}
	return dataDir
}

func TestRealLabelDataset(t *testing.T) {
	dataDir := realDataDir(t)
	for _, split := range SplitValues() {
		t.Run(split.String(), func(t *testing.T) {
			ds, err := NewLabelDataset(Config{DataDir: dataDir, Split: split, ReturnBBox: true})
			require.NoError(t, err)
			assert.Equal(t, realExampleCount[split], ds.Len())
			for _, example := range []struct {
				realExample
				inSplit bool
			}{{realTrainExample, split != SplitTest}, {realTestExample, split != SplitTrain}} {
				idx := ds.IndexOf(example.Path)
				if !example.inSplit {
					assert.Equal(t, -1, idx, "%q should not be in split %s", example.Path, split)
					continue
				}
				require.GreaterOrEqual(t, idx, 0, "%q should be in split %s", example.Path, split)
				assert.Equal(t, example.ImageID, ds.ImageID(idx))
				fields, err := ds.Get(idx)
				require.NoError(t, err)
				require.Equal(t, 3, fields.Len())
				assert.Equal(t, int32(example.ClassID-1), fields.Values[1])
				x, y, w, h := example.XYWH[0], example.XYWH[1], example.XYWH[2], example.XYWH[3]
				assert.Equal(t, BBox{y, x, y + h, x + w}, fields.Values[2])
			}
		})
	}
}

func TestRealKeypointDataset(t *testing.T) {
	dataDir := realDataDir(t)
	for _, split := range SplitValues() {
		t.Run(split.String(), func(t *testing.T) {
			ds, err := NewKeypointDataset(Config{DataDir: dataDir, Split: split, ReturnBBox: true})
			require.NoError(t, err)
			assert.Equal(t, realExampleCount[split], ds.Len())
			for _, example := range []struct {
				realExample
				inSplit bool
			}{{realTrainExample, split != SplitTest}, {realTestExample, split != SplitTrain}} {
				idx := ds.IndexOf(example.Path)
				if !example.inSplit {
					assert.Equal(t, -1, idx)
					continue
				}
				require.GreaterOrEqual(t, idx, 0)
				kp := ds.Keypoints(idx)
				assert.Equal(t, example.Visible, kp.Visible)
				for part, xy := range example.PointsXY {
					assert.Equal(t, [2]float32{xy[1], xy[0]}, kp.Points[part], "part %d of %q", part+1, example.Path)
				}
				x, y, w, h := example.XYWH[0], example.XYWH[1], example.XYWH[2], example.XYWH[3]
				assert.Equal(t, BBox{y, x, y + h, x + w}, ds.BBox(idx))
			}
		})
	}
}
