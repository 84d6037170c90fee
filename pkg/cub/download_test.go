// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"os"
	"os/user"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetRoot(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(DatasetRootEnv, tmp)
	root, err := DatasetRoot()
	require.NoError(t, err)
	assert.Equal(t, tmp, root)

	usr, err := user.Current()
	require.NoError(t, err)
	t.Setenv(DatasetRootEnv, "~/datasets")
	root, err = DatasetRoot()
	require.NoError(t, err)
	assert.Equal(t, path.Join(usr.HomeDir, "datasets"), root)

	t.Setenv(DatasetRootEnv, "")
	root, err = DatasetRoot()
	require.NoError(t, err)
	assert.Equal(t, path.Join(usr.HomeDir, ".cache/gomlx/datasets"), root)
}

func TestResolveDirTilde(t *testing.T) {
	usr, err := user.Current()
	require.NoError(t, err)
	dataDir, err := ResolveDataDir("~/work/CUB_200_2011")
	require.NoError(t, err)
	assert.Equal(t, path.Join(usr.HomeDir, "work/CUB_200_2011"), dataDir)
	probMapDir, err := ResolveProbMapDir("~/work/segmentations")
	require.NoError(t, err)
	assert.Equal(t, path.Join(usr.HomeDir, "work/segmentations"), probMapDir)

	_, err = ResolveDataDir("")
	assert.ErrorContains(t, err, AutoDir)
}

// TestAutoDir places an extracted CUB tree where AutoDir looks for it, so nothing is downloaded.
func TestAutoDir(t *testing.T) {
	fakeDataDir, _ := createFakeCUB(t)
	tmp := t.TempDir()
	cubDir := path.Join(tmp, DownloadSubdir)
	require.NoError(t, os.Rename(path.Dir(fakeDataDir), cubDir))
	t.Setenv(DatasetRootEnv, tmp)

	ds, err := NewLabelDataset(Config{DataDir: AutoDir, ProbMapDir: AutoDir, ReturnProbMap: true, Split: SplitTest})
	require.NoError(t, err)
	assert.Equal(t, path.Join(cubDir, DataArchiveDir), ds.DataDir)
	assert.Equal(t, path.Join(cubDir, ProbMapArchiveDir), ds.ProbMapDir)
	assert.Equal(t, 2, ds.Len())
	example, err := ds.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyImage, KeyLabel, KeyProbMap}, ds.Keys())
	_, ok := example.Values[2].(*ProbMap)
	assert.True(t, ok, "prob_map should be a *ProbMap, got %T", example.Values[2])

	// No archive was fetched.
	for _, archive := range []string{DataArchive, ProbMapArchive} {
		_, err = os.Stat(path.Join(cubDir, archive))
		assert.True(t, os.IsNotExist(err), "%q should not have been downloaded", archive)
	}
}
