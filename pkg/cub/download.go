// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cub

import (
	"os"
	"path"

	"github.com/gomlx/cub200/internal/downloader"
	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	// DatasetRootEnv is the environment variable that overrides DefaultDatasetRoot.
	DatasetRootEnv = "GOMLX_DATASET_ROOT"

	// DefaultDatasetRoot is where datasets are cached, if DatasetRootEnv is not set.
	DefaultDatasetRoot = "~/.cache/gomlx/datasets"

	// DownloadSubdir under the dataset root where CUB files are stored.
	DownloadSubdir = "cub"

	// DataArchiveURL is the archive with images and annotations, extracted to DataArchiveDir.
	DataArchiveURL = "https://data.caltech.edu/records/65de6-vp158/files/CUB_200_2011.tgz?download=1"
	DataArchive    = "CUB_200_2011.tgz"
	DataArchiveDir = "CUB_200_2011"

	// ProbMapArchiveURL is the archive with the segmentations, extracted to ProbMapArchiveDir.
	ProbMapArchiveURL = "https://data.caltech.edu/records/w9d68-gec53/files/segmentations.tgz?download=1"
	ProbMapArchive    = "segmentations.tgz"
	ProbMapArchiveDir = "segmentations"
)

// DatasetRoot returns the root directory shared by the downloaded datasets: the value of the
// environment variable DatasetRootEnv, or DefaultDatasetRoot, with "~" expanded.
// CUB files are stored under DownloadSubdir of it.
func DatasetRoot() (string, error) {
	root := os.Getenv(DatasetRootEnv)
	if root == "" {
		root = DefaultDatasetRoot
	}
	return fsutil.ReplaceTildeInDir(root)
}

// resolveDir returns dir with "~" expanded, or, if dir is AutoDir, <DatasetRoot>/<DownloadSubdir>/<archiveDir>,
// downloading and extracting archive from url if needed.
func resolveDir(dir, url, archive, archiveDir string) (string, error) {
	if dir != AutoDir {
		if dir == "" {
			return "", errors.Errorf("empty directory given, use %q to download the dataset automatically", AutoDir)
		}
		return fsutil.ReplaceTildeInDir(dir)
	}
	root, err := DatasetRoot()
	if err != nil {
		return "", err
	}
	baseDir := path.Join(root, DownloadSubdir)
	if err = os.MkdirAll(baseDir, 0777); err != nil {
		return "", errors.Wrapf(err, "failed to create directory %q for CUB dataset", baseDir)
	}
	klog.V(1).Infof("resolving %q under %q", archiveDir, baseDir)
	if err = downloader.DownloadAndUntarIfMissing(url, baseDir, archive, archiveDir, ""); err != nil {
		return "", errors.WithMessagef(err, "failed to download CUB file %q", archive)
	}
	return path.Join(baseDir, archiveDir), nil
}

// ResolveDataDir returns the root of the CUB_200_2011 directory. If dataDir is AutoDir the dataset
// is downloaded to <DatasetRoot>/cub, if not there yet.
func ResolveDataDir(dataDir string) (string, error) {
	return resolveDir(dataDir, DataArchiveURL, DataArchive, DataArchiveDir)
}

// ResolveProbMapDir returns the root of the segmentations directory. If probMapDir is AutoDir the
// segmentations are downloaded to <DatasetRoot>/cub, if not there yet.
func ResolveProbMapDir(probMapDir string) (string, error) {
	return resolveDir(probMapDir, ProbMapArchiveURL, ProbMapArchive, ProbMapArchiveDir)
}
