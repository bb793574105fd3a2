// Package assets scans static build output, content-hashes it, and diffs the
// result against the previously uploaded state so a deployment only uploads
// changed objects and invalidates changed paths.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/alitto/pond"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

type (
	// Asset is one file discovered under a copy directive's source directory.
	Asset struct {
		// Path is the absolute path on disk.
		Path string
		// Rel is the path relative to the scan root, always with forward
		// slashes; it becomes the object key suffix.
		Rel string
		// Hash is the hex sha256 of the file contents.
		Hash string
		Size int64
	}

	// Manifest maps relative asset path to content hash. It is persisted
	// between deployments to drive the upload diff.
	Manifest map[string]string
)

const (
	hashWorkers  = 8
	hashPoolSize = 1024
)

// Scan walks dir and returns the matching files with their content hashes.
// include and exclude are doublestar patterns relative to dir; an empty
// include list matches everything. Hashing runs on a bounded worker pool;
// each file is independent so no ordering is guaranteed or needed.
func Scan(dir string, include []string, exclude []string) ([]Asset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "scanning asset directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("asset path %s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matches(rel, include, true) && !matches(rel, exclude, false) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking asset directory %s", dir)
	}
	sort.Strings(paths)

	assets := make([]Asset, len(paths))
	pool := pond.New(hashWorkers, hashPoolSize)
	var mu sync.Mutex
	var firstErr error
	for i, rel := range paths {
		i, rel := i, rel
		pool.Submit(func() {
			asset, err := hashFile(dir, rel)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			assets[i] = asset
		})
	}
	pool.StopAndWait()
	if firstErr != nil {
		return nil, firstErr
	}
	return assets, nil
}

func hashFile(dir string, rel string) (Asset, error) {
	path := filepath.Join(dir, filepath.FromSlash(rel))
	f, err := os.Open(path)
	if err != nil {
		return Asset{}, errors.Wrapf(err, "opening asset %s", rel)
	}
	defer f.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, f)
	if err != nil {
		return Asset{}, errors.Wrapf(err, "hashing asset %s", rel)
	}
	return Asset{
		Path: path,
		Rel:  rel,
		Hash: hex.EncodeToString(hasher.Sum(nil)),
		Size: size,
	}, nil
}

func matches(rel string, patterns []string, emptyMatches bool) bool {
	if len(patterns) == 0 {
		return emptyMatches
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ToManifest collapses scanned assets into their manifest form.
func ToManifest(assets []Asset) Manifest {
	m := make(Manifest, len(assets))
	for _, a := range assets {
		m[a.Rel] = a.Hash
	}
	return m
}

// Diff compares the previous manifest with the current one. changed holds
// keys that are new or whose hash differs; removed holds keys no longer
// present. Both are sorted.
func Diff(previous Manifest, current Manifest) (changed []string, removed []string) {
	for rel, hash := range current {
		if previous[rel] != hash {
			changed = append(changed, rel)
		}
	}
	for rel := range previous {
		if _, ok := current[rel]; !ok {
			removed = append(removed, rel)
		}
	}
	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}
