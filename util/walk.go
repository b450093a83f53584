package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// WalkFunc is called once per regular file found by WalkFiles.
// Returning a non-nil error stops the walk and is returned by WalkFiles.
type WalkFunc func(path string, d fs.DirEntry) error

// ErrorFunc receives entries the walker could not read. The walk continues.
type ErrorFunc func(path string, err error)

// WalkFiles walks root in lexical order and calls fn for every regular file.
// Directories whose cleaned path appears in prune are skipped entirely.
// Symlinks are not followed; they are reported to onErr wrapped with
// ErrUnexpectedSymlink. Unreadable directories are reported to onErr and
// skipped. root itself must be an existing directory.
func WalkFiles(root string, prune []string, fn WalkFunc, onErr ErrorFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrExpectedDirectory
	}
	if onErr == nil {
		onErr = func(string, error) {}
	}

	pruned := make(map[string]bool, len(prune))
	for _, p := range prune {
		pruned[cleanAbs(p)] = true
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			onErr(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && pruned[cleanAbs(path)] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			onErr(path, errors.Join(ErrUnexpectedSymlink, fmt.Errorf("skipping unsupported symlink %s", path)))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(path, d)
	})
}

// PathWithin reports whether path is dir or lies below it, respecting path
// boundaries ("/a/bc" is not within "/a/b"). Relative paths are resolved
// against the working directory first.
func PathWithin(path, dir string) bool {
	path = cleanAbs(path)
	dir = cleanAbs(dir)
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

func cleanAbs(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
