package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TempPrefix and TempSuffix bracket the names of in-flight artifact writes.
const (
	TempPrefix = "."
	TempSuffix = ".tmp"
)

// ArtifactState describes what, if anything, is stored at an artifact path.
type ArtifactState int

const (
	// ArtifactMissing means the digest has not been processed yet.
	ArtifactMissing ArtifactState = iota
	// ArtifactMarker is a zero-length file: conversion was declined.
	ArtifactMarker
	// ArtifactEncoded holds encoded image bytes.
	ArtifactEncoded
)

func (s ArtifactState) String() string {
	switch s {
	case ArtifactMissing:
		return "missing"
	case ArtifactMarker:
		return "marker"
	case ArtifactEncoded:
		return "encoded"
	default:
		return fmt.Sprintf("ArtifactState(%d)", int(s))
	}
}

// StatArtifact reports the state and size of the artifact at path.
// A missing artifact is not an error.
func StatArtifact(path string) (ArtifactState, int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return ArtifactMissing, 0, nil
	}
	if err != nil {
		return ArtifactMissing, 0, err
	}
	if info.IsDir() {
		return ArtifactMissing, 0, ErrExpectedFile
	}
	if info.Size() == 0 {
		return ArtifactMarker, 0, nil
	}
	return ArtifactEncoded, info.Size(), nil
}

// TempPathFor returns a unique temporary sibling of path.
func TempPathFor(path string) string {
	return filepath.Join(filepath.Dir(path), TempPrefix+uuid.NewString()+TempSuffix)
}

// IsTempPath reports whether path names an in-flight write left by WriteFileAtomic.
func IsTempPath(path string) bool {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, TempPrefix) || !strings.HasSuffix(base, TempSuffix) {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(strings.TrimPrefix(base, TempPrefix), TempSuffix))
	return err == nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place. An empty data slice produces a zero-length marker file.
// Readers never observe a partially written artifact.
func WriteFileAtomic(path string, data []byte) (err error) {
	tmp := TempPathFor(path)
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
