// Package util provides core utilities for imgdedup.
//
// This package contains the low-level building blocks the conversion pipeline
// is assembled from: content hashing, artifact naming, atomic artifact writes,
// directory walking and digest grouping. None of it knows about image codecs.
//
// Key Components:
//
// Content Hashing:
//   - BLAKE3-256 digests rendered as 64 lowercase hex characters
//   - Hashing from readers, byte slices and files
//
// Artifact Store:
//   - Flat <digest>.webp naming inside the output directory
//   - Parsing and validation of artifact names
//   - Temp-file-and-rename writes so a half written artifact is never visible
//
// Directory Walking:
//   - Regular files only; symlinks and special files are reported, not followed
//   - Optional pruning of a nested output directory
//
// Digest Tables:
//   - DigestTable groups file records by digest for duplicate reporting
//
// The package is safe for concurrent use; nothing in it holds global state.
package util
