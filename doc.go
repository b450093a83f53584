// Package main provides the imgdedup command-line interface.
//
// imgdedup converts a directory tree of images into a flat, content-addressed
// store of WebP files. Every file is hashed with BLAKE3; each distinct digest
// is decoded and re-encoded once, no matter how many copies of it the tree
// holds. The result is written as <digest>.webp, or as a zero-length marker
// when WebP would not be smaller, so later runs skip it without decoding.
//
// The main binary supports multiple subcommands:
//   - (root): Convert --input into --output and print byte statistics
//   - scan: Report duplicate files in a tree without converting
//   - verify: Check an output directory for stray or corrupt artifacts
//   - seed: Generate a tree of test images
//   - version: Print build information
package main
