// Package dedup implements the imgdedup conversion pipeline.
//
// Run walks an input tree and, for every regular file, reads it, hashes it
// and resolves its digest to an artifact in the output directory:
//
//   - <digest>.webp with content: a previous conversion succeeded
//   - <digest>.webp with zero length: WebP was not smaller; the source size
//     counts as the output size
//   - absent: decode, convert grayscale to RGBA, encode at the configured
//     quality and store the result (or a marker) atomically
//
// Conversions are coalesced per digest, so byte-identical files anywhere in
// the tree are decoded and encoded at most once per run, and never again in
// later runs. Files that are not images are skipped; files that fail to read,
// decode or encode are logged and counted without stopping the run.
//
// Stats accumulates the original and output byte totals across workers and
// Summarize turns them into the Summary printed at the end of a run.
package dedup
