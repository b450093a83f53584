package dedup

import "errors"

// Sentinel errors for package dedup.
var (
	// Setup errors abort a run before any file is touched.
	ErrInvalidQuality = errors.New("quality must be between 0 and 100")
	ErrSameDirectory  = errors.New("output directory must differ from input directory")

	// Per-file errors are logged and counted; the run continues.
	ErrUnsupportedImage = errors.New("not a supported image format")
	ErrCorruptImage     = errors.New("image could not be decoded")
	ErrEncode           = errors.New("webp encoding failed")
)
