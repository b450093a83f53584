package dedup

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Decode parses raw as any registered image format: JPEG, PNG, GIF, BMP,
// TIFF or WebP. It returns the image and the format name.
// Unknown formats wrap ErrUnsupportedImage; anything else wraps ErrCorruptImage.
func Decode(raw []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if errors.Is(err, image.ErrFormat) {
		return nil, "", ErrUnsupportedImage
	}
	if err != nil {
		return nil, format, fmt.Errorf("%w: %s: %v", ErrCorruptImage, format, err)
	}
	return img, format, nil
}

// Normalize converts grayscale images to RGBA so the encoder always sees a
// full-colour source. Every other image is returned unchanged.
func Normalize(img image.Image) image.Image {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		b := img.Bounds()
		dst := image.NewRGBA(b)
		draw.Draw(dst, b, img, b.Min, draw.Src)
		return dst
	default:
		return img
	}
}

// Encode compresses img as lossy WebP at quality 0-100.
func Encode(img image.Image, quality int) ([]byte, error) {
	if quality < 0 || quality > 100 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Convert runs decode, normalize and encode over raw.
func Convert(raw []byte, quality int) ([]byte, error) {
	img, _, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Encode(Normalize(img), quality)
}

// worthKeeping reports whether the encoded form should be stored instead of
// a marker. Equal sizes are declined.
func worthKeeping(encoded, original int) bool {
	return encoded < original
}
