package dedup

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/dendrascience/imgdedup/util"
)

// gradient returns a smooth RGBA image; seed shifts the colours so different
// seeds give different bytes.
func gradient(w, h int, seed uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x*255/w) + seed,
				G: uint8(y*255/h) + seed,
				B: uint8((x+y)*127/(w+h)) + seed,
				A: 255,
			})
		}
	}
	return img
}

func grayGradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) * 255 / (w + h))})
		}
	}
	return img
}

// binaryNoise returns a two-colour paletted image of random pixels. PNG
// stores it at one bit per pixel while a lossy encoder has to spend far more
// on the full-amplitude noise.
func binaryNoise(w, h int, seed uint64) *image.Paletted {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(2))
	}
	return img
}

func encodePNGBest(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// encodePNG stores img without compression so any WebP encoding is smaller.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// listArtifacts returns base name -> size for every entry in dir.
func listArtifacts(t *testing.T, dir string) map[string]int64 {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]int64, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			t.Fatal(err)
		}
		out[e.Name()] = info.Size()
	}
	return out
}

func artifactNames(m map[string]int64) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// countedSize is what a file of size original contributes to the output
// total given the artifact that was stored for it.
func countedSize(original, artifactSize int64) int64 {
	if artifactSize == 0 {
		return original
	}
	return artifactSize
}

func artifactName(raw []byte) string {
	return util.HashBytes(raw) + util.ArtifactExt
}
