package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

// NewSeedCmd creates and returns the seed subcommand for the imgdedup CLI.
// It generates a tree of PNG images, some of them byte-identical copies.
func NewSeedCmd() *cobra.Command {
	var (
		opts    seedOptions
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a tree of test images",
		Long: `Generate a tree of PNG test images for exercising imgdedup.

Creates files in a YYYY/MM/DD directory structure. Each image is a grid of
random colour blocks. A share of the files are byte-identical copies of
earlier ones, a share are grayscale and a share are plain text files that
the converter should skip.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = io.Discard
			if verbose {
				w = cmd.OutOrStdout()
			}
			report, err := runSeed(opts, w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d files (%d unique images, %d copies, %d text) in %d directories\n",
				report.Files, report.Unique, report.Copies, report.Text, report.Dirs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 200, "Number of files to generate")
	cmd.Flags().IntVarP(&opts.size, "size", "s", 128, "Edge length of generated images in pixels")
	cmd.Flags().Float64Var(&opts.duplicates, "duplicates", 0.3, "Share of files that copy an earlier image")
	cmd.Flags().Float64Var(&opts.gray, "gray", 0.1, "Share of new images that are grayscale")
	cmd.Flags().Float64Var(&opts.text, "text", 0.05, "Share of files that are not images")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (default time based)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

type seedOptions struct {
	output     string
	count      int
	size       int
	duplicates float64
	gray       float64
	text       float64
	seed       uint64
}

type seedReport struct {
	Files  int
	Unique int
	Copies int
	Text   int
	Dirs   int
}

func (o seedOptions) validate() error {
	var errs []error
	if o.output == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if o.count < 0 {
		errs = append(errs, fmt.Errorf("count must not be negative, got %d", o.count))
	}
	if o.size < 1 {
		errs = append(errs, fmt.Errorf("size must be positive, got %d", o.size))
	}
	for name, v := range map[string]float64{"duplicates": o.duplicates, "gray": o.gray, "text": o.text} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %g", name, v))
		}
	}
	return errors.Join(errs...)
}

func runSeed(opts seedOptions, w io.Writer) (seedReport, error) {
	var report seedReport
	if err := opts.validate(); err != nil {
		return report, err
	}
	if opts.seed == 0 {
		opts.seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	fmt.Fprintf(w, "Generating %d test files in %s (seed %d)\n", opts.count, opts.output, opts.seed)
	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}

	var pool [][]byte
	dirs := make(map[string]bool)
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for report.Files < opts.count {
		day := baseTime.AddDate(0, 0, rng.IntN(365))
		dir := filepath.Join(opts.output,
			fmt.Sprintf("%04d", day.Year()),
			fmt.Sprintf("%02d", day.Month()),
			fmt.Sprintf("%02d", day.Day()))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return report, fmt.Errorf("create %s: %w", dir, err)
		}
		dirs[dir] = true

		var (
			data []byte
			ext  = ".png"
		)
		switch r := rng.Float64(); {
		case r < opts.text:
			data, ext = []byte(uuid.NewString()+"\n"), ".txt"
			report.Text++
		case r < opts.text+opts.duplicates && len(pool) > 0:
			data = pool[rng.IntN(len(pool))]
			report.Copies++
		default:
			img := blockImage(rng, opts.size, rng.Float64() < opts.gray)
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return report, fmt.Errorf("encode image: %w", err)
			}
			data = buf.Bytes()
			pool = append(pool, data)
			report.Unique++
		}

		path := filepath.Join(dir, uuid.NewString()[:8]+ext)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return report, fmt.Errorf("write %s: %w", path, err)
		}
		report.Files++

		if report.Files%100 == 0 {
			fmt.Fprintf(w, "Created %d/%d files...\n", report.Files, opts.count)
		}
	}

	report.Dirs = len(dirs)
	return report, nil
}

// blockImage paints a grid of random colour blocks.
func blockImage(rng *rand.Rand, size int, gray bool) image.Image {
	const grid = 8
	block := max(size/grid, 1)
	rect := image.Rect(0, 0, size, size)

	var img draw.Image
	if gray {
		img = image.NewGray(rect)
	} else {
		img = image.NewRGBA(rect)
	}
	for y0 := 0; y0 < size; y0 += block {
		for x0 := 0; x0 < size; x0 += block {
			var c color.Color
			if gray {
				c = color.Gray{Y: uint8(rng.IntN(256))}
			} else {
				c = color.RGBA{R: uint8(rng.IntN(256)), G: uint8(rng.IntN(256)), B: uint8(rng.IntN(256)), A: 255}
			}
			r := image.Rect(x0, y0, x0+block, y0+block).Intersect(rect)
			draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	return img
}
