package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/dendrascience/imgdedup/util"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errVerifyFailed = errors.New("output directory has problems")

// NewVerifyCmd creates and returns the verify subcommand for the imgdedup CLI.
// It checks an output directory for stray files and undecodable artifacts.
func NewVerifyCmd() *cobra.Command {
	var (
		outputPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "verify [PATH]",
		Short: "Check an output directory for stray or corrupt artifacts",
		Long: `Check that an output directory only holds well-formed artifacts.

Every entry must be named <digest>.webp with a 64 character lowercase hex
digest. Zero-length markers are accepted as is; every other artifact must
decode as WebP. Temporary files left by an interrupted run and anything
else in the directory are reported. Exits with status 1 when problems are
found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				outputPath = args[0]
			}
			if outputPath == "" {
				return errors.New("an output directory is required (--path or argument)")
			}
			report, err := verifyDir(outputPath, verbose, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			report.print(cmd.OutOrStdout())
			if len(report.Problems) > 0 {
				return fmt.Errorf("%w: %d found", errVerifyFailed, len(report.Problems))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "path", "p", "", "Output directory to verify")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every artifact as it is checked")

	return cmd
}

type verifyReport struct {
	Encoded  int
	Markers  int
	Bytes    int64
	Problems []string
}

func (r *verifyReport) problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

func (r verifyReport) print(w io.Writer) {
	fmt.Fprintf(w, "\nVerification complete:\n")
	fmt.Fprintf(w, "  Artifacts checked: %d (encoded %d, markers %d)\n", r.Encoded+r.Markers, r.Encoded, r.Markers)
	fmt.Fprintf(w, "  Encoded size: %s\n", humanize.Bytes(uint64(r.Bytes)))
	fmt.Fprintf(w, "  Problems: %d\n", len(r.Problems))
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}

// verifyDir inspects the direct children of dir. It only returns an error
// when dir itself cannot be read.
func verifyDir(dir string, verbose bool, w io.Writer) (verifyReport, error) {
	var report verifyReport

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("read output directory: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(dir, name)

		switch {
		case e.IsDir():
			report.problem("%s: unexpected directory", name)
			continue
		case util.IsTempPath(name):
			report.problem("%s: leftover temporary file", name)
			continue
		}
		if _, err := util.HashFromArtifactPath(name); err != nil {
			report.problem("%s: %v", name, err)
			continue
		}

		state, size, err := util.StatArtifact(path)
		if err != nil {
			report.problem("%s: %v", name, err)
			continue
		}
		if state == util.ArtifactMarker {
			report.Markers++
			if verbose {
				fmt.Fprintf(w, "%s: marker\n", name)
			}
			continue
		}

		if err := checkWebP(path); err != nil {
			report.problem("%s: %v", name, err)
			continue
		}
		report.Encoded++
		report.Bytes += size
		if verbose {
			fmt.Fprintf(w, "%s: ok (%d bytes)\n", name, size)
		}
	}
	return report, nil
}

func checkWebP(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := webp.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("not a valid WebP image: %w", err)
	}
	return nil
}
