package cmd

import (
	"github.com/dendrascience/imgdedup/internal/config"
	"github.com/dendrascience/imgdedup/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the imgdedup CLI.
// Running it without a subcommand converts --input into --output.
func NewRootCmd() *cobra.Command {
	var f convertFlags

	rootCmd := &cobra.Command{
		Use:   "imgdedup",
		Short: "imgdedup - Convert a directory tree of images to content-addressed WebP",
		Long: `imgdedup walks a directory tree, hashes every file and converts each unique
image to WebP exactly once.

Artifacts are written flat into the output directory as <digest>.webp, where
digest is the BLAKE3-256 hash of the source bytes. When the WebP encoding is
not smaller than the source, a zero-length marker is written instead so the
image is never retried. Re-running over the same tree does no work.

Settings are layered: built-in defaults, then --config, then IMGDEDUP_*
environment variables, then flags given on the command line.

Use subcommands for related tasks:
  - scan: Hash a tree and report duplicates without writing anything
  - verify: Check an output directory for stray or corrupt artifacts
  - seed: Generate a tree of test images
  - version: Print detailed version information`,
		Version: version.GetFullVersion(),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, f)
		},
	}

	rootCmd.Flags().StringVarP(&f.input, "input", "i", "", "Directory to scan for images")
	rootCmd.Flags().StringVarP(&f.output, "output", "o", "", "Directory receiving <digest>.webp artifacts")
	rootCmd.Flags().IntVarP(&f.quality, "quality", "q", config.DefaultQuality, "WebP quality, 0-100")
	rootCmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Files processed concurrently (default number of CPUs)")
	rootCmd.Flags().BoolVar(&f.progress, "progress", false, "Show a progress bar instead of per-file lines")
	rootCmd.Flags().StringVar(&f.summary, "summary", "", "Also write the statistics as JSON to this file")
	rootCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")

	groupUtilities := "utilities"
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	scanCmd := NewScanCmd()
	verifyCmd := NewVerifyCmd()
	seedCmd := NewSeedCmd()
	versionCmd := NewVersionCmd()

	scanCmd.GroupID = groupUtilities
	verifyCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	versionCmd.GroupID = groupUtilities

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// NewVersionCmd prints the full build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version, commit and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version.PrintVersion(cmd.OutOrStdout(), "imgdedup")
		},
	}
}
