package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dendrascience/imgdedup/dedup"
	"github.com/dendrascience/imgdedup/internal/config"
	"github.com/dendrascience/imgdedup/internal/logging"
	"github.com/dendrascience/imgdedup/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type convertFlags struct {
	configPath string
	input      string
	output     string
	quality    int
	workers    int
	progress   bool
	summary    string
}

// loadConfig layers explicitly set flags over the file and environment.
func loadConfig(cmd *cobra.Command, f convertFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("input") {
		cfg.Input = f.input
	}
	if fl.Changed("output") {
		cfg.Output = f.output
	}
	if fl.Changed("quality") {
		cfg.SetQuality(f.quality)
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("progress") {
		cfg.Progress = f.progress
	}
	if fl.Changed("summary") {
		cfg.Summary = f.summary
	}
	if fl.Changed("log-level") {
		cfg.LogLevel, _ = fl.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, f convertFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	opts := dedup.Options{
		Input:   cfg.Input,
		Output:  cfg.Output,
		Quality: cfg.QualityValue(),
		Workers: cfg.Workers,
		Logger:  logger,
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = newProgressBar(cmd.ErrOrStderr())
		opts.OnFile = func(dedup.Result) { _ = bar.Add(1) }
	} else {
		opts.Progress = out
	}

	logger.Debug("starting conversion",
		zap.String("input", opts.Input),
		zap.String("output", opts.Output),
		zap.Int("quality", opts.Quality),
		zap.Int("workers", opts.Workers))

	sum, runErr := dedup.Run(ctx, opts)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		return runErr
	}
	if interrupted {
		logger.Warn("interrupted, statistics cover the files finished so far")
	}

	sum.Report(out)
	if cfg.Summary != "" {
		if err := util.WriteJSONFile(cfg.Summary, sum); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return runErr
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Converting images"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "#",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
