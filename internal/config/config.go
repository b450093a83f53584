// Package config loads imgdedup settings from defaults, an optional YAML
// file and IMGDEDUP_* environment variables. Command-line flags are layered
// on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dendrascience/imgdedup/internal/logging"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "IMGDEDUP"

// DefaultQuality matches the libwebp command line default.
const DefaultQuality = 75

var (
	ErrMissingInput   = errors.New("input directory is required")
	ErrMissingOutput  = errors.New("output directory is required")
	ErrInvalidQuality = errors.New("quality must be between 0 and 100")
	ErrInvalidWorkers = errors.New("workers must not be negative")
	ErrInvalidLevel   = errors.New("log level must be one of debug, info, warn, error")
)

// Config holds every setting the convert pipeline needs.
// Zero values are replaced by applyDefaults; Workers of zero means one
// worker per CPU.
type Config struct {
	Input    string `yaml:"input"     envconfig:"INPUT"`
	Output   string `yaml:"output"    envconfig:"OUTPUT"`
	Quality  *int   `yaml:"quality"   envconfig:"QUALITY"`
	Workers  int    `yaml:"workers"   envconfig:"WORKERS"`
	Progress bool   `yaml:"progress"  envconfig:"PROGRESS"`
	Summary  string `yaml:"summary"   envconfig:"SUMMARY"`
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// applyDefaults fills zero/empty fields with sensible defaults.
// Quality is a pointer so an explicit 0 survives.
func (c *Config) applyDefaults() {
	if c.Quality == nil {
		q := DefaultQuality
		c.Quality = &q
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load builds a Config from the YAML file at path (skipped when path is
// empty), then overlays IMGDEDUP_* environment variables, then applies
// defaults. Unknown YAML keys are rejected.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("read %s_* environment: %w", EnvPrefix, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

// QualityValue returns the configured quality, or DefaultQuality when unset.
func (c *Config) QualityValue() int {
	if c.Quality == nil {
		return DefaultQuality
	}
	return *c.Quality
}

// SetQuality overrides the configured quality.
func (c *Config) SetQuality(q int) {
	c.Quality = &q
}

// Validate checks that the configuration can drive a run.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Input) == "" {
		errs = append(errs, ErrMissingInput)
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, ErrMissingOutput)
	}
	if q := c.QualityValue(); q < 0 || q > 100 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidQuality, q))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidLevel, c.LogLevel))
	}
	return errors.Join(errs...)
}
