// Package config holds the exporter configuration. A Config value is
// loaded once in main and passed explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dackerman/trello-checklists-export/internal/trello"
)

// DefaultConfigFile is read from the working directory when no file is named
const DefaultConfigFile = "trello_config.yaml"

// Config holds the unified application configuration
type Config struct {
	Trello TrelloConfig `koanf:"trello"`
	Boards BoardsConfig `koanf:"boards"`
	Files  FilesConfig  `koanf:"files"`
	Log    LogConfig    `koanf:"log"`
}

// TrelloConfig holds API credentials and client settings
type TrelloConfig struct {
	Key           string        `koanf:"key"`
	Token         string        `koanf:"token"`
	BaseURL       string        `koanf:"base_url"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Timeout       time.Duration `koanf:"timeout"`
}

// BoardsConfig lists the boards to export
type BoardsConfig struct {
	BoardKeys []string `koanf:"board_keys"`
}

// FilesConfig controls where artifacts are written
type FilesConfig struct {
	OutputDir string `koanf:"output_dir"`
}

// LogConfig controls logger construction
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Overrides holds values given on the command line
type Overrides struct {
	BoardIDs  []string
	OutputDir string
	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Trello: TrelloConfig{
			BaseURL:       trello.BaseURL,
			RatePerSecond: trello.DefaultRatePerSecond,
			Timeout:       30 * time.Second,
		},
		Files: FilesConfig{OutputDir: "."},
		Log:   LogConfig{Level: "info", Format: "console"},
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Trello.BaseURL == "" {
		cfg.Trello.BaseURL = def.Trello.BaseURL
	}
	if cfg.Trello.Timeout == 0 {
		cfg.Trello.Timeout = def.Trello.Timeout
	}
	if cfg.Files.OutputDir == "" {
		cfg.Files.OutputDir = def.Files.OutputDir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// Apply lets command line values take priority over file and environment
func (c *Config) Apply(o Overrides) {
	if len(o.BoardIDs) > 0 {
		c.Boards.BoardKeys = o.BoardIDs
	}
	if o.OutputDir != "" {
		c.Files.OutputDir = o.OutputDir
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Log.Format = o.LogFormat
	}
}

// Validate checks the settings needed to process boards
func (c *Config) Validate() error {
	if c.Files.OutputDir == "" {
		return errors.New("files.output_dir is required")
	}
	return nil
}

// ValidateFetch checks the settings needed to call the Trello API
func (c *Config) ValidateFetch() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errs []error
	if c.Trello.Key == "" {
		errs = append(errs, errors.New("trello.key is required"))
	}
	if c.Trello.Token == "" {
		errs = append(errs, errors.New("trello.token is required"))
	}
	if c.Trello.RatePerSecond < 0 {
		errs = append(errs, fmt.Errorf("trello.rate_per_second must not be negative, got %v", c.Trello.RatePerSecond))
	}
	if len(c.Boards.BoardKeys) == 0 {
		errs = append(errs, errors.New("no boards given: set boards.board_keys or pass board ids"))
	}
	return errors.Join(errs...)
}
