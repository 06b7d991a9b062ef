package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// envKeys maps the supported environment variables to config keys
var envKeys = map[string]string{
	"TRELLO_KEY":             "trello.key",
	"TRELLO_TOKEN":           "trello.token",
	"TRELLO_BASE_URL":        "trello.base_url",
	"TRELLO_RATE_PER_SECOND": "trello.rate_per_second",
	"TRELLO_TIMEOUT":         "trello.timeout",
	"TRELLO_BOARDS":          "boards.board_keys",
	"TRELLO_OUTPUT_DIR":      "files.output_dir",
	"TRELLO_LOG_LEVEL":       "log.level",
	"TRELLO_LOG_FORMAT":      "log.format",
}

// LoadConfiguration loads configuration from a YAML file, then overrides
// it with TRELLO_* environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (TRELLO_KEY, TRELLO_TOKEN, TRELLO_BOARDS, ...)
//  2. YAML config file
//  3. Defaults
//
// An empty configFile means DefaultConfigFile in the working directory,
// which may be absent. An explicitly named file must exist.
func LoadConfiguration(configFile string) (*Config, error) {
	k := koanf.New(".")

	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}

	content, err := readConfigFile(configFile)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file; defaults and environment only
	default:
		return nil, err
	}

	if err := k.Load(env.Provider("TRELLO_", ".", func(s string) string {
		// unknown variables are ignored
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Boards.BoardKeys = ParseCommaSeparated(strings.Join(cfg.Boards.BoardKeys, ","))
	applyDefaults(cfg)

	return cfg, nil
}

// readConfigFile reads a config file, rejecting anything implausibly large
func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s too large: %d bytes (max %d)", path, info.Size(), maxConfigFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// ParseCommaSeparated splits a comma-separated string into a slice
func ParseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
