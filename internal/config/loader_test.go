package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dackerman/trello-checklists-export/internal/trello"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigurationFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
trello:
  key: file-key
  token: file-token
  rate_per_second: 5
  timeout: 10s
boards:
  board_keys:
    - abc
    - def
files:
  output_dir: /tmp/out
log:
  level: debug
  format: json
`)

	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Trello.Key)
	assert.Equal(t, "file-token", cfg.Trello.Token)
	assert.Equal(t, trello.BaseURL, cfg.Trello.BaseURL)
	assert.Equal(t, 5.0, cfg.Trello.RatePerSecond)
	assert.Equal(t, 10*time.Second, cfg.Trello.Timeout)
	assert.Equal(t, []string{"abc", "def"}, cfg.Boards.BoardKeys)
	assert.Equal(t, "/tmp/out", cfg.Files.OutputDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.ValidateFetch())
}

func TestLoadConfigurationCommaSeparatedBoards(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "boards:\n  board_keys: \"abc, def,,ghi\"\n")

	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def", "ghi"}, cfg.Boards.BoardKeys)
}

func TestLoadConfigurationEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "trello:\n  key: file-key\n  token: file-token\nfiles:\n  output_dir: from-file\n")

	t.Setenv("TRELLO_TOKEN", "env-token")
	t.Setenv("TRELLO_BOARDS", "one,two")
	t.Setenv("TRELLO_OUTPUT_DIR", "from-env")
	t.Setenv("TRELLO_UNRELATED", "ignored")

	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Trello.Key)
	assert.Equal(t, "env-token", cfg.Trello.Token)
	assert.Equal(t, []string{"one", "two"}, cfg.Boards.BoardKeys)
	assert.Equal(t, "from-env", cfg.Files.OutputDir)
}

func TestLoadConfigurationDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfiguration("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigurationExplicitFileMustExist(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigurationRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "trello: [unclosed\n")
	_, err := LoadConfiguration(path)
	assert.Error(t, err)
}

func TestLoadConfigurationRejectsLargeFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "big.yaml")
	require.NoError(t, os.WriteFile(path, make([]byte, maxConfigFileSize+1), 0600))

	_, err := LoadConfiguration(path)
	assert.ErrorContains(t, err, "too large")
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.Boards.BoardKeys = []string{"from-config"}

	cfg.Apply(Overrides{})
	assert.Equal(t, []string{"from-config"}, cfg.Boards.BoardKeys)

	cfg.Apply(Overrides{BoardIDs: []string{"cli"}, OutputDir: "out", LogLevel: "warn", LogFormat: "json"})
	assert.Equal(t, []string{"cli"}, cfg.Boards.BoardKeys)
	assert.Equal(t, "out", cfg.Files.OutputDir)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidateFetch(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateFetch()
	require.Error(t, err)
	assert.ErrorContains(t, err, "trello.key")
	assert.ErrorContains(t, err, "trello.token")
	assert.ErrorContains(t, err, "no boards")

	cfg.Trello.Key = "k"
	cfg.Trello.Token = "t"
	cfg.Boards.BoardKeys = []string{"b"}
	assert.NoError(t, cfg.ValidateFetch())

	cfg.Files.OutputDir = ""
	assert.Error(t, cfg.Validate())
	assert.Error(t, cfg.ValidateFetch())
}

func TestParseCommaSeparated(t *testing.T) {
	assert.Nil(t, ParseCommaSeparated(""))
	assert.Equal(t, []string{"a", "b"}, ParseCommaSeparated(" a , b ,"))
}
