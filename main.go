package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dackerman/trello-checklists-export/internal/config"
	"github.com/dackerman/trello-checklists-export/internal/export"
	"github.com/dackerman/trello-checklists-export/internal/logging"
	"github.com/dackerman/trello-checklists-export/internal/output"
	"github.com/dackerman/trello-checklists-export/internal/trello"
	"github.com/dackerman/trello-checklists-export/internal/ui"
)

var errBoardsFailed = errors.New("one or more boards failed")

var (
	version = "dev"

	configFile string
	logLevel   string
	logFormat  string
	outputDir  string

	authScope      string
	authExpiration string
	authAppName    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trello-checklists-export",
	Short: "Export Trello board checklists as JSON and CSV",
	Long: `trello-checklists-export downloads Trello boards and reshapes their
checklists into a list -> card -> checklist tree and a flat CSV table with
one row per card and one column pair per checklist item.`,
	Version:      version,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export [board ids...]",
	Short: "Fetch boards from Trello and write the export files",
	Long: `Fetch each board from the Trello API and write, under <output_dir>/<board id>/:
  trello_<name>.<stamp>.json             the raw board dump
  trello_<name>.checklists.<stamp>.json  the checklist tree
  trello_<name>.checklists.<stamp>.csv   the flat table
  trello_<name>.fields.<stamp>.json      plugin fields per card

Board ids default to boards.board_keys from the config file or TRELLO_BOARDS.

Examples:
  # Export the boards listed in trello_config.yaml
  trello-checklists-export export

  # Export two boards into ./out
  trello-checklists-export export abc123 def456 --output-dir out`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		if err := cfg.ValidateFetch(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return runExport(cmd.Context(), newClient(cfg), cfg, logger, cmd.OutOrStdout())
	},
}

var processCmd = &cobra.Command{
	Use:   "process <board dump.json>",
	Short: "Process a board dump that was already downloaded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return runProcess(args[0], cfg, logger, cmd.OutOrStdout())
	},
}

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Print the URL that issues an API token for the configured key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		if cfg.Trello.Key == "" {
			return errors.New("trello.key is required")
		}

		ui.DisplayAuthorize(cmd.OutOrStdout(), trello.AuthorizeURL(cfg.Trello.Key, authAppName, authScope, authExpiration))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file (default "+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")

	exportCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for export files")
	processCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for export files")

	authorizeCmd.Flags().StringVar(&authScope, "scope", "read", "token scope")
	authorizeCmd.Flags().StringVar(&authExpiration, "expiration", "1day", "token expiration")
	authorizeCmd.Flags().StringVar(&authAppName, "name", "trello-checklists-export", "application name shown to the user")

	rootCmd.AddCommand(exportCmd, processCmd, authorizeCmd)
}

// loadConfig reads file and environment settings, then applies flags
func loadConfig(boardIDs []string) (*config.Config, error) {
	cfg, err := config.LoadConfiguration(configFile)
	if err != nil {
		return nil, err
	}
	cfg.Apply(config.Overrides{
		BoardIDs:  boardIDs,
		OutputDir: outputDir,
		LogLevel:  logLevel,
		LogFormat: logFormat,
	})
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("run_id", uuid.NewString())), nil
}

func newClient(cfg *config.Config) *trello.Client {
	client := trello.NewClient(cfg.Trello.Key, cfg.Trello.Token)
	client.BaseURL = cfg.Trello.BaseURL
	client.Client = &http.Client{Timeout: cfg.Trello.Timeout}
	if cfg.Trello.RatePerSecond > 0 {
		client.Limiter = rate.NewLimiter(rate.Limit(cfg.Trello.RatePerSecond), trello.DefaultBurst)
	}
	return client
}

// runExport exports every configured board and reports the outcome of each
func runExport(ctx context.Context, api trello.API, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	exporter := &export.Exporter{
		API:    api,
		Writer: output.NewWriter(cfg.Files.OutputDir),
		Logger: logger,
	}

	logger.Info("Starting export", zap.Strings("boards", cfg.Boards.BoardKeys), zap.String("output_dir", cfg.Files.OutputDir))
	results := exporter.Run(ctx, cfg.Boards.BoardKeys)
	ui.DisplayResults(out, results)

	if export.Failed(results) > 0 {
		return errBoardsFailed
	}
	return nil
}

// runProcess processes a board dump from disk
func runProcess(path string, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	exporter := &export.Exporter{
		Writer: output.NewWriter(cfg.Files.OutputDir),
		Logger: logger,
	}

	result := exporter.ProcessFile(path)
	ui.DisplayResults(out, []export.BoardResult{result})

	if !result.OK() {
		return errBoardsFailed
	}
	return nil
}
