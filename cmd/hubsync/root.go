package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnwards/hubsync/internal/config"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/migrate"
	"github.com/johnwards/hubsync/internal/report"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "hubsync",
	Short:         "Migrate HubSpot CRM data from production to a sandbox portal",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to hubsync.yaml (default: ./hubsync.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// env carries everything a subcommand needs: both portal clients, the
// report store, and migration options derived from config.
type env struct {
	cfg    *config.Config
	source *hubspot.Client
	dest   *hubspot.Client
	store  report.Store
	opts   migrate.Options
}

func buildEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel == "" && cfg.LogLevel != "" {
		setupLogging(cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	var clientOpts []hubspot.Option
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, hubspot.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		clientOpts = append(clientOpts, hubspot.WithMaxRetries(cfg.MaxRetries))
	}

	store, err := report.NewFileStore(cfg.ReportsDir)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		source: hubspot.New(cfg.ProductionToken, clientOpts...),
		dest:   hubspot.New(cfg.SandboxToken, clientOpts...),
		store:  store,
		opts: migrate.Options{
			Limit:                    cfg.ContactLimit,
			BatchSize:                cfg.BatchSize,
			RateLimitDelay:           cfg.RateLimitDelay,
			IndexingDelay:            cfg.IndexingDelay,
			SkipContactsWithoutEmail: cfg.SkipContactsWithoutEmail,
			SimilarityThreshold:      cfg.SimilarityThreshold,
			MinFuzzyNameLen:          cfg.MinFuzzyNameLen,
		},
	}, nil
}
