package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adrianco/demo-brazil/internal/config"
	"github.com/adrianco/demo-brazil/internal/graph"
)

var (
	configPath string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "demo-brazil",
	Short: "Brazilian soccer knowledge-graph service",
	Long: `demo-brazil builds and queries a knowledge graph of Brazilian
soccer: players, teams, matches, competitions, stadiums, coaches, and
transfers, stored in Neo4j.

The graph is constructed from heterogeneous source datasets via the
ingest pipeline (schema, load, validate) and queried through the
parameterized tool catalogue (query, tools).`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	loaded, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)
	return nil
}

func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// connect builds a store client from the loaded configuration and opens
// the connection.
func connect(ctx context.Context) (*graph.Neo4jClient, error) {
	clientConfig := graph.ClientConfig{
		URI:                     cfg.Store.URI,
		Username:                cfg.Store.Username,
		Password:                cfg.Store.Password,
		Database:                cfg.Store.Database,
		MaxConnectionPoolSize:   cfg.Store.PoolSize,
		ConnectionTimeout:       cfg.Store.ConnectTimeout,
		MaxTransactionRetryTime: cfg.Store.QueryTimeout,
	}
	client, err := graph.NewNeo4jClient(clientConfig)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "demo-brazil.yaml", "path to the YAML config file")

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(toolsCmd)
}
