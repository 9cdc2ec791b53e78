// Package main is the entry point for the storefront catalog service.
// The serve command runs the HTTP API; migrate, seed and recount are
// maintenance commands sharing the same configuration.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/database"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront catalog API: category hierarchy and product search",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load before reading configuration")

	load := func() (*config.Config, error) {
		return loadConfig(envFile)
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(migrateCmd(load))
	rootCmd.AddCommand(seedCmd(load))
	rootCmd.AddCommand(recountCmd(load))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment file and configuration, then installs
// the process logger.
func loadConfig(envFile string) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	setupLogger(cfg)
	return cfg, nil
}

// setupLogger installs a JSON logger in production and a text logger
// everywhere else.
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openDatabase connects to PostgreSQL and applies pending migrations.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
