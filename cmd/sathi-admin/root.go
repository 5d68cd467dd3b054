package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codesathi/internal/config"
	"codesathi/internal/database"
	"codesathi/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "sathi-admin",
	Short:         "CodeSathi maintenance tool",
	Long:          "Database maintenance, backups and catalog inspection for the CodeSathi backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides DB_PATH)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedWordsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(recommendCmd)
}

// openDB loads the configuration, applies the --db override and returns a
// migrated database.
func openDB(cmd *cobra.Command) (*database.DB, *config.Config, error) {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DatabasePath = p
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return logger.Nop()
	}
	return log
}
