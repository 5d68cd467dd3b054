package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codesathi/internal/database"
	"codesathi/internal/repository"
	"codesathi/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cfg, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", cfg.DatabaseType)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export accounts, profiles and progress to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cfg, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}
		if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
		defer f.Close()

		backup, err := service.NewBackupService(db, newLogger(cfg)).Export(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d users to %s\n", len(backup.Users), outputPath)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath, _ := cmd.Flags().GetString("input")
		clearData, _ := cmd.Flags().GetBool("clear")
		yes, _ := cmd.Flags().GetBool("yes")

		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("failed to open backup file: %w", err)
		}
		defer f.Close()

		db, cfg, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if clearData {
			if !yes && !confirm(cmd, "WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
				fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
				return nil
			}
			if err := clearDatabase(cmd, db); err != nil {
				return err
			}
		}

		backup, err := service.NewBackupService(db, newLogger(cfg)).Import(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users from %s\n", len(backup.Users), inputPath)
		return nil
	},
}

var seedWordsCmd = &cobra.Command{
	Use:   "seed-words",
	Short: "Load the blocked display-name word list",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cfg, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		var n int
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open word list: %w", err)
			}
			defer f.Close()
			n, err = db.LoadBlockedWords(cmd.Context(), f)
			if err != nil {
				return err
			}
		} else {
			url := cfg.BlockedWordsURL
			if url == "" {
				url = database.DefaultBlockedWordsURL
			}
			n, err = db.SeedBlockedWords(cmd.Context(), url)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d blocked words\n", n)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup-sessions",
	Short: "Delete expired sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := repository.NewUserRepository(db).DeleteExpiredSessions(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired sessions\n", n)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().String("input", "", "Input file path")
	importCmd.Flags().Bool("clear", false, "Clear existing data before import (destructive)")
	importCmd.Flags().Bool("yes", false, "Skip the confirmation prompt for --clear")
	_ = importCmd.MarkFlagRequired("input")

	seedWordsCmd.Flags().String("file", "", "Read words from a local file, one per line")
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}

// clearDatabase deletes account data, children before parents.
func clearDatabase(cmd *cobra.Command, db *database.DB) error {
	tables := []string{
		"lesson_completions",
		"progress",
		"profiles",
		"kv_store",
		"sessions",
		"users",
	}
	for _, table := range tables {
		if _, err := db.ExecContext(cmd.Context(), fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared table: %s\n", table)
	}
	return nil
}
