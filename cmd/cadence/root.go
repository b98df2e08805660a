package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cadence-tools/cadence/internal/config"
	"github.com/cadence-tools/cadence/internal/store"
)

var (
	dbPathFlag string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Recurring task manager",
	Long: `cadence tracks dated and recurring tasks. Completing a recurring task
spawns the next occurrence from a natural-language rule like
"every 2 weeks" or "the last friday of the month".

Run without arguments to open the interactive task list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if dbPathFlag != "" {
			loaded.DBPath = dbPathFlag
		}
		cfg = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "database path (default: user config dir)")
	rootCmd.AddCommand(addCmd, parseCmd, nextCmd, doneCmd)
}

func openStore() (*store.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return store.OpenSQLite(cfg.DBPath)
}

// newLogger writes to the configured log file, or discards when none is
// set. Logging to stderr would tear the interactive screen.
func newLogger() *slog.Logger {
	if cfg.LogPath == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
