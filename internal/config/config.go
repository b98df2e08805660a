// Package config loads runtime configuration from a config file and
// CADENCE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cadence-tools/cadence/internal/complete"
	"github.com/cadence-tools/cadence/internal/dates"
	"github.com/cadence-tools/cadence/internal/rule"
)

type Config struct {
	DBPath             string
	LogPath            string
	WeekStart          time.Weekday
	ConfirmBeforeSpawn bool
	NavigationGrace    time.Duration
	ProcessedWindow    time.Duration
	UndoWindow         time.Duration
	BulkAdvanceDefault rule.AdvanceMode
}

func Default() Config {
	base := complete.DefaultConfig()
	return Config{
		DBPath:             defaultDBPath(),
		WeekStart:          base.WeekStart,
		ConfirmBeforeSpawn: base.ConfirmBeforeSpawn,
		NavigationGrace:    base.NavigationGrace,
		ProcessedWindow:    base.ProcessedWindow,
		UndoWindow:         base.UndoWindow,
		BulkAdvanceDefault: base.BulkAdvanceDefault,
	}
}

// Load reads config.yaml from the user config directory (then the working
// directory), applying environment overrides. A missing file is not an
// error; a malformed one is.
func Load() (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("log_path", cfg.LogPath)
	v.SetDefault("week_start", "monday")
	v.SetDefault("confirm_before_spawn", cfg.ConfirmBeforeSpawn)
	v.SetDefault("navigation_grace", cfg.NavigationGrace.String())
	v.SetDefault("processed_window", cfg.ProcessedWindow.String())
	v.SetDefault("undo_window", cfg.UndoWindow.String())
	v.SetDefault("bulk_advance_default", string(cfg.BulkAdvanceDefault))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "cadence"))
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("CADENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.DBPath = v.GetString("db_path")
	cfg.LogPath = v.GetString("log_path")
	cfg.ConfirmBeforeSpawn = v.GetBool("confirm_before_spawn")

	if ws, ok := dates.ParseWeekday(v.GetString("week_start")); ok {
		cfg.WeekStart = ws
	} else {
		return Config{}, fmt.Errorf("config: invalid week_start %q", v.GetString("week_start"))
	}
	for _, entry := range []struct {
		key string
		dst *time.Duration
	}{
		{"navigation_grace", &cfg.NavigationGrace},
		{"processed_window", &cfg.ProcessedWindow},
		{"undo_window", &cfg.UndoWindow},
	} {
		d, err := time.ParseDuration(v.GetString(entry.key))
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s: %w", entry.key, err)
		}
		*entry.dst = d
	}
	switch mode := rule.AdvanceMode(v.GetString("bulk_advance_default")); mode {
	case rule.AdvanceFromDue, rule.AdvanceFromCompletion:
		cfg.BulkAdvanceDefault = mode
	default:
		return Config{}, fmt.Errorf("config: invalid bulk_advance_default %q", v.GetString("bulk_advance_default"))
	}
	return cfg, nil
}

// Workflow maps the loaded configuration onto the completion workflow's
// config.
func (c Config) Workflow() complete.Config {
	wf := complete.DefaultConfig()
	wf.WeekStart = c.WeekStart
	wf.ConfirmBeforeSpawn = c.ConfirmBeforeSpawn
	wf.NavigationGrace = c.NavigationGrace
	wf.ProcessedWindow = c.ProcessedWindow
	wf.UndoWindow = c.UndoWindow
	wf.BulkAdvanceDefault = c.BulkAdvanceDefault
	return wf
}

func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cadence", "cadence.db")
	}
	return "cadence.db"
}
