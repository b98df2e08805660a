package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WeekStart != time.Monday {
		t.Fatalf("unexpected week start: %v", cfg.WeekStart)
	}
	if cfg.ConfirmBeforeSpawn {
		t.Fatal("expected confirm_before_spawn off by default")
	}
	if cfg.NavigationGrace != 3*time.Second || cfg.ProcessedWindow != 10*time.Second {
		t.Fatalf("unexpected window defaults: %+v", cfg)
	}
	if cfg.UndoWindow != 30*time.Second {
		t.Fatalf("unexpected undo window: %v", cfg.UndoWindow)
	}
	if cfg.DBPath == "" {
		t.Fatal("expected a default db path")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CADENCE_WEEK_START", "sunday")
	t.Setenv("CADENCE_NAVIGATION_GRACE", "5s")
	t.Setenv("CADENCE_UNDO_WINDOW", "1m")
	t.Setenv("CADENCE_BULK_ADVANCE_DEFAULT", "completion")
	t.Setenv("CADENCE_DB_PATH", "custom/cadence.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WeekStart != time.Sunday {
		t.Fatalf("unexpected week start: %v", cfg.WeekStart)
	}
	if cfg.NavigationGrace != 5*time.Second || cfg.UndoWindow != time.Minute {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if string(cfg.BulkAdvanceDefault) != "completion" {
		t.Fatalf("unexpected bulk advance default: %q", cfg.BulkAdvanceDefault)
	}
	if cfg.DBPath != "custom/cadence.db" {
		t.Fatalf("unexpected db path: %q", cfg.DBPath)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("week start", func(t *testing.T) {
		t.Setenv("CADENCE_WEEK_START", "someday")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for bad week_start")
		}
	})
	t.Run("duration", func(t *testing.T) {
		t.Setenv("CADENCE_PROCESSED_WINDOW", "soonish")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for bad processed_window")
		}
	})
	t.Run("advance mode", func(t *testing.T) {
		t.Setenv("CADENCE_BULK_ADVANCE_DEFAULT", "whenever")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for bad bulk_advance_default")
		}
	})
}

func TestWorkflowMapping(t *testing.T) {
	cfg := Default()
	cfg.WeekStart = time.Sunday
	cfg.ConfirmBeforeSpawn = false
	cfg.NavigationGrace = 7 * time.Second

	wf := cfg.Workflow()
	if wf.WeekStart != time.Sunday || wf.ConfirmBeforeSpawn {
		t.Fatalf("mapping lost fields: %+v", wf)
	}
	if wf.NavigationGrace != 7*time.Second {
		t.Fatalf("unexpected navigation grace: %v", wf.NavigationGrace)
	}
}
