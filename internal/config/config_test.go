package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/streaks")
	t.Setenv("CONSISTENCY_WINDOW_DAYS", "30")
	t.Setenv("TIMEZONE", "Europe/Prague")
	t.Setenv("STREAK_DECAY_ENABLED", "false")

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.DatabaseDriver != "postgres" || cfg.DatabaseURL != "postgres://localhost/streaks" {
		t.Errorf("unexpected database settings %q %q", cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if cfg.ConsistencyWindowDays != 30 {
		t.Errorf("expected window 30, got %d", cfg.ConsistencyWindowDays)
	}
	if cfg.StreakDecayEnabled {
		t.Error("expected decay to be disabled")
	}
	if !cfg.SeedOnStart {
		t.Error("expected seeding to default to on")
	}
	if cfg.DatabasePath != "streaks.db" {
		t.Errorf("expected default database path, got %s", cfg.DatabasePath)
	}
	if cfg.Location().String() != "Europe/Prague" {
		t.Errorf("expected Europe/Prague, got %s", cfg.Location())
	}
}

func TestLocation_Fallback(t *testing.T) {
	if loc := (&Config{}).Location(); loc != time.UTC {
		t.Errorf("expected UTC for empty timezone, got %s", loc)
	}
	if loc := (&Config{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Errorf("expected UTC for bad timezone, got %s", loc)
	}
}
