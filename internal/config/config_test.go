package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5175" || cfg.MissionTime() != time.Minute || cfg.RunTTL != 2*time.Hour {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Production() {
		t.Error("default env reported as production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MISSION_SECONDS", "90")
	t.Setenv("ENV", "production")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.MissionTime() != 90*time.Second || !cfg.Production() {
		t.Errorf("overrides = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("JWT_EXPIRES_DAYS", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Errorf("got %v, want parse env error", err)
	}

	t.Setenv("JWT_EXPIRES_DAYS", "14")
	t.Setenv("MISSION_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Error("zero mission time accepted")
	}
}
