package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prepline/prepline/internal/config"
	"github.com/prepline/prepline/internal/testsupport"
)

func TestLoad_NotFound(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.Data.Dir != "" {
		t.Error("expected empty data dir")
	}

	if cfg.Notify.WebhookURL != "" {
		t.Error("expected empty webhook URL")
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	configContent := `
[data]
dir = "/srv/prepline/data"
events-dir = "/srv/prepline/events"

[day]
file = "day.yaml"

[labor]
default-hourly-rate = 18.5

[notify]
webhook-url = "https://hooks.example.com/kitchen"
`

	if err := os.WriteFile(filepath.Join(tmpDir, "prepline.toml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Data.Dir != "/srv/prepline/data" {
		t.Errorf("unexpected data dir: %q", cfg.Data.Dir)
	}
	if cfg.Data.EventsDir != "/srv/prepline/events" {
		t.Errorf("unexpected events dir: %q", cfg.Data.EventsDir)
	}
	if cfg.Day.File != "day.yaml" {
		t.Errorf("unexpected day file: %q", cfg.Day.File)
	}
	if cfg.Labor.DefaultHourlyRate != 18.5 {
		t.Errorf("unexpected default rate: %v", cfg.Labor.DefaultHourlyRate)
	}
	if cfg.Notify.WebhookURL != "https://hooks.example.com/kitchen" {
		t.Errorf("unexpected webhook URL: %q", cfg.Notify.WebhookURL)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	homeDir := testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	globalDir := filepath.Join(homeDir, ".config", "prepline")
	if err := os.MkdirAll(globalDir, 0755); err != nil {
		t.Fatalf("create global config dir: %v", err)
	}
	globalContent := `
[data]
dir = "/global/data"

[labor]
default-hourly-rate = 15
`
	if err := os.WriteFile(filepath.Join(globalDir, "config.toml"), []byte(globalContent), 0644); err != nil {
		t.Fatalf("write global config: %v", err)
	}

	projectContent := `
[data]
dir = "/project/data"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "prepline.toml"), []byte(projectContent), 0644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Data.Dir != "/project/data" {
		t.Errorf("expected project dir to win, got %q", cfg.Data.Dir)
	}

	// Keys the project file leaves alone fall through to the global file.
	if cfg.Labor.DefaultHourlyRate != 15 {
		t.Errorf("expected global rate 15, got %v", cfg.Labor.DefaultHourlyRate)
	}
}

func TestEventsDirDefaultsUnderDataDir(t *testing.T) {
	cfg := &config.Config{}
	cfg.Data.Dir = "/srv/prepline"

	eventsDir, err := cfg.EventsDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eventsDir != filepath.Join("/srv/prepline", "events") {
		t.Errorf("unexpected events dir: %q", eventsDir)
	}
}
