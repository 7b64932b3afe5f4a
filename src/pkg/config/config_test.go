package config

import (
	"os"
	"path/filepath"
	"testing"
)

// useTempConfigPath points the package at a temp config file for one test.
func useTempConfigPath(t *testing.T) string {
	t.Helper()

	original := configPath
	configPath = filepath.Join(t.TempDir(), "data", "config.json")
	t.Cleanup(func() {
		configPath = original
		currentConfig = nil
	})
	return configPath
}

func TestConfigLoadCreatesDefault(t *testing.T) {
	path := useTempConfigPath(t)

	if err := ConfigLoad(); err != nil {
		t.Fatalf("ConfigLoad() error = %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("ConfigLoad() did not write default config file: %v", err)
	}

	cfg := ConfigGet()
	if cfg == nil {
		t.Fatal("ConfigGet() = nil after load")
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("default DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.DatabaseFile == "" || cfg.LogFolder == "" {
		t.Error("default config missing database file or log folder")
	}
}

func TestConfigLoadReadsExisting(t *testing.T) {
	path := useTempConfigPath(t)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	content := `{"database_type":"sqlite","database_dir":"/custom/db","database_file":"mine.db","log_folder":"/custom/logs"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := ConfigLoad(); err != nil {
		t.Fatalf("ConfigLoad() error = %v", err)
	}

	cfg := ConfigGet()
	if cfg.DatabaseDir != "/custom/db" {
		t.Errorf("DatabaseDir = %q, want /custom/db", cfg.DatabaseDir)
	}
	if cfg.DatabaseFile != "mine.db" {
		t.Errorf("DatabaseFile = %q, want mine.db", cfg.DatabaseFile)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	useTempConfigPath(t)

	t.Setenv("CHAPTERFORGE_DB_DIR", "/env/db")
	t.Setenv("CHAPTERFORGE_DEFAULT_USER", "envuser")
	t.Setenv("CHAPTERFORGE_WATCH_INBOX", "true")

	if err := ConfigLoad(); err != nil {
		t.Fatalf("ConfigLoad() error = %v", err)
	}

	cfg := ConfigGet()
	if cfg.DatabaseDir != "/env/db" {
		t.Errorf("DatabaseDir = %q, want /env/db", cfg.DatabaseDir)
	}
	if cfg.DefaultUser != "envuser" {
		t.Errorf("DefaultUser = %q, want envuser", cfg.DefaultUser)
	}
	if !cfg.WatchInbox {
		t.Error("WatchInbox = false, want true from env")
	}
}
