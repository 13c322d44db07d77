// ABOUTME: Tests for vitals configuration management.
// ABOUTME: Covers load, save, env overrides, backend selection, and path expansion.
package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/vitals/internal/events"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/harperreed/vitals/internal/uploads"
)

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want %q", got, "sqlite")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "postgres"}
	if got := cfg.GetBackend(); got != "postgres" {
		t.Errorf("GetBackend() = %q, want %q", got, "postgres")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := &Config{}
	if got := cfg.GetDataDir(); got != "/tmp/xdg-data/vitals" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/xdg-data/vitals")
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/vitals-data"}
	want := filepath.Join(home, "vitals-data")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/vitals", filepath.Join(home, "data/vitals")},
		{"data/vitals", "data/vitals"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetSessionTTL(t *testing.T) {
	if got := (&Config{}).GetSessionTTL(); got != 7*24*time.Hour {
		t.Errorf("default TTL = %v", got)
	}
	if got := (&Config{SessionHours: 2}).GetSessionTTL(); got != 2*time.Hour {
		t.Errorf("TTL = %v, want 2h", got)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" {
		t.Errorf("Expected empty Backend, got %q", cfg.Backend)
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		Backend: "gorm-sqlite",
		DataDir: "/tmp/vitals-data",
		Images:  ImageConfig{Driver: "s3", Bucket: "fotos", SecretAccessKey: "never-saved"},
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.Backend != "gorm-sqlite" {
		t.Errorf("Backend mismatch: got %q", loaded.Backend)
	}
	if loaded.DataDir != "/tmp/vitals-data" {
		t.Errorf("DataDir mismatch: got %q", loaded.DataDir)
	}
	if loaded.Images.Bucket != "fotos" {
		t.Errorf("Images.Bucket mismatch: got %q", loaded.Images.Bucket)
	}
	if loaded.Images.SecretAccessKey != "" {
		t.Error("Expected credentials not to be persisted")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"backend":"sqlite","data_dir":"/from/file"}`), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VITALS_BACKEND", "postgres")
	t.Setenv("VITALS_DSN", "host=localhost dbname=vitals")
	t.Setenv("VITALS_IMAGES_BUCKET", "env-bucket")
	t.Setenv("VITALS_ADMIN_NAME", "root")

	cfg, err := LoadFrom(path, "")
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Backend != "postgres" {
		t.Errorf("Backend = %q, want env override", cfg.Backend)
	}
	if cfg.DataDir != "/from/file" {
		t.Errorf("DataDir = %q, want file value kept", cfg.DataDir)
	}
	if cfg.DSN != "host=localhost dbname=vitals" {
		t.Errorf("DSN = %q", cfg.DSN)
	}
	if cfg.Images.Bucket != "env-bucket" {
		t.Errorf("Images.Bucket = %q", cfg.Images.Bucket)
	}
	if cfg.Admin.Name != "root" {
		t.Errorf("Admin.Name = %q", cfg.Admin.Name)
	}
}

func TestDotenvFile(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	if err := os.WriteFile(dotenv, []byte("VITALS_AMQP_QUEUE=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets the variable; register cleanup through t.Setenv first.
	t.Setenv("VITALS_AMQP_QUEUE", "")
	os.Unsetenv("VITALS_AMQP_QUEUE")

	cfg, err := LoadFrom(filepath.Join(dir, "missing.json"), dotenv)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.AMQPQueue != "from-dotenv" {
		t.Errorf("AMQPQueue = %q, want value from .env", cfg.AMQPQueue)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path, ""); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	want := filepath.Join(dir, "vitals", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestEnsureSecret(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{}
	if err := cfg.EnsureSecret(); err != nil {
		t.Fatalf("EnsureSecret failed: %v", err)
	}
	if len(cfg.Secret) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(cfg.Secret))
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Secret != cfg.Secret {
		t.Error("expected generated secret to be persisted")
	}

	before := cfg.Secret
	if err := cfg.EnsureSecret(); err != nil {
		t.Fatalf("second EnsureSecret failed: %v", err)
	}
	if cfg.Secret != before {
		t.Error("existing secret must not be replaced")
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Backend: "sqlite", DataDir: dir}

	repo, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() for sqlite failed: %v", err)
	}
	defer repo.Close()

	if _, ok := repo.(*storage.DB); !ok {
		t.Errorf("expected *storage.DB, got %T", repo)
	}
	if _, err := os.Stat(filepath.Join(dir, "vitals.db")); os.IsNotExist(err) {
		t.Error("Expected vitals.db to be created")
	}
}

func TestOpenStorageGormSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Backend: "gorm-sqlite", DataDir: dir}

	repo, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() for gorm-sqlite failed: %v", err)
	}
	defer repo.Close()

	if _, ok := repo.(*storage.GormStore); !ok {
		t.Errorf("expected *storage.GormStore, got %T", repo)
	}
}

func TestOpenStorageServerBackendNeedsDSN(t *testing.T) {
	for _, backend := range []string{"mysql", "postgres", "sqlserver"} {
		cfg := &Config{Backend: backend}
		if _, err := cfg.OpenStorage(); err == nil {
			t.Errorf("%s: expected error without dsn", backend)
		}
	}
}

func TestOpenStorageInvalidBackend(t *testing.T) {
	cfg := &Config{Backend: "invalid", DataDir: t.TempDir()}
	if _, err := cfg.OpenStorage(); err == nil {
		t.Error("Expected error for invalid backend")
	}
}

func TestOpenImagesDefaultsToDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DataDir: dir}

	store, err := cfg.OpenImages(context.Background())
	if err != nil {
		t.Fatalf("OpenImages failed: %v", err)
	}
	local, ok := store.(*uploads.Local)
	if !ok {
		t.Fatalf("expected *uploads.Local, got %T", store)
	}
	if got := local.URL("x.png"); got != filepath.Join(dir, "images", "x.png") {
		t.Errorf("URL = %q", got)
	}
}

func TestOpenPublisherDefaultsToNop(t *testing.T) {
	p, err := (&Config{}).OpenPublisher()
	if err != nil {
		t.Fatalf("OpenPublisher failed: %v", err)
	}
	if _, ok := p.(events.NopPublisher); !ok {
		t.Errorf("expected NopPublisher, got %T", p)
	}
}
