// ABOUTME: Vitals configuration management with backend selection.
// ABOUTME: JSON file under XDG config, overlaid by .env and VITALS_* environment variables.

package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/harperreed/vitals/internal/events"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/harperreed/vitals/internal/uploads"
	"github.com/joho/godotenv"
)

// ImageConfig selects where advice images are stored.
type ImageConfig struct {
	// Driver is "local" (default) or "s3".
	Driver   string `json:"driver,omitempty" env:"DRIVER"`
	Dir      string `json:"dir,omitempty" env:"DIR"`
	Bucket   string `json:"bucket,omitempty" env:"BUCKET"`
	Region   string `json:"region,omitempty" env:"REGION"`
	Endpoint string `json:"endpoint,omitempty" env:"ENDPOINT"`

	// Credentials come from the environment only.
	AccessKeyID     string `json:"-" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `json:"-" env:"SECRET_ACCESS_KEY"`
}

// AdminConfig holds the bootstrap administrator account.
type AdminConfig struct {
	Name     string `json:"-" env:"NAME"`
	Email    string `json:"-" env:"EMAIL"`
	Password string `json:"-" env:"PASSWORD"`
}

// Config stores vitals tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "gorm-sqlite",
	// "mysql", "postgres" or "sqlserver".
	Backend string `json:"backend,omitempty" env:"VITALS_BACKEND"`

	// DSN is the connection string for server backends. For the SQLite
	// backends it may override the database file path.
	DSN string `json:"dsn,omitempty" env:"VITALS_DSN"`

	// DataDir is the root directory for local data (database, images).
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/vitals.
	DataDir string `json:"data_dir,omitempty" env:"VITALS_DATA_DIR"`

	// Secret signs session tokens. Generated on first use when empty.
	Secret string `json:"secret,omitempty" env:"VITALS_SECRET"`

	// SessionHours is the login lifetime. Defaults to one week.
	SessionHours int `json:"session_hours,omitempty" env:"VITALS_SESSION_HOURS"`

	// AMQPURL enables measurement events on RabbitMQ when set.
	AMQPURL   string `json:"amqp_url,omitempty" env:"VITALS_AMQP_URL"`
	AMQPQueue string `json:"amqp_queue,omitempty" env:"VITALS_AMQP_QUEUE"`

	// CharmHost is the Charm server used for backups.
	CharmHost string `json:"charm_host,omitempty" env:"VITALS_CHARM_HOST"`

	Images ImageConfig `json:"images,omitempty" envPrefix:"VITALS_IMAGES_"`
	Admin  AdminConfig `json:"-" envPrefix:"VITALS_ADMIN_"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return storage.BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetSessionTTL returns the configured session lifetime.
func (c *Config) GetSessionTTL() time.Duration {
	if c.SessionHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.SessionHours) * time.Hour
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DatabasePath returns the SQLite file used by the sqlite backends.
func (c *Config) DatabasePath() string {
	if c.DSN != "" {
		return ExpandPath(c.DSN)
	}
	name := "vitals.db"
	if c.GetBackend() == storage.BackendGormSQLite {
		name = "vitals-gorm.db"
	}
	return filepath.Join(c.GetDataDir(), name)
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()

	switch backend {
	case storage.BackendSQLite:
		db, err := storage.Open(c.DatabasePath())
		if err != nil {
			return nil, err
		}
		return db, nil
	case storage.BackendGormSQLite:
		return openGorm(backend, c.DatabasePath())
	case storage.BackendMySQL, storage.BackendPostgres, storage.BackendSQLServer:
		if c.DSN == "" {
			return nil, fmt.Errorf("backend %q requires a dsn", backend)
		}
		return openGorm(backend, c.DSN)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

func openGorm(backend, dsn string) (storage.Repository, error) {
	g, err := storage.OpenGorm(backend, dsn)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// OpenImages creates the configured image store.
func (c *Config) OpenImages(ctx context.Context) (uploads.ImageStore, error) {
	dir := ExpandPath(c.Images.Dir)
	if dir == "" {
		dir = filepath.Join(c.GetDataDir(), "images")
	}
	return uploads.New(ctx, uploads.Config{
		Driver:          c.Images.Driver,
		Dir:             dir,
		Bucket:          c.Images.Bucket,
		Region:          c.Images.Region,
		AccessKeyID:     c.Images.AccessKeyID,
		SecretAccessKey: c.Images.SecretAccessKey,
		Endpoint:        c.Images.Endpoint,
	})
}

// OpenPublisher returns a RabbitMQ publisher when AMQPURL is set and a
// no-op publisher otherwise.
func (c *Config) OpenPublisher() (events.Publisher, error) {
	if c.AMQPURL == "" {
		return events.NopPublisher{}, nil
	}
	p, err := events.DialAMQP(c.AMQPURL, c.AMQPQueue)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// EnsureSecret generates and persists a signing secret if none is set.
func (c *Config) EnsureSecret() error {
	if c.Secret != "" {
		return nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	c.Secret = hex.EncodeToString(buf)
	return c.Save()
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "vitals", "config.json")
}

// Load reads config from disk, then applies .env and environment overrides.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath(), ".env")
}

// LoadFrom reads the config file at path and overlays variables from
// dotenv (if it exists) and the process environment.
func LoadFrom(path, dotenv string) (*Config, error) {
	if dotenv != "" {
		// Existing environment variables win over the file.
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
