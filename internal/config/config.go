package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/EmpoweredVote/EV-Population/internal/logger"
)

var (
	ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")
	ErrMissingDataPath    = errors.New("config: ASPR_DATA_PATH is required")
)

// DefaultDataPath is used when neither the config file nor the environment names a
// dataset root.
const DefaultDataPath = "./data/ASPR_Synthetic_Population"

// Config holds settings for the API server and the importer.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	// DataPath is the root of the ASPR synthetic population dataset.
	DataPath  string `yaml:"data_path"`
	Workers   int    `yaml:"workers"`
	BatchSize int    `yaml:"batch_size"`
	// Namespace seeds the deterministic person ids. Empty uses the built-in one.
	Namespace string `yaml:"namespace"`

	// AdminKeyHash is a bcrypt hash of the key required by POST /population/import.
	// Empty disables the endpoint.
	AdminKeyHash string `yaml:"admin_key_hash"`

	AllowedOrigins []string  `yaml:"allowed_origins"`
	RateLimit      RateLimit `yaml:"rate_limit"`

	Log logger.Config `yaml:"log"`
}

// RateLimit configures the per-client token bucket of the API.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

func Default() Config {
	return Config{
		Port:      "5050",
		DataPath:  DefaultDataPath,
		Workers:   4,
		BatchSize: 5000,
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:5174",
		},
		RateLimit: RateLimit{PerSecond: 20, Burst: 40},
		Log:       logger.Config{Level: "info", ServiceName: "ev-population"},
	}
}

// Load builds a Config from defaults, then the YAML file at path (if path is not
// empty), then environment variables.
//
// Environment variables:
//   - PORT
//   - DATABASE_URL
//   - ASPR_DATA_PATH: dataset root
//   - IMPORT_WORKERS, IMPORT_BATCH_SIZE
//   - POPULATION_NAMESPACE: uuid namespace for person ids
//   - ADMIN_KEY_HASH: bcrypt hash guarding the import endpoint
//   - ALLOWED_ORIGINS: comma-separated CORS allow-list
//   - LOG_LEVEL, LOG_PRETTY
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.DataPath, "ASPR_DATA_PATH")
	setString(&c.AdminKeyHash, "ADMIN_KEY_HASH")
	setString(&c.Namespace, "POPULATION_NAMESPACE")
	setString(&c.Log.Level, "LOG_LEVEL")

	if err := setInt(&c.Workers, "IMPORT_WORKERS"); err != nil {
		return err
	}
	if err := setInt(&c.BatchSize, "IMPORT_BATCH_SIZE"); err != nil {
		return err
	}

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		c.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("LOG_PRETTY")); v != "" {
		c.Log.Pretty = v == "true" || v == "1"
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks the settings every command needs. The database URL is checked
// separately by commands that connect.
func (c Config) Validate() error {
	if c.DataPath == "" {
		return ErrMissingDataPath
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config: batch_size must be positive, got %d", c.BatchSize)
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("config: invalid rate limit %+v", c.RateLimit)
	}
	return nil
}

// RequireDatabase returns ErrMissingDatabaseURL when no database is configured.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}
