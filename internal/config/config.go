// Package config loads and validates application configuration.
// Sources are applied in order, each overriding the last: built-in defaults,
// an optional YAML file, a .env file in the working directory, and finally
// the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration values for loopd.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// BindAddr is the interface the server binds to. Defaults to loopback so
	// the API stays local to the device.
	BindAddr string `yaml:"bind_addr"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:8081"] (Expo web dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `yaml:"cors_origins"`

	// StoreDriver selects the local store backend: memory, file, sqlite or
	// postgres. Defaults to "file".
	StoreDriver string `yaml:"store_driver"`

	// StorePath is the directory used by the file and sqlite drivers.
	StorePath string `yaml:"store_path"`

	// DatabaseURL is the Postgres connection string. Required for the
	// postgres driver only.
	DatabaseURL string `yaml:"database_url"`

	// LinkScheme is the URL scheme of share links. Defaults to "loopspot".
	LinkScheme string `yaml:"link_scheme"`

	// LinkBaseURL, when set, replaces "<scheme>://" as the link prefix.
	LinkBaseURL string `yaml:"link_base_url"`

	// Timezone names the zone used for the display dates in share links.
	Timezone string `yaml:"timezone"`

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// DefaultLatitude and DefaultLongitude centre the map when the device
	// position is unknown.
	DefaultLatitude  float64 `yaml:"default_latitude"`
	DefaultLongitude float64 `yaml:"default_longitude"`

	// DisplayName and Email describe the signed-in user, as supplied by the
	// host app's auth provider.
	DisplayName string `yaml:"display_name"`
	Email       string `yaml:"email"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:             "8080",
		BindAddr:         "127.0.0.1",
		LogLevel:         "info",
		CORSOrigins:      []string{"http://localhost:8081"},
		StoreDriver:      DriverFile,
		StorePath:        "loopspot-data",
		LinkScheme:       "loopspot",
		Timezone:         "Local",
		MaxBodyBytes:     1 << 20,
		DefaultLatitude:  37.78825,
		DefaultLongitude: -122.4324,
	}
}

// Load reads configuration from .env and the environment on top of the defaults.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an additional YAML file applied before .env and the
// environment. An empty path skips the file; a named file that does not
// exist is an error.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the values are usable together.
func (c Config) Validate() error {
	var problems []string

	switch c.StoreDriver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres store")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER %q is not one of memory, file, sqlite, postgres", c.StoreDriver))
	}
	if (c.StoreDriver == DriverFile || c.StoreDriver == DriverSQLite) && c.StorePath == "" {
		problems = append(problems, "STORE_PATH is required for the "+c.StoreDriver+" store")
	}
	if c.LinkScheme == "" && c.LinkBaseURL == "" {
		problems = append(problems, "LINK_SCHEME or LINK_BASE_URL is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q is unknown", c.Timezone))
	}
	if c.MaxBodyBytes <= 0 {
		problems = append(problems, "MAX_BODY_BYTES must be positive")
	}
	if c.DefaultLatitude < -90 || c.DefaultLatitude > 90 || c.DefaultLongitude < -180 || c.DefaultLongitude > 180 {
		problems = append(problems, "DEFAULT_LATITUDE/DEFAULT_LONGITUDE out of range")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// Location returns the time zone named by Timezone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SQLitePath is the database file used by the sqlite driver.
func (c Config) SQLitePath() string {
	return filepath.Join(c.StorePath, "loops.db")
}

// applyEnv overlays environment variables onto cfg. Unset or empty variables
// leave the current value in place.
func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.BindAddr = getEnv("BIND_ADDR", cfg.BindAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", cfg.StoreDriver))
	cfg.StorePath = getEnv("STORE_PATH", cfg.StorePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LinkScheme = getEnv("LINK_SCHEME", cfg.LinkScheme)
	cfg.LinkBaseURL = getEnv("LINK_BASE_URL", cfg.LinkBaseURL)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.DisplayName = getEnv("DISPLAY_NAME", cfg.DisplayName)
	cfg.Email = getEnv("EMAIL", cfg.Email)

	var err error
	if cfg.MaxBodyBytes, err = getEnvInt64("MAX_BODY_BYTES", cfg.MaxBodyBytes); err != nil {
		return err
	}
	if cfg.DefaultLatitude, err = getEnvFloat("DEFAULT_LATITUDE", cfg.DefaultLatitude); err != nil {
		return err
	}
	if cfg.DefaultLongitude, err = getEnvFloat("DEFAULT_LONGITUDE", cfg.DefaultLongitude); err != nil {
		return err
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
