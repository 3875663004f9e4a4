package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Compiler holds all configuration for the level compiler.
type Compiler struct {
	// Sources
	SourceExtensions []string `yaml:"source_extensions" env:"SOURCE_EXTENSIONS" envSeparator:","`
	OutputExtension  string   `yaml:"output_extension" env:"OUTPUT_EXTENSION"`

	// Batch
	Workers int `yaml:"workers" env:"WORKERS"` // 1 = sequential

	// Logging
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"` // debug | info | warn | error

	// Watch mode
	WatchDebounce time.Duration `yaml:"watch_debounce" env:"WATCH_DEBOUNCE"`

	// Build ledger
	Ledger LedgerConfig `yaml:"ledger" envPrefix:"LEDGER_"`
}

// LedgerConfig controls recording of compile results in PostgreSQL.
type LedgerConfig struct {
	Enabled  bool           `yaml:"enabled" env:"ENABLED"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// EnvPrefix is prepended to every environment override (LVLC_WORKERS, ...).
const EnvPrefix = "LVLC_"

// DefaultCompiler returns Compiler config with sensible defaults.
func DefaultCompiler() Compiler {
	return Compiler{
		SourceExtensions: []string{".json"},
		OutputExtension:  ".lvl",
		Workers:          1,
		LogLevel:         "info",
		WatchDebounce:    100 * time.Millisecond,
		Ledger: LedgerConfig{
			Enabled: false,
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "lvlc",
				Password: "lvlc",
				DBName:   "lvlc",
				SSLMode:  "disable",
			},
		},
	}
}

// LoadCompiler loads compiler config from a YAML file, then applies
// LVLC_* environment overrides. If the file doesn't exist, defaults are used.
func LoadCompiler(path string) (Compiler, error) {
	cfg := DefaultCompiler()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from LVLC_* environment variables.
// Unset variables leave the current value alone.
func ApplyEnv(cfg *Compiler) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that would make a batch run meaningless.
func (c Compiler) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if len(c.SourceExtensions) == 0 {
		return fmt.Errorf("source_extensions must not be empty")
	}
	if !strings.HasPrefix(c.OutputExtension, ".") {
		return fmt.Errorf("output_extension must start with '.', got %q", c.OutputExtension)
	}
	for _, ext := range c.SourceExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("source extension must start with '.', got %q", ext)
		}
		if ext == c.OutputExtension {
			return fmt.Errorf("source extension %q equals output_extension", ext)
		}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a config log level to slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
	return lvl, nil
}
