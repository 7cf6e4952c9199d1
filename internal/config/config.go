package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. WXBAK_BACKUP_ROOT.
const EnvPrefix = "WXBAK"

// Config represents ~/.wxbak/config.toml.
type Config struct {
	BackupRoot      string `toml:"backup_root" yaml:"backup_root" json:"backup_root" envconfig:"BACKUP_ROOT"`
	ListenAddr      string `toml:"listen_addr" yaml:"listen_addr" json:"listen_addr" envconfig:"LISTEN_ADDR"`
	MinMessageCount int    `toml:"min_message_count" yaml:"min_message_count" json:"min_message_count" envconfig:"MIN_MESSAGE_COUNT"`
	PageSize        int    `toml:"page_size" yaml:"page_size" json:"page_size" envconfig:"PAGE_SIZE"`
	ExportLimit     int    `toml:"export_limit" yaml:"export_limit" json:"export_limit" envconfig:"EXPORT_LIMIT"`
	DefaultWindow   string `toml:"default_window" yaml:"default_window" json:"default_window" envconfig:"DEFAULT_WINDOW"`
	Timezone        string `toml:"timezone" yaml:"timezone" json:"timezone" envconfig:"TIMEZONE"`
	LogFile         string `toml:"log_file" yaml:"log_file" json:"log_file" envconfig:"LOG_FILE"`
	LogLevel        string `toml:"log_level" yaml:"log_level" json:"log_level" envconfig:"LOG_LEVEL"`
	LogMaxSizeMB    int    `toml:"log_max_size_mb" yaml:"log_max_size_mb" json:"log_max_size_mb" envconfig:"LOG_MAX_SIZE_MB"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ListenAddr:    "127.0.0.1:5174",
		PageSize:      100,
		ExportLimit:   10000,
		DefaultWindow: "latest_day",
		Timezone:      "Local",
		LogFile:       LogPath(),
		LogLevel:      "info",
		LogMaxSizeMB:  20,
	}
}

// Load reads config from path on top of the defaults, then applies .env and
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if os.IsNotExist(err) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	// .env is optional.
	_ = godotenv.Load(".env")
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes path on top of the defaults, choosing the format by
// extension. Returns an error matching os.ErrNotExist if the file is missing.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}
	return cfg, nil
}

// Save writes config to the given path as TOML, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// ValidationError reports one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.MinMessageCount < 0:
		return &ValidationError{"min_message_count", "must not be negative"}
	case c.PageSize <= 0:
		return &ValidationError{"page_size", "must be positive"}
	case c.ExportLimit <= 0:
		return &ValidationError{"export_limit", "must be positive"}
	case c.DefaultWindow != "latest_day" && c.DefaultWindow != "all":
		return &ValidationError{"default_window", fmt.Sprintf("%q is not latest_day or all", c.DefaultWindow)}
	case c.LogMaxSizeMB < 0:
		return &ValidationError{"log_max_size_mb", "must not be negative"}
	}
	if _, err := c.Location(); err != nil {
		return &ValidationError{"timezone", err.Error()}
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return &ValidationError{"log_level", err.Error()}
	}
	return nil
}

// Location resolves Timezone. Empty and "Local" mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
