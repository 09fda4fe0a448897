package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Lixing-Zhang/terminal-pos/pkg/logger"
)

const (
	// DefaultFile is read when no settings file is named and it exists
	DefaultFile = "pos.yaml"
	// EnvPrefix starts every environment override, e.g. POS_PATHS__INVENTORY
	EnvPrefix = "POS_"
)

// Config holds the terminal's settings.
// Defaults are overridden by the YAML file, then by environment variables.
type Config struct {
	Paths    PathsConfig    `koanf:"paths"`
	Backup   BackupConfig   `koanf:"backup"`
	Auth     AuthConfig     `koanf:"auth"`
	Checkout CheckoutConfig `koanf:"checkout"`
	Audit    AuditConfig    `koanf:"audit"`
	Report   ReportConfig   `koanf:"report"`
	LogLevel string         `koanf:"log_level"`
}

type PathsConfig struct {
	Inventory    string `koanf:"inventory"`
	Backups      string `koanf:"backups"`
	Transactions string `koanf:"transactions"`
	AuditLog     string `koanf:"audit_log"`
	// MetricsFile is the Prometheus textfile; empty disables it.
	MetricsFile string `koanf:"metrics_file"`
}

type BackupConfig struct {
	Retention int `koanf:"retention"`
}

type AuthConfig struct {
	PasswordScheme string `koanf:"password_scheme"` // plaintext or bcrypt
}

type CheckoutConfig struct {
	ProcessingDelay time.Duration `koanf:"processing_delay"`
}

type AuditConfig struct {
	MaxSizeMB  int `koanf:"max_size_mb"`
	MaxBackups int `koanf:"max_backups"`
	MaxAgeDays int `koanf:"max_age_days"`
}

type ReportConfig struct {
	TopProducts        int `koanf:"top_products"`
	RecentTransactions int `koanf:"recent_transactions"`
}

// Default returns the settings used when nothing overrides them
func Default() Config {
	return Config{
		Paths: PathsConfig{
			Inventory:    "inventory.json",
			Backups:      "backups",
			Transactions: "transactions.json",
			AuditLog:     "business.log",
		},
		Backup:   BackupConfig{Retention: 10},
		Auth:     AuthConfig{PasswordScheme: "plaintext"},
		Checkout: CheckoutConfig{ProcessingDelay: time.Second},
		Audit:    AuditConfig{MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 90},
		Report:   ReportConfig{TopProducts: 10, RecentTransactions: 10},
		LogLevel: "info",
	}
}

// Load reads settings. A .env file in the working directory is applied to
// the environment first if present. path names a YAML settings file; when
// empty, DefaultFile is used if it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// POS_CHECKOUT__PROCESSING_DELAY=500ms -> checkout.processing_delay
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("env overlay: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Paths.Inventory == "" {
		return fmt.Errorf("paths.inventory is required")
	}
	if c.Paths.Backups == "" {
		return fmt.Errorf("paths.backups is required")
	}
	if c.Paths.Transactions == "" {
		return fmt.Errorf("paths.transactions is required")
	}
	if c.Paths.AuditLog == "" {
		return fmt.Errorf("paths.audit_log is required")
	}

	if c.Backup.Retention < 1 {
		return fmt.Errorf("backup.retention must be at least 1, got %d", c.Backup.Retention)
	}

	switch c.Auth.PasswordScheme {
	case "plaintext", "bcrypt":
	default:
		return fmt.Errorf("invalid auth.password_scheme: %s (must be plaintext or bcrypt)", c.Auth.PasswordScheme)
	}

	if c.Checkout.ProcessingDelay < 0 {
		return fmt.Errorf("checkout.processing_delay must not be negative")
	}

	if c.Report.TopProducts < 1 || c.Report.RecentTransactions < 1 {
		return fmt.Errorf("report sizes must be positive")
	}

	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be debug, info, success, warn, warning, or error)", c.LogLevel)
	}

	return nil
}
