package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/existflow/semplan/internal/db"
)

// Storage drivers
const (
	DriverSQLite   = db.DriverSQLite
	DriverPostgres = db.DriverPostgres
)

// Config holds user preferences
type Config struct {
	// Storage backend for profile data
	StorageDriver  string `yaml:"storage_driver" json:"storage_driver"`     // sqlite or postgres
	StorageDSN     string `yaml:"storage_dsn" json:"storage_dsn"`           // File path for sqlite, connection string for postgres
	PersistDelayMS int    `yaml:"persist_delay_ms" json:"persist_delay_ms"` // Debounce window of writes

	// Local API server
	Listen string `yaml:"listen" json:"listen"`

	// Scheduled backups while serving
	BackupCron string `yaml:"backup_cron" json:"backup_cron"` // Empty disables
	BackupDir  string `yaml:"backup_dir" json:"backup_dir"`
	BackupKeep int    `yaml:"backup_keep" json:"backup_keep"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns the application directory, ~/.semplan unless SEMPLAN_HOME is set
func Dir() string {
	if dir := os.Getenv("SEMPLAN_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return ".semplan"
	}
	return filepath.Join(home, ".semplan")
}

// Path returns the config file location
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		StorageDriver:  getEnv("SEMPLAN_STORAGE_DRIVER", DriverSQLite),
		StorageDSN:     getEnv("SEMPLAN_STORAGE_DSN", filepath.Join(dir, "planner.db")),
		PersistDelayMS: getEnvInt("SEMPLAN_PERSIST_DELAY_MS", 300),
		Listen:         getEnv("SEMPLAN_LISTEN", "127.0.0.1:8420"),
		BackupCron:     getEnv("SEMPLAN_BACKUP_CRON", "0 3 * * *"),
		BackupDir:      getEnv("SEMPLAN_BACKUP_DIR", filepath.Join(dir, "backups")),
		BackupKeep:     getEnvInt("SEMPLAN_BACKUP_KEEP", 14),
		LogLevel:       getEnv("SEMPLAN_LOG_LEVEL", "INFO"),
		LogFile:        getEnv("SEMPLAN_LOG_FILE", filepath.Join(dir, "logs", "semplan.log")),
		LogConsole:     getEnv("SEMPLAN_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

// Normalize fills zero values of a partially written file
func (c *Config) Normalize() {
	def := DefaultConfig()
	switch c.StorageDriver {
	case DriverSQLite, DriverPostgres:
	default:
		c.StorageDriver = def.StorageDriver
	}
	if c.StorageDSN == "" {
		c.StorageDSN = def.StorageDSN
	}
	if c.PersistDelayMS <= 0 {
		c.PersistDelayMS = def.PersistDelayMS
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.BackupDir == "" {
		c.BackupDir = def.BackupDir
	}
	if c.BackupKeep <= 0 {
		c.BackupKeep = def.BackupKeep
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// PersistDelay returns the write debounce window
func (c *Config) PersistDelay() time.Duration {
	return time.Duration(c.PersistDelayMS) * time.Millisecond
}

// Load loads config from ~/.semplan/config.yaml
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads config from path, returning defaults when it does not exist
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save saves config to ~/.semplan/config.yaml
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config atomically through a temp file
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
