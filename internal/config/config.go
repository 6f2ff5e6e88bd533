package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ATTENDANCE_STORAGE_BACKEND
const EnvPrefix = "ATTENDANCE"

// DefaultDirName is the data folder under the user's home directory
const DefaultDirName = ".attendance-tracker"

// Config represents application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
}

// StorageConfig selects where attendance data is kept
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // "file" or "sqlite"
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// CalendarConfig represents calendar configuration
type CalendarConfig struct {
	HolidaysFile string `mapstructure:"holidays_file"` // Extra company non-working days
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	ReadTimeout string `mapstructure:"read_timeout"`
}

// DaemonConfig represents background watcher configuration
type DaemonConfig struct {
	CheckInterval string `mapstructure:"check_interval"`
	SystemTray    bool   `mapstructure:"system_tray"` // Show system tray icon (Windows only)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", filepath.Join("~", DefaultDirName))
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("calendar.holidays_file", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("daemon.check_interval", "1m")
	v.SetDefault("daemon.system_tray", true)
}

// Load loads configuration from file, .env and environment.
// An explicit configPath must exist; without one a missing config file is fine.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/" + DefaultDirName)
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is configured
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Defaults always decode
	_ = v.Unmarshal(&config)
	return &config
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be 'file' or 'sqlite', got '%s'", c.Storage.Backend)
	}

	if strings.TrimSpace(c.Storage.Dir) == "" {
		return fmt.Errorf("storage.dir is required")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}

	return nil
}

// GetDir returns the data directory with "~" expanded
func (c *StorageConfig) GetDir() (string, error) {
	return expandHome(strings.TrimSpace(c.Dir))
}

// GetSQLitePath returns the database path, defaulting to attendance.db in the data directory
func (c *StorageConfig) GetSQLitePath() (string, error) {
	if c.SQLitePath != "" {
		return expandHome(c.SQLitePath)
	}
	dir, err := c.GetDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "attendance.db"), nil
}

// GetHolidaysFile returns the company calendar path with "~" expanded, or "" when unset
func (c *CalendarConfig) GetHolidaysFile() (string, error) {
	if c.HolidaysFile == "" {
		return "", nil
	}
	return expandHome(c.HolidaysFile)
}

// GetReadTimeout returns the server read timeout
func (c *ServerConfig) GetReadTimeout() time.Duration {
	if c.ReadTimeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.ReadTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return duration
}

// GetCheckInterval returns how often the daemon checks for a month change
func (c *DaemonConfig) GetCheckInterval() time.Duration {
	if c.CheckInterval == "" {
		return time.Minute
	}
	duration, err := time.ParseDuration(c.CheckInterval)
	if err != nil || duration <= 0 {
		return time.Minute
	}
	return duration
}

func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}
