package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config root configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Notify NotifyConfig `mapstructure:"notify"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig broker settings. The broker always binds the loopback
// interface; only the port is configurable. Timeouts and intervals are
// in seconds.
type ServerConfig struct {
	Port             int `mapstructure:"port"`
	IdleTimeout      int `mapstructure:"idle_timeout"`
	WatchdogInterval int `mapstructure:"watchdog_interval"`
}

// ClientConfig caller-side polling defaults, in seconds
type ClientConfig struct {
	Timeout      int `mapstructure:"timeout"`
	PollInterval int `mapstructure:"poll_interval"`
}

// NotifyConfig notification channel settings
type NotifyConfig struct {
	Desktop  DesktopConfig  `mapstructure:"desktop"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// DesktopConfig native desktop notification settings
type DesktopConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TelegramConfig telegram notification settings
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  int64  `mapstructure:"chat_id"`
}

// LogConfig logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             9131,
			IdleTimeout:      600,
			WatchdogInterval: 30,
		},
		Client: ClientConfig{
			Timeout:      300,
			PollInterval: 1,
		},
		Notify: NotifyConfig{
			Desktop:  DesktopConfig{Enabled: true},
			Telegram: TelegramConfig{Enabled: false},
		},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
	}
}

// ConfigDir returns the nudge config directory
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".nudge")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// StateDir returns the directory for broker-side state (audit log).
func StateDir() string {
	return filepath.Join(ConfigDir(), "state")
}

// Load loads config from file or returns defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := ConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("NUDGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}

	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.MatchName = func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		}
	}); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func normalizeKey(input string) string {
	input = strings.ReplaceAll(input, "_", "")
	input = strings.ReplaceAll(input, "-", "")
	return strings.ToLower(input)
}

// Save saves config to file
func Save(cfg *Config) error {
	configPath := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// Validate checks that the configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must not be negative, got %d", c.Server.IdleTimeout)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 600
	}

	if c.Server.WatchdogInterval < 0 {
		return fmt.Errorf("server.watchdog_interval must not be negative, got %d", c.Server.WatchdogInterval)
	}
	if c.Server.WatchdogInterval == 0 {
		c.Server.WatchdogInterval = 30
	}
	if c.Server.WatchdogInterval < 5 {
		c.Server.WatchdogInterval = 5
	}

	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative, got %d", c.Client.Timeout)
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 300
	}
	if c.Client.PollInterval <= 0 {
		c.Client.PollInterval = 1
	}

	if c.Notify.Telegram.Enabled {
		if strings.TrimSpace(c.Notify.Telegram.Token) == "" {
			return fmt.Errorf("notify.telegram.token is required when notify.telegram.enabled is true")
		}
		if c.Notify.Telegram.ChatID == 0 {
			return fmt.Errorf("notify.telegram.chat_id is required when notify.telegram.enabled is true")
		}
	}

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	if level == "" {
		c.Log.Level = "info"
	} else {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[level] {
			return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
		}
		c.Log.Level = level
	}

	return nil
}
