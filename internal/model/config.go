package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// RemoteConfig holds settings for the remote store connection.
type RemoteConfig struct {
	// DatabasePath is the path of the store database file.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
}

// DirectoryConfig holds settings for the user-directory service.
type DirectoryConfig struct {
	// BaseURL is the root URL of the directory service. When empty,
	// no assignment candidates are available.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Token is the bearer token used for directory requests.
	Token string `mapstructure:"token" yaml:"token"`
}

// ActorConfig identifies the user this client acts as.
type ActorConfig struct {
	ID    string `mapstructure:"id" yaml:"id"`
	Label string `mapstructure:"label" yaml:"label"`
}

// NotificationsConfig holds settings for the per-recipient feed.
type NotificationsConfig struct {
	// Cap is the maximum number of notifications kept in the local feed.
	Cap int `mapstructure:"cap" yaml:"cap"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Remote        RemoteConfig        `mapstructure:"remote" yaml:"remote"`
	Directory     DirectoryConfig     `mapstructure:"directory" yaml:"directory"`
	Actor         ActorConfig         `mapstructure:"actor" yaml:"actor"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskboard", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Remote: RemoteConfig{
			DatabasePath: "taskboard.db",
		},
		Notifications: NotificationsConfig{
			Cap: 20,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("remote.database_path", "taskboard.db")
	v.SetDefault("notifications.cap", 20)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Notifications.Cap <= 0 {
		cfg.Notifications.Cap = 20
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("remote", cfg.Remote)
	v.Set("directory", cfg.Directory)
	v.Set("actor", cfg.Actor)
	v.Set("notifications", cfg.Notifications)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
