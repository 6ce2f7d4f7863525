package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kevinelliott/gctlogin/pkg/platform"
)

const (
	// ConfigFileName is the name of the config file (without extension)
	ConfigFileName = "config"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "GCTLOGIN"
)

// Loader handles configuration loading and saving.
type Loader struct {
	v        *viper.Viper
	platform platform.Platform
	filePath string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:        viper.New(),
		platform: platform.Current(),
	}
}

// Load loads configuration from file and environment.
// Priority: env > file > defaults
func (l *Loader) Load(customPath string) (*Config, error) {
	// Set defaults
	l.setDefaults()

	// Configure viper
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	// Add config paths
	if customPath != "" {
		l.v.SetConfigFile(customPath)
		l.filePath = customPath
	} else {
		configDir := l.platform.GetConfigDir()
		l.v.AddConfigPath(configDir)
		l.filePath = filepath.Join(configDir, ConfigFileName+".yaml")
	}

	// Environment variables
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// Read config file (ignore not found)
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	cfg := Default()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to file.
func (l *Loader) Save(cfg *Config) error {
	// Update viper with current config
	l.v.Set("oauth", cfg.OAuth)
	l.v.Set("ui", cfg.UI)
	l.v.Set("links", cfg.Links)
	l.v.Set("storage", cfg.Storage)
	l.v.Set("logging", cfg.Logging)

	return l.write()
}

// GetFilePath returns the path to the config file.
func (l *Loader) GetFilePath() string {
	return l.filePath
}

// SetAndSave sets a configuration value and saves the entire config to file.
func (l *Loader) SetAndSave(key string, value interface{}) error {
	l.v.Set(key, value)
	return l.write()
}

// Get gets a configuration value by key path.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

func (l *Loader) write() error {
	// Ensure directory exists
	dir := filepath.Dir(l.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write to file
	if err := l.v.WriteConfigAs(l.filePath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// setDefaults sets the default values in viper.
func (l *Loader) setDefaults() {
	defaults := Default()

	// OAuth defaults
	l.v.SetDefault("oauth.client_id", defaults.OAuth.ClientID)
	l.v.SetDefault("oauth.client_secret", defaults.OAuth.ClientSecret)
	l.v.SetDefault("oauth.auth_url", defaults.OAuth.AuthURL)
	l.v.SetDefault("oauth.token_url", defaults.OAuth.TokenURL)
	l.v.SetDefault("oauth.redirect_url", defaults.OAuth.RedirectURL)
	l.v.SetDefault("oauth.scopes", defaults.OAuth.Scopes)
	l.v.SetDefault("oauth.verify_code", defaults.OAuth.VerifyCode)

	// UI defaults
	l.v.SetDefault("ui.max_visible_rows", defaults.UI.MaxVisibleRows)
	l.v.SetDefault("ui.use_colors", defaults.UI.UseColors)
	l.v.SetDefault("ui.mouse", defaults.UI.Mouse)

	// Link defaults
	l.v.SetDefault("links.play_console_url", defaults.Links.PlayConsoleURL)
	l.v.SetDefault("links.cloud_console_url", defaults.Links.CloudConsoleURL)
	l.v.SetDefault("links.learn_more_url", defaults.Links.LearnMoreURL)

	// Storage defaults
	l.v.SetDefault("storage.data_dir", defaults.Storage.DataDir)

	// Logging defaults
	l.v.SetDefault("logging.level", defaults.Logging.Level)
	l.v.SetDefault("logging.format", defaults.Logging.Format)
	l.v.SetDefault("logging.file", defaults.Logging.File)
}

// InitConfig creates the config directory and default config file if they
// don't exist, or overwrites the file when force is set.
func InitConfig(force bool) error {
	configPath := GetConfigPath()

	if _, err := os.Stat(configPath); err == nil && !force {
		return nil
	}

	loader := NewLoader()
	loader.filePath = configPath
	if err := loader.Save(Default()); err != nil {
		return fmt.Errorf("failed to create default config: %w", err)
	}
	return nil
}

// GetConfigPath returns the default config file path.
func GetConfigPath() string {
	p := platform.Current()
	return filepath.Join(p.GetConfigDir(), ConfigFileName+".yaml")
}

// DataDir returns the configured data directory, falling back to the
// platform default.
func (c *Config) DataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return platform.Current().GetDataDir()
}
