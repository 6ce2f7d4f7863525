// Package config provides configuration management for gctlogin.
package config

// Config represents the application configuration.
type Config struct {
	// OAuth client settings used to build the sign-in URL
	OAuth OAuthConfig `yaml:"oauth" json:"oauth" mapstructure:"oauth"`

	// UI settings
	UI UIConfig `yaml:"ui" json:"ui" mapstructure:"ui"`

	// Console and help links shown in the accounts panel
	Links LinksConfig `yaml:"links" json:"links" mapstructure:"links"`

	// Storage settings
	Storage StorageConfig `yaml:"storage" json:"storage" mapstructure:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" json:"logging" mapstructure:"logging"`
}

// OAuthConfig contains the OAuth client registration.
type OAuthConfig struct {
	// ClientID is the OAuth client ID
	ClientID string `yaml:"client_id" json:"client_id" mapstructure:"client_id"`

	// ClientSecret is the OAuth client secret (installed apps only)
	ClientSecret string `yaml:"client_secret" json:"client_secret" mapstructure:"client_secret"`

	// AuthURL is the authorization endpoint
	AuthURL string `yaml:"auth_url" json:"auth_url" mapstructure:"auth_url"`

	// TokenURL is the token endpoint
	TokenURL string `yaml:"token_url" json:"token_url" mapstructure:"token_url"`

	// RedirectURL is where the server sends the code; empty means out-of-band
	RedirectURL string `yaml:"redirect_url" json:"redirect_url" mapstructure:"redirect_url"`

	// Scopes requested at sign-in
	Scopes []string `yaml:"scopes" json:"scopes" mapstructure:"scopes"`

	// VerifyCode exchanges the verification code before storing the account
	VerifyCode bool `yaml:"verify_code" json:"verify_code" mapstructure:"verify_code"`
}

// UIConfig contains UI-related settings.
type UIConfig struct {
	// MaxVisibleRows is how many accounts the panel shows without scrolling
	MaxVisibleRows int `yaml:"max_visible_rows" json:"max_visible_rows" mapstructure:"max_visible_rows"`

	// UseColors enables colored output
	UseColors bool `yaml:"use_colors" json:"use_colors" mapstructure:"use_colors"`

	// Mouse enables mouse support in the TUI
	Mouse bool `yaml:"mouse" json:"mouse" mapstructure:"mouse"`
}

// LinksConfig contains the URLs opened from the accounts panel.
type LinksConfig struct {
	PlayConsoleURL  string `yaml:"play_console_url" json:"play_console_url" mapstructure:"play_console_url"`
	CloudConsoleURL string `yaml:"cloud_console_url" json:"cloud_console_url" mapstructure:"cloud_console_url"`
	LearnMoreURL    string `yaml:"learn_more_url" json:"learn_more_url" mapstructure:"learn_more_url"`
}

// StorageConfig contains storage settings.
type StorageConfig struct {
	// DataDir overrides the platform data directory
	DataDir string `yaml:"data_dir" json:"data_dir" mapstructure:"data_dir"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `yaml:"format" json:"format" mapstructure:"format"`

	// File is an optional log file path
	File string `yaml:"file" json:"file" mapstructure:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		OAuth: OAuthConfig{
			ClientID:     "",
			ClientSecret: "",
			AuthURL:      "https://accounts.google.com/o/oauth2/auth",
			TokenURL:     "https://oauth2.googleapis.com/token",
			RedirectURL:  "", // Empty means out-of-band
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/cloud-platform",
			},
			VerifyCode: false,
		},
		UI: UIConfig{
			MaxVisibleRows: 3,
			UseColors:      true,
			Mouse:          true,
		},
		Links: LinksConfig{
			PlayConsoleURL:  "https://play.google.com/apps/publish/#ProfilePlace",
			CloudConsoleURL: "https://console.developers.google.com/accountsettings",
			LearnMoreURL:    "https://developers.google.com/cloud/devtools/android_studio_templates/",
		},
		Storage: StorageConfig{
			DataDir: "", // Empty means platform data dir
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	defaults := Default()

	if c.UI.MaxVisibleRows < 1 {
		c.UI.MaxVisibleRows = defaults.UI.MaxVisibleRows
	}
	if c.OAuth.AuthURL == "" {
		c.OAuth.AuthURL = defaults.OAuth.AuthURL
	}
	if c.OAuth.TokenURL == "" {
		c.OAuth.TokenURL = defaults.OAuth.TokenURL
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Logging.Level = defaults.Logging.Level
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		c.Logging.Format = defaults.Logging.Format
	}
	return nil
}
