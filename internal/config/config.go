// Package config manages the two files raindrip keeps on disk: the
// credential file (config.json, holding the API token) and optional user
// settings (settings.toml). Nothing else persists between runs.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const (
	credentialFile = "config.json"
	settingsFile   = "settings.toml"
)

// Credentials holds the Raindrop.io access token.
type Credentials struct {
	Token string `json:"token" mapstructure:"token"`
}

// DefaultDir returns ~/.config/raindrip.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "raindrip"), nil
}

// LoadCredentials reads the credential file from dir. A missing file is
// not an error: it yields empty credentials. The RAINDROP_TOKEN
// environment variable overrides the file.
func LoadCredentials(dir string) (*Credentials, error) {
	v := viper.New()

	v.SetDefault("token", "")
	_ = v.BindEnv("token", "RAINDROP_TOKEN")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var creds Credentials
	if err := v.Unmarshal(&creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Save writes the credential file with owner-only permissions. The token
// grants full account access, so the directory is 0700 and the file 0600.
func (c *Credentials) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, credentialFile), data, 0o600)
}

// DeleteCredentials removes the credential file. Deleting credentials
// that were never saved succeeds.
func DeleteCredentials(dir string) error {
	err := os.Remove(filepath.Join(dir, credentialFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MaskToken renders a token safe for log output.
func MaskToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// Settings are optional user preferences from settings.toml.
type Settings struct {
	OutputFormat   string `toml:"output_format"`
	ToonIndent     int    `toml:"toon_indent"`
	ToonDelimiter  string `toml:"toon_delimiter"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PageSize       int    `toml:"page_size"`
	LogLevel       string `toml:"log_level"`
}

// DefaultSettings returns the settings used when no settings.toml exists.
func DefaultSettings() Settings {
	return Settings{
		OutputFormat:   "toon",
		ToonIndent:     2,
		ToonDelimiter:  ",",
		TimeoutSeconds: 30,
		PageSize:       50,
		LogLevel:       "info",
	}
}

// LoadSettings reads settings.toml from dir, filling unset keys with
// defaults. A missing file yields the defaults.
func LoadSettings(dir string) (Settings, error) {
	settings := DefaultSettings()

	path := filepath.Join(dir, settingsFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}

	if _, err := toml.DecodeFile(path, &settings); err != nil {
		return settings, &ConfigError{Field: settingsFile, Message: err.Error()}
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// Validate checks settings values against what the CLI and the API can
// actually honor.
func (s Settings) Validate() error {
	switch s.OutputFormat {
	case "toon", "json", "yaml":
	default:
		return &ConfigError{Field: "output_format", Message: "must be toon, json or yaml"}
	}
	switch s.ToonDelimiter {
	case ",", "|", "\t", "tab":
	default:
		return &ConfigError{Field: "toon_delimiter", Message: `must be ",", "|" or "tab"`}
	}
	if s.ToonIndent < 1 || s.ToonIndent > 8 {
		return &ConfigError{Field: "toon_indent", Message: "must be between 1 and 8"}
	}
	if s.TimeoutSeconds < 1 {
		return &ConfigError{Field: "timeout_seconds", Message: "must be positive"}
	}
	if s.PageSize < 1 || s.PageSize > 50 {
		return &ConfigError{Field: "page_size", Message: "must be between 1 and 50 (the API page cap)"}
	}
	return nil
}

// Delimiter resolves the configured delimiter, mapping the "tab" alias
// to an actual tab character.
func (s Settings) Delimiter() string {
	if s.ToonDelimiter == "tab" {
		return "\t"
	}
	return s.ToonDelimiter
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
