package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the config file.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvClientID     = "SONOROUS_CLIENT_ID"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Gemini   GeminiConfig   `toml:"gemini"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// SpotifyConfig holds the endpoints used for the implicit grant and history requests.
//
// The client id is not configured here: it is user-supplied and persisted by the credential store.
type SpotifyConfig struct {
	AuthURL     string `toml:"auth_url"`
	APIURL      string `toml:"api_url"`
	RedirectURI string `toml:"redirect_uri"`
}

// GeminiConfig contains the story generation service settings.
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the loopback callback listener.
type ServerConfig struct {
	CallbackTimeout time.Duration `toml:"callback_timeout"`
}

// LogConfig controls log verbosity and the TUI log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports missing endpoints or a non-positive callback timeout.
func (c *Config) Validate() error {
	switch {
	case c.Spotify.AuthURL == "":
		return fmt.Errorf("%w: spotify.auth_url is empty", ErrInvalidConfig)
	case c.Spotify.APIURL == "":
		return fmt.Errorf("%w: spotify.api_url is empty", ErrInvalidConfig)
	case c.Spotify.RedirectURI == "":
		return fmt.Errorf("%w: spotify.redirect_uri is empty", ErrInvalidConfig)
	case c.Server.CallbackTimeout <= 0:
		return fmt.Errorf("%w: server.callback_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides config values from the environment. lookup is usually [os.LookupEnv].
//
// It returns the client id found in the environment, if any.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) (clientID string) {
	if v, ok := lookup(EnvGeminiAPIKey); ok && strings.TrimSpace(v) != "" {
		c.Gemini.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvClientID); ok {
		clientID = strings.TrimSpace(v)
	}
	return clientID
}
