package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the client configuration.
const (
	DefaultServerURL      = "http://localhost:8080"
	DefaultReconnectDelay = 3 * time.Second
	DefaultRequestTimeout = 15 * time.Second
)

// Config holds the client configuration parsed from the `client:` section
// of config.yaml.
type Config struct {
	Client ClientConfig `yaml:"client"`
}

// ClientConfig holds all client-side settings.
type ClientConfig struct {
	// ServerURL is the KtabNet backend base URL, http or https.
	// REST calls go to <ServerURL>/api/...; the real-time channel is
	// <ServerURL with ws(s) scheme>/ws.
	ServerURL string `yaml:"server_url"`

	// TokenFile is where the session bearer token is stored.
	// Defaults to $XDG_CONFIG_HOME/ktabnet/token (or the OS equivalent).
	TokenFile string `yaml:"token_file"`

	// ReconnectDelay is the fixed wait before redialing after an abnormal
	// close of the real-time channel. Default 3s.
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`

	// RequestTimeout bounds each REST call. Default 15s.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint. Empty disables the metrics listener.
	MetricsAddr string `yaml:"metrics_addr"`

	// Alert configures local side effects for incoming notifications.
	Alert AlertConfig `yaml:"alert"`
}

// AlertConfig configures the commands run when a notification arrives.
// Both are optional; empty means no side effect.
type AlertConfig struct {
	// SoundCmd is run (via the shell) to play the notification sound cue.
	SoundCmd string `yaml:"sound_cmd"`

	// PopupCmd is run to show a desktop notification. The notification
	// title and body are appended as two arguments.
	PopupCmd string `yaml:"popup_cmd"`
}

// WSURL returns the real-time endpoint derived from ServerURL:
// scheme http→ws / https→wss, path /ws.
func (c ClientConfig) WSURL() string {
	u := c.ServerURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return strings.TrimRight(u, "/") + "/ws"
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Client: ClientConfig{
			ServerURL:      DefaultServerURL,
			TokenFile:      defaultTokenFile(),
			ReconnectDelay: DefaultReconnectDelay,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}

// applyDefaults re-fills fields an explicit empty/zero value would have
// blanked out during unmarshal.
func applyDefaults(cfg *Config) {
	if cfg.Client.ServerURL == "" {
		cfg.Client.ServerURL = DefaultServerURL
	}
	if cfg.Client.TokenFile == "" {
		cfg.Client.TokenFile = defaultTokenFile()
	}
	if cfg.Client.ReconnectDelay <= 0 {
		cfg.Client.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Client.RequestTimeout <= 0 {
		cfg.Client.RequestTimeout = DefaultRequestTimeout
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "ktabnet", "token")
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Client.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url %q: %w", cfg.Client.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url %q: scheme must be http or https", cfg.Client.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server_url %q: missing host", cfg.Client.ServerURL)
	}
	if cfg.Client.TokenFile == "" {
		return fmt.Errorf("token_file must not be empty")
	}
	return nil
}
