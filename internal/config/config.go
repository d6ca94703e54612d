package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

type Config struct {
	Server   ServerConfig `json:"server"`
	Audio    AudioConfig  `json:"audio"`
	LogLevel string       `json:"log_level"`
}

type ServerConfig struct {
	Host              string `json:"host"`
	Port              int    `json:"port"`
	ConnectTimeoutSec int    `json:"connect_timeout_sec"`
}

type AudioConfig struct {
	Device    string `json:"device"`     // empty means subsystem default
	ChunkSize int    `json:"chunk_size"` // bytes per streamed buffer
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	// Default config
	cfg := &Config{
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			ConnectTimeoutSec: 5,
		},
		Audio: AudioConfig{
			Device:    "",
			ChunkSize: 1024,
		},
		LogLevel: "info",
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ConnectTimeout returns the dial timeout as a duration
func (c *Config) ConnectTimeout() time.Duration {
	if c.Server.ConnectTimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Server.ConnectTimeoutSec) * time.Second
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "buddy-audio", "config.json")
}
