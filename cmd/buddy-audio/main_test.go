package main

import (
	"testing"

	"github.com/spf13/cobra"
)

// newFlagCommand builds a command with the same override flags as the real
// root command and parses the given arguments into it.
func newFlagCommand(t *testing.T, args []string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "buddy-audio"}
	registerFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags %v: %v", args, err)
	}
	return cmd
}

// pointConfigAtTempDir keeps the test away from any real config file so
// loadConfig starts from defaults on every platform.
func pointConfigAtTempDir(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)
}

func TestLoadConfigDefaultsWithoutFlags(t *testing.T) {
	pointConfigAtTempDir(t)
	cmd := newFlagCommand(t, nil)

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Audio.ChunkSize != 1024 {
		t.Errorf("expected default chunk size 1024, got %d", cfg.Audio.ChunkSize)
	}
	if cfg.Audio.Device != "" {
		t.Errorf("expected no default device, got %q", cfg.Audio.Device)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *configValues)
	}{
		{
			name: "host flag",
			args: []string{"--host", "buddy.local"},
			check: func(t *testing.T, cfg *configValues) {
				if cfg.host != "buddy.local" {
					t.Errorf("expected host buddy.local, got %q", cfg.host)
				}
				if cfg.port != 8080 {
					t.Errorf("port should stay at its default, got %d", cfg.port)
				}
			},
		},
		{
			name: "port flag",
			args: []string{"--port", "9000"},
			check: func(t *testing.T, cfg *configValues) {
				if cfg.port != 9000 {
					t.Errorf("expected port 9000, got %d", cfg.port)
				}
				if cfg.host != "localhost" {
					t.Errorf("host should stay at its default, got %q", cfg.host)
				}
			},
		},
		{
			name: "chunk size flag",
			args: []string{"--chunk-size", "2048"},
			check: func(t *testing.T, cfg *configValues) {
				if cfg.chunkSize != 2048 {
					t.Errorf("expected chunk size 2048, got %d", cfg.chunkSize)
				}
			},
		},
		{
			name: "device flag",
			args: []string{"--device", "Microphone 1"},
			check: func(t *testing.T, cfg *configValues) {
				if cfg.device != "Microphone 1" {
					t.Errorf("expected device Microphone 1, got %q", cfg.device)
				}
			},
		},
		{
			name: "log level flag",
			args: []string{"--log-level", "debug"},
			check: func(t *testing.T, cfg *configValues) {
				if cfg.logLevel != "debug" {
					t.Errorf("expected log level debug, got %q", cfg.logLevel)
				}
			},
		},
		{
			name: "combined flags",
			args: []string{"--host", "10.0.0.2", "--port", "7777", "--device", "Microphone 1"},
			check: func(t *testing.T, cfg *configValues) {
				if cfg.host != "10.0.0.2" || cfg.port != 7777 || cfg.device != "Microphone 1" {
					t.Errorf("combined overrides not applied: %+v", cfg)
				}
				if cfg.chunkSize != 1024 || cfg.logLevel != "info" {
					t.Errorf("unset flags should leave defaults intact: %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pointConfigAtTempDir(t)
			cmd := newFlagCommand(t, tt.args)

			cfg, err := loadConfig(cmd)
			if err != nil {
				t.Fatalf("loadConfig returned error: %v", err)
			}

			tt.check(t, &configValues{
				host:      cfg.Server.Host,
				port:      cfg.Server.Port,
				chunkSize: cfg.Audio.ChunkSize,
				device:    cfg.Audio.Device,
				logLevel:  cfg.LogLevel,
			})
		})
	}
}

// configValues flattens the loaded config for the table checks above
type configValues struct {
	host      string
	port      int
	chunkSize int
	device    string
	logLevel  string
}
