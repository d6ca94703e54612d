package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khutes/buddy-audio/internal/audio"
	"github.com/khutes/buddy-audio/internal/client"
	"github.com/khutes/buddy-audio/internal/config"
	"github.com/khutes/buddy-audio/internal/logging"
	"github.com/khutes/buddy-audio/internal/permissions"
	"github.com/khutes/buddy-audio/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

var (
	flagHost      string
	flagPort      int
	flagChunkSize int
	flagDevice    string
	flagLogLevel  string
)

func main() {
	root := &cobra.Command{
		Use:          "buddy-audio",
		Short:        "Stream microphone audio to a remote TCP server",
		Version:      fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage: true,
		RunE:         runTray,
	}

	registerFlags(root)

	root.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List input-capable audio devices and exit",
		RunE:  runDevices,
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerFlags declares the override flags shared by every subcommand
func registerFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&flagHost, "host", "", "server host (overrides config)")
	root.PersistentFlags().IntVar(&flagPort, "port", 0, "server port (overrides config)")
	root.PersistentFlags().IntVar(&flagChunkSize, "chunk-size", 0, "bytes per audio chunk (overrides config)")
	root.PersistentFlags().StringVar(&flagDevice, "device", "", "input device name (overrides config)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (overrides config)")
}

// loadConfig reads the config file and applies any flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = flagHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = flagPort
	}
	if flags.Changed("chunk-size") {
		cfg.Audio.ChunkSize = flagChunkSize
	}
	if flags.Changed("device") {
		cfg.Audio.Device = flagDevice
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}

	return cfg, nil
}

func runTray(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)

	// macOS requires explicit microphone approval before capture works
	if err := permissions.EnsurePermissions(); err != nil {
		log.Fatal().Err(err).Msg("Required permissions not granted")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize audio capture
	source, err := audio.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio")
	}
	defer source.Close()

	streamer := client.New(client.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ChunkSize:      cfg.Audio.ChunkSize,
		ConnectTimeout: cfg.ConnectTimeout(),
		Source:         source,
		Logger:         log,
	})

	if cfg.Audio.Device != "" {
		streamer.SelectInputDevice(cfg.Audio.Device)
	}

	trayUI := tray.New(streamer, cfg, log, Version, Commit)

	log.Info().Str("addr", streamer.Addr()).Msg("BuddyAudio starting...")

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		streamer.Disconnect()
		source.Close()
		os.Exit(0)
	}()

	// Start tray UI - MUST run on main thread
	return trayUI.Run(ctx)
}

func runDevices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	source, err := audio.New()
	if err != nil {
		return err
	}
	defer source.Close()

	streamer := client.New(client.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		ChunkSize: cfg.Audio.ChunkSize,
		Source:    source,
		Logger:    logging.NewWithLevel("error"),
	})

	devices, err := streamer.ListInputDevices()
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No input-capable devices found")
		return nil
	}

	for _, d := range devices {
		fmt.Printf("%3d  %-40s  in=%d  %.0f Hz\n",
			d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
	return nil
}
