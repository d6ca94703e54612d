package tray

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/getlantern/systray"
	"github.com/khutes/buddy-audio/internal/client"
	"github.com/khutes/buddy-audio/internal/config"
	"github.com/rs/zerolog"
)

// UI is the tray front-end that owns the streaming goroutine. It is the only
// caller of Connect/Disconnect/StreamLoop, so the client's single-consumer
// threading model holds.
type UI struct {
	client  *client.Client
	cfg     *config.Config
	version string
	commit  string
	log     zerolog.Logger

	// Menu items
	mConnect *systray.MenuItem
	mDevices *systray.MenuItem
}

func New(c *client.Client, cfg *config.Config, log zerolog.Logger, version, commit string) *UI {
	return &UI{
		client:  c,
		cfg:     cfg,
		version: version,
		commit:  commit,
		log:     log,
	}
}

func (u *UI) Run(ctx context.Context) error {
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	u.updateStatus("idle")
	systray.SetTooltip("Microphone streaming to " + u.client.Addr())

	// Build menu
	u.mConnect = systray.AddMenuItem("Connect", "Connect and start streaming")
	systray.AddSeparator()

	u.mDevices = systray.AddMenuItem("Microphone", "Select input device")
	u.buildDeviceMenu()

	systray.AddSeparator()
	mCopyAddr := systray.AddMenuItem("Copy Server Address", "Copy host:port to clipboard")
	mAbout := systray.AddMenuItem("About", "About BuddyAudio")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	// Event loop
	go u.handleEvents(mCopyAddr, mAbout, mQuit)
}

func (u *UI) handleEvents(mCopyAddr, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mConnect.ClickedCh:
			u.toggleConnection()
		case <-mCopyAddr.ClickedCh:
			u.copyServerAddress()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			u.client.Disconnect()
			systray.Quit()
			return
		}
	}
}

// toggleConnection connects and launches the stream loop, or tears the
// connection down if one is up
func (u *UI) toggleConnection() {
	if u.client.Connected() {
		u.client.Disconnect()
		u.mConnect.SetTitle("Connect")
		u.updateStatus("idle")
		return
	}

	ok, err := u.client.Connect()
	if err != nil {
		u.log.Error().Err(err).Msg("Connect failed")
		u.updateStatus("error")
		return
	}
	if !ok {
		u.log.Warn().Str("addr", u.client.Addr()).Msg("Server unreachable")
		u.updateStatus("error")
		return
	}

	u.mConnect.SetTitle("Disconnect")
	u.updateStatus("streaming")

	go func() {
		if err := u.client.StreamLoop(); err != nil {
			u.log.Error().Err(err).Msg("Stream loop ended")
			u.updateStatus("error")
		} else {
			u.updateStatus("idle")
		}
		u.client.Disconnect()
		u.mConnect.SetTitle("Connect")
	}()
}

func (u *UI) buildDeviceMenu() {
	names, err := u.client.ListInputDeviceNames()
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to list audio devices")
		return
	}

	deviceItems := make(map[string]*systray.MenuItem)

	for _, name := range names {
		item := u.mDevices.AddSubMenuItem(name, "")
		if name == u.cfg.Audio.Device {
			item.Check()
		}
		deviceItems[name] = item

		go func(deviceName string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				// Uncheck all other items
				for n, itm := range deviceItems {
					if n != deviceName {
						itm.Uncheck()
					}
				}
				// Check this item
				menuItem.Check()
				u.client.SelectInputDevice(deviceName)
				u.cfg.Audio.Device = deviceName
				u.cfg.Save()
				u.log.Info().Str("device", deviceName).Msg("Changed input device")
			}
		}(name, item)
	}
}

func (u *UI) copyServerAddress() {
	addr := u.client.Addr()
	if err := clipboard.WriteAll(addr); err != nil {
		u.log.Error().Err(err).Msg("Failed to copy server address")
		return
	}
	u.log.Info().Str("addr", addr).Msg("Copied server address")
}

func (u *UI) showAbout() {
	fmt.Printf("BuddyAudio %s (%s)\nMicrophone streaming client\n", u.version, u.commit)
}

func (u *UI) onExit() {
	// Cleanup
}

// updateStatus sets the tray title with microphone emoji and status indicator
func (u *UI) updateStatus(status string) {
	emoji := emojiForStatus(status)
	systray.SetTitle(fmt.Sprintf("🎤 %s", emoji))
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "streaming":
		return "🔴" // Red - live audio going out
	case "idle":
		return "🟢" // Green - ready/idle
	case "error":
		return "⚪️" // White - error
	default:
		return "🟢" // Green - default to ready
	}
}
