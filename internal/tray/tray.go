package tray

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/petems/soundswitch-tray/internal/audio"
	"github.com/petems/soundswitch-tray/internal/config"
	"github.com/petems/soundswitch-tray/internal/switcher"
)

const notifyTitle = "SoundSwitch - Missing Audio Devices"

// Quitter receives the tray's quit request
type Quitter interface {
	Quit()
}

type Config struct {
	Quitter  Quitter
	Devices  *audio.Directory
	Mappings []config.HotkeyMapping
	Policy   string
	LogPath  string
	Version  string
	Commit   string
	Logger   zerolog.Logger
}

type UI struct {
	quit     Quitter
	devices  *audio.Directory
	mappings []config.HotkeyMapping
	policy   string
	logPath  string
	version  string
	commit   string
	log      zerolog.Logger

	copyText func(string) error
	notify   func(title, message, icon string) error
}

func New(cfg Config) *UI {
	return &UI{
		quit:     cfg.Quitter,
		devices:  cfg.Devices,
		mappings: cfg.Mappings,
		policy:   cfg.Policy,
		logPath:  cfg.LogPath,
		version:  cfg.Version,
		commit:   cfg.Commit,
		log:      cfg.Logger,
		copyText: clipboard.WriteAll,
		notify:   beeep.Notify,
	}
}

// Run blocks in the systray event loop. It must be called from the main
// goroutine.
func (u *UI) Run() {
	systray.Run(u.onReady, u.onExit)
}

// Stop ends the systray event loop started by Run
func (u *UI) Stop() {
	systray.Quit()
}

func (u *UI) onReady() {
	systray.SetTitle("🔊")
	systray.SetTooltip(fmt.Sprintf("SoundSwitch: %d hotkeys, %s", len(u.mappings), u.policy))

	mHotkeys := systray.AddMenuItem("Hotkeys", "Configured hotkeys")
	for _, m := range u.mappings {
		item := mHotkeys.AddSubMenuItem(bindingLabel(m), "")
		item.Disable()
	}
	systray.AddSeparator()

	mCopy := systray.AddMenuItem("Copy device names", "Copy available device names to the clipboard")
	mLog := systray.AddMenuItem("Log: "+u.logPath, "Log file location")
	mLog.Disable()
	mAbout := systray.AddMenuItem(fmt.Sprintf("SoundSwitch %s (%s)", u.version, u.commit), "")
	mAbout.Disable()

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	go u.handleEvents(mCopy, mQuit)
}

func (u *UI) handleEvents(mCopy, mQuit *systray.MenuItem) {
	for {
		select {
		case <-mCopy.ClickedCh:
			if err := u.copyDeviceNames(); err != nil {
				u.log.Error().Err(err).Msg("Failed to copy device names")
			}
		case <-mQuit.ClickedCh:
			u.log.Info().Msg("Quit selected from tray")
			u.quit.Quit()
			return
		}
	}
}

func (u *UI) onExit() {
	u.log.Debug().Msg("Tray exited")
}

func (u *UI) copyDeviceNames() error {
	if u.devices == nil {
		return fmt.Errorf("no device snapshot available")
	}
	text := DeviceNamesText(u.devices.Names(audio.Output), u.devices.Names(audio.Input))
	if err := u.copyText(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	u.log.Info().Msg("Copied device names to clipboard")
	return nil
}

// NotifyReport shows a desktop notification when the report lists missing
// devices. It is a no-op for an empty report.
func (u *UI) NotifyReport(r switcher.Report) error {
	if r.Empty() {
		return nil
	}
	if err := u.notify(notifyTitle, r.Message(), ""); err != nil {
		return fmt.Errorf("showing notification: %w", err)
	}
	return nil
}

// DeviceNamesText formats device names in the form config.toml expects
func DeviceNamesText(outputs, inputs []string) string {
	var sb strings.Builder
	sb.WriteString("# Output devices (device-name)\n")
	for _, n := range outputs {
		fmt.Fprintf(&sb, "%q\n", n)
	}
	sb.WriteString("\n# Input devices (input-device-name)\n")
	for _, n := range inputs {
		fmt.Fprintf(&sb, "%q\n", n)
	}
	return sb.String()
}

func bindingLabel(m config.HotkeyMapping) string {
	if m.HasInput() {
		return fmt.Sprintf("%s → %s / %s", m.Keys, m.DeviceName, m.InputDeviceName)
	}
	return fmt.Sprintf("%s → %s", m.Keys, m.DeviceName)
}
