package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/petems/soundswitch-tray/internal/app"
	"github.com/petems/soundswitch-tray/internal/audio"
	"github.com/petems/soundswitch-tray/internal/config"
	"github.com/petems/soundswitch-tray/internal/hotkey"
	"github.com/petems/soundswitch-tray/internal/listener"
	"github.com/petems/soundswitch-tray/internal/logging"
	"github.com/petems/soundswitch-tray/internal/switcher"
	"github.com/petems/soundswitch-tray/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	configFlag := flag.String("config", "", "Path to config.toml (default: search next to the executable, the working directory, then the user config dir)")
	logLevelFlag := flag.String("log-level", "", "Override the configured log level (trace, debug, info, warn, error)")
	listFlag := flag.Bool("list", false, "Print the available audio devices and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("soundswitch %s (%s)\n", Version, Commit)
		return
	}

	svc, err := audio.NewService()
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to initialize audio backend")
	}
	defer svc.Close()

	if *listFlag {
		if err := printDevices(os.Stdout, svc); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level := cfg.LogLevel
	if *logLevelFlag != "" {
		level = *logLevelFlag
	}
	log := logging.NewWithLevel(level)

	policy := cfg.Policy()
	log.Info().
		Str("config", cfg.Path).
		Int("hotkeys", len(cfg.Hotkeys)).
		Stringer("policy", policy).
		Msg("SoundSwitch starting...")
	if len(cfg.Hotkeys) == 0 {
		log.Warn().Msg("No hotkeys configured")
	}

	dir, report := validate(log, cfg, svc)

	application := app.New(app.Config{
		Listener: listener.New(listener.Config{
			Hotkeys:   hotkey.NewBackend,
			Devices:   svc,
			Committer: svc,
			Policy:    policy,
			Mappings:  cfg.Hotkeys,
			Logger:    log,
		}),
		Logger: log,
	})

	trayUI := tray.New(tray.Config{
		Quitter:  application,
		Devices:  dir,
		Mappings: cfg.Hotkeys,
		Policy:   policy.String(),
		LogPath:  logging.Path(),
		Version:  Version,
		Commit:   Commit,
		Logger:   log,
	})

	go func() {
		if err := trayUI.NotifyReport(report); err != nil {
			log.Warn().Err(err).Msg("Missing device notification failed")
		}
	}()

	// Setup shutdown signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		application.Run(ctx)
		trayUI.Stop()
	}()

	// Start tray UI - MUST run on main thread
	trayUI.Run()

	application.Quit()
	<-application.Done()
	log.Info().Msg("SoundSwitch exited")
}

// validate checks every configured device against a fresh snapshot. A
// failed snapshot only disables the check; the listener takes its own.
func validate(log zerolog.Logger, cfg *config.Config, svc audio.Enumerator) (*audio.Directory, switcher.Report) {
	dir, err := audio.NewDirectory(svc)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list devices during validation")
		return nil, switcher.Report{}
	}

	report := switcher.Validate(cfg.Hotkeys, dir, cfg.Policy())
	for _, m := range report.MissingOutputs {
		log.Warn().Str("device", m.Name).Str("keys", m.Keys).Msg("Output device not found")
	}
	for _, m := range report.MissingInputs {
		log.Warn().Str("device", m.Name).Str("keys", m.Keys).Msg("Input device not found")
	}
	return dir, report
}

func printDevices(w io.Writer, enum audio.Enumerator) error {
	dir, err := audio.NewDirectory(enum)
	if err != nil {
		return err
	}
	for _, kind := range []audio.Kind{audio.Output, audio.Input} {
		fmt.Fprintf(w, "%s devices:\n", kind)
		for _, d := range dir.Devices(kind) {
			fmt.Fprintf(w, "  %-40s %s\n", d.Name, d.ID)
		}
	}
	return nil
}
