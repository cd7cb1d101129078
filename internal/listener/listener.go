// Package listener runs the hotkey poll loop. All hotkey registrations and
// the per-thread platform subsystem are created, used and released on the
// single OS thread the loop is locked to.
package listener

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/soundswitch-tray/internal/app"
	"github.com/petems/soundswitch-tray/internal/audio"
	"github.com/petems/soundswitch-tray/internal/binding"
	"github.com/petems/soundswitch-tray/internal/config"
	"github.com/petems/soundswitch-tray/internal/hotkey"
	"github.com/petems/soundswitch-tray/internal/match"
	"github.com/petems/soundswitch-tray/internal/switcher"
)

// ErrFatalInit wraps any failure that prevents the poll loop from starting
var ErrFatalInit = errors.New("hotkey listener failed to start")

type State int32

const (
	Starting State = iota
	Running
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const defaultPollInterval = 10 * time.Millisecond

type Config struct {
	// Hotkeys creates the backend. It is called on the locked listener
	// thread so thread-affine handles never leave it.
	Hotkeys   func() (hotkey.Backend, error)
	Devices   audio.Enumerator
	Committer audio.Committer
	Policy    match.Policy
	Mappings  []config.HotkeyMapping
	Logger    zerolog.Logger
	// PollInterval is the idle sleep between iterations. Defaults to 10ms.
	PollInterval time.Duration
}

type Listener struct {
	cfg   Config
	log   zerolog.Logger
	poll  time.Duration
	sleep func(time.Duration)
	state atomic.Int32
}

func New(cfg Config) *Listener {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &Listener{
		cfg:   cfg,
		log:   cfg.Logger.With().Str("component", "listener").Logger(),
		poll:  poll,
		sleep: time.Sleep,
	}
}

// State returns the current lifecycle state. Safe from any goroutine.
func (l *Listener) State() State { return State(l.state.Load()) }

func (l *Listener) setState(s State) {
	l.state.Store(int32(s))
	l.log.Debug().Stringer("state", s).Msg("Listener state changed")
}

// session is everything acquired during Starting
type session struct {
	backend hotkey.Backend
	table   *binding.Table
	ids     []hotkey.ID
	dir     *audio.Directory
}

// Run executes the full lifecycle on the calling goroutine, which stays
// locked to its OS thread until Run returns. msgs must be drained until
// then.
func (l *Listener) Run(shutdown *atomic.Bool, msgs chan<- app.Message) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.setState(Starting)
	defer l.setState(Stopped)

	s, err := l.start()
	if err != nil {
		l.log.Error().Err(err).Msg("Listener initialisation failed")
		msgs <- app.ErrorMessage(err)
		return
	}

	l.setState(Running)
	l.log.Info().Int("bindings", s.table.Len()).Msg("Listening for hotkeys")
	l.loop(s, shutdown, msgs)

	l.setState(Draining)
	if err := l.release(s.backend, s.ids); err != nil {
		l.log.Error().Err(err).Msg("Failed to unregister hotkeys")
		msgs <- app.ErrorMessage(fmt.Errorf("unregistering hotkeys: %w", err))
	}
}

// start acquires the backend, the binding table and the device snapshot.
// On failure everything acquired so far is released and a single error
// wrapping ErrFatalInit is returned.
func (l *Listener) start() (*session, error) {
	backend, err := l.cfg.Hotkeys()
	if err != nil {
		return nil, fmt.Errorf("%w: creating hotkey backend: %w", ErrFatalInit, err)
	}
	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("%w: initialising platform subsystem: %w", ErrFatalInit, err)
	}

	table, ids, err := binding.Build(backend, l.cfg.Mappings, l.log)
	if err != nil {
		l.cleanup(backend, ids)
		return nil, fmt.Errorf("%w: building hotkey table: %w", ErrFatalInit, err)
	}
	if table.Len() == 0 {
		l.log.Warn().Msg("No hotkeys registered; only quit is available")
	}

	dir, err := audio.NewDirectory(l.cfg.Devices)
	if err != nil {
		l.cleanup(backend, ids)
		return nil, fmt.Errorf("%w: %w", ErrFatalInit, err)
	}
	l.log.Info().
		Strs("outputs", dir.Names(audio.Output)).
		Strs("inputs", dir.Names(audio.Input)).
		Msg("Device snapshot taken")

	return &session{backend: backend, table: table, ids: ids, dir: dir}, nil
}

// cleanup releases a partially started session. Failures are only logged
// so the caller reports exactly one error.
func (l *Listener) cleanup(backend hotkey.Backend, ids []hotkey.ID) {
	if err := l.release(backend, ids); err != nil {
		l.log.Warn().Err(err).Msg("Cleanup after failed start was incomplete")
	}
}

func (l *Listener) release(backend hotkey.Backend, ids []hotkey.ID) error {
	err := backend.UnregisterAll(ids)
	backend.Release()
	return err
}

func (l *Listener) loop(s *session, shutdown *atomic.Bool, msgs chan<- app.Message) {
	for {
		worked := false

		if ev, ok := s.backend.Poll(); ok {
			worked = true
			l.handle(s, ev, msgs)
		}

		if s.backend.PeekAndDispatchOne() {
			worked = true
		}

		if shutdown.Load() {
			l.log.Info().Msg("Shutdown requested")
			return
		}

		if !worked {
			l.sleep(l.poll)
		}
	}
}

func (l *Listener) handle(s *session, ev hotkey.Event, msgs chan<- app.Message) {
	if ev.State != hotkey.Pressed {
		return
	}

	b, ok := s.table.Lookup(ev.ID)
	if !ok {
		l.log.Warn().Uint32("hotkey_id", uint32(ev.ID)).Msg("Event for unknown hotkey ignored")
		return
	}

	l.log.Info().Str("keys", b.Keys).Msg("Hotkey pressed")
	l.switchTo(s, audio.Output, b, b.OutputDeviceName, msgs)
	if b.InputDeviceName != "" {
		l.switchTo(s, audio.Input, b, b.InputDeviceName, msgs)
	}
}

func (l *Listener) switchTo(s *session, kind audio.Kind, b binding.HotkeyBinding, target string, msgs chan<- app.Message) {
	candidates := s.dir.Devices(kind)
	if l.log.GetLevel() <= zerolog.DebugLevel {
		for _, sc := range match.Rank(target, candidates, l.cfg.Policy) {
			l.log.Debug().
				Str("target", target).
				Str("candidate", sc.Device.Name).
				Float64("score", sc.Score).
				Msg("Match candidate")
		}
	}

	name, err := switcher.Switch(kind, target, candidates, l.cfg.Policy, l.cfg.Committer)
	if err != nil {
		l.log.Error().Err(err).Str("keys", b.Keys).Stringer("kind", kind).Msg("Switch failed")
		msgs <- app.ErrorMessage(err)
		return
	}
	l.log.Info().
		Stringer("kind", kind).
		Str("target", target).
		Str("device", name).
		Msg("Default device switched")
}
