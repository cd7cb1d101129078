package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type MessageKind int

const (
	MessageError MessageKind = iota
	MessageQuit
)

// Message is sent to the coordinator by the listener and by UI actions
type Message struct {
	Kind MessageKind
	Text string
	Err  error
}

func ErrorMessage(err error) Message {
	return Message{Kind: MessageError, Text: err.Error(), Err: err}
}

func QuitMessage() Message {
	return Message{Kind: MessageQuit}
}

// Runner is the background hotkey listener. Run must return soon after
// shutdown becomes true and may send on msgs until it returns.
type Runner interface {
	Run(shutdown *atomic.Bool, msgs chan<- Message)
}

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultQueueSize    = 64
)

type Config struct {
	Listener Runner
	Logger   zerolog.Logger
	// PollInterval is how long the coordinator waits between channel
	// drains. Defaults to 100ms.
	PollInterval time.Duration
	// Disconnect, when closed, means no producer will send again and is
	// treated as a quit request
	Disconnect <-chan struct{}
}

// App owns the shutdown flag and the message channel and supervises the
// listener goroutine for one run.
type App struct {
	listener Runner
	log      zerolog.Logger
	poll     time.Duration

	// msgs is never closed; producers may send until Run has joined the
	// listener
	msgs       chan Message
	disconnect <-chan struct{}
	shutdown   atomic.Bool
	done       chan struct{}
}

func New(cfg Config) *App {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &App{
		listener:   cfg.Listener,
		log:        cfg.Logger,
		poll:       poll,
		msgs:       make(chan Message, defaultQueueSize),
		disconnect: cfg.Disconnect,
		done:       make(chan struct{}),
	}
}

// Quit asks Run to stop. It is safe to call from any goroutine, including
// after Run has returned.
func (a *App) Quit() {
	select {
	case a.msgs <- QuitMessage():
	case <-a.done:
	}
}

// Done is closed once Run has joined the listener
func (a *App) Done() <-chan struct{} { return a.done }

// ShuttingDown reports whether the shutdown flag has been raised
func (a *App) ShuttingDown() bool { return a.shutdown.Load() }

// Run starts the listener and processes messages until a quit request,
// a disconnect or ctx cancellation. It always raises the shutdown flag
// and waits for the listener before returning.
func (a *App) Run(ctx context.Context) {
	defer close(a.done)

	exited := make(chan any, 1)
	go func() {
		defer func() { exited <- recover() }()
		a.listener.Run(&a.shutdown, a.msgs)
	}()

	a.log.Info().Msg("Coordinator started")
	a.loop(ctx)

	a.log.Info().Msg("Shutting down listener")
	a.shutdown.Store(true)
	a.join(exited)
	a.log.Info().Msg("Coordinator stopped")
}

func (a *App) loop(ctx context.Context) {
	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()

	for {
		if a.drain() {
			return
		}
		select {
		case <-ctx.Done():
			a.log.Info().Msg("Context cancelled, quitting")
			return
		case <-a.disconnect:
			a.log.Warn().Msg("Message producers disconnected, quitting")
			return
		case <-ticker.C:
		}
	}
}

// drain handles every queued message without blocking. It reports true
// when the coordinator should stop.
func (a *App) drain() bool {
	for {
		select {
		case msg := <-a.msgs:
			if a.handle(msg) {
				return true
			}
		default:
			return false
		}
	}
}

func (a *App) handle(msg Message) bool {
	switch msg.Kind {
	case MessageQuit:
		a.log.Info().Msg("Quit requested")
		return true
	default:
		a.log.Error().Err(msg.Err).Str("message", msg.Text).Msg("Listener reported an error")
		return false
	}
}

// join waits for the listener without a timeout. Messages sent while it
// drains are still logged so the listener never blocks on a full channel.
func (a *App) join(exited <-chan any) {
	for {
		select {
		case p := <-exited:
			if p != nil {
				a.log.Error().Interface("panic", p).Msg("Listener goroutine panicked")
			}
			return
		case msg := <-a.msgs:
			if msg.Kind == MessageError {
				a.handle(msg)
			}
		}
	}
}
