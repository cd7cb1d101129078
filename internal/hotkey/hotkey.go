package hotkey

import "errors"

// ID identifies one registration within a backend session
type ID uint32

// State is the key transition an Event reports
type State int

const (
	Pressed State = iota
	Released
)

func (s State) String() string {
	if s == Released {
		return "released"
	}
	return "pressed"
}

// Event is delivered for every transition of a registered hotkey
type Event struct {
	ID    ID
	State State
}

// ErrServiceUnavailable means the backend cannot register anything at all,
// as opposed to a single binding being rejected.
var ErrServiceUnavailable = errors.New("hotkey service unavailable")

// Service registers global hotkeys and reports their events.
// Registrations are thread-affine: Register, Poll and UnregisterAll must
// all be called from the OS thread that initialized the backend.
type Service interface {
	// Register grabs the binding and returns the ID its events will carry
	Register(b Binding) (ID, error)
	// Poll returns the next pending event without blocking
	Poll() (Event, bool)
	// UnregisterAll releases every id, attempting all of them even when
	// some fail, and returns the joined failures
	UnregisterAll(ids []ID) error
}

// Pump drives the native message queue of the calling thread
type Pump interface {
	// PeekAndDispatchOne processes at most one pending native message and
	// reports whether there was one
	PeekAndDispatchOne() bool
}

// Subsystem is per-thread platform state the backend needs, such as COM
type Subsystem interface {
	Init() error
	Release()
}

// Backend bundles everything the hotkey listener owns on its thread
type Backend interface {
	Service
	Pump
	Subsystem
}
