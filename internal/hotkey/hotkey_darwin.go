//go:build darwin

package hotkey

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

var keyByName = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,

	"SPACE":  hotkey.KeySpace,
	"TAB":    hotkey.KeyTab,
	"ENTER":  hotkey.KeyReturn,
	"ESCAPE": hotkey.KeyEscape,
	"DELETE": hotkey.KeyDelete,
	"LEFT":   hotkey.KeyLeft,
	"RIGHT":  hotkey.KeyRight,
	"UP":     hotkey.KeyUp,
	"DOWN":   hotkey.KeyDown,
}

type registration struct {
	hk   *hotkey.Hotkey
	stop chan struct{}
}

// xBackend uses golang.design/x/hotkey on top of the Cocoa run loop the
// tray already drives, so Pump has nothing to drive and Init has nothing to
// set up.
type xBackend struct {
	mu     sync.Mutex
	nextID ID
	regs   map[ID]*registration
	events chan Event
}

// NewBackend returns the golang.design/x/hotkey backend
func NewBackend() (Backend, error) {
	return &xBackend{
		regs:   make(map[ID]*registration),
		events: make(chan Event, 32),
	}, nil
}

func (x *xBackend) Init() error { return nil }

func (x *xBackend) Release() {}

func (x *xBackend) PeekAndDispatchOne() bool { return false }

func (x *xBackend) Register(b Binding) (ID, error) {
	key, ok := keyByName[b.Key()]
	if !ok {
		return 0, fmt.Errorf("unsupported key %q", b.Key())
	}

	var mods []hotkey.Modifier
	for _, m := range modifierOrder {
		if !b.Has(m) {
			continue
		}
		native, ok := modifierMap[m]
		if !ok {
			return 0, fmt.Errorf("unsupported modifier %s", m)
		}
		mods = append(mods, native)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return 0, fmt.Errorf("register %s: %w", b, err)
	}

	x.mu.Lock()
	x.nextID++
	id := x.nextID
	reg := &registration{hk: hk, stop: make(chan struct{})}
	x.regs[id] = reg
	x.mu.Unlock()

	go x.forward(id, reg)
	return id, nil
}

func (x *xBackend) forward(id ID, reg *registration) {
	held := repeatFilter{}
	for {
		var ev Event
		select {
		case <-reg.stop:
			return
		case <-reg.hk.Keydown():
			ev = Event{ID: id, State: Pressed}
		case <-reg.hk.Keyup():
			ev = Event{ID: id, State: Released}
		}
		if !held.accept(ev) {
			continue
		}
		select {
		case x.events <- ev:
		case <-reg.stop:
			return
		}
	}
}

func (x *xBackend) Poll() (Event, bool) {
	select {
	case ev := <-x.events:
		return ev, true
	default:
		return Event{}, false
	}
}

func (x *xBackend) UnregisterAll(ids []ID) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	var errs []error
	for _, id := range ids {
		reg, ok := x.regs[id]
		if !ok {
			errs = append(errs, fmt.Errorf("hotkey %d is not registered", id))
			continue
		}
		close(reg.stop)
		delete(x.regs, id)
		if err := reg.hk.Unregister(); err != nil {
			errs = append(errs, fmt.Errorf("unregister hotkey %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
