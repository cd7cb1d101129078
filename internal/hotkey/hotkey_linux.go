//go:build linux

package hotkey

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const (
	xkF1 xproto.Keysym = 0xffbe

	// Caps Lock and Num Lock must not change whether a grab matches
	lockMasks     = xproto.ModMaskLock | xproto.ModMask2
	modifierMasks = xproto.ModMaskShift | xproto.ModMaskControl | xproto.ModMask1 | xproto.ModMask4
)

var lockVariants = []uint16{0, xproto.ModMaskLock, xproto.ModMask2, lockMasks}

var keysymByName = map[string]xproto.Keysym{
	"SPACE":  0x0020,
	"TAB":    0xff09,
	"ENTER":  0xff0d,
	"ESCAPE": 0xff1b,
	"DELETE": 0xffff,
	"LEFT":   0xff51,
	"UP":     0xff52,
	"RIGHT":  0xff53,
	"DOWN":   0xff54,
}

// x11Grab is one passive key grab on the root window
type x11Grab struct {
	keycode xproto.Keycode
	mods    uint16
}

// keyEvent is a raw KeyPress or KeyRelease
type keyEvent struct {
	keycode xproto.Keycode
	state   uint16
	time    xproto.Timestamp
	pressed bool
}

// x11Backend grabs keys on the root window over a pure Go X11 connection.
// The display is opened in Init so a missing X server surfaces as
// ErrServiceUnavailable on the listener thread instead of at startup.
type x11Backend struct {
	conn    *xgb.Conn
	root    xproto.Window
	keymap  *xproto.GetKeyboardMappingReply
	minCode xproto.Keycode

	nextID  ID
	decoder *x11Decoder
	pending []Event
}

// NewBackend returns the X11 backend. No connection is made until Init.
func NewBackend() (Backend, error) {
	return &x11Backend{decoder: newX11Decoder()}, nil
}

func (x *x11Backend) Init() error {
	if x.conn != nil {
		return nil
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("%w: cannot open X display %q: %v", ErrServiceUnavailable, os.Getenv("DISPLAY"), err)
	}

	setup := xproto.Setup(conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	keymap, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: reading keyboard mapping: %v", ErrServiceUnavailable, err)
	}

	x.conn = conn
	x.root = setup.DefaultScreen(conn).Root
	x.keymap = keymap
	x.minCode = setup.MinKeycode
	return nil
}

func (x *x11Backend) Release() {
	if x.conn != nil {
		x.conn.Close()
		x.conn = nil
	}
}

func (x *x11Backend) Register(b Binding) (ID, error) {
	if x.conn == nil {
		return 0, fmt.Errorf("%w: X display is not open", ErrServiceUnavailable)
	}

	sym, err := x11Keysym(b.Key())
	if err != nil {
		return 0, err
	}
	code, ok := keycodeFor(sym, x.minCode, x.keymap.KeysymsPerKeycode, x.keymap.Keysyms)
	if !ok {
		return 0, fmt.Errorf("key %s is not on the current keyboard map", b.Key())
	}

	g := x11Grab{keycode: code, mods: x11Modifiers(b)}
	for _, existing := range x.decoder.grabs {
		if existing == g {
			return 0, fmt.Errorf("%s is already registered", b)
		}
	}

	for _, lock := range lockVariants {
		err := xproto.GrabKeyChecked(x.conn, false, x.root, g.mods|lock, g.keycode,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			x.ungrab(g)
			return 0, fmt.Errorf("XGrabKey %s (held by another client?): %w", b, err)
		}
	}

	x.nextID++
	x.decoder.grabs[x.nextID] = g
	return x.nextID, nil
}

func (x *x11Backend) ungrab(g x11Grab) error {
	var errs []error
	for _, lock := range lockVariants {
		if err := xproto.UngrabKeyChecked(x.conn, g.keycode, x.root, g.mods|lock).Check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (x *x11Backend) Poll() (Event, bool) {
	if len(x.pending) == 0 {
		return Event{}, false
	}
	ev := x.pending[0]
	x.pending = x.pending[1:]
	return ev, true
}

func (x *x11Backend) UnregisterAll(ids []ID) error {
	var errs []error
	for _, id := range ids {
		g, ok := x.decoder.grabs[id]
		if !ok {
			errs = append(errs, fmt.Errorf("hotkey %d is not registered", id))
			continue
		}
		delete(x.decoder.grabs, id)
		delete(x.decoder.held, id)
		if x.conn == nil {
			continue
		}
		if err := x.ungrab(g); err != nil {
			errs = append(errs, fmt.Errorf("XUngrabKey %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// PeekAndDispatchOne takes one event off the X connection. Key events on
// grabbed keys become pending hotkey events; everything else is dropped.
func (x *x11Backend) PeekAndDispatchOne() bool {
	if x.conn == nil {
		return false
	}

	ev, xerr := x.conn.PollForEvent()
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		x.pending = append(x.pending, x.decoder.feed(keyEvent{keycode: e.Detail, state: e.State, time: e.Time, pressed: true})...)
		return true
	case xproto.KeyReleaseEvent:
		x.pending = append(x.pending, x.decoder.feed(keyEvent{keycode: e.Detail, state: e.State, time: e.Time})...)
		return true
	case nil:
		if xerr != nil {
			return true
		}
		x.pending = append(x.pending, x.decoder.flush()...)
		return false
	default:
		return true
	}
}

// x11Decoder turns raw key events into hotkey events. X11 reports
// keyboard auto-repeat as a release immediately followed by a press with
// the same timestamp; such pairs are dropped, and presses of a key that
// is still held are ignored.
type x11Decoder struct {
	grabs    map[ID]x11Grab
	held     repeatFilter
	deferred *keyEvent
}

func newX11Decoder() *x11Decoder {
	return &x11Decoder{grabs: make(map[ID]x11Grab), held: repeatFilter{}}
}

func (d *x11Decoder) feed(k keyEvent) []Event {
	var out []Event
	if r := d.deferred; r != nil {
		d.deferred = nil
		if k.pressed && k.keycode == r.keycode && k.time == r.time {
			return nil
		}
		out = d.release(r.keycode)
	}
	if !k.pressed {
		d.deferred = &k
		return out
	}
	return append(out, d.press(k)...)
}

// flush emits a release held back while waiting for a repeat press
func (d *x11Decoder) flush() []Event {
	r := d.deferred
	if r == nil {
		return nil
	}
	d.deferred = nil
	return d.release(r.keycode)
}

func (d *x11Decoder) press(k keyEvent) []Event {
	mods := k.state & modifierMasks
	for id, g := range d.grabs {
		if g.keycode != k.keycode || g.mods != mods {
			continue
		}
		ev := Event{ID: id, State: Pressed}
		if d.held.accept(ev) {
			return []Event{ev}
		}
		return nil
	}
	return nil
}

// release matches on keycode only; modifiers may already be up
func (d *x11Decoder) release(code xproto.Keycode) []Event {
	var out []Event
	for id, g := range d.grabs {
		if g.keycode != code {
			continue
		}
		ev := Event{ID: id, State: Released}
		if d.held.accept(ev) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func x11Modifiers(b Binding) uint16 {
	var mods uint16
	if b.Has(ModShift) {
		mods |= xproto.ModMaskShift
	}
	if b.Has(ModCtrl) {
		mods |= xproto.ModMaskControl
	}
	if b.Has(ModAlt) {
		mods |= xproto.ModMask1
	}
	if b.Has(ModSuper) {
		mods |= xproto.ModMask4
	}
	return mods
}

func x11Keysym(key string) (xproto.Keysym, error) {
	if sym, ok := keysymByName[key]; ok {
		return sym, nil
	}
	if len(key) == 1 {
		c := key[0]
		switch {
		case c >= 'A' && c <= 'Z':
			// Keymaps list the lower-case keysym first
			return xproto.Keysym(c - 'A' + 'a'), nil
		case c >= '0' && c <= '9':
			return xproto.Keysym(c), nil
		}
	}
	if isFunctionKey(key) {
		var n int
		fmt.Sscanf(key[1:], "%d", &n)
		return xkF1 + xproto.Keysym(n-1), nil
	}
	return 0, fmt.Errorf("unsupported key %q", key)
}

// keycodeFor finds the first keycode whose keysym list contains sym
func keycodeFor(sym xproto.Keysym, minCode xproto.Keycode, perCode byte, keysyms []xproto.Keysym) (xproto.Keycode, bool) {
	if perCode == 0 {
		return 0, false
	}
	for i, s := range keysyms {
		if s == sym {
			return minCode + xproto.Keycode(i/int(perCode)), true
		}
	}
	return 0, false
}
