//go:build windows

package hotkey

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32DLL = windows.NewLazySystemDLL("user32.dll")

	procRegisterHotKey   = user32DLL.NewProc("RegisterHotKey")
	procUnregisterHotKey = user32DLL.NewProc("UnregisterHotKey")
	procPeekMessageW     = user32DLL.NewProc("PeekMessageW")
	procTranslateMessage = user32DLL.NewProc("TranslateMessage")
	procDispatchMessageW = user32DLL.NewProc("DispatchMessageW")
)

const (
	wmHotkey   = 0x0312
	pmNoRemove = 0x0000
	pmRemove   = 0x0001

	modAlt      = 0x0001
	modControl  = 0x0002
	modShift    = 0x0004
	modWin      = 0x0008
	modNoRepeat = 0x4000

	vkF1 = 0x70

	// CoInitializeEx returns S_FALSE when COM is already initialized on
	// the thread; it still has to be balanced by CoUninitialize.
	sFalse = syscall.Errno(1)
)

var vkByName = map[string]uint32{
	"SPACE":  0x20,
	"TAB":    0x09,
	"ENTER":  0x0D,
	"ESCAPE": 0x1B,
	"DELETE": 0x2E,
	"LEFT":   0x25,
	"UP":     0x26,
	"RIGHT":  0x27,
	"DOWN":   0x28,
}

// point mirrors the Win32 POINT struct.
type point struct {
	x int32
	y int32
}

// winMsg mirrors the Win32 MSG struct (tagMSG from winuser.h).
// Field order and types must not be changed -- the layout must match
// the Win32 binary layout on both 32-bit and 64-bit Windows.
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

// win32Backend registers thread hotkeys with RegisterHotKey(NULL, ...).
// WM_HOTKEY is posted to the registering thread's queue, so the pump and
// the registrations must share one locked OS thread.
type win32Backend struct {
	nextID  ID
	pending []Event
	comInit bool
}

// NewBackend returns the Win32 backend. Call it on the thread that will
// own the registrations.
func NewBackend() (Backend, error) {
	if err := user32DLL.Load(); err != nil {
		return nil, fmt.Errorf("%w: user32.dll: %v", ErrServiceUnavailable, err)
	}
	return &win32Backend{}, nil
}

func (w *win32Backend) Init() error {
	if err := windows.CoInitializeEx(0, windows.COINIT_MULTITHREADED); err != nil && !errors.Is(err, sFalse) {
		return fmt.Errorf("failed to initialize COM (MTA): %w", err)
	}
	w.comInit = true

	// Peeking creates the thread message queue before any hotkey is posted
	var msg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmNoRemove)
	return nil
}

func (w *win32Backend) Release() {
	if w.comInit {
		windows.CoUninitialize()
		w.comInit = false
	}
}

func (w *win32Backend) Register(b Binding) (ID, error) {
	vk, err := virtualKey(b.Key())
	if err != nil {
		return 0, err
	}

	id := w.nextID + 1
	if id > 0xBFFF {
		return 0, fmt.Errorf("hotkey ID range exhausted (ID=%d)", id)
	}

	res, _, callErr := procRegisterHotKey.Call(0, uintptr(id), uintptr(win32Modifiers(b)|modNoRepeat), uintptr(vk))
	if res == 0 {
		if callErr == syscall.Errno(0) {
			return 0, errors.New("RegisterHotKey failed")
		}
		return 0, fmt.Errorf("RegisterHotKey %s: %w", b, callErr)
	}
	w.nextID = id
	return id, nil
}

func (w *win32Backend) Poll() (Event, bool) {
	if len(w.pending) == 0 {
		return Event{}, false
	}
	ev := w.pending[0]
	w.pending = w.pending[1:]
	return ev, true
}

func (w *win32Backend) UnregisterAll(ids []ID) error {
	var errs []error
	for _, id := range ids {
		res, _, callErr := procUnregisterHotKey.Call(0, uintptr(id))
		if res == 0 {
			errs = append(errs, fmt.Errorf("UnregisterHotKey %d: %w", id, callErr))
		}
	}
	return errors.Join(errs...)
}

func (w *win32Backend) PeekAndDispatchOne() bool {
	var msg winMsg
	ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmRemove)
	if ret == 0 {
		return false
	}

	if msg.message == wmHotkey && msg.hWnd == 0 {
		w.pending = append(w.pending, Event{ID: ID(msg.wParam), State: Pressed})
	}

	// Return values are informational for a window-less thread loop
	procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
	procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	return true
}

func win32Modifiers(b Binding) uint32 {
	var mods uint32
	if b.Has(ModAlt) {
		mods |= modAlt
	}
	if b.Has(ModCtrl) {
		mods |= modControl
	}
	if b.Has(ModShift) {
		mods |= modShift
	}
	if b.Has(ModSuper) {
		mods |= modWin
	}
	return mods
}

func virtualKey(key string) (uint32, error) {
	if vk, ok := vkByName[key]; ok {
		return vk, nil
	}
	if len(key) == 1 {
		// Letters and digits share their ASCII code with the virtual key
		return uint32(key[0]), nil
	}
	if isFunctionKey(key) {
		var n uint32
		fmt.Sscanf(key[1:], "%d", &n)
		return vkF1 + n - 1, nil
	}
	return 0, fmt.Errorf("unsupported key %q", key)
}
