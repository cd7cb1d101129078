//go:build !windows && !linux && !darwin

package hotkey

import (
	"fmt"
	"runtime"
)

// NewBackend reports that global hotkeys are unavailable on this platform
func NewBackend() (Backend, error) {
	return nil, fmt.Errorf("%w: global hotkeys are not supported on %s", ErrServiceUnavailable, runtime.GOOS)
}
