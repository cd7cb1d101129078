//go:build !linux && !windows && !darwin

package audio

import (
	"fmt"
	"runtime"
)

// NewService reports that no audio backend exists for this platform
func NewService() (Service, error) {
	return nil, fmt.Errorf("audio device switching is not supported on %s", runtime.GOOS)
}
