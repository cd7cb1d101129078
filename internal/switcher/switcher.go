package switcher

import (
	"fmt"

	"github.com/petems/soundswitch-tray/internal/audio"
	"github.com/petems/soundswitch-tray/internal/match"
)

// NoMatchError is returned when no candidate satisfies the match policy
type NoMatchError struct {
	Kind   audio.Kind
	Target string
	Policy match.Policy
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no %s device matches %q using %s", e.Kind, e.Target, e.Policy)
}

// CommitError wraps a failure of the platform commit service
type CommitError struct {
	Device audio.Device
	Kind   audio.Kind
	Err    error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to set default %s device to %q: %v", e.Kind, e.Device.Name, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Switch resolves target against candidates and makes the resolved device
// the default for kind. It returns the display name of the device that was
// selected.
func Switch(kind audio.Kind, target string, candidates []audio.Device, policy match.Policy, committer audio.Committer) (string, error) {
	device, ok := match.Resolve(target, candidates, policy)
	if !ok {
		return "", &NoMatchError{Kind: kind, Target: target, Policy: policy}
	}

	if err := committer.SetDefault(device.ID, kind); err != nil {
		return "", &CommitError{Device: device, Kind: kind, Err: err}
	}
	return device.Name, nil
}
