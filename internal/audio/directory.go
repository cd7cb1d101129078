package audio

import "fmt"

// Placeholder names some backends report when the friendly name property
// cannot be read. Such devices cannot be targeted by name.
var unresolvedNames = map[string]bool{
	"":             true,
	"Unknown Name": true,
	"Invalid Name": true,
}

// EnumerationError is returned when the platform cannot list devices
type EnumerationError struct {
	Kind Kind
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("failed to list audio %s devices: %v", e.Kind, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// Snapshot lists devices of the given kind, dropping entries that have no
// identifier or no usable display name.
func Snapshot(enum Enumerator, kind Kind) ([]Device, error) {
	devices, err := enum.ListDevices(kind)
	if err != nil {
		return nil, &EnumerationError{Kind: kind, Err: err}
	}

	usable := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.ID == "" || unresolvedNames[d.Name] {
			continue
		}
		usable = append(usable, d)
	}
	return usable, nil
}

// Directory is an immutable snapshot of output and input devices
type Directory struct {
	outputs []Device
	inputs  []Device
}

// NewDirectory snapshots both device kinds. Outputs are listed first; the
// first failure is returned and no partial directory is produced.
func NewDirectory(enum Enumerator) (*Directory, error) {
	outputs, err := Snapshot(enum, Output)
	if err != nil {
		return nil, err
	}
	inputs, err := Snapshot(enum, Input)
	if err != nil {
		return nil, err
	}
	return &Directory{outputs: outputs, inputs: inputs}, nil
}

// Devices returns the snapshot for kind. Callers must not modify the slice.
func (d *Directory) Devices(kind Kind) []Device {
	if kind == Input {
		return d.inputs
	}
	return d.outputs
}

// Names returns the display names for kind in snapshot order
func (d *Directory) Names(kind Kind) []string {
	devices := d.Devices(kind)
	names := make([]string, len(devices))
	for i, dev := range devices {
		names[i] = dev.Name
	}
	return names
}
