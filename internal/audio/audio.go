package audio

import "fmt"

// Kind distinguishes render (output) from capture (input) endpoints
type Kind int

const (
	Output Kind = iota
	Input
)

func (k Kind) String() string {
	switch k {
	case Output:
		return "output"
	case Input:
		return "input"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Device represents an audio endpoint. ID is the stable platform identifier
// passed to the commit service; Name is only used for matching and display.
type Device struct {
	ID   string
	Name string
}

// Enumerator lists the active devices of one kind
type Enumerator interface {
	ListDevices(kind Kind) ([]Device, error)
}

// Committer makes a device the system default for its kind
type Committer interface {
	SetDefault(deviceID string, kind Kind) error
}

// Service is the platform audio backend
type Service interface {
	Enumerator
	Committer
	Close() error
}
