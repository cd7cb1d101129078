package audio

import (
	"fmt"
	"sync"
)

// Commit records one SetDefault call made against a Fake
type Commit struct {
	DeviceID string
	Kind     Kind
}

// Fake is an in-memory Service for tests and headless runs
type Fake struct {
	Outputs []Device
	Inputs  []Device

	// ListErr, when set for a kind, is returned by ListDevices
	ListErr map[Kind]error
	// CommitErr, when set for a device ID, is returned by SetDefault
	CommitErr map[string]error

	mu      sync.Mutex
	commits []Commit
}

func NewFake(outputs, inputs []Device) *Fake {
	return &Fake{Outputs: outputs, Inputs: inputs}
}

func (f *Fake) ListDevices(kind Kind) ([]Device, error) {
	if err := f.ListErr[kind]; err != nil {
		return nil, err
	}
	if kind == Input {
		return append([]Device(nil), f.Inputs...), nil
	}
	return append([]Device(nil), f.Outputs...), nil
}

func (f *Fake) SetDefault(deviceID string, kind Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.CommitErr[deviceID]; err != nil {
		return err
	}
	if deviceID == "" {
		return fmt.Errorf("empty device id")
	}
	f.commits = append(f.commits, Commit{DeviceID: deviceID, Kind: kind})
	return nil
}

// Commits returns a copy of every successful SetDefault call in order
func (f *Fake) Commits() []Commit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Commit(nil), f.commits...)
}

func (f *Fake) Close() error { return nil }
