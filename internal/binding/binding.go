package binding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/petems/soundswitch-tray/internal/config"
	"github.com/petems/soundswitch-tray/internal/hotkey"
)

// HotkeyBinding is the switch action attached to one registered hotkey.
// An empty InputDeviceName leaves the input device untouched.
type HotkeyBinding struct {
	HotkeyID         hotkey.ID
	Keys             string
	OutputDeviceName string
	InputDeviceName  string
}

// RegistrationError reports a config entry whose hotkey could not be
// parsed or registered
type RegistrationError struct {
	Spec string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register hotkey %q: %v", e.Spec, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// Table maps registered hotkey ids to their bindings. It is filled once by
// Build and read-only afterwards.
type Table struct {
	bindings map[hotkey.ID]HotkeyBinding
	failures []*RegistrationError
}

// Build parses and registers every mapping. A failing entry is logged and
// recorded in Failures without affecting the others. The returned error is
// non-nil only when the service itself is unusable; the ids registered up
// to that point are still returned so the caller can release them.
func Build(svc hotkey.Service, mappings []config.HotkeyMapping, log zerolog.Logger) (*Table, []hotkey.ID, error) {
	t := &Table{bindings: make(map[hotkey.ID]HotkeyBinding, len(mappings))}
	ids := make([]hotkey.ID, 0, len(mappings))

	for _, m := range mappings {
		b, err := hotkey.ParseBinding(m.Keys)
		if err != nil {
			t.fail(log, m.Keys, err)
			continue
		}

		id, err := svc.Register(b)
		if err != nil {
			if errors.Is(err, hotkey.ErrServiceUnavailable) {
				return t, ids, fmt.Errorf("registering %s: %w", b, err)
			}
			t.fail(log, m.Keys, err)
			continue
		}

		ids = append(ids, id)
		t.bindings[id] = HotkeyBinding{
			HotkeyID:         id,
			Keys:             b.Normalized(),
			OutputDeviceName: m.DeviceName,
			InputDeviceName:  m.InputDeviceName,
		}
		log.Info().
			Uint32("hotkey_id", uint32(id)).
			Str("keys", b.Normalized()).
			Str("output", m.DeviceName).
			Str("input", m.InputDeviceName).
			Msg("Registered hotkey")
	}

	return t, ids, nil
}

func (t *Table) fail(log zerolog.Logger, spec string, err error) {
	regErr := &RegistrationError{Spec: spec, Err: err}
	t.failures = append(t.failures, regErr)
	log.Error().Err(err).Str("keys", spec).Msg("Failed to register hotkey")
}

// Lookup returns the binding registered under id
func (t *Table) Lookup(id hotkey.ID) (HotkeyBinding, bool) {
	b, ok := t.bindings[id]
	return b, ok
}

// Len returns the number of dispatchable bindings
func (t *Table) Len() int { return len(t.bindings) }

// Bindings returns all bindings ordered by hotkey id
func (t *Table) Bindings() []HotkeyBinding {
	out := make([]HotkeyBinding, 0, len(t.bindings))
	for _, b := range t.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HotkeyID < out[j].HotkeyID })
	return out
}

// Failures returns the entries that could not be registered, in config order
func (t *Table) Failures() []*RegistrationError {
	return append([]*RegistrationError(nil), t.failures...)
}
