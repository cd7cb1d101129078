package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/soundswitch-tray/internal/app"
	"github.com/petems/soundswitch-tray/internal/audio"
	"github.com/petems/soundswitch-tray/internal/config"
	"github.com/petems/soundswitch-tray/internal/hotkey"
	"github.com/petems/soundswitch-tray/internal/listener"
	"github.com/petems/soundswitch-tray/internal/match"
)

// A disconnect followed by a failing switch must still let the listener
// drain its registrations.
func TestDisconnectStillDrainsListener(t *testing.T) {
	keys := hotkey.NewFake()
	devices := audio.NewFake(
		[]audio.Device{{ID: "{out-headphones}", Name: "Headphones"}},
		[]audio.Device{{ID: "{in-mic-array}", Name: "Mic Array"}},
	)
	devices.CommitErr = map[string]error{"{out-headphones}": errors.New("access denied")}

	l := listener.New(listener.Config{
		Hotkeys:   func() (hotkey.Backend, error) { return keys, nil },
		Devices:   devices,
		Committer: devices,
		Policy:    match.Policy{},
		Mappings: []config.HotkeyMapping{
			{Keys: "Ctrl+Alt+1", DeviceName: "Headphones", InputDeviceName: "Mic Array"},
		},
		Logger:       zerolog.Nop(),
		PollInterval: time.Millisecond,
	})

	disconnect := make(chan struct{})
	a := app.New(app.Config{
		Listener:     l,
		Logger:       zerolog.Nop(),
		PollInterval: 5 * time.Millisecond,
		Disconnect:   disconnect,
	})

	go a.Run(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for l.State() != listener.Running {
		if time.Now().After(deadline) {
			t.Fatal("listener never started")
		}
		time.Sleep(time.Millisecond)
	}

	close(disconnect)
	keys.SimPress(1)

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop after disconnect")
	}

	if l.State() != listener.Stopped {
		t.Errorf("expected stopped listener, got %s", l.State())
	}
	if got := keys.Unregistered(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected hotkey 1 to be unregistered, got %v", got)
	}
	if inits, releases := keys.Lifecycle(); inits != 1 || releases != 1 {
		t.Errorf("expected one init and one release, got %d/%d", inits, releases)
	}

	// a late quit request must neither panic nor block
	a.Quit()
}
