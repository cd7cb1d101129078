package hotkey

import "testing"

func TestRepeatFilter(t *testing.T) {
	f := repeatFilter{}
	steps := []struct {
		ev   Event
		want bool
	}{
		{Event{ID: 1, State: Released}, false},
		{Event{ID: 1, State: Pressed}, true},
		{Event{ID: 1, State: Pressed}, false},
		{Event{ID: 2, State: Pressed}, true},
		{Event{ID: 1, State: Pressed}, false},
		{Event{ID: 1, State: Released}, true},
		{Event{ID: 1, State: Pressed}, true},
	}

	for i, s := range steps {
		if got := f.accept(s.ev); got != s.want {
			t.Errorf("step %d (%d %s): expected %v, got %v", i, s.ev.ID, s.ev.State, s.want, got)
		}
	}
}
