package hotkey

import (
	"errors"
	"fmt"
	"sync"
)

// Fake is an in-memory Backend. Tests drive it with SimPress and
// SimMessage from any goroutine.
type Fake struct {
	// RegisterErr, keyed by normalized binding, rejects that binding
	RegisterErr map[string]error
	// UnregisterErr, keyed by id, fails that id during UnregisterAll
	UnregisterErr map[ID]error
	// InitErr is returned by Init
	InitErr error

	mu           sync.Mutex
	nextID       ID
	registered   map[ID]Binding
	events       []Event
	messages     int
	dispatched   int
	unregistered []ID
	inits        int
	releases     int
}

func NewFake() *Fake {
	return &Fake{registered: make(map[ID]Binding)}
}

func (f *Fake) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InitErr != nil {
		return f.InitErr
	}
	f.inits++
	return nil
}

func (f *Fake) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
}

func (f *Fake) Register(b Binding) (ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.RegisterErr[b.Normalized()]; err != nil {
		return 0, err
	}
	f.nextID++
	f.registered[f.nextID] = b
	return f.nextID, nil
}

func (f *Fake) Poll() (Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return Event{}, false
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true
}

func (f *Fake) UnregisterAll(ids []ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	for _, id := range ids {
		if err := f.UnregisterErr[id]; err != nil {
			errs = append(errs, fmt.Errorf("unregister %d: %w", id, err))
			continue
		}
		delete(f.registered, id)
		f.unregistered = append(f.unregistered, id)
	}
	return errors.Join(errs...)
}

func (f *Fake) PeekAndDispatchOne() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.messages == 0 {
		return false
	}
	f.messages--
	f.dispatched++
	return true
}

// SimPress queues a pressed event for id
func (f *Fake) SimPress(id ID) { f.SimEvent(Event{ID: id, State: Pressed}) }

// SimEvent queues an arbitrary event
func (f *Fake) SimEvent(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

// SimMessage queues n native messages for the pump
func (f *Fake) SimMessage(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages += n
}

// Registered returns the binding registered under id
func (f *Fake) Registered(id ID) (Binding, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.registered[id]
	return b, ok
}

// Pending reports how many events have not been polled yet
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// Unregistered returns every id released so far
func (f *Fake) Unregistered() []ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ID(nil), f.unregistered...)
}

// Dispatched reports how many native messages the pump processed
func (f *Fake) Dispatched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dispatched
}

// Lifecycle reports how many times Init succeeded and Release ran
func (f *Fake) Lifecycle() (inits, releases int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inits, f.releases
}
