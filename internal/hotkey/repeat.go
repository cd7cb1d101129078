package hotkey

// repeatFilter drops auto-repeated presses: once an id is pressed, further
// presses are ignored until its release. A release for an id that is not
// held is dropped too.
type repeatFilter map[ID]bool

func (f repeatFilter) accept(ev Event) bool {
	if ev.State == Released {
		if !f[ev.ID] {
			return false
		}
		delete(f, ev.ID)
		return true
	}
	if f[ev.ID] {
		return false
	}
	f[ev.ID] = true
	return true
}
