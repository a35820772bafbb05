package generation

import "sync"

// Tracker hands out per-view generation tokens so that a late result for a view that
// has since been replaced or closed can be recognised and dropped. In-flight upstream
// calls are never aborted.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	current map[string]uint64
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{current: make(map[string]uint64)}
}

// Ticket identifies one request issued for a view.
type Ticket struct {
	tracker *Tracker
	view    string
	seq     uint64
}

// Begin supersedes any outstanding ticket for view. An empty view yields a ticket that is
// always current.
func (t *Tracker) Begin(view string) Ticket {
	if view == "" {
		return Ticket{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current[view] = t.seq
	return Ticket{tracker: t, view: view, seq: t.seq}
}

// Release drops interest in whatever is outstanding for view.
func (t *Tracker) Release(view string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.current, view)
}

// Current reports whether the ticket is still the latest for its view.
func (k Ticket) Current() bool {
	if k.tracker == nil {
		return true
	}
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	return k.tracker.current[k.view] == k.seq
}

// Done releases the view if this ticket is still its latest.
func (k Ticket) Done() {
	if k.tracker == nil {
		return
	}
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	if k.tracker.current[k.view] == k.seq {
		delete(k.tracker.current, k.view)
	}
}
