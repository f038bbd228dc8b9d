package ledger

import (
	"sync"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func tx(id, date, description, amount, category string) model.Transaction {
	return model.Transaction{
		ID:          id,
		Date:        date,
		Description: description,
		Amount:      model.ParseAmount(amount),
		Category:    category,
	}
}

func ids(records []model.Transaction) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// fakeScheduler runs callbacks only when Advance passes their deadline.
type fakeScheduler struct {
	timers []*fakeTimer
	now    time.Duration
	mu     sync.Mutex
}

type fakeTimer struct {
	fn      func()
	at      time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{fn: f, at: s.now + d}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock and fires due timers in order.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// Active counts timers that may still fire.
func (s *fakeScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// recordingNavigator remembers every Replace and Push.
type recordingNavigator struct {
	current  Location
	replaced []Location
	pushed   []Location
	mu       sync.Mutex
}

func (n *recordingNavigator) Location() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *recordingNavigator) Replace(loc Location) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = loc
	n.replaced = append(n.replaced, loc)
}

func (n *recordingNavigator) Push(loc Location) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = loc
	n.pushed = append(n.pushed, loc)
}
