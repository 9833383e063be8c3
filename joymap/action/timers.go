package action

import (
	"sync"
	"time"
)

// Timers tracks delayed work, such as tap releases, so that it can be run
// early when the output is about to go away.
type Timers struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]pendingTimer
}

type pendingTimer struct {
	timer *time.Timer
	fn    func()
}

func NewTimers() *Timers {
	return &Timers{pending: make(map[uint64]pendingTimer)}
}

// AfterFunc runs fn after d unless Flush runs it first. fn runs exactly once.
func (t *Timers) AfterFunc(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	t.next++
	timer := time.AfterFunc(d, func() {
		if t.take(id) {
			fn()
		}
	})
	t.pending[id] = pendingTimer{timer: timer, fn: fn}
}

func (t *Timers) take(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[id]; !ok {
		return false
	}
	delete(t.pending, id)
	return true
}

// Flush stops every pending timer and runs its function now
func (t *Timers) Flush() {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[uint64]pendingTimer)
	t.mu.Unlock()

	for _, p := range pending {
		p.timer.Stop()
		p.fn()
	}
}

// Len counts the functions still waiting
func (t *Timers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
