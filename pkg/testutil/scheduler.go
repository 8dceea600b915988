package testutil

import (
	"sync"
	"time"

	"optimus-dashboard/pkg/clock"
)

// FakeScheduler records timers instead of running them. Tests fire them by hand.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*FakeTimer
}

func NewFakeScheduler() *FakeScheduler { return &FakeScheduler{} }

func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &FakeTimer{Delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Timers returns every timer ever scheduled, oldest first.
func (s *FakeScheduler) Timers() []*FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*FakeTimer(nil), s.timers...)
}

// Pending returns timers that were neither stopped nor fired.
func (s *FakeScheduler) Pending() []*FakeTimer {
	var out []*FakeTimer
	for _, t := range s.Timers() {
		if t.Pending() {
			out = append(out, t)
		}
	}
	return out
}

type FakeTimer struct {
	Delay time.Duration

	mu      sync.Mutex
	fn      func()
	stopped bool
	fired   bool
}

func (t *FakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

// Fire runs the callback unless the timer was stopped or already fired.
func (t *FakeTimer) Fire() bool {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	t.mu.Unlock()
	t.fn()
	return true
}

// ForceFire runs the callback even if Stop was called, like a real timer whose
// callback was already running when Stop raced with it.
func (t *FakeTimer) ForceFire() {
	t.mu.Lock()
	t.fired = true
	t.mu.Unlock()
	t.fn()
}

func (t *FakeTimer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.fired
}
