package store

import (
	"math"
	"sync"
	"time"

	"optimus-dashboard/pkg/clock"
	"optimus-dashboard/pkg/model"

	"github.com/puzpuzpuz/xsync/v3"
)

const (
	// HistoryCapacity bounds the rolling sample window (30s at 10Hz).
	HistoryCapacity = 300
	// AlertCapacity bounds the alert log.
	AlertCapacity = 50
)

// Store is the observable telemetry state container. Every mutation builds a
// new Snapshot under the lock and hands it to subscribers before the lock is
// released, so no subscriber can observe a half-applied action and all of them
// see versions in the same order.
type Store struct {
	mu     sync.Mutex
	clock  clock.Clock
	state  Snapshot
	subs   *xsync.MapOf[uint64, *Subscription]
	nextID uint64
}

// New creates an empty store. A nil clock means wall time.
func New(c clock.Clock) *Store {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Store{
		clock: c,
		subs:  xsync.NewMapOf[uint64, *Subscription](),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UpdateTelemetry records a new sample as current, appends it to the bounded
// history and refreshes the frame-rate metrics.
func (s *Store) UpdateTelemetry(sample model.TelemetrySample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	next := s.state
	conn := next.Connection

	fps := 0.0
	if !conn.LastFrameTime.IsZero() {
		fps = framesPerSecond(conn.LastFrameTime, now)
	}

	latest := sample
	next.Telemetry = &latest
	next.History = appendBounded(next.History, sample, HistoryCapacity)

	conn.LastMessage = now
	conn.FPS = fps
	conn.FrameCount++
	conn.LastFrameTime = now
	next.Connection = conn

	s.commit(next)
}

// AddAlert inserts alert at the head of the log, replacing any entry with the
// same name, and truncates the log to AlertCapacity.
func (s *Store) AddAlert(alert model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	alerts := make([]model.Alert, 0, min(len(next.Alerts)+1, AlertCapacity))
	alerts = append(alerts, alert)
	for _, a := range next.Alerts {
		if len(alerts) == AlertCapacity {
			break
		}
		if a.Name != alert.Name {
			alerts = append(alerts, a)
		}
	}
	next.Alerts = alerts
	s.commit(next)
}

// ClearAlert removes every logged alert with the given name.
func (s *Store) ClearAlert(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	alerts := make([]model.Alert, 0, len(next.Alerts))
	for _, a := range next.Alerts {
		if a.Name != name {
			alerts = append(alerts, a)
		}
	}
	if len(alerts) == len(next.Alerts) {
		return
	}
	next.Alerts = alerts
	s.commit(next)
}

// UpdateConnectionStatus merges the set fields of patch.
func (s *Store) UpdateConnectionStatus(patch model.ConnectionStatusPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Connection = next.Connection.Apply(patch)
	s.commit(next)
}

// ClearHistory empties the sample history and the alert log. The current
// sample and connection metrics are kept.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.History = nil
	next.Alerts = nil
	s.commit(next)
}

// commit must be called with mu held.
func (s *Store) commit(next Snapshot) {
	next.Version = s.state.Version + 1
	s.state = next
	s.subs.Range(func(_ uint64, sub *Subscription) bool {
		sub.deliver(next)
		return true
	})
}

func framesPerSecond(last, now time.Time) float64 {
	deltaMs := float64(now.Sub(last)) / float64(time.Millisecond)
	if deltaMs <= 0 {
		return 0
	}
	return math.Round(1000/deltaMs*10) / 10
}

// appendBounded returns a new slice holding the last limit entries of
// history+sample. The input slice is never written to.
func appendBounded(history []model.TelemetrySample, sample model.TelemetrySample, limit int) []model.TelemetrySample {
	start := 0
	if len(history) >= limit {
		start = len(history) - limit + 1
	}
	out := make([]model.TelemetrySample, 0, len(history)-start+1)
	out = append(out, history[start:]...)
	return append(out, sample)
}
