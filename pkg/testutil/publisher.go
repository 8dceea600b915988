package testutil

import (
	"sync"

	"optimus-dashboard/pkg/streamstats"
)

// CapturingPublisher collects stream events for assertions in tests.
type CapturingPublisher struct {
	mu     sync.Mutex
	Events []streamstats.Event
}

func NewCapturingPublisher() *CapturingPublisher { return &CapturingPublisher{} }

func (c *CapturingPublisher) Publish(event streamstats.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, event)
}

func (c *CapturingPublisher) Snapshot() []streamstats.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]streamstats.Event, len(c.Events))
	copy(out, c.Events)
	return out
}

// Count returns how many captured events have the given EventType.
func (c *CapturingPublisher) Count(eventType string) int {
	n := 0
	for _, e := range c.Snapshot() {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}
