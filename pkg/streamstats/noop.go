package streamstats

// NoopPublisher discards every event.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (n *NoopPublisher) Publish(event Event) {}

// MultiPublisher fans each event out to every wrapped publisher in order.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(event Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(event)
		}
	}
}
