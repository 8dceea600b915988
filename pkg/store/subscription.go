package store

// Subscription receives a Snapshot after every store mutation. Delivery is
// latest-wins: C holds at most one pending snapshot and a slower reader skips
// straight to the newest version.
type Subscription struct {
	C <-chan Snapshot

	ch    chan Snapshot
	id    uint64
	store *Store
}

// Subscribe registers a new subscriber. The current snapshot is queued
// immediately so the first receive never blocks waiting for a mutation.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	ch := make(chan Snapshot, 1)
	sub := &Subscription{C: ch, ch: ch, id: s.nextID, store: s}
	sub.deliver(s.state)
	s.subs.Store(sub.id, sub)
	return sub
}

// Unsubscribe stops delivery and closes C. Safe to call more than once.
func (sub *Subscription) Unsubscribe() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs.LoadAndDelete(sub.id); ok {
		close(sub.ch)
	}
}

// SubscriberCount reports the number of live subscriptions.
func (s *Store) SubscriberCount() int {
	return s.subs.Size()
}

// deliver runs with the store lock held, which makes it the only sender.
func (sub *Subscription) deliver(snap Snapshot) {
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- snap
}
