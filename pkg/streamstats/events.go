package streamstats

import "time"

// Event is a single observation emitted by the stream pipeline.
type Event interface {
	Timestamp() time.Time
	EventType() string
}

// Publisher receives pipeline events. Publish must not block the caller.
type Publisher interface {
	Publish(event Event)
}

type ConnectionStateChanged struct {
	timestamp time.Time
	Endpoint  string
	State     string
	Connected bool
	Err       error // set when the transition was caused by a failure
}

func (e ConnectionStateChanged) Timestamp() time.Time { return e.timestamp }
func (e ConnectionStateChanged) EventType() string    { return "connection_state_changed" }

func NewConnectionStateChanged(endpoint, state string, connected bool, err error) ConnectionStateChanged {
	return ConnectionStateChanged{
		timestamp: time.Now(),
		Endpoint:  endpoint,
		State:     state,
		Connected: connected,
		Err:       err,
	}
}

type FrameReceived struct {
	timestamp time.Time
	Kind      string
	Bytes     int
}

func (e FrameReceived) Timestamp() time.Time { return e.timestamp }
func (e FrameReceived) EventType() string    { return "frame_received" }

func NewFrameReceived(kind string, size int) FrameReceived {
	return FrameReceived{timestamp: time.Now(), Kind: kind, Bytes: size}
}

type DecodeFailed struct {
	timestamp time.Time
	Err       error
}

func (e DecodeFailed) Timestamp() time.Time { return e.timestamp }
func (e DecodeFailed) EventType() string    { return "decode_failed" }

func NewDecodeFailed(err error) DecodeFailed {
	return DecodeFailed{timestamp: time.Now(), Err: err}
}

type MessageIgnored struct {
	timestamp time.Time
	Kind      string
}

func (e MessageIgnored) Timestamp() time.Time { return e.timestamp }
func (e MessageIgnored) EventType() string    { return "message_ignored" }

func NewMessageIgnored(kind string) MessageIgnored {
	return MessageIgnored{timestamp: time.Now(), Kind: kind}
}

type ReconnectScheduled struct {
	timestamp time.Time
	Attempt   int
	Delay     time.Duration
}

func (e ReconnectScheduled) Timestamp() time.Time { return e.timestamp }
func (e ReconnectScheduled) EventType() string    { return "reconnect_scheduled" }

func NewReconnectScheduled(attempt int, delay time.Duration) ReconnectScheduled {
	return ReconnectScheduled{timestamp: time.Now(), Attempt: attempt, Delay: delay}
}

type RetriesExhausted struct {
	timestamp time.Time
	Attempts  int
}

func (e RetriesExhausted) Timestamp() time.Time { return e.timestamp }
func (e RetriesExhausted) EventType() string    { return "retries_exhausted" }

func NewRetriesExhausted(attempts int) RetriesExhausted {
	return RetriesExhausted{timestamp: time.Now(), Attempts: attempts}
}

type SendDropped struct {
	timestamp time.Time
	Reason    string
}

func (e SendDropped) Timestamp() time.Time { return e.timestamp }
func (e SendDropped) EventType() string    { return "send_dropped" }

func NewSendDropped(reason string) SendDropped {
	return SendDropped{timestamp: time.Now(), Reason: reason}
}
