package streamstats

import "time"

type Snapshot struct {
	// Connection
	State              string
	Endpoint           string
	Connected          bool
	LastReconnectDelay time.Duration
	ReconnectsTotal    uint64
	RetriesExhausted   uint64

	// Frames
	FramesReceived  uint64
	FramesByKind    map[string]uint64
	BytesReceived   uint64
	FramesPerSecond float64
	LastFrameAt     time.Time

	// Failures
	DecodeFailures  uint64
	MessagesIgnored uint64
	SendsDropped    uint64
	RecentErrors    []string

	// Aggregator health
	UptimeSeconds      float64
	ChannelUtilization float64
	EventsDropped      int64
}

type Reader interface {
	Snapshot() Snapshot
}
