// Package streamstats observes the stream pipeline itself: connection
// transitions, frame throughput, decode failures and reconnect attempts.
package streamstats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"optimus-dashboard/pkg/clock"

	"github.com/puzpuzpuz/xsync/v3"
)

type Config struct {
	BufferSize        int
	MaxRecentErrors   int
	RateWindowSeconds int
}

func DefaultConfig() Config {
	return Config{
		BufferSize:        1000,
		MaxRecentErrors:   20,
		RateWindowSeconds: 10,
	}
}

// Aggregator folds events into counters on its own goroutine so publishers on
// the hot path only pay for a channel send.
type Aggregator struct {
	mu    sync.RWMutex
	clock clock.Clock
	cfg   Config

	state              string
	endpoint           string
	connected          bool
	lastReconnectDelay time.Duration
	reconnects         uint64
	exhausted          uint64

	framesReceived uint64
	framesByKind   map[string]uint64
	bytesReceived  uint64
	frameTimes     []time.Time
	lastFrameAt    time.Time

	decodeFailures  uint64
	messagesIgnored uint64
	sendsDropped    uint64

	recentErrors []string
	errorIndex   int

	dropped *xsync.Counter

	eventCh   chan Event
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	startTime time.Time
}

func NewAggregator(c clock.Clock, cfg Config) *Aggregator {
	if c == nil {
		c = clock.RealClock{}
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.MaxRecentErrors <= 0 {
		cfg.MaxRecentErrors = DefaultConfig().MaxRecentErrors
	}
	if cfg.RateWindowSeconds <= 0 {
		cfg.RateWindowSeconds = DefaultConfig().RateWindowSeconds
	}

	return &Aggregator{
		clock:        c,
		cfg:          cfg,
		state:        "disconnected",
		framesByKind: make(map[string]uint64),
		frameTimes:   make([]time.Time, 0, cfg.RateWindowSeconds*10),
		recentErrors: make([]string, cfg.MaxRecentErrors),
		dropped:      xsync.NewCounter(),
		eventCh:      make(chan Event, cfg.BufferSize),
		done:         make(chan struct{}),
		startTime:    c.Now(),
	}
}

func (a *Aggregator) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.processEvents(ctx)
}

func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
	a.wg.Wait()
}

// Publish never blocks; events are counted and dropped when the buffer is full.
func (a *Aggregator) Publish(event Event) {
	select {
	case a.eventCh <- event:
	default:
		a.dropped.Inc()
	}
}

func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	now := a.clock.Now()

	kinds := make(map[string]uint64, len(a.framesByKind))
	for k, v := range a.framesByKind {
		kinds[k] = v
	}

	recent := make([]string, 0, len(a.recentErrors))
	for i := 0; i < len(a.recentErrors); i++ {
		idx := (a.errorIndex - i - 1 + len(a.recentErrors)) % len(a.recentErrors)
		if a.recentErrors[idx] != "" {
			recent = append(recent, a.recentErrors[idx])
		}
	}

	return Snapshot{
		State:              a.state,
		Endpoint:           a.endpoint,
		Connected:          a.connected,
		LastReconnectDelay: a.lastReconnectDelay,
		ReconnectsTotal:    a.reconnects,
		RetriesExhausted:   a.exhausted,
		FramesReceived:     a.framesReceived,
		FramesByKind:       kinds,
		BytesReceived:      a.bytesReceived,
		FramesPerSecond:    a.frameRate(now),
		LastFrameAt:        a.lastFrameAt,
		DecodeFailures:     a.decodeFailures,
		MessagesIgnored:    a.messagesIgnored,
		SendsDropped:       a.sendsDropped,
		RecentErrors:       recent,
		UptimeSeconds:      now.Sub(a.startTime).Seconds(),
		ChannelUtilization: float64(len(a.eventCh)) / float64(cap(a.eventCh)) * 100,
		EventsDropped:      a.dropped.Value(),
	}
}

func (a *Aggregator) processEvents(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case event := <-a.eventCh:
			a.handleEvent(event)
		}
	}
}

func (a *Aggregator) handleEvent(event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()

	switch e := event.(type) {
	case ConnectionStateChanged:
		a.state = e.State
		a.connected = e.Connected
		if e.Endpoint != "" {
			a.endpoint = e.Endpoint
		}
		if e.Err != nil {
			a.addRecentError(fmt.Sprintf("%s: %v", e.State, e.Err))
		}

	case FrameReceived:
		a.framesReceived++
		a.framesByKind[e.Kind]++
		if e.Bytes > 0 {
			a.bytesReceived += uint64(e.Bytes)
		}
		a.lastFrameAt = now
		a.addFrameTime(now)

	case DecodeFailed:
		a.decodeFailures++
		if e.Err != nil {
			a.addRecentError(e.Err.Error())
		}

	case MessageIgnored:
		a.messagesIgnored++

	case ReconnectScheduled:
		a.reconnects++
		a.lastReconnectDelay = e.Delay

	case RetriesExhausted:
		a.exhausted++
		a.addRecentError(fmt.Sprintf("gave up after %d reconnection attempts", e.Attempts))

	case SendDropped:
		a.sendsDropped++
	}
}

func (a *Aggregator) addFrameTime(t time.Time) {
	cutoff := t.Add(-a.window())
	for len(a.frameTimes) > 0 && a.frameTimes[0].Before(cutoff) {
		a.frameTimes = a.frameTimes[1:]
	}
	a.frameTimes = append(a.frameTimes, t)
}

func (a *Aggregator) addRecentError(msg string) {
	a.recentErrors[a.errorIndex] = msg
	a.errorIndex = (a.errorIndex + 1) % len(a.recentErrors)
}

func (a *Aggregator) frameRate(now time.Time) float64 {
	cutoff := now.Add(-a.window())
	count := 0
	for _, t := range a.frameTimes {
		if t.After(cutoff) {
			count++
		}
	}
	return float64(count) / float64(a.cfg.RateWindowSeconds)
}

func (a *Aggregator) window() time.Duration {
	return time.Duration(a.cfg.RateWindowSeconds) * time.Second
}
