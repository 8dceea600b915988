// Package stream keeps one telemetry connection alive and feeds every message
// it receives into a Sink, in transport order.
package stream

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"optimus-dashboard/pkg/clock"
	"optimus-dashboard/pkg/envelope"
	"optimus-dashboard/pkg/model"
	"optimus-dashboard/pkg/streamstats"
	"optimus-dashboard/pkg/transport"
)

// Sink receives decoded stream content. *store.Store satisfies it.
type Sink interface {
	UpdateTelemetry(sample model.TelemetrySample)
	AddAlert(alert model.Alert)
	ClearAlert(name string)
	UpdateConnectionStatus(patch model.ConnectionStatusPatch)
}

type Options struct {
	BaseDelay    time.Duration
	MaxAttempts  int
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// Scheduler defaults to clock.RealScheduler.
	Scheduler clock.Scheduler
}

func DefaultOptions() Options {
	return Options{
		BaseDelay:    time.Second,
		MaxAttempts:  5,
		DialTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

const inboxSize = 256

// Client is a reconnecting stream consumer. All state transitions, retry
// bookkeeping and sink mutations happen on one goroutine started by Start;
// the exported methods only enqueue work for it.
type Client struct {
	sink      Sink
	dialer    transport.Dialer
	scheduler clock.Scheduler
	publisher streamstats.Publisher
	logger    *log.Logger
	opts      Options

	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	// mu guards the copies of state and attempts read by other goroutines.
	mu sync.RWMutex

	// Owned by the event loop.
	baseCtx    context.Context
	state      State
	attempts   int
	exhausted  bool
	endpoint   string
	conn       transport.Conn
	connCtx    context.Context
	connCancel context.CancelFunc
	connGen    uint64
	timer      clock.Timer
	timerGen   uint64
}

func New(sink Sink, dialer transport.Dialer, opts Options, logger *log.Logger, publisher streamstats.Publisher) *Client {
	defaults := DefaultOptions()
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaults.BaseDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaults.DialTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaults.WriteTimeout
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = clock.RealScheduler{}
	}
	if dialer == nil {
		dialer = transport.WebSocketDialer{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if publisher == nil {
		publisher = streamstats.NewNoopPublisher()
	}

	return &Client{
		sink:      sink,
		dialer:    dialer,
		scheduler: scheduler,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		inbox:     make(chan func(), inboxSize),
		done:      make(chan struct{}),
		baseCtx:   context.Background(),
		state:     StateDisconnected,
	}
}

// Start runs the event loop until ctx is cancelled or Close is called.
func (c *Client) Start(ctx context.Context) {
	c.baseCtx = ctx
	c.wg.Add(1)
	go c.run(ctx)
}

// Close tears down the connection, cancels any pending reconnect and stops the
// event loop. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
	c.wg.Wait()
}

// Connect opens a connection to endpoint unless one is already open or being
// opened. An explicit connect cancels a pending reconnect and starts a fresh
// retry budget.
func (c *Client) Connect(endpoint string) {
	c.post(func() { c.connect(endpoint, true) })
}

// Reconnect connects to the last endpoint passed to Connect.
func (c *Client) Reconnect() {
	c.post(func() { c.connect("", true) })
}

// Disconnect closes the connection on purpose. It never triggers a reconnect.
func (c *Client) Disconnect() {
	c.post(c.disconnect)
}

// Send encodes msg as JSON and writes it if the connection is open at the time
// the loop handles it; otherwise the message is dropped.
func (c *Client) Send(msg any) error {
	data, err := envelope.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode outbound message: %w", err)
	}
	c.post(func() { c.write(data) })
	return nil
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Attempts is the number of reconnects scheduled since the last successful open.
func (c *Client) Attempts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attempts
}

// Exhausted reports whether the reconnection budget ran out. Only an explicit
// Connect or Reconnect clears it.
func (c *Client) Exhausted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exhausted
}

func (c *Client) post(fn func()) bool {
	select {
	case c.inbox <- fn:
		return true
	case <-c.done:
		return false
	}
}

func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()
	defer c.closeOnce.Do(func() { close(c.done) })
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case fn := <-c.inbox:
			fn()
		}
	}
}

func (c *Client) shutdown() {
	c.stopTimer()
	c.connGen++
	if c.conn != nil || c.state != StateDisconnected {
		c.sink.UpdateConnectionStatus(model.ConnectedPatch(false))
	}
	c.dropConn()
	c.setState(StateDisconnected, nil)
}

func (c *Client) connect(endpoint string, explicit bool) {
	if c.state == StateOpen || c.state == StateConnecting {
		if c.opts.Debug {
			c.logger.Printf("connect ignored: stream is %s", c.state)
		}
		return
	}
	if explicit {
		c.stopTimer()
		c.setAttempts(0)
		c.setExhausted(false)
	}
	if endpoint != "" {
		c.endpoint = endpoint
	}
	if c.endpoint == "" {
		c.logger.Printf("connect ignored: no endpoint")
		return
	}

	c.connGen++
	gen := c.connGen
	target := c.endpoint
	c.connCtx, c.connCancel = context.WithCancel(c.baseCtx)
	ctx := c.connCtx
	c.setState(StateConnecting, nil)

	go func() {
		dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
		conn, err := c.dialer.Dial(dialCtx, target)
		cancel()
		if !c.post(func() { c.handleDialed(gen, conn, err) }) && conn != nil {
			_ = conn.Close()
		}
	}()
}

func (c *Client) handleDialed(gen uint64, conn transport.Conn, err error) {
	if gen != c.connGen {
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.logger.Printf("failed to connect to %s: %v", c.endpoint, err)
		c.dropConn()
		c.setState(StateErrored, err)
		c.sink.UpdateConnectionStatus(model.ConnectedPatch(false))
		c.scheduleReconnect()
		return
	}

	c.conn = conn
	c.setAttempts(0)
	c.setState(StateOpen, nil)
	c.sink.UpdateConnectionStatus(model.ConnectedPatch(true))
	c.logger.Printf("connected to %s", c.endpoint)

	go c.readLoop(c.connCtx, gen, conn)
}

func (c *Client) readLoop(ctx context.Context, gen uint64, conn transport.Conn) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			c.post(func() { c.handleClosed(gen, err) })
			return
		}
		if !c.post(func() { c.handleFrame(gen, data) }) {
			return
		}
	}
}

func (c *Client) handleClosed(gen uint64, err error) {
	if gen != c.connGen || c.conn == nil {
		return
	}
	c.dropConn()
	if transport.IsGracefulClose(err) {
		c.logger.Printf("stream closed by server")
		c.setState(StateClosed, nil)
	} else {
		c.logger.Printf("stream error: %v", err)
		c.setState(StateErrored, err)
	}
	c.sink.UpdateConnectionStatus(model.ConnectedPatch(false))
	c.scheduleReconnect()
}

func (c *Client) handleFrame(gen uint64, data []byte) {
	if gen != c.connGen {
		return
	}

	msg, err := envelope.Parse(data)
	if err != nil {
		c.logger.Printf("discarding message: %v", err)
		c.emit(streamstats.NewDecodeFailed(err))
		return
	}

	switch m := msg.(type) {
	case envelope.Telemetry:
		c.emit(streamstats.NewFrameReceived(envelope.KindTelemetry, len(data)))
		if m.SampleErr != nil {
			c.logger.Printf("discarding sample: %v", m.SampleErr)
			c.emit(streamstats.NewDecodeFailed(m.SampleErr))
		}
		if m.Data != nil {
			c.sink.UpdateTelemetry(*m.Data)
		}
		for _, alert := range m.Alerts {
			if alert.Cleared() {
				c.sink.ClearAlert(alert.Name)
			} else {
				c.sink.AddAlert(alert)
			}
		}

	case envelope.InitialData:
		c.emit(streamstats.NewFrameReceived(envelope.KindInitialData, len(data)))
		for _, sample := range m.Samples {
			c.sink.UpdateTelemetry(sample)
		}
		c.logger.Printf("received %d historical samples", len(m.Samples))

	case envelope.Unknown:
		c.emit(streamstats.NewFrameReceived("unknown", len(data)))
		c.emit(streamstats.NewMessageIgnored(m.Type))
		if c.opts.Debug {
			c.logger.Printf("ignoring message of type %q", m.Type)
		}
	}
}

func (c *Client) scheduleReconnect() {
	c.setState(StateDisconnected, nil)

	if c.attempts >= c.opts.MaxAttempts {
		c.logger.Printf("max reconnection attempts reached (%d)", c.opts.MaxAttempts)
		c.setExhausted(true)
		c.emit(streamstats.NewRetriesExhausted(c.attempts))
		return
	}

	c.setAttempts(c.attempts + 1)
	delay := c.opts.BaseDelay * time.Duration(c.attempts)

	c.stopTimer()
	gen := c.timerGen
	c.timer = c.scheduler.AfterFunc(delay, func() {
		c.post(func() { c.handleTimer(gen) })
	})

	c.logger.Printf("reconnecting in %s (attempt %d/%d)", delay, c.attempts, c.opts.MaxAttempts)
	c.emit(streamstats.NewReconnectScheduled(c.attempts, delay))
}

func (c *Client) handleTimer(gen uint64) {
	if gen != c.timerGen || c.timer == nil {
		return
	}
	c.timer = nil
	c.connect("", false)
}

func (c *Client) disconnect() {
	c.stopTimer()
	c.connGen++
	c.dropConn()
	c.setState(StateDisconnected, nil)
	c.sink.UpdateConnectionStatus(model.ConnectedPatch(false))
}

func (c *Client) write(data []byte) {
	if c.state != StateOpen || c.conn == nil {
		c.emit(streamstats.NewSendDropped("stream not open"))
		return
	}
	ctx, cancel := context.WithTimeout(c.connCtx, c.opts.WriteTimeout)
	defer cancel()
	if err := c.conn.Write(ctx, data); err != nil {
		c.logger.Printf("send failed: %v", err)
		c.emit(streamstats.NewSendDropped(err.Error()))
	}
}

// stopTimer cancels the pending reconnect and invalidates any fire already in
// flight.
func (c *Client) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Client) dropConn() {
	if c.connCancel != nil {
		c.connCancel()
		c.connCancel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) setState(s State, err error) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.emit(streamstats.NewConnectionStateChanged(c.endpoint, s.String(), s == StateOpen, err))
}

func (c *Client) setAttempts(n int) {
	c.mu.Lock()
	c.attempts = n
	c.mu.Unlock()
}

func (c *Client) setExhausted(v bool) {
	c.mu.Lock()
	c.exhausted = v
	c.mu.Unlock()
}

func (c *Client) emit(event streamstats.Event) {
	c.publisher.Publish(event)
}
