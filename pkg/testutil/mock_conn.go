package testutil

import (
	"context"
	"errors"
	"sync"

	"optimus-dashboard/pkg/transport"
)

var (
	ErrConnClosed  = errors.New("mock connection closed")
	ErrDialRefused = errors.New("connection refused")
)

type inbound struct {
	data []byte
	err  error
}

// MockConn is an in-memory transport.Conn. Frames and failures pushed by the
// test are delivered to Read in the order they were pushed.
type MockConn struct {
	in        chan inbound
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written [][]byte
}

func NewMockConn() *MockConn {
	return &MockConn{
		in:     make(chan inbound, 64),
		closed: make(chan struct{}),
	}
}

// Push queues an inbound text frame.
func (m *MockConn) Push(frame string) {
	m.in <- inbound{data: []byte(frame)}
}

// Fail makes Read return err once the frames queued before it are consumed.
func (m *MockConn) Fail(err error) {
	m.in <- inbound{err: err}
}

func (m *MockConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-m.in:
		return msg.data, msg.err
	case <-m.closed:
		return nil, ErrConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MockConn) Write(ctx context.Context, data []byte) error {
	select {
	case <-m.closed:
		return ErrConnClosed
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, append([]byte(nil), data...))
	return nil
}

func (m *MockConn) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *MockConn) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// Written returns copies of every frame written so far.
func (m *MockConn) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.written))
	for i, w := range m.written {
		out[i] = string(w)
	}
	return out
}

type dialResult struct {
	conn  *MockConn
	err   error
	block bool
}

// MockDialer hands out queued results in order. With nothing queued every
// dial is refused.
type MockDialer struct {
	mu       sync.Mutex
	queue    []dialResult
	dials    []string
	returned int
}

func NewMockDialer() *MockDialer { return &MockDialer{} }

func (d *MockDialer) QueueConn(conn *MockConn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, dialResult{conn: conn})
}

func (d *MockDialer) QueueError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, dialResult{err: err})
}

// QueueBlock makes the next dial hang until its context is cancelled.
func (d *MockDialer) QueueBlock() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, dialResult{block: true})
}

func (d *MockDialer) Dial(ctx context.Context, endpoint string) (transport.Conn, error) {
	d.mu.Lock()
	d.dials = append(d.dials, endpoint)
	res := dialResult{err: ErrDialRefused}
	if len(d.queue) > 0 {
		res = d.queue[0]
		d.queue = d.queue[1:]
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.returned++
		d.mu.Unlock()
	}()

	if res.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}
	return res.conn, nil
}

// Dials returns the endpoints dialed so far.
func (d *MockDialer) Dials() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dials...)
}

func (d *MockDialer) DialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dials)
}

// Returned counts dials that have finished, successfully or not.
func (d *MockDialer) Returned() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.returned
}
