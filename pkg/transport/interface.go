package transport

import "context"

// Conn is one duplex, message-framed connection to the telemetry server.
// Implementations must allow Write and Close concurrently with a blocked Read.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Dialer opens connections. It exists so the stream client can be driven by a
// mock in tests without a network.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}
