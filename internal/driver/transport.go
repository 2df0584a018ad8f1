// internal/driver/transport.go
package driver

import (
	"context"
	"errors"
)

var (
	// ErrConfiguration means the session cannot be built from the given
	// model, dialect or transport settings, including a device that cannot
	// be opened. It is not retried.
	ErrConfiguration = errors.New("printer configuration error")
	// ErrTransport wraps every failed write. After it the physical printer
	// state is unknown until the next Reset.
	ErrTransport = errors.New("printer transport error")
	// ErrClosed is returned by every operation on a closed session
	ErrClosed = errors.New("printer session closed")
)

// Transport is a write-only byte channel to the printer. Write must either
// deliver all of data or return an error.
type Transport interface {
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Flusher is implemented by transports that buffer below Write and can
// wait for the buffer to reach the wire.
type Flusher interface {
	Flush(ctx context.Context) error
}
