// internal/protocol/protocol.go
package protocol

import (
	"context"
	"errors"
	"sync"
	"time"

	"printer-service/internal/model"
)

// ErrNotOpen is returned when writing to a closed connection
var ErrNotOpen = errors.New("connection not open")

// PrinterProtocol is a write-only byte channel to a printer. The printers
// driven here never answer, so there is no Read.
type PrinterProtocol interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data communication
	Write(ctx context.Context, data []byte) error
	Flush(ctx context.Context) error

	// Protocol information
	GetProtocolType() model.ConnectionType
	Address() string
	Stats() ProtocolStats
}

// ProtocolStats provides protocol-level statistics
type ProtocolStats struct {
	BytesWritten   int64         `json:"bytes_written"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}

// statsTracker is shared by the connection implementations
type statsTracker struct {
	mu    sync.Mutex
	stats ProtocolStats
}

func (t *statsTracker) connected(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.IsConnected = on
	if on {
		t.stats.LastActivity = time.Now()
	}
}

func (t *statsTracker) written(n int, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.BytesWritten += int64(n)
	t.stats.OperationCount++
	t.stats.LastActivity = time.Now()

	// running average
	if t.stats.AverageLatency == 0 {
		t.stats.AverageLatency = latency
	} else {
		t.stats.AverageLatency = (t.stats.AverageLatency + latency) / 2
	}
}

func (t *statsTracker) failed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.ErrorCount++
}

func (t *statsTracker) snapshot() ProtocolStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
