// internal/protocol/memory_connection.go
package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-service/internal/model"
)

// MemoryConnection records everything written to it. It stands in for a
// printer in simulation mode and in tests.
type MemoryConnection struct {
	name   string
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
	writes [][]byte
	closes int

	failAfter int
	failErr   error

	stats statsTracker
}

// NewMemoryConnection creates a closed in-memory connection
func NewMemoryConnection(name string, logger *zap.Logger) *MemoryConnection {
	return &MemoryConnection{
		name:      name,
		logger:    logger.With(zap.String("protocol", "memory"), zap.String("name", name)),
		failAfter: -1,
	}
}

// Open opens the connection
func (mc *MemoryConnection) Open(ctx context.Context) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	mc.isOpen = true
	mc.stats.connected(true)
	return nil
}

// Close closes the connection; recorded writes are kept
func (mc *MemoryConnection) Close() error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.closes++
	mc.isOpen = false
	mc.stats.connected(false)
	return nil
}

// IsOpen returns whether the connection is open
func (mc *MemoryConnection) IsOpen() bool {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return mc.isOpen
}

// Write records a copy of data
func (mc *MemoryConnection) Write(ctx context.Context, data []byte) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if !mc.isOpen {
		return fmt.Errorf("memory %s: %w", mc.name, ErrNotOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if mc.failAfter == 0 {
		mc.stats.failed()
		return mc.failErr
	}
	if mc.failAfter > 0 {
		mc.failAfter--
	}

	start := time.Now()
	mc.writes = append(mc.writes, append([]byte(nil), data...))
	mc.stats.written(len(data), time.Since(start))
	mc.logger.Debug("Memory write", zap.Binary("data", data))
	return nil
}

// Flush does nothing
func (mc *MemoryConnection) Flush(ctx context.Context) error {
	return ctx.Err()
}

// FailAfter makes every write after the next n writes return err
func (mc *MemoryConnection) FailAfter(n int, err error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.failAfter = n
	mc.failErr = err
}

// Writes returns the recorded writes in order
func (mc *MemoryConnection) Writes() [][]byte {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	out := make([][]byte, len(mc.writes))
	for i, w := range mc.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// Bytes returns all recorded writes concatenated
func (mc *MemoryConnection) Bytes() []byte {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	var out []byte
	for _, w := range mc.writes {
		out = append(out, w...)
	}
	return out
}

// Clear forgets the recorded writes
func (mc *MemoryConnection) Clear() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.writes = nil
}

// CloseCount is how many times Close was called
func (mc *MemoryConnection) CloseCount() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return mc.closes
}

// GetProtocolType returns the protocol type
func (mc *MemoryConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeMemory
}

// Address returns the connection name
func (mc *MemoryConnection) Address() string {
	return mc.name
}

// Stats returns a snapshot of the connection statistics
func (mc *MemoryConnection) Stats() ProtocolStats {
	return mc.stats.snapshot()
}
