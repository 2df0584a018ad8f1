// internal/repository/operation_repository.go
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"printer-service/internal/model"
)

// DefaultHistorySize is used when no positive capacity is given
const DefaultHistorySize = 500

// memoryOperationRepository keeps the most recent operations in memory.
// When full, the oldest operation is evicted.
type memoryOperationRepository struct {
	mu       sync.RWMutex
	capacity int
	ops      []*model.PrintOperation // oldest first
	byID     map[uuid.UUID]*model.PrintOperation
	logger   *zap.Logger
}

// NewMemoryOperationRepository creates a history holding up to capacity
// operations
func NewMemoryOperationRepository(capacity int, logger *zap.Logger) OperationRepository {
	if capacity < 1 {
		capacity = DefaultHistorySize
	}
	return &memoryOperationRepository{
		capacity: capacity,
		byID:     make(map[uuid.UUID]*model.PrintOperation),
		logger:   logger,
	}
}

// Create stores a copy of operation
func (r *memoryOperationRepository) Create(ctx context.Context, operation *model.PrintOperation) error {
	op := *operation

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[op.ID]; exists {
		return fmt.Errorf("operation %s already recorded", op.ID)
	}

	if len(r.ops) == r.capacity {
		evicted := r.ops[0]
		delete(r.byID, evicted.ID)
		r.ops[0] = nil
		r.ops = r.ops[1:]
		r.logger.Debug("Operation evicted from history", zap.String("operation_id", evicted.ID.String()))
	}

	r.ops = append(r.ops, &op)
	r.byID[op.ID] = &op
	return nil
}

// GetByID returns a copy of the operation
func (r *memoryOperationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PrintOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, exists := r.byID[id]
	if !exists {
		return nil, fmt.Errorf("operation %s: %w", id, ErrNotFound)
	}
	result := *op
	return &result, nil
}

// List returns one page of matching operations, newest first, and the
// total number of matches
func (r *memoryOperationRepository) List(ctx context.Context, filter *OperationFilter) ([]*model.PrintOperation, int, error) {
	page, perPage := filter.Page, filter.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	r.mu.RLock()
	defer r.mu.RUnlock()

	operations := []*model.PrintOperation{}
	total := 0
	for i := len(r.ops) - 1; i >= 0; i-- {
		op := r.ops[i]
		if !filter.matches(op) {
			continue
		}
		if total >= offset && len(operations) < perPage {
			result := *op
			operations = append(operations, &result)
		}
		total++
	}

	return operations, total, nil
}
