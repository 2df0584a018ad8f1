// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"printer-service/internal/model"
)

// ErrNotFound is returned when an operation is not in the history
var ErrNotFound = errors.New("operation not found")

// OperationRepository defines operation history access
type OperationRepository interface {
	Create(ctx context.Context, operation *model.PrintOperation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PrintOperation, error)
	List(ctx context.Context, filter *OperationFilter) ([]*model.PrintOperation, int, error)
}

// OperationFilter represents operation listing filters
type OperationFilter struct {
	OperationType *model.OperationType   `json:"operation_type,omitempty"`
	Status        *model.OperationStatus `json:"status,omitempty"`
	CorrelationID *string                `json:"correlation_id,omitempty"`
	StartDate     *time.Time             `json:"start_date,omitempty"`
	EndDate       *time.Time             `json:"end_date,omitempty"`
	Page          int                    `json:"page"`
	PerPage       int                    `json:"per_page"`
}

func (f *OperationFilter) matches(op *model.PrintOperation) bool {
	if f.OperationType != nil && op.OperationType != *f.OperationType {
		return false
	}
	if f.Status != nil && op.Status != *f.Status {
		return false
	}
	if f.CorrelationID != nil && (op.CorrelationID == nil || *op.CorrelationID != *f.CorrelationID) {
		return false
	}
	if f.StartDate != nil && op.StartedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && op.StartedAt.After(*f.EndDate) {
		return false
	}
	return true
}
