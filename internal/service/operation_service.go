// internal/service/operation_service.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"printer-service/internal/model"
	"printer-service/internal/repository"
	"printer-service/internal/utils"
)

// OperationService answers queries about past printer operations
type OperationService struct {
	operationRepo repository.OperationRepository
	logger        *utils.ServiceLogger
}

// OperationFilter represents operation listing filters
type OperationFilter = repository.OperationFilter

// PaginationResult describes one page of a listing
type PaginationResult struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// NewOperationService creates a new operation service
func NewOperationService(operationRepo repository.OperationRepository, logger *zap.Logger) *OperationService {
	return &OperationService{
		operationRepo: operationRepo,
		logger:        utils.NewServiceLogger(logger, "operation-service"),
	}
}

// GetOperation retrieves an operation by ID
func (os *OperationService) GetOperation(ctx context.Context, operationID uuid.UUID) (*model.PrintOperation, error) {
	operation, err := os.operationRepo.GetByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	return operation, nil
}

// ListOperations lists operations with filtering, newest first
func (os *OperationService) ListOperations(ctx context.Context, filter *OperationFilter) ([]*model.PrintOperation, *PaginationResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 20
	}

	operations, total, err := os.operationRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list operations: %w", err)
	}

	pagination := &PaginationResult{
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: (total + filter.PerPage - 1) / filter.PerPage,
	}

	os.logger.Debug("Operations listed",
		zap.Int("total", total),
		zap.Int("page", filter.Page),
	)
	return operations, pagination, nil
}
