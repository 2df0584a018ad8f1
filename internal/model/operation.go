// internal/model/operation.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// OperationType represents the kind of print operation
type OperationType string

const (
	OperationTypeReset        OperationType = "RESET"
	OperationTypeNormal       OperationType = "NORMAL"
	OperationTypeFormat       OperationType = "FORMAT"
	OperationTypeText         OperationType = "TEXT"
	OperationTypeFeed         OperationType = "FEED"
	OperationTypeImage        OperationType = "IMAGE"
	OperationTypeLogo         OperationType = "LOGO"
	OperationTypeFactoryReset OperationType = "FACTORY_RESET"
	OperationTypeSelfTest     OperationType = "SELF_TEST"
)

// OperationStatus represents the status of an operation
type OperationStatus string

const (
	OperationStatusProcessing OperationStatus = "PROCESSING"
	OperationStatusSuccess    OperationStatus = "SUCCESS"
	OperationStatusFailed     OperationStatus = "FAILED"
)

// PrintOperation is the record of one request against the printer
type PrintOperation struct {
	ID            uuid.UUID       `json:"id"`
	OperationType OperationType   `json:"operation_type"`
	Status        OperationStatus `json:"status"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	DurationMs    *int            `json:"duration_ms,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	CorrelationID *string         `json:"correlation_id,omitempty"`
}

// NewPrintOperation starts a record in PROCESSING state
func NewPrintOperation(opType OperationType) *PrintOperation {
	return &PrintOperation{
		ID:            uuid.New(),
		OperationType: opType,
		Status:        OperationStatusProcessing,
		StartedAt:     time.Now(),
	}
}

// Complete finishes the record with the outcome of err
func (op *PrintOperation) Complete(err error) {
	now := time.Now()
	ms := int(now.Sub(op.StartedAt).Milliseconds())
	op.CompletedAt = &now
	op.DurationMs = &ms

	if err != nil {
		msg := err.Error()
		op.Status = OperationStatusFailed
		op.ErrorMessage = &msg
		return
	}
	op.Status = OperationStatusSuccess
}

// IsCompleted checks if operation is completed (success or failed)
func (op *PrintOperation) IsCompleted() bool {
	return op.Status == OperationStatusSuccess || op.Status == OperationStatusFailed
}

// FormatRequest changes text attributes. Nil fields are left alone.
type FormatRequest struct {
	Justification *string `json:"justification,omitempty" example:"center"`
	Emphasis      *bool   `json:"emphasis,omitempty"`
	Underline     *bool   `json:"underline,omitempty"`
	Reverse       *bool   `json:"reverse,omitempty"`
	UpsideDown    *bool   `json:"upside_down,omitempty"`
	AltFont       *bool   `json:"alt_font,omitempty"`
	Width         *int    `json:"width,omitempty" example:"2"`
	Height        *int    `json:"height,omitempty" example:"2"`
	Normal        bool    `json:"normal,omitempty"`
}

// TextRequest prints text, optionally wrapped at Columns
type TextRequest struct {
	Text    string         `json:"text" binding:"required" example:"Hello"`
	Columns *int           `json:"columns,omitempty" example:"32"`
	Raw     bool           `json:"raw,omitempty"`
	Format  *FormatRequest `json:"format,omitempty"`
}

// FeedRequest advances paper
type FeedRequest struct {
	Lines int `json:"lines" example:"3"`
}
