// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventPrinterConnected    EventType = "PRINTER_CONNECTED"
	EventPrinterDisconnected EventType = "PRINTER_DISCONNECTED"
	EventPrinterError        EventType = "PRINTER_ERROR"
	EventOperationStarted    EventType = "OPERATION_STARTED"
	EventOperationCompleted  EventType = "OPERATION_COMPLETED"
	EventOperationFailed     EventType = "OPERATION_FAILED"
	EventStateChange         EventType = "STATE_CHANGE"
)

// PrinterEvent represents an event in the system
type PrinterEvent struct {
	ID        uuid.UUID              `json:"id"`
	EventType EventType              `json:"event_type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Severity  string                 `json:"severity"` // INFO, WARNING, ERROR
}

// NewPrinterEvent creates an event stamped now
func NewPrinterEvent(eventType EventType, severity string, data map[string]interface{}) PrinterEvent {
	return PrinterEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Data:      data,
		Timestamp: time.Now(),
		Source:    "printer-service",
		Severity:  severity,
	}
}

// OperationEventData represents operation-related events
type OperationEventData struct {
	OperationID   uuid.UUID       `json:"operation_id"`
	OperationType OperationType   `json:"operation_type"`
	Status        OperationStatus `json:"status"`
	Duration      *int            `json:"duration_ms,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
}

// OperationEvent builds the event for a started or finished operation
func OperationEvent(op *PrintOperation) PrinterEvent {
	eventType, severity := EventOperationStarted, "INFO"
	switch op.Status {
	case OperationStatusSuccess:
		eventType = EventOperationCompleted
	case OperationStatusFailed:
		eventType, severity = EventOperationFailed, "ERROR"
	}

	return NewPrinterEvent(eventType, severity, map[string]interface{}{
		"operation": OperationEventData{
			OperationID:   op.ID,
			OperationType: op.OperationType,
			Status:        op.Status,
			Duration:      op.DurationMs,
			ErrorMessage:  op.ErrorMessage,
		},
	})
}
