// internal/handler/event_bus.go
package handler

import (
	"sync"

	"go.uber.org/zap"

	"printer-service/internal/model"
)

// allEvents subscribes to every event type
const allEvents model.EventType = "*"

// EventBus fans printer events out to subscribers. Publish never blocks the
// printer: a full bus or a slow subscriber loses the event.
type EventBus struct {
	subscribers map[model.EventType][]chan model.PrinterEvent
	events      chan model.PrinterEvent
	done        chan struct{}
	stopOnce    sync.Once
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[model.EventType][]chan model.PrinterEvent),
		events:      make(chan model.PrinterEvent, 1000),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Start distributes events until Stop is called
func (eb *EventBus) Start() {
	for {
		select {
		case event := <-eb.events:
			eb.distributeEvent(event)
		case <-eb.done:
			return
		}
	}
}

// Stop ends Start
func (eb *EventBus) Stop() {
	eb.stopOnce.Do(func() {
		close(eb.done)
	})
}

// Publish publishes an event
func (eb *EventBus) Publish(event model.PrinterEvent) {
	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.EventType)),
		)
	}
}

// Subscribe subscribes to events of a specific type, or every type with "*"
func (eb *EventBus) Subscribe(eventType model.EventType) <-chan model.PrinterEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan model.PrinterEvent, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event model.PrinterEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, key := range []model.EventType{event.EventType, allEvents} {
		for _, subscriber := range eb.subscribers[key] {
			select {
			case subscriber <- event:
			default:
				// Subscriber is slow, skip
			}
		}
	}
}
