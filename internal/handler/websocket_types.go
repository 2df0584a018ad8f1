// internal/handler/websocket_types.go
package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"printer-service/internal/model"
)

// Client represents a WebSocket client
type Client struct {
	ID          string          `json:"id"`
	Connection  *websocket.Conn `json:"-"`
	Send        chan []byte     `json:"-"`
	UserAgent   string          `json:"user_agent"`
	RemoteAddr  string          `json:"remote_addr"`
	ConnectedAt time.Time       `json:"connected_at"`

	// Subscriptions filters events by type; empty means every event
	Subscriptions map[model.EventType]bool `json:"subscriptions,omitempty"`
	subMutex      sync.RWMutex
}

// Wants reports whether the client subscribed to eventType
func (c *Client) Wants(eventType model.EventType) bool {
	c.subMutex.RLock()
	defer c.subMutex.RUnlock()

	if len(c.Subscriptions) == 0 {
		return true
	}
	return c.Subscriptions[eventType]
}

func (c *Client) setSubscribed(types []model.EventType, on bool) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()

	if c.Subscriptions == nil {
		c.Subscriptions = make(map[model.EventType]bool)
	}
	for _, t := range types {
		if on {
			c.Subscriptions[t] = true
		} else {
			delete(c.Subscriptions, t)
		}
	}
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// SubscriptionRequest is the data of a subscribe or unsubscribe message
type SubscriptionRequest struct {
	EventTypes []model.EventType `json:"event_types"`
}

// ConnectionManager manages WebSocket connections
type ConnectionManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	manager := &ConnectionManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	go manager.run()
	return manager
}

// run starts the connection manager
func (cm *ConnectionManager) run() {
	for {
		select {
		case client := <-cm.register:
			cm.mutex.Lock()
			cm.clients[client.ID] = client
			cm.mutex.Unlock()

		case client := <-cm.unregister:
			cm.mutex.Lock()
			if _, ok := cm.clients[client.ID]; ok {
				delete(cm.clients, client.ID)
				close(client.Send)
			}
			cm.mutex.Unlock()

		case <-cm.done:
			return
		}
	}
}

// Register registers a new client
func (cm *ConnectionManager) Register(client *Client) {
	select {
	case cm.register <- client:
	case <-cm.done:
	}
}

// Unregister unregisters a client
func (cm *ConnectionManager) Unregister(client *Client) {
	select {
	case cm.unregister <- client:
	case <-cm.done:
	}
}

// Stop ends the manager loop
func (cm *ConnectionManager) Stop() {
	close(cm.done)
}

// Broadcast queues message for every client subscribed to eventType and
// returns the IDs of clients whose queue was full. Sends happen under the
// read lock so a client cannot be unregistered mid-send.
func (cm *ConnectionManager) Broadcast(eventType model.EventType, message []byte) []string {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	var dropped []string
	for _, client := range cm.clients {
		if !client.Wants(eventType) {
			continue
		}
		select {
		case client.Send <- message:
		default:
			dropped = append(dropped, client.ID)
		}
	}
	return dropped
}

// GetStats returns connection statistics
func (cm *ConnectionManager) GetStats() *ConnectionStats {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	stats := &ConnectionStats{
		TotalConnections: len(cm.clients),
		Clients:          make([]*Client, 0, len(cm.clients)),
	}
	for _, client := range cm.clients {
		stats.Clients = append(stats.Clients, client)
	}
	return stats
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	TotalConnections int       `json:"total_connections"`
	Clients          []*Client `json:"clients"`
}
