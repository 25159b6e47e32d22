package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// GlobalHub is the singleton SSE Hub instance
var GlobalHub = NewHub()

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// PublishFreightUpdate pushes a freight request change to all live
// dashboards (the driver matcher list and the ministry feed).
func PublishFreightUpdate(requestID, status, driverName string) {
	data := fmt.Sprintf(`{"request_id":"%s","status":"%s","driver_name":"%s"}`, requestID, status, driverName)
	GlobalHub.Broadcast(Event{
		EventType: "freight_update",
		Data:      data,
	})
	log.Printf("[SSE] Published freight_update: request=%s status=%s", requestID, status)
}

// PublishQuoteUpdate pushes a quote lifecycle change.
func PublishQuoteUpdate(quoteID, status string) {
	data := fmt.Sprintf(`{"quote_id":"%s","status":"%s"}`, quoteID, status)
	GlobalHub.Broadcast(Event{
		EventType: "quote_update",
		Data:      data,
	})
	log.Printf("[SSE] Published quote_update: quote=%s status=%s", quoteID, status)
}

// PublishDeliveryUpdate pushes a bulk delivery change.
func PublishDeliveryUpdate(deliveryID, status string) {
	data := fmt.Sprintf(`{"delivery_id":"%s","status":"%s"}`, deliveryID, status)
	GlobalHub.Broadcast(Event{
		EventType: "delivery_update",
		Data:      data,
	})
	log.Printf("[SSE] Published delivery_update: delivery=%s status=%s", deliveryID, status)
}

// SendToUser sends an event to a specific user's connections only.
func SendToUser(userID string, event Event) {
	GlobalHub.mu.RLock()
	defer GlobalHub.mu.RUnlock()
	for _, client := range GlobalHub.clients {
		if client.UserID == userID {
			select {
			case client.Events <- event:
			default:
				log.Printf("[SSE] Client %s buffer full, skipping user event", client.ID)
			}
		}
	}
}
