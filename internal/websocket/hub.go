// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/models"
)

// Dashboard message types.
const (
	MessageTypeScreenConnected       = "screen_connected"
	MessageTypeScreenDisconnected    = "screen_disconnected"
	MessageTypeCommandStatus         = "command_status"
	MessageTypeNotificationPublished = "notification_published"
	MessageTypeEmergencyOverride     = "emergency_override"
	MessageTypePing                  = "ping"
	MessageTypePong                  = "pong"
)

// Message is one dashboard event envelope.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ScreenEventData is the payload of screen_connected and
// screen_disconnected messages.
type ScreenEventData struct {
	ScreenID  string `json:"screen_id"`
	Timestamp string `json:"timestamp"`
}

// Hub fans dashboard events out to connected admin clients. It is the
// in-process sink for command, notification, and delivery lifecycle
// events; anything broadcast here is advisory and lossy by design (a
// reconnecting dashboard refetches state over the REST surface).
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub. Start it with Serve under the supervisor.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Serve runs the hub loop until the context ends, then closes every
// client and returns the context error.
//
// Selection is priority-ordered so behavior stays deterministic when
// several channels are ready: shutdown first, then client lifecycle,
// then broadcasts. Client state is always settled before a message
// fans out.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) String() string { return "dashboard-hub" }

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	logging.Info().Int("total_clients", total).Msg("Dashboard client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	logging.Info().Int("total_clients", total).Msg("Dashboard client disconnected")
}

// broadcastToClients sends a message to every client in id order. Slow
// clients with a full send buffer are dropped; the dashboard reconnects
// and refetches.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		logging.Warn().Uint64("client_id", client.id).Msg("Dropping slow dashboard client")
	}
}

// shutdown closes every client in id order and logs the reason.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "dashboard-hub").
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("Dashboard hub stopped")
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// enqueue hands a message to the hub loop without blocking the caller.
// Lifecycle sinks run on hot paths (publish, SSE accept), so a full
// queue drops the event rather than stalling delivery.
func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", message.Type).Msg("Broadcast queue full, dropping dashboard event")
	}
}

// BroadcastJSON sends an arbitrary typed payload to all clients.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	h.enqueue(Message{Type: messageType, Data: data})
}

// ScreenConnected broadcasts a delivery channel opening.
func (h *Hub) ScreenConnected(screenID string) {
	h.enqueue(Message{
		Type: MessageTypeScreenConnected,
		Data: ScreenEventData{
			ScreenID:  screenID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ScreenDisconnected broadcasts a delivery channel closing.
func (h *Hub) ScreenDisconnected(screenID string) {
	h.enqueue(Message{
		Type: MessageTypeScreenDisconnected,
		Data: ScreenEventData{
			ScreenID:  screenID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CommandStatus broadcasts a command lifecycle change.
func (h *Hub) CommandStatus(cmd *models.Command) {
	h.enqueue(Message{Type: MessageTypeCommandStatus, Data: cmd})
}

// NotificationPublished broadcasts a freshly published notification.
func (h *Hub) NotificationPublished(n *models.Notification) {
	h.enqueue(Message{Type: MessageTypeNotificationPublished, Data: n})
}

// EmergencyChanged broadcasts an emergency override state change.
func (h *Hub) EmergencyChanged(state *models.EmergencyState) {
	h.enqueue(Message{Type: MessageTypeEmergencyOverride, Data: state})
}
