// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestHub serves one upgraded connection through the hub and dials
// it from the client side.
func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := NewClient(hub, conn)
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewClientAssignsUniqueIDs(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)

	if a.ID() == b.ID() {
		t.Fatalf("both clients got id %d", a.ID())
	}
	if cap(a.send) != 256 {
		t.Fatalf("send buffer = %d, want 256", cap(a.send))
	}
}

func TestClientReceivesBroadcast(t *testing.T) {
	hub := setupHub(t)
	conn := dialTestHub(t, hub)

	waitClientCount(t, hub, 1)
	hub.ScreenConnected("screen-1")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MessageTypeScreenConnected {
		t.Fatalf("type = %q, want screen_connected", msg.Type)
	}
	data, ok := msg.Data.(map[string]interface{})
	if !ok || data["screen_id"] != "screen-1" {
		t.Fatalf("data = %+v", msg.Data)
	}
}

func TestClientPingGetsPong(t *testing.T) {
	hub := setupHub(t)
	conn := dialTestHub(t, hub)
	waitClientCount(t, hub, 1)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if msg.Type != MessageTypePong {
		t.Fatalf("type = %q, want pong", msg.Type)
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := setupHub(t)
	conn := dialTestHub(t, hub)
	waitClientCount(t, hub, 1)

	_ = conn.Close()
	waitClientCount(t, hub, 0)
}

func TestClientHubShutdownClosesConnection(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Serve(ctx)
	}()

	conn := dialTestHub(t, hub)
	waitClientCount(t, hub, 1)

	cancel()
	<-done

	// The write pump sends a close frame when the hub drops the client;
	// the next read surfaces it.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) &&
				!strings.Contains(err.Error(), "timeout") {
				t.Logf("close surfaced as: %v", err)
			}
			return
		}
	}
}

func TestClientTimingConstants(t *testing.T) {
	if pingPeriod >= pongWait {
		t.Fatalf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
	if writeWait != 10*time.Second {
		t.Fatalf("writeWait = %v", writeWait)
	}
}
