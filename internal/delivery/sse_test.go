// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package delivery

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

type sseEvent struct {
	id   string
	name string
	data string
}

// parseSSE splits a recorded stream body into events. Only valid after
// the writing goroutine has finished.
func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(body, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "id: "):
				ev.id = strings.TrimPrefix(line, "id: ")
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			default:
				t.Fatalf("unexpected SSE line %q", line)
			}
		}
		if ev.name == "" {
			t.Fatalf("SSE block without event name: %q", block)
		}
		events = append(events, ev)
	}
	return events
}

func eventNames(events []sseEvent) []string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.name
	}
	return names
}

func TestEventWriterHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	NewEventWriter(rec, time.Second)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	h := rec.Header()
	for key, want := range map[string]string{
		"Content-Type":      "text/event-stream",
		"Cache-Control":     "no-cache",
		"Connection":        "keep-alive",
		"X-Accel-Buffering": "no",
	} {
		if got := h.Get(key); got != want {
			t.Fatalf("header %s = %q, want %q", key, got, want)
		}
	}
}

func TestEventWriterWriteEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	ew := NewEventWriter(rec, time.Second)

	if err := ew.WriteEvent("", EventConnected, ConnectedData{ScreenID: "screen-1", ServerTime: "2026-03-01T12:00:00Z"}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := ew.WriteEvent("n-1", EventContentUpdate, map[string]string{"title": "Lobby refresh"}); err != nil {
		t.Fatalf("WriteEvent with id: %v", err)
	}

	events := parseSSE(t, rec.Body.String())
	if len(events) != 2 {
		t.Fatalf("parsed %d events, want 2: %q", len(events), rec.Body.String())
	}

	if events[0].id != "" || events[0].name != EventConnected {
		t.Fatalf("first event = %+v, want connected with no id", events[0])
	}
	var greeting ConnectedData
	if err := json.Unmarshal([]byte(events[0].data), &greeting); err != nil {
		t.Fatalf("decode connected data: %v", err)
	}
	if greeting.ScreenID != "screen-1" {
		t.Fatalf("greeting = %+v", greeting)
	}

	if events[1].id != "n-1" || events[1].name != EventContentUpdate {
		t.Fatalf("second event = %+v, want content_update with id n-1", events[1])
	}
}

func TestEventWriterMarshalError(t *testing.T) {
	rec := httptest.NewRecorder()
	ew := NewEventWriter(rec, time.Second)

	if err := ew.WriteEvent("", EventPing, make(chan int)); err == nil {
		t.Fatal("WriteEvent accepted unencodable data")
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("body = %q, want nothing written after a marshal failure", rec.Body.String())
	}
}

func TestEventWriterDeadlineDegrades(t *testing.T) {
	// httptest.ResponseRecorder has no write deadlines; the writer must
	// fall back to unbounded writes instead of failing every event.
	rec := httptest.NewRecorder()
	ew := NewEventWriter(rec, time.Second)

	for i := 0; i < 3; i++ {
		if err := ew.WriteEvent("", EventPing, PingData{NotificationsSent: int64(i)}); err != nil {
			t.Fatalf("WriteEvent %d: %v", i, err)
		}
	}
	if ew.deadlineOK {
		t.Fatal("deadlineOK still set after ErrNotSupported")
	}
	if got := len(parseSSE(t, rec.Body.String())); got != 3 {
		t.Fatalf("parsed %d events, want 3", got)
	}
}
