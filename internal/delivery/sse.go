// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// SSE event names on the notification stream.
const (
	EventConnected     = "connected"
	EventPing          = "ping"
	EventContentUpdate = "content_update"
	EventRealtimeReady = "realtime_ready"
)

// EventWriter writes named SSE events to one client. It is not safe for
// concurrent use; the owning session is the only writer.
//
// Each write re-arms a deadline on the underlying connection, which is
// the dead-peer detector: a client that stopped reading fails the next
// write instead of holding the session open forever.
type EventWriter struct {
	w          http.ResponseWriter
	rc         *http.ResponseController
	timeout    time.Duration
	deadlineOK bool
}

// NewEventWriter prepares w for an SSE stream and sends the headers.
// timeout bounds each client write; <= 0 disables deadlines.
func NewEventWriter(w http.ResponseWriter, timeout time.Duration) *EventWriter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // stop nginx from buffering the stream
	w.WriteHeader(http.StatusOK)

	return &EventWriter{
		w:          w,
		rc:         http.NewResponseController(w),
		timeout:    timeout,
		deadlineOK: timeout > 0,
	}
}

// WriteEvent sends one event and flushes it. id may be empty; when set
// it becomes the SSE id line so native EventSource clients carry a
// Last-Event-ID across reconnects.
func (ew *EventWriter) WriteEvent(id, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	ew.armDeadline()

	if id != "" {
		if _, err := fmt.Fprintf(ew.w, "id: %s\n", id); err != nil {
			return fmt.Errorf("write %s event: %w", event, err)
		}
	}
	if _, err := fmt.Fprintf(ew.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}
	if err := ew.rc.Flush(); err != nil {
		return fmt.Errorf("flush %s event: %w", event, err)
	}
	return nil
}

// armDeadline pushes the write deadline forward. Writers that do not
// support deadlines (test recorders, some proxies) degrade to no
// deadline after the first attempt.
func (ew *EventWriter) armDeadline() {
	if !ew.deadlineOK {
		return
	}
	if err := ew.rc.SetWriteDeadline(time.Now().Add(ew.timeout)); err != nil {
		if errors.Is(err, http.ErrNotSupported) {
			ew.deadlineOK = false
			return
		}
	}
}
