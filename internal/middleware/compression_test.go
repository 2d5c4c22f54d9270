// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompression_GzipsWhenAccepted(t *testing.T) {
	payload := strings.Repeat(`{"notification_type":"playlist_change"}`, 50)
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}

	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/commands", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	wrapped(rec, req)

	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Expected Content-Encoding gzip, got %q", got)
	}

	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer gr.Close()

	decompressed, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("Failed to decompress body: %v", err)
	}
	if string(decompressed) != payload {
		t.Error("Decompressed body does not match original payload")
	}
}

func TestCompression_SkipsWithoutAcceptEncoding(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain"))
	}

	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/commands", nil)
	rec := httptest.NewRecorder()

	wrapped(rec, req)

	if rec.Header().Get("Content-Encoding") != "" {
		t.Error("Expected uncompressed response without Accept-Encoding")
	}
	if rec.Body.String() != "plain" {
		t.Errorf("Expected raw body, got %q", rec.Body.String())
	}
}

func TestCompression_SkipsEventStreams(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: ping\ndata: {}\n\n"))
	}

	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()

	wrapped(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("Event streams must not be gzip-compressed")
	}
	if !strings.Contains(rec.Body.String(), "event: ping") {
		t.Error("Expected raw SSE body")
	}
}

func TestCompression_SkipsWebSocketUpgrades(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSwitchingProtocols)
	}

	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ws", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()

	wrapped(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("WebSocket upgrades must not be gzip-compressed")
	}
}

func TestCompression_PreservesStatusCode(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}

	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/commands/missing", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	wrapped(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 through compression, got %d", rec.Code)
	}
}

func BenchmarkCompression(b *testing.B) {
	payload := strings.Repeat(`{"k":"v"}`, 200)
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}

	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		wrapped(rec, req)
	}
}
