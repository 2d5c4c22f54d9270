// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestPrometheusMetrics_RecordsRequest(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}

	wrapped := PrometheusMetrics(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/commands", nil)
	rec := httptest.NewRecorder()

	// Should not panic, and the handler's status must pass through
	wrapped(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	// Mount through a chi router so the route pattern is available
	r := chi.NewRouter()
	r.Get("/api/v1/commands/{commandID}", PrometheusMetrics(func(w http.ResponseWriter, req *http.Request) {
		if rctx := chi.RouteContext(req.Context()); rctx == nil {
			t.Error("Expected chi route context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/commands/0f8fad5b-d9cb-469f-a165-70867728950e", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestPrometheusMetrics_DefaultStatus(t *testing.T) {
	// Handler writes the body without calling WriteHeader
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}

	wrapped := PrometheusMetrics(handler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	wrapped(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected implicit status 200, got %d", rec.Code)
	}
}

func TestMetricsResponseWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapper := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	// httptest.ResponseRecorder implements http.Flusher
	wrapper.Flush()

	if !rec.Flushed {
		t.Error("Expected flush to pass through to the underlying writer")
	}
}

func BenchmarkPrometheusMetrics(b *testing.B) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	wrapped := PrometheusMetrics(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/commands", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		wrapped(rec, req)
	}
}
