// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBufferedSlogHandler(buf *bytes.Buffer) *SlogHandler {
	return NewSlogHandlerWithLogger(zerolog.New(buf))
}

func TestSlogHandlerEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled at info level")
	}
	if !handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be enabled at info level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at info level")
	}
}

func TestSlogHandlerHandleLevels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{"debug", slog.LevelDebug, `"level":"debug"`},
		{"info", slog.LevelInfo, `"level":"info"`},
		{"warn", slog.LevelWarn, `"level":"warn"`},
		{"error", slog.LevelError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := newBufferedSlogHandler(&buf)

			record := slog.NewRecord(time.Now(), tt.level, "level test", 0)
			if err := handler.Handle(context.Background(), record); err != nil {
				t.Fatalf("Handle returned error: %v", err)
			}

			output := buf.String()
			if !strings.Contains(output, tt.want) {
				t.Errorf("expected %s in output: %s", tt.want, output)
			}
			if !strings.Contains(output, "level test") {
				t.Errorf("expected message in output: %s", output)
			}
		})
	}
}

func TestSlogHandlerAttrKinds(t *testing.T) {
	var buf bytes.Buffer
	handler := newBufferedSlogHandler(&buf)

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "attrs", 0)
	record.AddAttrs(
		slog.String("screen", "scr-1"),
		slog.Int64("count", 42),
		slog.Bool("active", true),
		slog.Float64("ratio", 0.5),
		slog.Duration("elapsed", 2*time.Second),
	)

	if err := handler.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		`"screen":"scr-1"`,
		`"count":42`,
		`"active":true`,
		`"ratio":0.5`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := newBufferedSlogHandler(&buf)

	child := handler.WithAttrs([]slog.Attr{slog.String("service", "delivery")})

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "with attrs", 0)
	if err := child.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if !strings.Contains(buf.String(), `"service":"delivery"`) {
		t.Errorf("expected pre-configured attr in output: %s", buf.String())
	}

	// Parent handler must be unaffected
	buf.Reset()
	record = slog.NewRecord(time.Now(), slog.LevelInfo, "parent", 0)
	if err := handler.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if strings.Contains(buf.String(), "delivery") {
		t.Errorf("parent handler should not carry child attrs: %s", buf.String())
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := newBufferedSlogHandler(&buf)

	grouped := handler.WithGroup("session")

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "grouped", 0)
	record.AddAttrs(slog.String("state", "streaming"))

	if err := grouped.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if !strings.Contains(buf.String(), `"session.state":"streaming"`) {
		t.Errorf("expected group-prefixed key in output: %s", buf.String())
	}
}

func TestSlogHandlerWithEmptyGroup(t *testing.T) {
	t.Parallel()

	handler := NewSlogHandler()
	if got := handler.WithGroup(""); got != handler {
		t.Error("expected WithGroup(\"\") to return the same handler")
	}
}

func TestSlogHandlerGroupAttr(t *testing.T) {
	var buf bytes.Buffer
	handler := newBufferedSlogHandler(&buf)

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "group attr", 0)
	record.AddAttrs(slog.Group("conn", slog.String("state", "open"), slog.Int("retries", 3)))

	if err := handler.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"conn.state":"open"`) {
		t.Errorf("expected nested group key: %s", output)
	}
	if !strings.Contains(output, `"conn.retries":3`) {
		t.Errorf("expected nested group key: %s", output)
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	tests := []struct {
		input    slog.Level
		expected zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input.String(), func(t *testing.T) {
			t.Parallel()
			if got := slogToZerologLevel(tt.input); got != tt.expected {
				t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	slogger := NewSlogLogger()
	slogger.Info("slog bridge", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "slog bridge") {
		t.Errorf("expected message through bridge: %s", output)
	}
	if !strings.Contains(output, `"key":"value"`) {
		t.Errorf("expected attr through bridge: %s", output)
	}
}

func TestNewSlogLoggerWithLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	slogger := NewSlogLoggerWithLevel("error")
	slogger.Info("should be dropped")
	slogger.Error("should appear")

	output := buf.String()
	if strings.Contains(output, "should be dropped") {
		t.Errorf("info message should be filtered: %s", output)
	}
	if !strings.Contains(output, "should appear") {
		t.Errorf("error message should pass: %s", output)
	}
}
