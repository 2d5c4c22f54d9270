// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/callboardhq/callboard/internal/models"
)

type fakeSubscriber struct {
	msgs   chan *message.Message
	topic  string
	subErr error
	closed bool
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{msgs: make(chan *message.Message, 8)}
}

func (f *fakeSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.topic = topic
	return f.msgs, nil
}

func (f *fakeSubscriber) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSubscriber) emit(t *testing.T, n *models.Notification) {
	t.Helper()
	payload, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	f.msgs <- message.NewMessage(n.ID, payload)
}

func recvNotification(t *testing.T, ch <-chan *models.Notification) *models.Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		if !ok {
			t.Fatal("source channel closed unexpectedly")
		}
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func TestFeedSourceSubscribe(t *testing.T) {
	t.Run("consumes the screen subject", func(t *testing.T) {
		sub := newFakeSubscriber()
		src := NewFeedSource(sub, "test")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if _, err := src.Subscribe(ctx, "scr-1"); err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
		if want := SubjectForScreen("test", "scr-1"); sub.topic != want {
			t.Fatalf("topic = %q, want %q", sub.topic, want)
		}
	})

	t.Run("forwards decoded notifications", func(t *testing.T) {
		sub := newFakeSubscriber()
		src := NewFeedSource(sub, "test")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out, err := src.Subscribe(ctx, "scr-1")
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}

		sub.emit(t, &models.Notification{
			ID:               "n-1",
			ScreenID:         "scr-1",
			NotificationType: models.NotificationScheduleChange,
			Title:            "Schedule changed",
			CreatedAt:        time.Now().UTC(),
		})

		got := recvNotification(t, out)
		if got.ID != "n-1" || got.NotificationType != models.NotificationScheduleChange {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("drops undecodable messages and keeps going", func(t *testing.T) {
		sub := newFakeSubscriber()
		src := NewFeedSource(sub, "test")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out, err := src.Subscribe(ctx, "scr-1")
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}

		sub.msgs <- message.NewMessage("junk", []byte("{not json"))
		sub.emit(t, &models.Notification{ID: "n-2", ScreenID: "scr-1", Title: "after junk"})

		if got := recvNotification(t, out); got.ID != "n-2" {
			t.Fatalf("got %+v, want the message after the junk", got)
		}
	})

	t.Run("closes when the upstream closes", func(t *testing.T) {
		sub := newFakeSubscriber()
		src := NewFeedSource(sub, "test")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out, err := src.Subscribe(ctx, "scr-1")
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}

		close(sub.msgs)

		select {
		case _, ok := <-out:
			if ok {
				t.Fatal("expected closed channel, got a value")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("source channel did not close")
		}
	})

	t.Run("propagates subscribe errors", func(t *testing.T) {
		sub := newFakeSubscriber()
		sub.subErr = errors.New("no broker")
		src := NewFeedSource(sub, "test")

		if _, err := src.Subscribe(context.Background(), "scr-1"); !errors.Is(err, sub.subErr) {
			t.Fatalf("err = %v, want subscribe error", err)
		}
	})
}

func TestFeedSourceClose(t *testing.T) {
	sub := newFakeSubscriber()
	src := NewFeedSource(sub, "test")
	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sub.closed {
		t.Fatal("underlying subscriber not closed")
	}
}
