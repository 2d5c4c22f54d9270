// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
	"github.com/callboardhq/callboard/internal/models"
)

// ErrInvalidNotification marks a publish request that fails validation.
var ErrInvalidNotification = errors.New("notify: invalid notification")

// feedBreakerName identifies the publish breaker in metrics.
const feedBreakerName = "nats-publish"

// Store is the persistence surface the publisher needs.
type Store interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// EventSink receives published notifications for the admin dashboard
// feed. Implementations must not block.
type EventSink interface {
	NotificationPublished(n *models.Notification)
}

type noopSink struct{}

func (noopSink) NotificationPublished(*models.Notification) {}

// PublishRequest carries the caller-supplied fields of a notification.
type PublishRequest struct {
	ScreenID string
	Type     models.NotificationType
	Title    string
	Message  string
	Refs     models.NotificationRefs
	Priority int
}

// Publisher durably records notifications and announces them on the
// wake-up feed.
//
// The insert is the operation; the announce is an optimization. A feed
// outage degrades delivery latency to the next poll tick, never
// correctness, so feed errors are absorbed here behind a circuit
// breaker instead of surfacing to callers.
type Publisher struct {
	store         Store
	feed          message.Publisher
	breaker       *gobreaker.CircuitBreaker[interface{}]
	subjectPrefix string
	events        EventSink
	now           func() time.Time
}

// NewPublisher creates a publisher over the given store. Without a feed
// attached it still satisfies the full contract; sessions then rely on
// their poll source.
func NewPublisher(store Store) *Publisher {
	return &Publisher{
		store:  store,
		events: noopSink{},
		now:    time.Now,
	}
}

// SetFeed attaches the wake-up feed. The breaker opens after five
// consecutive publish failures and probes again after 30 seconds, so a
// dead broker costs five failed publishes and not one per notification.
func (p *Publisher) SetFeed(feed message.Publisher, subjectPrefix string) {
	p.feed = feed
	p.subjectPrefix = subjectPrefix
	p.breaker = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        feedBreakerName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String())
			metrics.SetBreakerState(name, breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Publish breaker state changed")
		},
	})
}

// SetEventSink wires the admin dashboard feed. Call before serving.
func (p *Publisher) SetEventSink(sink EventSink) {
	if sink != nil {
		p.events = sink
	}
}

// Publish validates the request, durably inserts the notification with
// delivered_at unset, and best-effort announces it. The returned row is
// the stored one; an insert failure is the only failure mode.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*models.Notification, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	n := &models.Notification{
		ID:               uuid.NewString(),
		ScreenID:         req.ScreenID,
		NotificationType: req.Type,
		Title:            req.Title,
		Message:          req.Message,
		Refs:             req.Refs,
		Priority:         req.Priority,
		CreatedAt:        p.now().UTC(),
	}

	if err := p.store.InsertNotification(ctx, n); err != nil {
		metrics.RecordNotificationPublished(string(req.Type), err)
		return nil, fmt.Errorf("publish notification: %w", err)
	}
	metrics.RecordNotificationPublished(string(req.Type), nil)

	logging.Info().
		Str("notification_id", n.ID).
		Str("screen_id", n.ScreenID).
		Str("notification_type", string(n.NotificationType)).
		Msg("Notification published")

	p.announce(n)
	p.events.NotificationPublished(n)
	return n, nil
}

// announce pushes the stored row onto the wake-up feed. Failures are
// logged and counted, never returned: the row is already durable and the
// poll paths will find it.
func (p *Publisher) announce(n *models.Notification) {
	if p.feed == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		logging.Error().Err(err).Str("notification_id", n.ID).Msg("Notification encode failed")
		return
	}

	msg := message.NewMessage(n.ID, payload)
	msg.Metadata.Set("screen_id", n.ScreenID)
	msg.Metadata.Set("notification_type", string(n.NotificationType))

	subject := SubjectForScreen(p.subjectPrefix, n.ScreenID)
	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.feed.Publish(subject, msg)
	})

	metrics.RecordNATSPublish(err)
	if err != nil {
		metrics.RecordBreakerRequest(feedBreakerName, "failure")
		logging.Warn().
			Err(err).
			Str("notification_id", n.ID).
			Str("subject", subject).
			Msg("Wake-up publish failed; poll sources will deliver")
		return
	}
	metrics.RecordBreakerRequest(feedBreakerName, "success")
}

func validateRequest(req PublishRequest) error {
	if req.ScreenID == "" {
		return fmt.Errorf("%w: screen_id is required", ErrInvalidNotification)
	}
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidNotification, req.Type)
	}
	if req.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidNotification)
	}
	return nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
