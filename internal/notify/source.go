// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package notify

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
	"github.com/callboardhq/callboard/internal/models"
)

// NotificationSource is the contract delivery sessions consume. Subscribe
// returns a channel of candidate notifications for one screen; the
// channel closes when ctx is canceled or the source shuts down.
//
// Sources surface candidates only. The consumer performs the
// delivered_at claim, so a source may repeat or race rows freely.
type NotificationSource interface {
	Subscribe(ctx context.Context, screenID string) (<-chan *models.Notification, error)
}

// sourceBuffer is the per-subscription channel capacity. A slow consumer
// briefly back-pressures the forwarding goroutine, not the broker.
const sourceBuffer = 16

// FeedSource adapts the NATS wake-up feed to NotificationSource.
type FeedSource struct {
	sub           message.Subscriber
	subjectPrefix string
}

// NewFeedSource wraps a subscriber on the wake-up feed. subjectPrefix
// must match the publisher's.
func NewFeedSource(sub message.Subscriber, subjectPrefix string) *FeedSource {
	return &FeedSource{sub: sub, subjectPrefix: subjectPrefix}
}

// Subscribe starts consuming the screen's wake-up subject. Messages that
// fail to decode are counted and dropped; the row they announced is
// still in the store for catch-up.
func (s *FeedSource) Subscribe(ctx context.Context, screenID string) (<-chan *models.Notification, error) {
	subject := SubjectForScreen(s.subjectPrefix, screenID)
	msgs, err := s.sub.Subscribe(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	out := make(chan *models.Notification, sourceBuffer)
	go s.forward(ctx, screenID, msgs, out)
	return out, nil
}

// forward decodes feed messages onto out until the subscription closes.
func (s *FeedSource) forward(ctx context.Context, screenID string, msgs <-chan *message.Message, out chan<- *models.Notification) {
	defer close(out)

	for msg := range msgs {
		var n models.Notification
		if err := json.Unmarshal(msg.Payload, &n); err != nil {
			metrics.RecordNATSParseFailed()
			logging.Warn().
				Err(err).
				Str("message_uuid", msg.UUID).
				Str("screen_id", screenID).
				Msg("Discarding undecodable wake-up message")
			msg.Ack()
			continue
		}
		msg.Ack()
		metrics.RecordNATSConsume()

		select {
		case out <- &n:
		case <-ctx.Done():
			return
		}
	}
}

// Close shuts down the underlying subscriber, ending all subscriptions.
func (s *FeedSource) Close() error {
	return s.sub.Close()
}
