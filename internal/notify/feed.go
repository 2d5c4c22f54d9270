// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package notify

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/callboardhq/callboard/internal/config"
	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
)

// NewFeedPublisher creates the Watermill NATS publisher for the wake-up
// feed. Core NATS only: the store is durable, the feed is a signal, so
// JetStream buys nothing here but a disk.
func NewFeedPublisher(cfg config.NATSConfig) (message.Publisher, error) {
	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: connectOptions(cfg, "feed-publisher"),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled: true,
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, watermillLogger())
	if err != nil {
		return nil, fmt.Errorf("create feed publisher: %w", err)
	}
	return pub, nil
}

// NewFeedSubscriber creates the Watermill NATS subscriber for the
// wake-up feed. No queue group: every instance must see every signal,
// and the delivered_at claim dedups across instances.
func NewFeedSubscriber(cfg config.NATSConfig) (message.Subscriber, error) {
	wmConfig := wmNats.SubscriberConfig{
		URL:              cfg.URL,
		SubscribersCount: 1,
		NatsOptions:      connectOptions(cfg, "feed-subscriber"),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled: true,
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, watermillLogger())
	if err != nil {
		return nil, fmt.Errorf("create feed subscriber: %w", err)
	}
	return sub, nil
}

// FeedStatusProbe opens a lightweight connection used only to report
// feed health. The Watermill publisher and subscriber own their
// connections privately, so health checks against an external NATS
// server need their own. The returned probe is safe for concurrent use;
// closer releases the connection.
func FeedStatusProbe(cfg config.NATSConfig) (probe func() bool, closer func(), err error) {
	nc, err := natsgo.Connect(cfg.URL, connectOptions(cfg, "feed-status")...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect feed status probe: %w", err)
	}
	return nc.IsConnected, nc.Close, nil
}

// connectOptions builds the shared NATS connection options with
// reconnect handling.
func connectOptions(cfg config.NATSConfig, role string) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("callboard-" + role),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Str("role", role).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			metrics.RecordNATSReconnect()
			logging.Info().Str("role", role).Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		natsgo.ErrorHandler(func(_ *natsgo.Conn, sub *natsgo.Subscription, err error) {
			evt := logging.Warn().Err(err).Str("role", role)
			if sub != nil {
				evt = evt.Str("subject", sub.Subject)
			}
			evt.Msg("NATS async error")
		}),
	}
}

// watermillLogger returns the adapter Watermill components log through.
// Watermill is chatty at debug level; the std logger keeps it quiet.
func watermillLogger() watermill.LoggerAdapter {
	return watermill.NewStdLogger(false, false)
}
