// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package models

import (
	"time"
)

// NotificationType classifies what kind of content change a notification
// announces to a screen.
type NotificationType string

const (
	NotificationPlaylistChange NotificationType = "playlist_change"
	NotificationScheduleChange NotificationType = "schedule_change"
	NotificationEmergency      NotificationType = "emergency"
	NotificationContentSync    NotificationType = "content_sync"
	NotificationSystem         NotificationType = "system"
)

var notificationTypes = map[NotificationType]struct{}{
	NotificationPlaylistChange: {},
	NotificationScheduleChange: {},
	NotificationEmergency:      {},
	NotificationContentSync:    {},
	NotificationSystem:         {},
}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	_, ok := notificationTypes[t]
	return ok
}

// NotificationRefs carries the opaque content-entity identifiers a
// notification may reference. The subsystem never dereferences them.
type NotificationRefs struct {
	ScheduleID   string `json:"schedule_id,omitempty"`
	PlaylistID   string `json:"playlist_id,omitempty"`
	MediaAssetID string `json:"media_asset_id,omitempty"`
}

// Notification is a durable fact that content relevant to a screen changed.
//
// DeliveredAt moves from nil to a timestamp exactly once, via a conditional
// update performed by whichever delivery path (stream catch-up, stream
// real-time, or poll) wins the claim. A nil DeliveredAt means the row is
// pending and must eventually reach the screen through exactly one channel.
type Notification struct {
	ID               string           `json:"id"`
	ScreenID         string           `json:"screen_id"`
	NotificationType NotificationType `json:"notification_type"`
	Title            string           `json:"title"`
	Message          string           `json:"message,omitempty"`
	Refs             NotificationRefs `json:"refs,omitempty"`
	Priority         int              `json:"priority"`
	CreatedAt        time.Time        `json:"created_at"`
	DeliveredAt      *time.Time       `json:"delivered_at,omitempty"`
}

// Pending reports whether the notification still awaits delivery.
func (n *Notification) Pending() bool {
	return n.DeliveredAt == nil
}
