// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package delivery

import (
	"sort"
	"sync"
	"time"
)

// ChannelInfo is the admin-facing snapshot of one live delivery channel.
type ChannelInfo struct {
	ScreenID           string     `json:"screen_id"`
	DeviceID           string     `json:"device_id,omitempty"`
	State              string     `json:"state"`
	ConnectedAt        time.Time  `json:"connected_at"`
	NotificationsSent  int64      `json:"notifications_sent"`
	LastNotificationAt *time.Time `json:"last_notification_at,omitempty"`
}

// Registry tracks the authoritative delivery channel per screen on this
// instance. Registration under the mutex is the only critical section;
// the evicted session is closed outside it to keep lock ordering trivial.
//
// The registry is injected, never global — each instance owns only its
// local connections, and cross-instance duplicate suppression is the
// store's claim rule, not the registry's job.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Session
}

// NewRegistry creates an empty channel registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]*Session)}
}

// register installs s as the screen's channel and returns the session it
// displaced, if any. The caller must run the evicted session's cleanup.
func (r *Registry) register(screenID string, s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.channels[screenID]
	r.channels[screenID] = s
	return old
}

// deregister removes s if it is still the screen's current channel. A
// session evicted earlier finds a newer session here and leaves it alone.
func (r *Registry) deregister(screenID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channels[screenID] == s {
		delete(r.channels, screenID)
	}
}

// Lookup returns the screen's current session, or nil.
func (r *Registry) Lookup(screenID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels[screenID]
}

// Count returns the number of live channels.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Snapshot returns the live channels ordered by screen id.
func (r *Registry) Snapshot() []ChannelInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.channels))
	for _, s := range r.channels {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	infos := make([]ChannelInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ScreenID < infos[j].ScreenID
	})
	return infos
}
