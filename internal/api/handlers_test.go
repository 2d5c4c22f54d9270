// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"context"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/callboardhq/callboard/internal/auth"
	"github.com/callboardhq/callboard/internal/config"
	"github.com/callboardhq/callboard/internal/database"
	"github.com/callboardhq/callboard/internal/delivery"
	"github.com/callboardhq/callboard/internal/dispatch"
	"github.com/callboardhq/callboard/internal/models"
	"github.com/callboardhq/callboard/internal/notify"
	"github.com/callboardhq/callboard/internal/polling"
)

// fakeStore is an in-memory stand-in for database.Store covering every
// interface the handlers and their services consume. Conditional updates
// mirror the real store's semantics so handler tests exercise the same
// transition rules.
type fakeStore struct {
	mu sync.Mutex

	screens       map[string]*models.Screen
	devices       map[string]*models.Device
	pairings      map[string]*models.DevicePairing
	commands      map[string]*models.Command
	notifications map[string]*models.Notification
	pollingCfgs   map[string]*models.PollingConfiguration

	pingErr  error
	failNext map[string]error // method name -> error returned once
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		screens:       make(map[string]*models.Screen),
		devices:       make(map[string]*models.Device),
		pairings:      make(map[string]*models.DevicePairing),
		commands:      make(map[string]*models.Command),
		notifications: make(map[string]*models.Notification),
		pollingCfgs:   make(map[string]*models.PollingConfiguration),
		failNext:      make(map[string]error),
	}
}

// failOnce arranges for the named store method to fail on its next call.
func (f *fakeStore) failOnce(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext[method] = err
}

func (f *fakeStore) takeFailure(method string) error {
	if err, ok := f.failNext[method]; ok {
		delete(f.failNext, method)
		return err
	}
	return nil
}

func (f *fakeStore) addScreen(s *models.Screen) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.screens[s.ID] = &cp
}

func (f *fakeStore) addNotification(n *models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.notifications[n.ID] = &cp
}

// --- delivery.SessionStore ---

func (f *fakeStore) ListUndelivered(_ context.Context, screenID string, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("ListUndelivered"); err != nil {
		return nil, err
	}
	var out []models.Notification
	for _, n := range f.notifications {
		if n.ScreenID == screenID && n.DeliveredAt == nil {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ClaimNotificationDelivered(_ context.Context, id string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("ClaimNotificationDelivered"); err != nil {
		return false, err
	}
	n, ok := f.notifications[id]
	if !ok || n.DeliveredAt != nil {
		return false, nil
	}
	n.DeliveredAt = &now
	return true, nil
}

// --- api.Store extras ---

func (f *fakeStore) ClaimUndelivered(_ context.Context, screenID string, since *time.Time, now time.Time, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("ClaimUndelivered"); err != nil {
		return nil, err
	}
	var out []models.Notification
	for _, n := range f.notifications {
		if n.ScreenID != screenID || n.DeliveredAt != nil {
			continue
		}
		if since != nil && !n.CreatedAt.After(*since) {
			continue
		}
		n.DeliveredAt = &now
		out = append(out, *n)
		if len(out) == limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) CountUndelivered(_ context.Context, screenID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("CountUndelivered"); err != nil {
		return 0, err
	}
	var n int64
	for _, row := range f.notifications {
		if row.ScreenID == screenID && row.DeliveredAt == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetScreen(_ context.Context, id string) (*models.Screen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("GetScreen"); err != nil {
		return nil, err
	}
	s, ok := f.screens[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) TouchScreenHeartbeat(_ context.Context, screenID string, hb *models.Heartbeat, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("TouchScreenHeartbeat"); err != nil {
		return err
	}
	s, ok := f.screens[screenID]
	if !ok {
		return database.ErrNotFound
	}
	s.LastSeenAt = &now
	if hb != nil {
		s.LastHeartbeat = map[string]interface{}{"status": hb.Status, "system_info": hb.SystemInfo}
	}
	return nil
}

func (f *fakeStore) InsertPairingCode(_ context.Context, p *models.DevicePairing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("InsertPairingCode"); err != nil {
		return err
	}
	if _, exists := f.pairings[p.Code]; exists {
		return database.ErrDuplicateCode
	}
	cp := *p
	f.pairings[p.Code] = &cp
	return nil
}

func (f *fakeStore) GetPairing(_ context.Context, code string) (*models.DevicePairing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("GetPairing"); err != nil {
		return nil, err
	}
	p, ok := f.pairings[code]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ClaimPairing(_ context.Context, code, screenID, deviceID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("ClaimPairing"); err != nil {
		return err
	}
	p, ok := f.pairings[code]
	if !ok {
		return database.ErrNotFound
	}
	if p.ClaimedAt != nil {
		return database.ErrAlreadyClaimed
	}
	if now.After(p.ExpiresAt) {
		return database.ErrCodeExpired
	}
	p.ScreenID = screenID
	p.DeviceID = deviceID
	p.ClaimedAt = &now
	return nil
}

func (f *fakeStore) UpsertDevice(_ context.Context, d *models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("UpsertDevice"); err != nil {
		return err
	}
	cp := *d
	f.devices[d.ID] = &cp
	return nil
}

func (f *fakeStore) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

// --- dispatch.Store ---

func (f *fakeStore) InsertCommand(_ context.Context, cmd *models.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("InsertCommand"); err != nil {
		return err
	}
	cp := *cmd
	f.commands[cmd.ID] = &cp
	return nil
}

func (f *fakeStore) GetCommand(_ context.Context, id string) (*models.Command, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd, ok := f.commands[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *cmd
	return &cp, nil
}

func (f *fakeStore) ListPendingCommands(_ context.Context, deviceID string, limit int) ([]models.Command, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("ListPendingCommands"); err != nil {
		return nil, err
	}
	var out []models.Command
	for _, cmd := range f.commands {
		if cmd.DeviceID == deviceID && cmd.Status == models.CommandPending {
			out = append(out, *cmd)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) AcknowledgeCommand(_ context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd, ok := f.commands[id]
	if !ok {
		return database.ErrNotFound
	}
	if cmd.Status != models.CommandPending {
		return database.ErrInvalidTransition
	}
	cmd.Status = models.CommandAcknowledged
	cmd.AcknowledgedAt = &now
	return nil
}

func (f *fakeStore) CompleteCommand(_ context.Context, id string, result map[string]interface{}, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finishCommand(id, models.CommandCompleted, now, func(cmd *models.Command) {
		cmd.Result = result
	})
}

func (f *fakeStore) FailCommand(_ context.Context, id, errorMessage string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finishCommand(id, models.CommandFailed, now, func(cmd *models.Command) {
		cmd.ErrorMessage = errorMessage
	})
}

func (f *fakeStore) finishCommand(id string, to models.CommandStatus, now time.Time, apply func(*models.Command)) error {
	cmd, ok := f.commands[id]
	if !ok {
		return database.ErrNotFound
	}
	switch cmd.Status {
	case models.CommandPending, models.CommandAcknowledged:
		cmd.Status = to
		cmd.CompletedAt = &now
		apply(cmd)
		return nil
	case to:
		return nil
	default:
		return database.ErrInvalidTransition
	}
}

func (f *fakeStore) SweepTimedOut(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, cmd := range f.commands {
		deadline := cmd.CreatedAt.Add(time.Duration(cmd.TimeoutSeconds) * time.Second)
		active := cmd.Status == models.CommandPending || cmd.Status == models.CommandAcknowledged
		if active && now.After(deadline) {
			cmd.Status = models.CommandTimedOut
			cmd.CompletedAt = &now
			n++
		}
	}
	return n, nil
}

// --- polling.Store ---

func (f *fakeStore) GetPollingConfiguration(_ context.Context, orgID string) (*models.PollingConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("GetPollingConfiguration"); err != nil {
		return nil, err
	}
	cfg, ok := f.pollingCfgs[orgID]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (f *fakeStore) UpsertPollingConfiguration(_ context.Context, cfg *models.PollingConfiguration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("UpsertPollingConfiguration"); err != nil {
		return err
	}
	cp := *cfg
	f.pollingCfgs[cfg.OrganizationID] = &cp
	return nil
}

func (f *fakeStore) ActivateEmergency(_ context.Context, orgID string, intervalSeconds, timeoutHours int, startedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.pollingCfgs[orgID]
	if !ok {
		cfg = &models.PollingConfiguration{OrganizationID: orgID, Timezone: "UTC"}
		f.pollingCfgs[orgID] = cfg
	}
	cfg.EmergencyOverride = true
	cfg.EmergencyIntervalSeconds = intervalSeconds
	cfg.EmergencyTimeoutHours = timeoutHours
	cfg.EmergencyStartedAt = &startedAt
	return nil
}

func (f *fakeStore) DeactivateEmergency(_ context.Context, orgID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cfg, ok := f.pollingCfgs[orgID]; ok {
		cfg.EmergencyOverride = false
		cfg.EmergencyStartedAt = nil
	}
	return nil
}

func (f *fakeStore) ClearExpiredEmergency(_ context.Context, orgID string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.pollingCfgs[orgID]
	if !ok || !cfg.EmergencyOverride || cfg.EmergencyStartedAt == nil {
		return false, nil
	}
	deadline := cfg.EmergencyStartedAt.Add(time.Duration(cfg.EmergencyTimeoutHours) * time.Hour)
	if now.Before(deadline) {
		return false, nil
	}
	cfg.EmergencyOverride = false
	cfg.EmergencyStartedAt = nil
	return true, nil
}

// --- notify.Store ---

func (f *fakeStore) InsertNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure("InsertNotification"); err != nil {
		return err
	}
	cp := *n
	f.notifications[n.ID] = &cp
	return nil
}

// fakeSource is a manually fed NotificationSource.
type fakeSource struct {
	mu   sync.Mutex
	subs map[string]chan *models.Notification
	err  error
}

func newFakeSource() *fakeSource {
	return &fakeSource{subs: make(map[string]chan *models.Notification)}
}

func (f *fakeSource) Subscribe(_ context.Context, screenID string) (<-chan *models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan *models.Notification, 16)
	f.subs[screenID] = ch
	return ch, nil
}

func (f *fakeSource) push(screenID string, n *models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.subs[screenID]; ok {
		ch <- n
	}
}

// testConfig returns a config shaped like a loaded dev deployment.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8480,
			Environment: "development",
		},
		Dispatch: config.DispatchConfig{
			DefaultTimeoutSeconds: 300,
			ListPendingLimit:      50,
			SweepInterval:         30 * time.Second,
		},
		Delivery: config.DeliveryConfig{
			HeartbeatInterval: 30 * time.Second,
			CatchUpLimit:      100,
			SendBuffer:        16,
			BreakerFailures:   3,
			WriteTimeout:      5 * time.Second,
		},
		Pairing: config.PairingConfig{
			CodeTTL:           5 * time.Minute,
			AttemptsPerMinute: 1000,
		},
		Security: config.SecurityConfig{
			AuthMode:       auth.ModeJWT,
			JWTSecret:      "test-secret-for-handler-tests",
			DeviceTokenTTL: 24 * time.Hour,
			CORSOrigins:    []string{"http://dashboard.local"},
		},
	}
}

// testHandler bundles the handler with the collaborators tests poke at.
type testHandler struct {
	*Handler
	store     *fakeStore
	source    *fakeSource
	scheduler *polling.Service
	tokens    *auth.TokenManager
}

// newTestHandler assembles a Handler over the fake store with real
// services, mirroring the production wiring in cmd/server.
func newTestHandler(t *testing.T, store *fakeStore) *testHandler {
	t.Helper()

	cfg := testConfig()
	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	dispatcher := dispatch.NewDispatcher(store, cfg.Dispatch.DefaultTimeoutSeconds, cfg.Dispatch.ListPendingLimit)
	scheduler := polling.NewService(store)
	publisher := notify.NewPublisher(store)
	registry := delivery.NewRegistry()
	source := newFakeSource()

	h := NewHandler(store, dispatcher, publisher, scheduler, registry, source, tokens, nil, cfg)
	t.Cleanup(h.Close)

	return &testHandler{
		Handler:   h,
		store:     store,
		source:    source,
		scheduler: scheduler,
		tokens:    tokens,
	}
}

// deviceCtx returns a request context carrying device claims, the way
// the auth middleware leaves it.
func deviceCtx(screenID, deviceID string) context.Context {
	return auth.ContextWithDevice(context.Background(), &auth.DeviceClaims{
		ScreenID: screenID,
		DeviceID: deviceID,
	})
}

// adminCtx returns a request context carrying admin claims.
func adminCtx(username string) context.Context {
	return auth.ContextWithAdmin(context.Background(), &auth.AdminClaims{
		Username: username,
		Role:     "admin",
	})
}

// decodeEnvelope unmarshals a recorded response body into the envelope
// plus a typed data payload.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) *models.APIResponse {
	t.Helper()

	var envelope struct {
		Status   string           `json:"status"`
		Data     json.RawMessage  `json:"data"`
		Metadata models.Metadata  `json:"metadata"`
		Error    *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v\nbody: %s", err, rec.Body.String())
	}
	if data != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, data); err != nil {
			t.Fatalf("unmarshal data: %v\ndata: %s", err, envelope.Data)
		}
	}
	return &models.APIResponse{
		Status:   envelope.Status,
		Metadata: envelope.Metadata,
		Error:    envelope.Error,
	}
}
