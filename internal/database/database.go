// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/callboardhq/callboard/internal/config"
	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
)

// connectTimeout bounds the initial reachability probe so a down database
// fails startup quickly instead of hanging on the default dial timeout.
const connectTimeout = 10 * time.Second

// Store is the PostgreSQL-backed store for the delivery subsystem.
// It is safe for concurrent use; all methods go through the shared pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL using cfg, verifies reachability, and runs the
// idempotent startup migrations unless cfg.MigrateOnStart is false.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	logging.Info().
		Int32("max_conns", poolCfg.MaxConns).
		Int32("min_conns", poolCfg.MinConns).
		Bool("migrated", cfg.MigrateOnStart).
		Msg("Database store ready")

	return s, nil
}

// NewWithPool wraps an existing pool. Used by integration tests that manage
// the container and pool lifecycle themselves.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database reachability. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool. Safe to call once at shutdown.
func (s *Store) Close() {
	s.pool.Close()
}

// ReportPoolStats pushes the current pool utilization into the metrics
// registry. Called periodically by the metrics middleware flush path.
func (s *Store) ReportPoolStats() {
	st := s.pool.Stat()
	metrics.UpdateDBPoolStats(st.AcquiredConns(), st.TotalConns())
}

// observe records one query against the database metrics. Methods call it
// via defer with a named error return so the success label is accurate.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}
