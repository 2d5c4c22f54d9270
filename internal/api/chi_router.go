// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/callboardhq/callboard/internal/auth"
	"github.com/callboardhq/callboard/internal/authz"
	"github.com/callboardhq/callboard/internal/config"
	"github.com/callboardhq/callboard/internal/middleware"
)

// Router assembles the HTTP surface: handlers, the auth middleware for
// the device and admin planes, and the policy enforcer for admin routes.
type Router struct {
	handler *Handler
	authMW  *auth.Middleware
	authzMW *authz.Middleware
	chiMW   *ChiMiddleware
	config  *config.Config
}

// NewRouter wires the route tree's collaborators together. Setup builds
// the actual mux.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware, cfg *config.Config) *Router {
	return &Router{
		handler: handler,
		authMW:  authMW,
		authzMW: authzMW,
		chiMW:   NewChiMiddlewareFromSecurity(&cfg.Security),
		config:  cfg,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler so the metrics and performance
// wrappers work with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
//
// The surface splits into four planes with different auth and rate
// limit treatment: health (open, permissive limits), pairing (open by
// necessity, strict limits), device (device token), and admin (admin
// credential plus policy check).
func (router *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())   // X-Request-ID plus logging context
	r.Use(chimiddleware.RealIP)     // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)  // Recover from panics
	r.Use(router.chiMW.CORS())      // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive limits: monitors probe these constantly.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.Compression))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// ========================
	// Device Endpoints
	// ========================
	// Pairing is the only unauthenticated application surface: a device
	// fresh out of the box has no token yet. The transport-level limit
	// here backstops the per-IP attempt limiter inside the handlers.
	r.Route("/api/v1/devices", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Group(func(r chi.Router) {
			r.Use(router.chiMW.RateLimitCustom(RateLimitPairing))
			r.Post("/pairing-code", router.handler.IssuePairingCode)
			r.Get("/check-pairing/{code}", router.handler.CheckPairing)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMW.RateLimitCustom(RateLimitDevice))
			r.Use(router.authMW.RequireDevice)
			r.Use(chiMiddleware(router.handler.perfMon.Middleware))
			r.Post("/heartbeat", router.handler.Heartbeat)
		})
	})

	// ========================
	// Command Endpoints
	// ========================
	r.Route("/api/v1/commands", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitCustom(RateLimitDevice))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))
		r.Use(chiMiddleware(router.handler.perfMon.Middleware))

		// Enqueue is the one shared surface: the dashboard pushes
		// remote commands, devices enqueue follow-up work for
		// themselves. The handler scopes by whichever claims landed.
		r.With(router.authMW.RequireDeviceOrAdmin).Post("/", router.handler.EnqueueCommand)

		r.Group(func(r chi.Router) {
			r.Use(router.authMW.RequireDevice)
			r.Get("/", router.handler.ListCommands)
			r.Post("/{id}/ack", router.handler.AcknowledgeCommand)
			r.Post("/{id}/complete", router.handler.CompleteCommand)
			r.Post("/{id}/fail", router.handler.FailCommand)
		})
	})

	// ========================
	// Notification Endpoints
	// ========================
	// The stream route skips the performance monitor: a connection that
	// lives for hours is not a slow request.
	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.authMW.RequireDevice)

		r.With(router.chiMW.RateLimitCustom(RateLimitStream)).
			Get("/stream", router.handler.StreamNotifications)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMW.RateLimitCustom(RateLimitDevice))
			r.Use(chiMiddleware(middleware.Compression))
			r.Use(chiMiddleware(router.handler.perfMon.Middleware))
			r.Get("/poll", router.handler.PollNotifications)
		})
	})

	// ========================
	// Admin Endpoints
	// ========================
	// Admin credential first, then the policy enforcer decides what the
	// credential's role may touch.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitCustom(RateLimitAdmin))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))
		r.Use(router.authMW.RequireAdmin)
		r.Use(router.authzMW.AuthorizeRequest)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(router.handler.perfMon.Middleware))
			r.Get("/polling-config", router.handler.GetPollingConfig)
			r.Put("/polling-config", router.handler.UpdatePollingConfig)
			r.Get("/emergency-override", router.handler.GetEmergencyState)
			r.Post("/emergency-override", router.handler.EmergencyOverride)
			r.Post("/screens/{screen_id}/pair", router.handler.PairScreen)
			r.Post("/notifications", router.handler.PublishNotification)
			r.Get("/channels", router.handler.ListChannels)
			r.Get("/performance", router.handler.Performance)
		})

		r.With(router.chiMW.RateLimitCustom(RateLimitStream)).
			Get("/ws", router.handler.DashboardWS)
	})

	// ========================
	// Operational Endpoints
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
