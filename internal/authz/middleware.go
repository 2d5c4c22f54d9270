// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package authz

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/callboardhq/callboard/internal/auth"
	"github.com/callboardhq/callboard/internal/logging"
)

// Middleware enforces the policy on admin routes. It runs after
// auth.RequireAdmin, which is what puts the claims in the context.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware wraps an enforcer for use in a chi route chain.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize guards one route with a fixed object and action.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.enforce(w, r, object, action, next)
		})
	}
}

// AuthorizeRequest guards a whole subrouter, deriving the object from
// the request path and the action from the method.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.enforce(w, r, r.URL.Path, methodToAction(r.Method), next)
	})
}

func (m *Middleware) enforce(w http.ResponseWriter, r *http.Request, object, action string, next http.Handler) {
	claims, ok := auth.AdminFromContext(r.Context())
	if !ok {
		writeDenied(w, http.StatusForbidden, "no authentication context")
		return
	}

	var roles []string
	if claims.Role != "" {
		roles = []string{claims.Role}
	}

	allowed, err := m.enforcer.EnforceWithRoles(claims.Username, roles, object, action)
	if err != nil {
		logging.Error().Err(err).
			Str("subject", claims.Username).
			Str("object", object).
			Str("action", action).
			Msg("Authorization check failed")
		writeDenied(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !allowed {
		logging.Debug().
			Str("subject", claims.Username).
			Str("role", claims.Role).
			Str("object", object).
			Str("action", action).
			Msg("Request denied by policy")
		writeDenied(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	next.ServeHTTP(w, r)
}

// methodToAction maps HTTP methods onto the policy's action vocabulary.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// writeDenied emits the API error envelope. The api package imports
// this one, so the envelope is duplicated here rather than imported.
func writeDenied(w http.ResponseWriter, status int, message string) {
	code := "FORBIDDEN"
	if status == http.StatusInternalServerError {
		code = "INTERNAL"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "error",
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
