package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rolegate/rolegate/pkg/observability"
	"github.com/rolegate/rolegate/pkg/roles"
)

// LoggingMiddleware logs each request with method, path, status and duration.
func LoggingMiddleware(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.WithField("method", r.Method).
				WithField("path", r.URL.Path).
				WithField("status", sw.status).
				WithField("duration_ms", time.Since(start).Milliseconds()).
				Info("request completed")
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RecoveryMiddleware turns handler panics into 500 responses instead of
// tearing down the connection.
func RecoveryMiddleware(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithField("panic", rec).
						WithField("path", r.URL.Path).
						Error("handler panicked")
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFunc extracts the calling principal from a request. A zero
// Update (nil user) means the caller is anonymous.
type PrincipalFunc func(r *http.Request) roles.Update

// HeaderPrincipal reads the principal id from the X-Principal-ID header.
func HeaderPrincipal(r *http.Request) roles.Update {
	raw := r.Header.Get("X-Principal-ID")
	if raw == "" {
		return roles.Update{}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return roles.Update{}
	}
	u := roles.UserUpdate(id)
	if chat := r.Header.Get("X-Chat-ID"); chat != "" {
		if chatID, err := strconv.ParseInt(chat, 10, 64); err == nil {
			u = roles.ChatUpdate(id, chatID, roles.ChatGroup)
		}
	}
	return u.WithContext(r.Context())
}

// RequireRole gates a handler on membership in the named role. Requests
// whose principal does not match the role get a 403.
func RequireRole(registry *roles.Registry, name string, principal PrincipalFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := principal(r)
			if u.User == nil {
				http.Error(w, "missing principal", http.StatusUnauthorized)
				return
			}
			allowed, err := registry.Evaluate(name, u)
			if err != nil || !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
