package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/pkg/observability"
	"github.com/rolegate/rolegate/pkg/roles"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.InfoLevel, &buf)

	handler := LoggingMiddleware(logger)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "/roles")
	assert.Contains(t, buf.String(), "request completed")
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.InfoLevel, &buf)

	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "handler panicked")
}

func TestHeaderPrincipal(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		u := HeaderPrincipal(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Nil(t, u.User)
	})

	t.Run("user only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Principal-ID", "42")
		u := HeaderPrincipal(req)
		require.NotNil(t, u.User)
		assert.Equal(t, int64(42), u.User.ID)
		assert.Nil(t, u.Chat)
	})

	t.Run("user and chat", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Principal-ID", "42")
		req.Header.Set("X-Chat-ID", "-100")
		u := HeaderPrincipal(req)
		require.NotNil(t, u.Chat)
		assert.Equal(t, int64(-100), u.Chat.ID)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Principal-ID", "abc")
		u := HeaderPrincipal(req)
		assert.Nil(t, u.User)
	})
}

func TestRequireRole(t *testing.T) {
	registry := roles.NewRegistry(roles.RegistryConfig{})
	_, err := registry.AddRole("mods", []int64{1})
	require.NoError(t, err)
	registry.AddAdmin(100)

	handler := RequireRole(registry, "mods", HeaderPrincipal)(okHandler())

	do := func(t *testing.T, id int64, set bool) int {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if set {
			req.Header.Set("X-Principal-ID", strconv.FormatInt(id, 10))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("member passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(t, 1, true))
	})

	t.Run("admin passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(t, 100, true))
	})

	t.Run("outsider forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do(t, 5, true))
	})

	t.Run("anonymous unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(t, 0, false))
	})

	t.Run("unknown role forbidden", func(t *testing.T) {
		gate := RequireRole(registry, "ghost", HeaderPrincipal)(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Principal-ID", "1")
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
