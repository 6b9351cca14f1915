package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker("1.0.0")

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	t.Run("healthy with no checks", func(t *testing.T) {
		h := NewHealthChecker("1.0.0")

		rec := httptest.NewRecorder()
		h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var status HealthStatus
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if status.Status != StatusHealthy {
			t.Errorf("status = %v, want %v", status.Status, StatusHealthy)
		}
		if status.Version != "1.0.0" {
			t.Errorf("version = %v, want 1.0.0", status.Version)
		}
	})

	t.Run("unhealthy when a check fails", func(t *testing.T) {
		h := NewHealthChecker("1.0.0")
		h.RegisterCheck("provider", func(ctx context.Context) error {
			return errors.New("unreachable")
		})

		rec := httptest.NewRecorder()
		h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
		var status HealthStatus
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		dep, ok := status.Dependencies["provider"]
		if !ok {
			t.Fatal("expected provider dependency in response")
		}
		if dep.Status != StatusUnhealthy {
			t.Errorf("dependency status = %v, want %v", dep.Status, StatusUnhealthy)
		}
		if dep.Message != "unreachable" {
			t.Errorf("dependency message = %v, want unreachable", dep.Message)
		}
	})
}

func TestHealthChecker_Check(t *testing.T) {
	h := NewHealthChecker("dev")
	h.RegisterCheck("ok", func(ctx context.Context) error { return nil })

	status := h.Check(context.Background())
	if status.Status != StatusHealthy {
		t.Errorf("status = %v, want %v", status.Status, StatusHealthy)
	}
	if status.Dependencies["ok"].Status != StatusHealthy {
		t.Errorf("dependency status = %v, want %v", status.Dependencies["ok"].Status, StatusHealthy)
	}
}
