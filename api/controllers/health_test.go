package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hivehoney/aisla-sub000/pkg/config"
	"github.com/hivehoney/aisla-sub000/pkg/types"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var healthConfig = &config.Config{App: config.AppConfig{Env: "dev"}}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(healthConfig).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Aisla-Env") != "dev" {
		t.Fatalf("expected env header")
	}
}

func TestHealthReady(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all dependencies up", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthReady(healthConfig, testLogger(), ReadyCheck{Name: "db", Pinger: ok}, ReadyCheck{Name: "redis", Pinger: ok}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("one dependency down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthReady(healthConfig, testLogger(), ReadyCheck{Name: "db", Pinger: ok}, ReadyCheck{Name: "redis", Pinger: down}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}

		var body types.ErrorEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		details, _ := body.Error.Details.(map[string]any)
		checks, _ := details["checks"].(map[string]any)
		if checks["db"] != "ok" || checks["redis"] != "down" {
			t.Fatalf("unexpected checks %v", details)
		}
	})

	t.Run("nil pinger skipped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthReady(healthConfig, testLogger(), ReadyCheck{Name: "redis"}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}
