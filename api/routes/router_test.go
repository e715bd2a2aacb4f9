package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/investrahq/investra-backend/pkg/config"
	"github.com/investrahq/investra-backend/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func testRouter(dbErr, redisErr error) http.Handler {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.New(logger.Options{ServiceName: "routes-test"})
	return NewRouter(cfg, logg, stubPinger{err: dbErr}, stubPinger{err: redisErr})
}

func TestHealthLive(t *testing.T) {
	router := testRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env := rec.Header().Get("X-Investra-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
	if reqID := rec.Header().Get("X-Request-Id"); reqID == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestHealthReady(t *testing.T) {
	router := testRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthReadyDependencyDown(t *testing.T) {
	router := testRouter(nil, errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
