package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	"ticketing/pkg/logger"
)

func serve(h *HealthHandler, path string) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func okCheck(name string) Check {
	return Check{Name: name, Ping: func(context.Context) error { return nil }}
}

func TestHealth(t *testing.T) {
	rec := serve(NewHealthHandler(logger.Discard()), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReady_AllDependenciesUp(t *testing.T) {
	rec := serve(NewHealthHandler(logger.Discard(), okCheck("mongo"), okCheck("kafka")), "/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ready" || resp.Checks["mongo"] != "ok" || resp.Checks["kafka"] != "ok" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReady_DependencyDown(t *testing.T) {
	down := Check{Name: "postgres", Ping: func(context.Context) error { return errors.New("connection refused") }}
	rec := serve(NewHealthHandler(logger.Discard(), okCheck("mongo"), down), "/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "unavailable" || resp.Checks["postgres"] != "error" || resp.Checks["mongo"] != "ok" {
		t.Errorf("unexpected response: %+v", resp)
	}
}
