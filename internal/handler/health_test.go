package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/book-discovery/internal/handler"
)

func setupHealthRouter(t *testing.T, ping func(ctx context.Context) error) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := handler.NewHealthHandler("test", ping)
	r.GET("/health", h.HealthCheck)
	r.GET("/health/ready", h.ReadinessCheck)

	return r
}

func TestHealthCheck(t *testing.T) {
	r := setupHealthRouter(t, func(context.Context) error { return nil })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestReadinessCheck_Ready(t *testing.T) {
	r := setupHealthRouter(t, func(context.Context) error { return nil })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	r := setupHealthRouter(t, func(context.Context) error {
		return errors.New("connection refused")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when database is down, got %d", w.Code)
	}
}
