package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"hostbook/pkg/config"
	"hostbook/pkg/logger"
	"hostbook/pkg/middleware"
)

type routesFunc func(*httprouter.Router)

func (f routesFunc) RegisterRoutes(router *httprouter.Router) { f(router) }

func newTestApplication(t *testing.T, routes routesFunc) *Application {
	t.Helper()
	cfg := &config.Config{
		Log:             logger.Discard(),
		Port:            "0",
		RequestTimeout:  time.Second,
		IdempotencyTTL:  time.Minute,
		MaxRequestSize:  64,
		ShutdownTimeout: time.Second,
	}

	health := routesFunc(func(r *httprouter.Router) {
		r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusOK)
		})
	})

	a := NewApplication(cfg)
	a.SetApp(routes, health)
	t.Cleanup(a.idempotencyStore.Stop)
	return a
}

func TestApplication_HealthBypassesAppStack(t *testing.T) {
	a := newTestApplication(t, func(r *httprouter.Router) {})

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("health responses should still carry a request id")
	}
}

func TestApplication_AppStack(t *testing.T) {
	calls := 0
	a := newTestApplication(t, func(r *httprouter.Router) {
		r.POST("/api/v1/things", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			calls++
			w.WriteHeader(http.StatusCreated)
		})
		r.GET("/api/v1/panic", func(http.ResponseWriter, *http.Request, httprouter.Params) {
			panic("boom")
		})
	})

	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		contentType string
		wantStatus  int
	}{
		{"created", http.MethodPost, "/api/v1/things", `{}`, "application/json", http.StatusCreated},
		{"wrong content type", http.MethodPost, "/api/v1/things", `{}`, "text/plain", http.StatusUnsupportedMediaType},
		{"too large", http.MethodPost, "/api/v1/things", `{"x":"` + strings.Repeat("a", 100) + `"}`, "application/json", http.StatusRequestEntityTooLarge},
		{"panic recovered", http.MethodGet, "/api/v1/panic", "", "", http.StatusInternalServerError},
		{"unknown route", http.MethodGet, "/api/v1/missing", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	if calls != 1 {
		t.Errorf("expected exactly one handler call, got %d", calls)
	}
}

func TestApplication_ShutdownHooks(t *testing.T) {
	a := newTestApplication(t, func(r *httprouter.Router) {})

	var order []string
	a.OnShutdown(func(context.Context) { order = append(order, "publisher") })
	a.OnShutdown(func(context.Context) { order = append(order, "mongo") })

	a.gracefulShutdown()

	if len(order) != 2 || order[0] != "publisher" || order[1] != "mongo" {
		t.Errorf("unexpected hook order %v", order)
	}
}
