package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/pipeline"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestAnalytics(t *testing.T) *services.Analytics {
	t.Helper()
	a := services.NewAnalytics(testLogger())
	p := pipeline.DefaultParams()
	p.Records = 120
	if err := a.Generate(context.Background(), p); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return a
}

func newTestServer(t *testing.T) (*services.Analytics, http.Handler) {
	t.Helper()
	analytics := newTestAnalytics(t)
	templateHandlers := &server.TemplateHandlers{Dashboard: dashboardHandler(analytics)}
	return analytics, server.NewServer(analytics, testLogger(), 1, templateHandlers)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	_, srv := newTestServer(t)

	tests := []struct {
		method         string
		path           string
		expectedStatus int
		contentType    string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html"},
		{http.MethodGet, "/health", http.StatusOK, "application/json"},
		{http.MethodGet, "/admin/stats", http.StatusOK, "application/json"},
		{http.MethodGet, "/metrics", http.StatusOK, "text/plain"},
		{http.MethodGet, "/api/summary", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/products", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/regions", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/monthly", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/rfm", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/top-customers?limit=3", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/facts", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/dimensions/products", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/dimensions/regions", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/tables", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/tables/fact", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/tables/missing", http.StatusNotFound, "application/json"},
		{http.MethodGet, "/sse/products", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/sse/regions", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/sse/monthly", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/sse/customers", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/sse/refresh-all", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/nonexistent", http.StatusNotFound, ""},
		{http.MethodGet, "/api/regenerate?seed=1", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			srv.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.contentType != "" && !strings.HasPrefix(w.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("expected content type %q, got %q", tt.contentType, w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestServer_TablesMatchAggregates(t *testing.T) {
	analytics, srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tables/by_product", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var response struct {
		Data struct {
			Columns []string   `json:"columns"`
			Rows    [][]string `json:"rows"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if !response.Success {
		t.Fatal("expected success=true")
	}
	if len(response.Data.Rows) != len(analytics.ProductPerformance()) {
		t.Errorf("expected %d rows, got %d", len(analytics.ProductPerformance()), len(response.Data.Rows))
	}
	if response.Data.Columns[0] != "product_id" {
		t.Errorf("unexpected first column %q", response.Data.Columns[0])
	}
}

func TestServer_RegenerateThroughMiddleware(t *testing.T) {
	analytics, srv := newTestServer(t)
	logger := testLogger()

	cfg := config.SecurityConfig{
		EnableRateLimit: true,
		RateLimitRPS:    100,
		RateLimitBurst:  10,
		AllowedOrigins:  []string{"http://localhost:8084"},
		TrustedProxies:  []string{"127.0.0.1"},
	}
	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg),
		middleware.RateLimit(middleware.NewRateLimiter(cfg), logger),
	)(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/regenerate?seed=21", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
	if summary, _ := analytics.Summary(); summary.Seed != 21 {
		t.Errorf("expected seed 21, got %d", summary.Seed)
	}
}

func TestDashboardHandler(t *testing.T) {
	handler := dashboardHandler(newTestAnalytics(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "{seed: 42,") {
		t.Error("dashboard should embed the current seed")
	}
}
