package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, regenerateRPS float64, templateHandlers *TemplateHandlers) *Server {
	// Both regenerate endpoints share the service's limiter.
	analytics.LimitRegeneration(regenerateRPS)

	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// REST API endpoints
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/products", s.apiHandlers.HandleProductPerformance)
	s.mux.HandleFunc("GET /api/regions", s.apiHandlers.HandleRegionPerformance)
	s.mux.HandleFunc("GET /api/monthly", s.apiHandlers.HandleMonthlyTrends)
	s.mux.HandleFunc("GET /api/rfm", s.apiHandlers.HandleRFM)
	s.mux.HandleFunc("GET /api/top-customers", s.apiHandlers.HandleTopCustomers)
	s.mux.HandleFunc("GET /api/facts", s.apiHandlers.HandleFacts)
	s.mux.HandleFunc("GET /api/dimensions/products", s.apiHandlers.HandleProductDimension)
	s.mux.HandleFunc("GET /api/dimensions/regions", s.apiHandlers.HandleRegionDimension)
	s.mux.HandleFunc("GET /api/tables", s.apiHandlers.HandleTableNames)
	s.mux.HandleFunc("GET /api/tables/{name}", s.apiHandlers.HandleTable)
	s.mux.HandleFunc("POST /api/regenerate", s.apiHandlers.HandleRegenerate)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/products", s.sseHandlers.HandleProductPerformance)
	s.mux.HandleFunc("GET /sse/regions", s.sseHandlers.HandleRegionPerformance)
	s.mux.HandleFunc("GET /sse/monthly", s.sseHandlers.HandleMonthlyTrends)
	s.mux.HandleFunc("GET /sse/customers", s.sseHandlers.HandleTopCustomers)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("POST /sse/regenerate", s.sseHandlers.HandleRegenerate)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
