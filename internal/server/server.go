package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/observability"
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

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
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
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/revenue/{dimension}", s.apiHandlers.HandleRevenue)
	s.mux.HandleFunc("GET /api/volume/monthly", s.apiHandlers.HandleMonthlyVolume)
	s.mux.HandleFunc("GET /api/seasonality", s.apiHandlers.HandleSeasonality)
	s.mux.HandleFunc("GET /api/seasonality/country", s.apiHandlers.HandleCountrySeasonality)
	s.mux.HandleFunc("GET /api/products/top", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/categories", s.apiHandlers.HandleCategories)
	s.mux.HandleFunc("GET /api/countries", s.apiHandlers.HandleCountries)
	s.mux.HandleFunc("GET /api/quality", s.apiHandlers.HandleQuality)
	s.mux.HandleFunc("GET /api/duplicates", s.apiHandlers.HandleDuplicates)

	// Files
	s.mux.HandleFunc("GET /export/report.xlsx", s.apiHandlers.HandleExportXLSX)
	s.mux.HandleFunc("GET /charts/{file}", s.apiHandlers.HandleChart)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("GET /sse/country-seasonality", s.sseHandlers.HandleCountrySeasonality)
}

// EnableMetrics exposes the Prometheus registry of m at path.
func (s *Server) EnableMetrics(path string, m *observability.Metrics) {
	s.mux.Handle("GET "+path, m.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
