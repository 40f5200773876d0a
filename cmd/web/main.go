package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-dashboard/internal/cleaning"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout   = 10 * time.Second
	cacheMaxAge     = "public, max-age=300"
	pruneInterval   = time.Minute
	visitorIdleTime = 3 * time.Minute
)

func dashboardHandler(analytics *services.Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(analytics.Countries()).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newAnalytics(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*services.Analytics, error) {
	pipeline, err := cleaning.ParsePipeline(cfg.Dataset.Pipeline)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithMetrics(metrics),
		services.WithPipeline(pipeline),
		services.WithReportDefaults(services.ReportDefaults{
			TopProducts:     cfg.Reports.TopProducts,
			TopCountries:    cfg.Reports.TopCountries,
			SeasonalityFrom: cfg.Reports.SeasonalityFrom,
			SeasonalityTo:   cfg.Reports.SeasonalityTo,
			VolumeYear:      cfg.Reports.VolumeYear,
		}),
	}
	if cfg.Dataset.CacheEnabled {
		opts = append(opts, services.WithCache(cfg.Dataset.CacheDir))
	}
	return services.NewAnalytics(opts...), nil
}

// newHandler wires routes and the middleware chain. Metrics sits innermost so
// it observes the route pattern the mux records on the request.
func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger, metrics *observability.Metrics, limiter *middleware.RateLimiter) http.Handler {
	srv := server.NewServer(analytics, logger, &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics),
	})
	if cfg.Metrics.Enabled {
		srv.EnableMetrics(cfg.Metrics.Path, metrics)
	}

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
		middleware.Metrics(metrics),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	analytics, err := newAnalytics(cfg, logger, metrics)
	if err != nil {
		logger.Error("invalid analytics configuration", "error", err)
		os.Exit(1)
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), cfg.Dataset.LoadTimeout)
	start := time.Now()
	err = analytics.LoadFromFile(loadCtx, cfg.Dataset.File)
	cancel()
	if err != nil {
		logger.Error("failed to load sales data", "file", cfg.Dataset.File, "error", err)
		os.Exit(1)
	}
	logger.Info("sales data loaded", "duration", time.Since(start), "stats", analytics.Stats())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	go rateLimiter.PruneEvery(ctx, pruneInterval, visitorIdleTime)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger, metrics, rateLimiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "records_processed", analytics.Stats()["records_processed"])
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
