package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	a := services.NewAnalytics(services.WithLogger(discardLogger()))

	var table models.Table
	for m := 1; m <= 12; m++ {
		table = append(table, models.SalesRecord{
			RawDate:         fmt.Sprintf("2015-%02d-01", m),
			Revenue:         100,
			OrderQuantity:   1,
			Country:         "France",
			CustomerGender:  "F",
			Product:         "Road-150",
			ProductCategory: "Bikes",
			SubCategory:     "Road Bikes",
		})
	}
	require.NoError(t, a.SetData(table))

	dashboard := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<html></html>")
	}
	return NewServer(a, discardLogger(), &TemplateHandlers{Dashboard: dashboard})
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/revenue/year", http.StatusOK},
		{http.MethodGet, "/api/revenue/country-gender", http.StatusOK},
		{http.MethodGet, "/api/volume/monthly?year=2015&country=1", http.StatusOK},
		{http.MethodGet, "/api/seasonality/country?country=France", http.StatusOK},
		{http.MethodGet, "/charts/revenue_by_month.png", http.StatusOK},
		{http.MethodGet, "/export/report.xlsx", http.StatusOK},
		{http.MethodGet, "/sse/refresh-all", http.StatusOK},
		{http.MethodGet, "/no/such/page", http.StatusNotFound},
		{http.MethodPost, "/api/categories", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/health", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestEnableMetrics(t *testing.T) {
	srv := newTestServer(t)
	m := observability.NewMetrics()
	srv.EnableMetrics("/metrics", m)

	a := services.NewAnalytics(services.WithLogger(discardLogger()), services.WithMetrics(m))
	a.RevenueByYear()

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sales_report_computations_total{view="revenue_by_year"} 1`)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestGracefulServerRunsHooksOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	httpServer := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})}
	gs := NewGracefulServer(httpServer, discardLogger(), testConfig())

	var hookRan atomic.Bool
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		hookRan.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, hookRan.Load())
}

func TestGracefulServerReportsHookError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	gs := NewGracefulServer(&http.Server{Handler: http.NotFoundHandler()}, discardLogger(), testConfig())
	hookErr := errors.New("flush failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return hookErr })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = gs.Serve(ctx, ln)
	assert.ErrorIs(t, err, hookErr)
	assert.True(t, strings.Contains(err.Error(), "shutdown hook 0"))
}
