package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"sales-dashboard/internal/cleaning"
	"sales-dashboard/internal/models"
)

func sseRequest(path string, signals string) *http.Request {
	if signals != "" {
		path += "?datastar=" + url.QueryEscape(signals)
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Datastar-Request", "true")
	return req
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderPivotTable(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	pivot := models.Pivot{
		View:         "revenue_by_country_gender",
		RowDimension: "country",
		Columns:      []string{"F", "M"},
		Rows: []models.PivotRow{
			{Key: "France", Values: []float64{0, 2400}},
			{Key: "<Canada>", Values: []float64{600, 0}},
		},
	}

	html, err := handlers.renderPivotTable(pivot)
	if err != nil {
		t.Fatalf("renderPivotTable() error = %v", err)
	}

	expected := []string{
		`<div id="country-gender-content">`,
		"<th>F</th><th>M</th><th>Total</th>",
		"$2400.00",
		"&lt;Canada&gt;",
	}
	for _, want := range expected {
		if !strings.Contains(html, want) {
			t.Errorf("expected HTML to contain %q", want)
		}
	}
}

func TestSSEHandlers_renderPivotTable_LargeDataset(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	pivot := models.Pivot{Columns: []string{"F"}}
	for range maxTableRows + 25 {
		pivot.Rows = append(pivot.Rows, models.PivotRow{Key: "Country", Values: []float64{1}})
	}

	html, err := handlers.renderPivotTable(pivot)
	if err != nil {
		t.Fatalf("renderPivotTable() error = %v", err)
	}

	if rows := strings.Count(html, "<tr>") - 1; rows != maxTableRows {
		t.Errorf("expected %d body rows, got %d", maxTableRows, rows)
	}
}

func TestRenderQuality(t *testing.T) {
	html, err := renderQuality(cleaning.Report{
		Pipeline:      cleaning.PipelineSafe,
		RowsIn:        10,
		RowsOut:       7,
		CompleteYears: []int{2014, 2015},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"safe", "Complete years: 2014, 2015", "Excluded years: none", "<strong>7</strong>"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected quality HTML to contain %q", want)
		}
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleRefreshAll(w, sseRequest("/sse/refresh-all", ""))

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
		t.Errorf("expected no-cache, got %q", cc)
	}

	body := w.Body.String()
	expected := []string{
		"country-gender-content",
		"quality-content",
		"revenueByYear",
		"revenueByCountry",
		"seasonality",
		"topProducts",
		"categories",
		"France",
	}
	for _, want := range expected {
		if !strings.Contains(body, want) {
			t.Errorf("expected SSE body to contain %q", want)
		}
	}
}

func TestSSEHandlers_HandleCountrySeasonality(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name     string
		signals  string
		contains []string
		absent   []string
	}{
		{
			name:     "by name",
			signals:  `{"country":"france"}`,
			contains: []string{"countrySeasonality", "seasonality-chart", "country=France", `"total":24`},
		},
		{
			name:     "by numeric index",
			signals:  `{"country":2}`,
			contains: []string{"Canada", "seasonality-chart"},
		},
		{
			name:     "rejected",
			signals:  `{"country":"99"}`,
			contains: []string{"Invalid selection", `{"countrySeasonality":null}`},
			absent:   []string{"seasonality-chart"},
		},
		{
			name:     "no data",
			signals:  `{"country":"Mexico"}`,
			contains: []string{"No sales recorded for Mexico."},
			absent:   []string{"seasonality-chart"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handlers.HandleCountrySeasonality(w, sseRequest("/sse/country-seasonality", tt.signals))

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected text/event-stream, got %q", ct)
			}

			body := w.Body.String()
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("expected body to contain %q, got:\n%s", want, body)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(body, unwanted) {
					t.Errorf("body should not contain %q", unwanted)
				}
			}
		})
	}
}

func TestCountrySignalsInput(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{" France ", "France"},
		{float64(3), "3"},
	}
	for _, tt := range tests {
		if got := (countrySignals{Country: tt.value}).input(); got != tt.want {
			t.Errorf("input(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
