package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const (
	cacheMaxAge   = "public, max-age=300"
	maxDuplicates = 100
	emptyNotice   = "no data for this selection"
)

var cacheHeaders = map[string]string{
	"Cache-Control": cacheMaxAge,
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	validate  *validator.Validate
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
		validate:  validator.New(),
	}
}

// viewPayload wraps a report so clients can tell "no data" apart from a
// failure without inspecting the result shape.
type viewPayload struct {
	Result any    `json:"result"`
	Empty  bool   `json:"empty"`
	Notice string `json:"notice,omitempty"`
}

func newViewPayload(result models.Result) viewPayload {
	p := viewPayload{Result: result, Empty: result.Empty()}
	if p.Empty {
		p.Notice = emptyNotice
	}
	return p
}

func (h *APIHandlers) writeView(w http.ResponseWriter, result models.Result) {
	errors.WriteSuccessWithHeaders(w, newViewPayload(result), cacheHeaders)
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// HandleRevenue serves /api/revenue/{dimension}.
func (h *APIHandlers) HandleRevenue(w http.ResponseWriter, r *http.Request) {
	switch dim := r.PathValue("dimension"); dim {
	case "year":
		h.writeView(w, h.analytics.RevenueByYear())
	case "month":
		h.writeView(w, h.analytics.RevenueByMonth())
	case "country":
		h.writeView(w, h.analytics.RevenueByCountry())
	case "gender":
		h.writeView(w, h.analytics.RevenueByGender())
	case "country-gender":
		h.writeView(w, h.analytics.RevenueByCountryGender())
	default:
		h.writeError(w, r, errors.NotFound("unknown revenue view: "+dim))
	}
}

func (h *APIHandlers) HandleMonthlyVolume(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseVolumeQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeView(w, h.analytics.VolumeByMonth(q.Year, q.Country))
}

func (h *APIHandlers) HandleSeasonality(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseSeasonalityQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeView(w, h.analytics.Seasonality(q.Top, q.From, q.To))
}

func (h *APIHandlers) HandleCountrySeasonality(w http.ResponseWriter, r *http.Request) {
	country, err := h.parseCountry(r.URL.Query().Get("country"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeView(w, h.analytics.CountrySeasonality(country))
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseTopQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeView(w, h.analytics.TopProducts(q.N))
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	h.writeView(w, h.analytics.CategoryVolume())
}

func (h *APIHandlers) HandleCountries(w http.ResponseWriter, r *http.Request) {
	countries := h.analytics.Countries()

	options := make([]map[string]any, len(countries))
	for i, c := range countries {
		options[i] = map[string]any{"index": i + 1, "country": c}
	}

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"countries": options,
		"count":     len(countries),
	}, cacheHeaders)
}

func (h *APIHandlers) HandleQuality(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.Quality()

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"report":  report,
		"dropped": report.Dropped(),
	}, cacheHeaders)
}

// HandleDuplicates lists the raw rows that occur more than once, capped at
// maxDuplicates.
func (h *APIHandlers) HandleDuplicates(w http.ResponseWriter, r *http.Request) {
	dups := h.analytics.Duplicates()

	rows := dups
	if len(rows) > maxDuplicates {
		rows = rows[:maxDuplicates]
	}

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"count":     len(dups),
		"rows":      recordMaps(rows),
		"truncated": len(dups) > len(rows),
	}, cacheHeaders)
}

func recordMaps(t models.Table) []map[string]string {
	out := make([]map[string]string, len(t))
	for i, r := range t {
		m := make(map[string]string, len(models.Fields()))
		for _, f := range models.Fields() {
			m[f.String()] = r.Text(f)
		}
		out[i] = m
	}
	return out
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
