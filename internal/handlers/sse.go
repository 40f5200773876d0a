package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/aggregate"
	"sales-dashboard/internal/cleaning"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const maxTableRows = 50

var pivotTableTemplate = template.Must(template.New("pivotTable").Parse(`
<div id="country-gender-content">
<table class="modern-table">
<thead><tr><th>Country</th>{{range .Columns}}<th>{{.}}</th>{{end}}<th>Total</th></tr></thead>
<tbody>
{{range $i, $row := .Rows}}{{if lt $i $.MaxRows}}<tr>
<td>{{$row.Key}}</td>
{{range $row.Values}}<td>${{printf "%.2f" .}}</td>{{end}}
<td><strong>${{printf "%.2f" $row.Total}}</strong></td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

var qualityTemplate = template.Must(template.New("quality").Parse(`
<div id="quality-content">
<ul class="quality-list">
<li>Pipeline: <strong>{{.Pipeline}}</strong></li>
<li>Rows read: {{.RowsIn}}</li>
<li>Duplicates removed: {{.DuplicatesRemoved}}</li>
<li>Incomplete rows dropped: {{.IncompleteDropped}}</li>
<li>Unparseable dates: {{.UnparseableDates}}</li>
<li>Complete years: {{range $i, $y := .CompleteYears}}{{if $i}}, {{end}}{{$y}}{{else}}none{{end}}</li>
<li>Excluded years: {{range $i, $y := .ExcludedYears}}{{if $i}}, {{end}}{{$y}}{{else}}none{{end}}</li>
<li>Rows analysed: <strong>{{.RowsOut}}</strong></li>
</ul>
</div>`))

var noticeTemplate = template.Must(template.New("notice").Parse(
	`<div id="seasonality-notice" class="notice {{.Class}}">{{.Text}}</div>`))

var chartTemplate = template.Must(template.New("chart").Parse(
	`<img id="seasonality-chart" class="chart" alt="Monthly order volume for {{.Country}}" src="{{.Src}}">`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

type templateData struct {
	Columns []string
	Rows    []models.PivotRow
	MaxRows int
}

func (h *SSEHandlers) renderPivotTable(p models.Pivot) (string, error) {
	var buf strings.Builder

	rows := p.Rows
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	err := pivotTableTemplate.Execute(&buf, templateData{Columns: p.Columns, Rows: rows, MaxRows: maxTableRows})
	return buf.String(), err
}

func renderQuality(r cleaning.Report) (string, error) {
	var buf strings.Builder
	err := qualityTemplate.Execute(&buf, r)
	return buf.String(), err
}

func renderNotice(class, text string) (string, error) {
	var buf strings.Builder
	err := noticeTemplate.Execute(&buf, struct{ Class, Text string }{class, text})
	return buf.String(), err
}

func renderChart(country string) (string, error) {
	var buf strings.Builder
	src := "/charts/" + aggregate.ViewCountrySeasonality + ".png?country=" + url.QueryEscape(country)
	err := chartTemplate.Execute(&buf, struct{ Country, Src string }{country, src})
	return buf.String(), err
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefreshAll pushes every dashboard view: tables as elements, chart
// data as signals.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	snap, err := h.analytics.Snapshot(r.Context())
	if err != nil {
		h.logger.Warn("snapshot cancelled", "error", err)
		return
	}

	sse := datastar.NewSSE(w, r)

	html, err := h.renderPivotTable(snap.RevenueByCountryGender)
	if err != nil {
		h.logger.Error("render country gender table", "error", err)
		return
	}
	sse.PatchElements(html)

	html, err = renderQuality(snap.Quality)
	if err != nil {
		h.logger.Error("render quality summary", "error", err)
		return
	}
	sse.PatchElements(html)

	// Send all signals in one call
	allSignals, err := json.Marshal(map[string]any{
		"datasetId":        snap.DatasetID,
		"revenueByYear":    snap.RevenueByYear,
		"revenueByMonth":   snap.RevenueByMonth,
		"revenueByCountry": snap.RevenueByCountry,
		"revenueByGender":  snap.RevenueByGender,
		"seasonality":      snap.Seasonality,
		"topProducts":      snap.TopProducts,
		"categories":       snap.Categories,
	})
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	flush(w)
}

type countrySignals struct {
	Country any `json:"country"`
}

// input returns the selection as typed; a number bound by the browser is
// treated as an index.
func (s countrySignals) input() string {
	if s.Country == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(s.Country))
}

// HandleCountrySeasonality reads the country signal and patches either a
// rejection notice, a no-data notice, or the country's seasonality.
func (h *SSEHandlers) HandleCountrySeasonality(w http.ResponseWriter, r *http.Request) {
	var signals countrySignals
	readErr := datastar.ReadSignals(r, &signals)

	sse := datastar.NewSSE(w, r)
	defer flush(w)

	if readErr != nil {
		h.logger.Warn("read signals", "error", readErr)
		h.patchNotice(sse, "error", "Could not read the selection.")
		return
	}

	country, err := h.analytics.SelectCountry(signals.input())
	if err != nil {
		h.patchNotice(sse, "error", "Invalid selection: "+err.Error())
		sse.PatchSignals([]byte(`{"countrySeasonality":null}`))
		return
	}

	result := h.analytics.CountrySeasonality(country)
	if result.Empty() {
		h.patchNotice(sse, "info", "No sales recorded for "+country+".")
		sse.PatchSignals([]byte(`{"countrySeasonality":null}`))
		return
	}

	data, err := json.Marshal(map[string]any{"countrySeasonality": result})
	if err != nil {
		h.logger.Error("marshal country seasonality", "error", err)
		return
	}

	h.patchNotice(sse, "ok", country)
	if chart, err := renderChart(country); err == nil {
		sse.PatchElements(chart)
	}
	sse.PatchSignals(data)
}

func (h *SSEHandlers) patchNotice(sse *datastar.ServerSentEventGenerator, class, text string) {
	html, err := renderNotice(class, text)
	if err != nil {
		h.logger.Error("render notice", "error", err)
		return
	}
	sse.PatchElements(html)
}
