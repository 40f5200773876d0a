package handlers

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"sales-dashboard/internal/aggregate"
	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleExportXLSX serves the dashboard snapshot as a workbook, one sheet
// per view. The workbook is built in memory so a failure can still be
// reported with a proper status.
func (h *APIHandlers) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, err := h.analytics.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, errors.ServiceUnavailable("snapshot cancelled"))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, export.SnapshotSheets(snap)); err != nil {
		h.writeError(w, r, errors.InternalWrap(err, "failed to build workbook"))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="sales-report.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write workbook response", "error", err)
	}
}

// HandleChart serves /charts/{file} where file is "<view>.png".
func (h *APIHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	view, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		h.writeError(w, r, errors.NotFound("charts are served as .png"))
		return
	}

	var buf bytes.Buffer
	var err error
	switch view {
	case aggregate.ViewSeasonality:
		q, qerr := h.parseSeasonalityQuery(r)
		if qerr != nil {
			h.writeError(w, r, qerr)
			return
		}
		err = charts.RenderSeasonality(&buf, h.analytics.Seasonality(q.Top, q.From, q.To))
	case aggregate.ViewCountrySeasonality:
		country, cerr := h.parseCountry(r.URL.Query().Get("country"))
		if cerr != nil {
			h.writeError(w, r, cerr)
			return
		}
		err = charts.RenderSeasonality(&buf, h.analytics.CountrySeasonality(country))
	case aggregate.ViewVolumeByMonth:
		q, qerr := h.parseVolumeQuery(r)
		if qerr != nil {
			h.writeError(w, r, qerr)
			return
		}
		err = charts.RenderSeries(&buf, h.analytics.VolumeByMonth(q.Year, q.Country))
	default:
		s, known := h.analytics.Series(view)
		if !known {
			h.writeError(w, r, errors.NotFound("unknown chart view: "+view))
			return
		}
		err = charts.RenderSeries(&buf, s)
	}

	if stderrors.Is(err, charts.ErrNoData) {
		h.writeError(w, r, errors.NoData(view))
		return
	}
	if err != nil {
		h.writeError(w, r, errors.InternalWrap(err, "failed to render chart"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write chart response", "error", err)
	}
}
