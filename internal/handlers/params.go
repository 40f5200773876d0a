package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sales-dashboard/internal/errors"
)

var errNotInteger = stderrors.New("not an integer")

type volumeQuery struct {
	Year    int    `validate:"gte=1900,lte=2100"`
	Country string `validate:"required"`
}

// Zero From or To leaves that end of the period open.
type seasonalityQuery struct {
	Top  int `validate:"gte=1,lte=50"`
	From int `validate:"omitempty,gte=1900,lte=2100"`
	To   int `validate:"omitempty,gte=1900,lte=2100,gtefield=From"`
}

type topQuery struct {
	N int `validate:"gte=1,lte=1000"`
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", name, raw, errNotInteger)
	}
	return n, nil
}

func (h *APIHandlers) parseVolumeQuery(r *http.Request) (volumeQuery, error) {
	year, err := queryInt(r, "year", h.analytics.Defaults().VolumeYear)
	if err != nil {
		return volumeQuery{}, errors.ValidationWrap(err, "invalid year")
	}

	q := volumeQuery{Year: year, Country: strings.TrimSpace(r.URL.Query().Get("country"))}
	if err := h.validate.Struct(q); err != nil {
		return q, errors.ValidationWrap(err, "invalid volume query")
	}

	q.Country, err = h.parseCountry(q.Country)
	return q, err
}

func (h *APIHandlers) parseSeasonalityQuery(r *http.Request) (seasonalityQuery, error) {
	d := h.analytics.Defaults()
	var q seasonalityQuery
	var err error

	for _, p := range []struct {
		name string
		def  int
		dst  *int
	}{
		{"top", d.TopCountries, &q.Top},
		{"from", d.SeasonalityFrom, &q.From},
		{"to", d.SeasonalityTo, &q.To},
	} {
		if *p.dst, err = queryInt(r, p.name, p.def); err != nil {
			return q, errors.ValidationWrap(err, "invalid "+p.name)
		}
	}

	if err := h.validate.Struct(q); err != nil {
		return q, errors.ValidationWrap(err, "invalid seasonality query")
	}
	return q, nil
}

func (h *APIHandlers) parseTopQuery(r *http.Request) (topQuery, error) {
	n, err := queryInt(r, "n", h.analytics.Defaults().TopProducts)
	if err != nil {
		return topQuery{}, errors.ValidationWrap(err, "invalid n")
	}

	q := topQuery{N: n}
	if err := h.validate.Struct(q); err != nil {
		return q, errors.ValidationWrap(err, "invalid top products query")
	}
	return q, nil
}

// parseCountry resolves a 1-based index or a country name against the
// countries of the loaded dataset.
func (h *APIHandlers) parseCountry(input string) (string, error) {
	country, err := h.analytics.SelectCountry(input)
	if err != nil {
		return "", errors.ValidationWrap(err, "invalid country selection")
	}
	return country, nil
}
