// Package cleaning turns a raw sales table into an analysis-ready one:
// duplicate removal, incomplete-row removal, date normalization and the
// complete-year filter. Every step is a pure function returning a new table.
package cleaning

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"

	"sales-dashboard/internal/models"
)

// ErrNotDateColumn is returned when date normalization targets a column that
// does not hold dates.
var ErrNotDateColumn = errors.New("column is not a date column")

// allMonths has bits 1 through 12 set.
const allMonths uint16 = 0x1FFE

// Deduplicate removes rows identical in every field to an earlier row. The
// first occurrence of each row survives and order is preserved.
func Deduplicate(t models.Table) models.Table {
	out := make(models.Table, 0, len(t))
	seen := make(map[models.SalesRecord]struct{}, len(t))
	for _, r := range t {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DetectDuplicates returns every row that has at least one identical row,
// first occurrences included, in input order.
func DetectDuplicates(t models.Table) models.Table {
	counts := make(map[models.SalesRecord]int, len(t))
	for _, r := range t {
		counts[r]++
	}
	out := models.Table{}
	for _, r := range t {
		if counts[r] > 1 {
			out = append(out, r)
		}
	}
	return out
}

// DropIncompleteRows removes rows with at least one missing field.
func DropIncompleteRows(t models.Table) models.Table {
	return t.Filter(models.SalesRecord.Complete)
}

// NormalizeDateColumn parses field into calendar dates. Values that cannot be
// parsed become missing; they are neither errors nor dropped here.
func NormalizeDateColumn(t models.Table, field models.Field) (models.Table, error) {
	if !field.IsDate() {
		return nil, fmt.Errorf("normalize %s: %w", field, ErrNotDateColumn)
	}

	out := t.Clone()
	for i := range out {
		r := &out[i]
		if r.Missing.Has(models.FieldDate) || r.DateParsed {
			continue
		}
		d, ok := ParseDate(r.RawDate)
		if !ok {
			r.Missing = r.Missing.With(models.FieldDate)
			r.RawDate = ""
			continue
		}
		r.Date = d
		r.DateParsed = true
		r.RawDate = d.Format(models.DateLayout)
	}
	return out, nil
}

// RunStandardPipeline deduplicates, drops incomplete rows, then normalizes
// dates. Rows whose date fails to parse survive with a missing date because
// the drop step runs before normalization.
func RunStandardPipeline(t models.Table, field models.Field) (models.Table, error) {
	return NormalizeDateColumn(DropIncompleteRows(Deduplicate(t)), field)
}

// RunSafePipeline deduplicates, normalizes dates, then drops incomplete rows,
// so unparseable dates are removed with the other incomplete rows.
func RunSafePipeline(t models.Table, field models.Field) (models.Table, error) {
	normalized, err := NormalizeDateColumn(Deduplicate(t), field)
	if err != nil {
		return nil, err
	}
	return DropIncompleteRows(normalized), nil
}

// FilterCompleteYears keeps rows whose year has sales in all twelve months.
// Dates are parsed first if the table has not been normalized. Rows without a
// date are excluded.
func FilterCompleteYears(t models.Table) models.Table {
	dated := ensureDates(t)
	coverage := monthBits(dated)
	return dated.Filter(func(r models.SalesRecord) bool {
		return r.HasDate() && coverage[r.Year()] == allMonths
	})
}

// CompleteYears returns the years covering all twelve months, ascending.
func CompleteYears(t models.Table) []int {
	years := []int{}
	for year, months := range monthBits(ensureDates(t)) {
		if months == allMonths {
			years = append(years, year)
		}
	}
	slices.Sort(years)
	return years
}

// MonthCoverage returns the number of distinct months with sales per year.
func MonthCoverage(t models.Table) map[int]int {
	coverage := make(map[int]int)
	for year, months := range monthBits(ensureDates(t)) {
		coverage[year] = bits.OnesCount16(months)
	}
	return coverage
}

func monthBits(t models.Table) map[int]uint16 {
	coverage := make(map[int]uint16)
	for _, r := range t {
		if !r.HasDate() {
			continue
		}
		coverage[r.Year()] |= 1 << uint(r.Month())
	}
	return coverage
}

func ensureDates(t models.Table) models.Table {
	for _, r := range t {
		if !r.DateParsed && !r.Missing.Has(models.FieldDate) {
			normalized, _ := NormalizeDateColumn(t, models.FieldDate)
			return normalized
		}
	}
	return t
}
