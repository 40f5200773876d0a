package cleaning

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"sales-dashboard/internal/models"
)

// Pipeline selects the step order used by Clean.
type Pipeline string

const (
	PipelineStandard Pipeline = "standard"
	PipelineSafe     Pipeline = "safe"
)

var ErrUnknownPipeline = errors.New("unknown cleaning pipeline")

func ParsePipeline(s string) (Pipeline, error) {
	switch p := Pipeline(strings.ToLower(strings.TrimSpace(s))); p {
	case PipelineStandard, PipelineSafe:
		return p, nil
	case "":
		return PipelineStandard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPipeline, s)
}

type Options struct {
	Pipeline  Pipeline
	DateField models.Field
}

func DefaultOptions() Options {
	return Options{Pipeline: PipelineStandard, DateField: models.FieldDate}
}

// Report describes what each cleaning step did to a table.
type Report struct {
	Pipeline          Pipeline `json:"pipeline"`
	RowsIn            int      `json:"rows_in"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	IncompleteDropped int      `json:"incomplete_dropped"`
	UnparseableDates  int      `json:"unparseable_dates"`
	RowsAfterPipeline int      `json:"rows_after_pipeline"`
	CompleteYears     []int    `json:"complete_years"`
	ExcludedYears     []int    `json:"excluded_years"`
	RowsOut           int      `json:"rows_out"`
}

// Dropped returns the number of rows removed by each step, keyed by step name.
func (r Report) Dropped() map[string]int {
	return map[string]int{
		"deduplicate":     r.DuplicatesRemoved,
		"drop_incomplete": r.IncompleteDropped,
		"incomplete_year": r.RowsAfterPipeline - r.RowsOut,
	}
}

// Clean runs the configured pipeline followed by the complete-year filter.
func Clean(t models.Table, opts Options) (models.Table, Report, error) {
	if opts.Pipeline == "" {
		opts.Pipeline = PipelineStandard
	}
	rep := Report{Pipeline: opts.Pipeline, RowsIn: len(t)}

	deduped := Deduplicate(t)
	rep.DuplicatesRemoved = len(t) - len(deduped)

	var cleaned models.Table
	switch opts.Pipeline {
	case PipelineStandard:
		complete := DropIncompleteRows(deduped)
		rep.IncompleteDropped = len(deduped) - len(complete)
		normalized, err := NormalizeDateColumn(complete, opts.DateField)
		if err != nil {
			return nil, rep, err
		}
		rep.UnparseableDates = missingDates(normalized)
		cleaned = normalized
	case PipelineSafe:
		normalized, err := NormalizeDateColumn(deduped, opts.DateField)
		if err != nil {
			return nil, rep, err
		}
		rep.UnparseableDates = missingDates(normalized) - missingDates(deduped)
		cleaned = DropIncompleteRows(normalized)
		rep.IncompleteDropped = len(normalized) - len(cleaned)
	default:
		return nil, rep, fmt.Errorf("%w: %q", ErrUnknownPipeline, opts.Pipeline)
	}
	rep.RowsAfterPipeline = len(cleaned)

	out := FilterCompleteYears(cleaned)
	rep.RowsOut = len(out)
	rep.CompleteYears = CompleteYears(cleaned)
	rep.ExcludedYears = excludedYears(cleaned, rep.CompleteYears)
	return out, rep, nil
}

func missingDates(t models.Table) int {
	n := 0
	for _, r := range t {
		if r.Missing.Has(models.FieldDate) {
			n++
		}
	}
	return n
}

func excludedYears(t models.Table, complete []int) []int {
	years := []int{}
	for year := range monthBits(t) {
		if !slices.Contains(complete, year) {
			years = append(years, year)
		}
	}
	slices.Sort(years)
	return years
}
