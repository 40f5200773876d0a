package cleaning

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func rawRecord(date, country string, qty int, revenue float64) models.SalesRecord {
	return models.SalesRecord{
		RawDate:         date,
		Revenue:         revenue,
		OrderQuantity:   qty,
		Country:         country,
		CustomerGender:  "F",
		Product:         "Water Bottle - 30 oz.",
		ProductCategory: "Accessories",
		SubCategory:     "Bottles and Cages",
	}
}

// yearTable returns one record per listed month of year.
func yearTable(year int, months ...int) models.Table {
	t := models.Table{}
	for _, m := range months {
		t = append(t, rawRecord(fmt.Sprintf("%04d-%02d-15", year, m), "France", m, float64(m*10)))
	}
	return t
}

func monthRange(from, to int) []int {
	var months []int
	for m := from; m <= to; m++ {
		months = append(months, m)
	}
	return months
}

func TestDeduplicate(t *testing.T) {
	a := rawRecord("2015-03-01", "US", 1, 100)
	b := rawRecord("2015-03-02", "US", 1, 100)

	tests := []struct {
		name  string
		input models.Table
		want  models.Table
	}{
		{name: "empty", input: models.Table{}, want: models.Table{}},
		{name: "nil", input: nil, want: models.Table{}},
		{name: "identical pair", input: models.Table{a, a}, want: models.Table{a}},
		{name: "keeps first occurrence order", input: models.Table{b, a, b, a}, want: models.Table{b, a}},
		{name: "no duplicates", input: models.Table{a, b}, want: models.Table{a, b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Deduplicate(tt.input))
		})
	}
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	a := rawRecord("2015-03-01", "US", 1, 100)
	b := rawRecord("2015-03-01", "CA", 2, 200)
	input := models.Table{a, b, a, a, b}

	once := Deduplicate(input)
	assert.Equal(t, once, Deduplicate(once))
}

func TestDeduplicateDoesNotMutateInput(t *testing.T) {
	a := rawRecord("2015-03-01", "US", 1, 100)
	input := models.Table{a, a}

	Deduplicate(input)
	assert.Len(t, input, 2)
}

func TestDetectDuplicates(t *testing.T) {
	dup := rawRecord("2015-03-01", "US", 1, 100)
	other := rawRecord("2015-03-01", "CA", 1, 200)

	got := DetectDuplicates(models.Table{dup, other, dup})
	assert.Equal(t, models.Table{dup, dup}, got)

	assert.Empty(t, DetectDuplicates(models.Table{dup, other}))
	assert.Empty(t, DetectDuplicates(nil))
}

func TestDropIncompleteRows(t *testing.T) {
	complete := rawRecord("2015-03-01", "US", 1, 100)
	noCountry := complete
	noCountry.Country = ""
	noCountry.Missing = noCountry.Missing.With(models.FieldCountry)

	got := DropIncompleteRows(models.Table{noCountry, complete})
	assert.Equal(t, models.Table{complete}, got)
	assert.Empty(t, DropIncompleteRows(models.Table{}))
}

func TestNormalizeDateColumn(t *testing.T) {
	input := models.Table{
		rawRecord("2015-03-01", "US", 1, 1),
		rawRecord("03/04/2015", "US", 1, 1),
		rawRecord("15-Mar-2015", "US", 1, 1),
		rawRecord("2015-03-05T10:30:00Z", "US", 1, 1),
		rawRecord("not a date", "US", 1, 1),
	}

	got, err := NormalizeDateColumn(input, models.FieldDate)
	require.NoError(t, err)
	require.Len(t, got, len(input))

	wantDates := []string{"2015-03-01", "2015-03-04", "2015-03-15", "2015-03-05"}
	for i, want := range wantDates {
		assert.True(t, got[i].HasDate(), "row %d", i)
		assert.Equal(t, want, got[i].RawDate, "row %d", i)
		assert.Equal(t, want, got[i].Date.Format(models.DateLayout), "row %d", i)
	}

	assert.False(t, got[4].HasDate())
	assert.True(t, got[4].Missing.Has(models.FieldDate))

	// the input is left untouched
	assert.False(t, input[0].DateParsed)
}

func TestNormalizeDateColumnRejectsNonDateField(t *testing.T) {
	_, err := NormalizeDateColumn(models.Table{}, models.FieldCountry)
	require.ErrorIs(t, err, ErrNotDateColumn)
}

func TestRunStandardPipelineKeepsUnparseableDates(t *testing.T) {
	good := rawRecord("2015-03-01", "US", 1, 100)
	bad := rawRecord("31/31/2015", "US", 2, 50)

	got, err := RunStandardPipeline(models.Table{good, good, bad}, models.FieldDate)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].HasDate())
	assert.True(t, got[1].Missing.Has(models.FieldDate))
}

func TestRunSafePipelineDropsUnparseableDates(t *testing.T) {
	good := rawRecord("2015-03-01", "US", 1, 100)
	bad := rawRecord("31/31/2015", "US", 2, 50)

	got, err := RunSafePipeline(models.Table{good, good, bad}, models.FieldDate)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].HasDate())
}

func TestPipelinesRejectNonDateField(t *testing.T) {
	_, err := RunStandardPipeline(models.Table{}, models.FieldRevenue)
	assert.ErrorIs(t, err, ErrNotDateColumn)

	_, err = RunSafePipeline(models.Table{}, models.FieldRevenue)
	assert.ErrorIs(t, err, ErrNotDateColumn)
}

func TestFilterCompleteYears(t *testing.T) {
	input := append(yearTable(2011, monthRange(1, 12)...), yearTable(2012, monthRange(1, 11)...)...)

	got := FilterCompleteYears(input)
	require.Len(t, got, 12)
	for _, r := range got {
		assert.Equal(t, 2011, r.Year())
	}
	assert.Equal(t, []int{2011}, CompleteYears(input))
	assert.Equal(t, map[int]int{2011: 12, 2012: 11}, MonthCoverage(input))
}

func TestFilterCompleteYearsCountsDistinctMonths(t *testing.T) {
	// 24 rows but only 11 distinct months
	input := append(yearTable(2013, monthRange(1, 11)...), yearTable(2013, monthRange(1, 11)...)...)
	input = append(input, yearTable(2013, 1, 2)...)

	assert.Empty(t, FilterCompleteYears(input))
	assert.Empty(t, CompleteYears(input))
}

func TestFilterCompleteYearsInvariant(t *testing.T) {
	input := models.Table{}
	input = append(input, yearTable(2011, monthRange(1, 12)...)...)
	input = append(input, yearTable(2012, monthRange(2, 12)...)...)
	input = append(input, yearTable(2013, monthRange(1, 12)...)...)
	input = append(input, yearTable(2014, 6)...)
	input = append(input, rawRecord("garbage", "France", 1, 1))

	got := FilterCompleteYears(input)
	assert.LessOrEqual(t, len(got), len(input))

	normalized, err := NormalizeDateColumn(input, models.FieldDate)
	require.NoError(t, err)
	inputSet := make(map[models.SalesRecord]bool)
	for _, r := range normalized {
		inputSet[r] = true
	}

	kept := make(map[int]map[int]bool)
	for _, r := range got {
		assert.True(t, inputSet[r], "output row not present in input")
		if kept[r.Year()] == nil {
			kept[r.Year()] = make(map[int]bool)
		}
		kept[r.Year()][int(r.Month())] = true
	}
	for year, months := range kept {
		assert.Len(t, months, 12, "year %d", year)
	}

	coverage := MonthCoverage(input)
	for year, n := range coverage {
		if _, ok := kept[year]; !ok {
			assert.Less(t, n, 12, "year %d excluded with full coverage", year)
		}
	}
	assert.Equal(t, []int{2011, 2013}, CompleteYears(input))
}

func TestFilterCompleteYearsUsesParsedDates(t *testing.T) {
	input, err := NormalizeDateColumn(yearTable(2015, monthRange(1, 12)...), models.FieldDate)
	require.NoError(t, err)

	got := FilterCompleteYears(input)
	assert.Equal(t, input, got)
}

func TestEmptyInputs(t *testing.T) {
	assert.Empty(t, Deduplicate(models.Table{}))
	assert.Empty(t, DropIncompleteRows(models.Table{}))
	assert.Empty(t, FilterCompleteYears(models.Table{}))
	assert.Empty(t, CompleteYears(models.Table{}))

	normalized, err := NormalizeDateColumn(models.Table{}, models.FieldDate)
	require.NoError(t, err)
	assert.Empty(t, normalized)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2016-01-11", "2016-01-11", true},
		{"2016/1/11", "2016-01-11", true},
		{"1/11/2016", "2016-01-11", true},
		{"01/11/2016", "2016-01-11", true},
		{"2016-01-11 08:00:00", "2016-01-11", true},
		{"11-Jan-2016", "2016-01-11", true},
		{"January 11, 2016", "2016-01-11", true},
		{"  2016-01-11  ", "2016-01-11", true},
		{"", "", false},
		{"yesterday", "", false},
		{"2016-13-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format(models.DateLayout))
			}
		})
	}
}

func BenchmarkDeduplicate(b *testing.B) {
	input := models.Table{}
	for i := 0; i < 20; i++ {
		input = append(input, yearTable(2011+i%5, monthRange(1, 12)...)...)
	}
	b.ResetTimer()
	for b.Loop() {
		Deduplicate(input)
	}
}
