// Package aggregate computes the reporting views over a cleaned sales table.
// Functions take the table explicitly, never modify it, and return an empty
// result rather than an error when no rows match.
package aggregate

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"sales-dashboard/internal/models"
)

// View names, also used as metric labels and export sheet names.
const (
	ViewRevenueByYear          = "revenue_by_year"
	ViewRevenueByMonth         = "revenue_by_month"
	ViewRevenueByCountry       = "revenue_by_country"
	ViewRevenueByGender        = "revenue_by_gender"
	ViewRevenueByCountryGender = "revenue_by_country_gender"
	ViewVolumeByMonth          = "volume_by_month"
	ViewSeasonality            = "seasonality"
	ViewCountrySeasonality     = "country_seasonality"
	ViewTopProducts            = "top_products"
	ViewCategoryVolume         = "category_volume"
)

// SeriesViews lists the views that produce a models.Series.
var SeriesViews = []string{
	ViewRevenueByYear,
	ViewRevenueByMonth,
	ViewRevenueByCountry,
	ViewRevenueByGender,
	ViewTopProducts,
}

const keySep = "\x1f"

// Group is one group of GroupSum, in the order it was first encountered.
type Group struct {
	Keys  []string
	Value float64
	Count int
}

// GroupSum sums measure over t grouped by dims. Rows missing any grouping
// value or the measure are skipped. Groups are returned in first-encounter
// order.
func GroupSum(t models.Table, measure Measure, dims ...Dimension) []Group {
	index := make(map[string]int)
	groups := []Group{}
	keys := make([]string, len(dims))

rows:
	for _, r := range t {
		v, ok := measure.value(r)
		if !ok {
			continue
		}
		for i, d := range dims {
			key, ok := d.value(r)
			if !ok {
				continue rows
			}
			keys[i] = key
		}
		id := strings.Join(keys, keySep)
		pos, seen := index[id]
		if !seen {
			pos = len(groups)
			index[id] = pos
			groups = append(groups, Group{Keys: slices.Clone(keys)})
		}
		groups[pos].Value += v
		groups[pos].Count++
	}
	return groups
}

func RevenueByYear(t models.Table) models.Series {
	groups := GroupSum(t, MeasureRevenue, DimensionYear)
	sortByNumericKey(groups)
	return toSeries(ViewRevenueByYear, groups, nil)
}

func RevenueByMonth(t models.Table) models.Series {
	groups := GroupSum(t, MeasureRevenue, DimensionMonth)
	sortByNumericKey(groups)
	return toSeries(ViewRevenueByMonth, groups, monthLabel)
}

func RevenueByCountry(t models.Table) models.Series {
	groups := GroupSum(t, MeasureRevenue, DimensionCountry)
	sortByValueDesc(groups)
	return toSeries(ViewRevenueByCountry, groups, nil)
}

func RevenueByGender(t models.Table) models.Series {
	groups := GroupSum(t, MeasureRevenue, DimensionGender)
	sortByValueDesc(groups)
	return toSeries(ViewRevenueByGender, groups, nil)
}

// RevenueByCountryGender pivots revenue with one row per country and one
// column per gender. Rows are ordered descending by their values, column by
// column.
func RevenueByCountryGender(t models.Table) models.Pivot {
	pivot := models.Pivot{
		View:         ViewRevenueByCountryGender,
		RowDimension: DimensionCountry.String(),
		Columns:      []string{},
		Rows:         []models.PivotRow{},
	}

	groups := GroupSum(t, MeasureRevenue, DimensionCountry, DimensionGender)
	if len(groups) == 0 {
		return pivot
	}

	for _, g := range groups {
		if !slices.Contains(pivot.Columns, g.Keys[1]) {
			pivot.Columns = append(pivot.Columns, g.Keys[1])
		}
	}
	slices.Sort(pivot.Columns)

	rowIndex := make(map[string]int)
	for _, g := range groups {
		pos, ok := rowIndex[g.Keys[0]]
		if !ok {
			pos = len(pivot.Rows)
			rowIndex[g.Keys[0]] = pos
			pivot.Rows = append(pivot.Rows, models.PivotRow{
				Key:    g.Keys[0],
				Values: make([]float64, len(pivot.Columns)),
			})
		}
		col := slices.Index(pivot.Columns, g.Keys[1])
		pivot.Rows[pos].Values[col] += g.Value
	}

	slices.SortStableFunc(pivot.Rows, func(a, b models.PivotRow) int {
		for i := range a.Values {
			if c := cmp.Compare(b.Values[i], a.Values[i]); c != 0 {
				return c
			}
		}
		return 0
	})
	return pivot
}

// VolumeByMonth sums order quantity per month for one year and country.
// Months without sales are absent.
func VolumeByMonth(t models.Table, year int, country string) models.Series {
	rows := t.Filter(func(r models.SalesRecord) bool {
		return r.HasDate() && r.Year() == year && r.Country == country
	})
	groups := GroupSum(rows, MeasureOrderQuantity, DimensionMonth)
	sortByNumericKey(groups)
	return toSeries(ViewVolumeByMonth, groups, monthLabel)
}

// TopProducts returns the n products with the largest order quantity. Ties
// keep first-encounter order.
func TopProducts(t models.Table, n int) models.Series {
	if n <= 0 {
		return models.Series{View: ViewTopProducts, Points: []models.Point{}}
	}
	groups := GroupSum(t, MeasureOrderQuantity, DimensionProduct)
	sortByValueDesc(groups)
	if len(groups) > n {
		groups = groups[:n]
	}
	return toSeries(ViewTopProducts, groups, nil)
}

// CategoryVolume sums order quantity per category and sub-category.
func CategoryVolume(t models.Table) models.CategoryBreakdown {
	groups := GroupSum(t, MeasureOrderQuantity, DimensionCategory, DimensionSubCategory)
	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(a.Keys[0], b.Keys[0]); c != 0 {
			return c
		}
		return cmp.Compare(a.Keys[1], b.Keys[1])
	})

	out := models.CategoryBreakdown{View: ViewCategoryVolume, Rows: make([]models.CategoryVolume, len(groups))}
	for i, g := range groups {
		out.Rows[i] = models.CategoryVolume{Category: g.Keys[0], SubCategory: g.Keys[1], Quantity: g.Value}
	}
	return out
}

// Countries returns the distinct countries of t in first-encounter order.
func Countries(t models.Table) []string {
	countries := []string{}
	seen := make(map[string]struct{})
	for _, r := range t {
		country, ok := DimensionCountry.value(r)
		if !ok {
			continue
		}
		if _, dup := seen[country]; dup {
			continue
		}
		seen[country] = struct{}{}
		countries = append(countries, country)
	}
	return countries
}

// MonthName returns the English name of month 1-12.
func MonthName(month int) string {
	return models.MonthName(month)
}

func monthLabel(key string) string {
	m, _ := strconv.Atoi(key)
	return MonthName(m)
}

func sortByValueDesc(groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Compare(b.Value, a.Value)
	})
}

func sortByNumericKey(groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		x, _ := strconv.Atoi(a.Keys[0])
		y, _ := strconv.Atoi(b.Keys[0])
		return cmp.Compare(x, y)
	})
}

func toSeries(view string, groups []Group, label func(string) string) models.Series {
	s := models.Series{View: view, Points: make([]models.Point, len(groups))}
	for i, g := range groups {
		p := models.Point{Key: g.Keys[0], Value: g.Value}
		if label != nil {
			p.Label = label(p.Key)
		}
		s.Points[i] = p
	}
	return s
}
