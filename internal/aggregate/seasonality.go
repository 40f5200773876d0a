package aggregate

import (
	"strconv"

	"gonum.org/v1/gonum/stat"

	"sales-dashboard/internal/models"
)

// period bounds an analysis by year, inclusive. A zero bound is open.
type period struct {
	from, to int
}

func (p period) contains(year int) bool {
	return (p.from == 0 || year >= p.from) && (p.to == 0 || year <= p.to)
}

// SeasonalityTopCountries profiles monthly order volume for the n countries
// with the largest total quantity over the period. For each month the
// per-year sums are reduced to their total, mean and sample standard
// deviation. Zero from or to leaves that end of the period open.
func SeasonalityTopCountries(t models.Table, n, from, to int) models.Seasonality {
	span := period{from: from, to: to}
	out := models.Seasonality{
		View:      ViewSeasonality,
		FromYear:  from,
		ToYear:    to,
		Countries: []models.CountrySeasonality{},
	}
	if n <= 0 {
		return out
	}

	rows := t.Filter(func(r models.SalesRecord) bool {
		return r.HasDate() && span.contains(r.Year())
	})
	totals := GroupSum(rows, MeasureOrderQuantity, DimensionCountry)
	sortByValueDesc(totals)
	if len(totals) > n {
		totals = totals[:n]
	}

	for _, g := range totals {
		country := g.Keys[0]
		countryRows := rows.Filter(func(r models.SalesRecord) bool {
			return r.Country == country
		})
		out.Countries = append(out.Countries, models.CountrySeasonality{
			Country: country,
			Total:   g.Value,
			Months:  monthStats(countryRows),
		})
	}
	return out
}

// CountrySeasonality profiles monthly order volume for one country. The
// result is empty when the country has no rows or sold nothing.
func CountrySeasonality(t models.Table, country string) models.Seasonality {
	out := models.Seasonality{View: ViewCountrySeasonality, Countries: []models.CountrySeasonality{}}

	rows := t.Filter(func(r models.SalesRecord) bool {
		return r.HasDate() && r.Country == country
	})
	var total float64
	for _, r := range rows {
		total += float64(r.OrderQuantity)
	}
	if len(rows) == 0 || total == 0 {
		return out
	}

	out.Countries = append(out.Countries, models.CountrySeasonality{
		Country: country,
		Total:   total,
		Months:  monthStats(rows),
	})
	return out
}

// monthStats reduces per (year, month) quantity sums to one MonthStat per
// month present, January first.
func monthStats(t models.Table) []models.MonthStat {
	perYear := GroupSum(t, MeasureOrderQuantity, DimensionMonth, DimensionYear)

	byMonth := make([][]float64, 13)
	for _, g := range perYear {
		m := monthIndex(g.Keys[0])
		byMonth[m] = append(byMonth[m], g.Value)
	}

	stats := []models.MonthStat{}
	for m := 1; m <= 12; m++ {
		values := byMonth[m]
		if len(values) == 0 {
			continue
		}
		ms := models.MonthStat{
			Month: m,
			Name:  MonthName(m),
			Mean:  stat.Mean(values, nil),
			Years: len(values),
		}
		for _, v := range values {
			ms.Sum += v
		}
		if len(values) > 1 {
			ms.StdDev = stat.StdDev(values, nil)
		}
		stats = append(stats, ms)
	}
	return stats
}

func monthIndex(key string) int {
	m, err := strconv.Atoi(key)
	if err != nil || m < 1 || m > 12 {
		return 0
	}
	return m
}
