package models

// Result is implemented by every aggregate view. An empty result is the
// normal "no data" outcome, not an error.
type Result interface {
	Empty() bool
}

type Point struct {
	Key   string  `json:"key"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}

// Series is an ordered mapping from group key to value.
type Series struct {
	View   string  `json:"view"`
	Points []Point `json:"points"`
}

func (s Series) Empty() bool {
	return len(s.Points) == 0
}

func (s Series) Total() float64 {
	var total float64
	for _, p := range s.Points {
		total += p.Value
	}
	return total
}

func (s Series) Keys() []string {
	keys := make([]string, len(s.Points))
	for i, p := range s.Points {
		keys[i] = p.Key
	}
	return keys
}

// Labels returns point labels, falling back to keys.
func (s Series) Labels() []string {
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = p.Label
		if labels[i] == "" {
			labels[i] = p.Key
		}
	}
	return labels
}

func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Lookup returns the value stored under key.
func (s Series) Lookup(key string) (float64, bool) {
	for _, p := range s.Points {
		if p.Key == key {
			return p.Value, true
		}
	}
	return 0, false
}

type PivotRow struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

func (r PivotRow) Total() float64 {
	var total float64
	for _, v := range r.Values {
		total += v
	}
	return total
}

// Pivot is a two-dimensional view: one row per RowDimension value, one
// column per Columns value. Absent combinations hold 0.
type Pivot struct {
	View         string     `json:"view"`
	RowDimension string     `json:"row_dimension"`
	Columns      []string   `json:"columns"`
	Rows         []PivotRow `json:"rows"`
}

func (p Pivot) Empty() bool {
	return len(p.Rows) == 0
}

type MonthStat struct {
	Month  int     `json:"month"`
	Name   string  `json:"name"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Years  int     `json:"years"`
}

type CountrySeasonality struct {
	Country string      `json:"country"`
	Total   float64     `json:"total"`
	Months  []MonthStat `json:"months"`
}

// Seasonality holds per-month order volume for one or more countries,
// aggregated across the years of the analysis period.
type Seasonality struct {
	View      string               `json:"view"`
	FromYear  int                  `json:"from_year,omitempty"`
	ToYear    int                  `json:"to_year,omitempty"`
	Countries []CountrySeasonality `json:"countries"`
}

func (s Seasonality) Empty() bool {
	return len(s.Countries) == 0
}

type CategoryVolume struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Quantity    float64 `json:"quantity"`
}

type CategoryBreakdown struct {
	View string           `json:"view"`
	Rows []CategoryVolume `json:"rows"`
}

func (c CategoryBreakdown) Empty() bool {
	return len(c.Rows) == 0
}
