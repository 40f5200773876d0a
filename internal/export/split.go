package export

import (
	"strings"

	"sales-dashboard/internal/models"
)

const (
	TableBikes       = "bikes"
	TableAccessories = "accessories"
)

// Partition separates bike sales from everything else.
type Partition struct {
	Bikes       models.Table
	Accessories models.Table
}

// IsBike reports whether the record's sub-category names a kind of bike
// ("Road Bikes", "Mountain Bikes", ...).
func IsBike(r models.SalesRecord) bool {
	if r.Missing.Has(models.FieldSubCategory) {
		return false
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(r.SubCategory)), "bikes")
}

// Split partitions t, keeping row order within each part. Every row lands
// in exactly one part.
func Split(t models.Table) Partition {
	p := Partition{Bikes: models.Table{}, Accessories: models.Table{}}
	for _, r := range t {
		if IsBike(r) {
			p.Bikes = append(p.Bikes, r)
		} else {
			p.Accessories = append(p.Accessories, r)
		}
	}
	return p
}

// Tables returns the parts keyed by their output table name.
func (p Partition) Tables() map[string]models.Table {
	return map[string]models.Table{
		TableBikes:       p.Bikes,
		TableAccessories: p.Accessories,
	}
}
