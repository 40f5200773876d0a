package aggregate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sales-dashboard/internal/models"
)

var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrUnknownMeasure   = errors.New("unknown measure")
)

// Dimension is a column a table can be grouped by.
type Dimension int

const (
	DimensionYear Dimension = iota
	DimensionMonth
	DimensionCountry
	DimensionGender
	DimensionProduct
	DimensionCategory
	DimensionSubCategory
)

var dimensionNames = map[Dimension]string{
	DimensionYear:        "year",
	DimensionMonth:       "month",
	DimensionCountry:     "country",
	DimensionGender:      "gender",
	DimensionProduct:     "product",
	DimensionCategory:    "category",
	DimensionSubCategory: "sub_category",
}

func (d Dimension) String() string {
	if name, ok := dimensionNames[d]; ok {
		return name
	}
	return "dimension(" + strconv.Itoa(int(d)) + ")"
}

// ParseDimension accepts the dimension name, with '-' or ' ' in place of '_'.
func ParseDimension(s string) (Dimension, error) {
	name := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	for d, n := range dimensionNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// value returns the group key of r for d, or false when r has no value.
func (d Dimension) value(r models.SalesRecord) (string, bool) {
	switch d {
	case DimensionYear:
		if !r.HasDate() {
			return "", false
		}
		return strconv.Itoa(r.Year()), true
	case DimensionMonth:
		if !r.HasDate() {
			return "", false
		}
		return strconv.Itoa(int(r.Month())), true
	case DimensionCountry:
		return text(r, models.FieldCountry, r.Country)
	case DimensionGender:
		return text(r, models.FieldCustomerGender, r.CustomerGender)
	case DimensionProduct:
		return text(r, models.FieldProduct, r.Product)
	case DimensionCategory:
		return text(r, models.FieldProductCategory, r.ProductCategory)
	case DimensionSubCategory:
		return text(r, models.FieldSubCategory, r.SubCategory)
	}
	return "", false
}

func text(r models.SalesRecord, f models.Field, v string) (string, bool) {
	if r.Missing.Has(f) {
		return "", false
	}
	return v, true
}

// Measure is a numeric column reduced by summation.
type Measure int

const (
	MeasureRevenue Measure = iota
	MeasureOrderQuantity
)

func (m Measure) String() string {
	switch m {
	case MeasureRevenue:
		return "revenue"
	case MeasureOrderQuantity:
		return "order_quantity"
	}
	return "measure(" + strconv.Itoa(int(m)) + ")"
}

func ParseMeasure(s string) (Measure, error) {
	switch strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s))) {
	case "revenue":
		return MeasureRevenue, nil
	case "order_quantity", "quantity":
		return MeasureOrderQuantity, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMeasure, s)
}

func (m Measure) value(r models.SalesRecord) (float64, bool) {
	switch m {
	case MeasureRevenue:
		return r.Revenue, !r.Missing.Has(models.FieldRevenue)
	case MeasureOrderQuantity:
		return float64(r.OrderQuantity), !r.Missing.Has(models.FieldOrderQuantity)
	}
	return 0, false
}
