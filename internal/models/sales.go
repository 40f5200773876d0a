package models

import (
	"strings"
	"time"
)

// Field identifies one column of the sales dataset.
type Field int

const (
	FieldDate Field = iota
	FieldRevenue
	FieldOrderQuantity
	FieldCountry
	FieldCustomerGender
	FieldProduct
	FieldProductCategory
	FieldSubCategory
	numFields
)

// DateLayout is the canonical text form of a normalized date.
const DateLayout = "2006-01-02"

var fieldHeaders = [numFields]string{
	"Date",
	"Revenue",
	"Order_Quantity",
	"Country",
	"Customer_Gender",
	"Product",
	"Product_Category",
	"Sub_Category",
}

// Fields returns every column in header order.
func Fields() []Field {
	fields := make([]Field, 0, numFields)
	for f := Field(0); f < numFields; f++ {
		fields = append(fields, f)
	}
	return fields
}

// Headers returns the dataset header names in column order.
func Headers() []string {
	return fieldHeaders[:]
}

func (f Field) String() string {
	if !f.Valid() {
		return "Field(" + itoa(int(f)) + ")"
	}
	return fieldHeaders[f]
}

func (f Field) Valid() bool {
	return f >= 0 && f < numFields
}

// IsDate reports whether the column holds calendar dates.
func (f Field) IsDate() bool {
	return f == FieldDate
}

// FieldByHeader resolves a header name, ignoring case and surrounding spaces.
func FieldByHeader(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for f, header := range fieldHeaders {
		if strings.EqualFold(header, name) {
			return Field(f), true
		}
	}
	return 0, false
}

// FieldSet is a bit set of fields, used to mark missing values.
type FieldSet uint16

func (s FieldSet) Has(f Field) bool {
	return s&(1<<uint(f)) != 0
}

func (s FieldSet) With(f Field) FieldSet {
	return s | 1<<uint(f)
}

func (s FieldSet) Without(f Field) FieldSet {
	return s &^ (1 << uint(f))
}

func (s FieldSet) Fields() []Field {
	var out []Field
	for _, f := range Fields() {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// SalesRecord is one row of the dataset. Records are comparable with ==,
// which is what strict duplicate detection relies on.
//
// Before date normalization RawDate holds the source text and DateParsed is
// false. Normalization sets Date to UTC midnight and rewrites RawDate to
// DateLayout.
type SalesRecord struct {
	Date            time.Time
	RawDate         string
	DateParsed      bool
	Revenue         float64
	OrderQuantity   int
	Country         string
	CustomerGender  string
	Product         string
	ProductCategory string
	SubCategory     string
	Missing         FieldSet
}

// Complete reports whether no field is missing.
func (r SalesRecord) Complete() bool {
	return r.Missing == 0
}

// HasDate reports whether the record carries a parsed, present date.
func (r SalesRecord) HasDate() bool {
	return r.DateParsed && !r.Missing.Has(FieldDate)
}

func (r SalesRecord) Year() int {
	return r.Date.Year()
}

func (r SalesRecord) Month() time.Month {
	return r.Date.Month()
}

// Text returns the textual value of a field, or "" when it is missing.
func (r SalesRecord) Text(f Field) string {
	if r.Missing.Has(f) {
		return ""
	}
	switch f {
	case FieldDate:
		return r.RawDate
	case FieldRevenue:
		return formatFloat(r.Revenue)
	case FieldOrderQuantity:
		return itoa(r.OrderQuantity)
	case FieldCountry:
		return r.Country
	case FieldCustomerGender:
		return r.CustomerGender
	case FieldProduct:
		return r.Product
	case FieldProductCategory:
		return r.ProductCategory
	case FieldSubCategory:
		return r.SubCategory
	}
	return ""
}

// Table is an ordered collection of sales records. Pipeline steps never
// modify a Table in place; they return a new one.
type Table []SalesRecord

func (t Table) Len() int {
	return len(t)
}

func (t Table) Clone() Table {
	if t == nil {
		return Table{}
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Filter returns the records for which keep returns true.
func (t Table) Filter(keep func(SalesRecord) bool) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// MonthName returns the English name of a month number 1-12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}
