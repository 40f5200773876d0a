package export

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

func record(date, country, sub string, revenue float64, qty int) models.SalesRecord {
	d, _ := time.Parse(models.DateLayout, date)
	return models.SalesRecord{
		Date:            d,
		RawDate:         date,
		DateParsed:      true,
		Revenue:         revenue,
		OrderQuantity:   qty,
		Country:         country,
		CustomerGender:  "F",
		Product:         "P-" + sub,
		ProductCategory: "Cat",
		SubCategory:     sub,
	}
}

func sampleTable() models.Table {
	missingSub := record("2015-03-01", "Canada", "", 5, 1)
	missingSub.Missing = missingSub.Missing.With(models.FieldSubCategory)

	return models.Table{
		record("2015-01-01", "France", "Road Bikes", 1000, 1),
		record("2015-01-02", "France", "Helmets", 35, 2),
		record("2015-02-01", "Canada", "Mountain Bikes", 1500, 1),
		missingSub,
		record("2015-04-01", "Canada", "Bike Racks", 120, 1),
	}
}

func TestIsBike(t *testing.T) {
	tests := []struct {
		sub  string
		want bool
	}{
		{"Road Bikes", true},
		{"touring bikes ", true},
		{"Bike Racks", false},
		{"Helmets", false},
		{"", false},
	}
	for _, tt := range tests {
		r := models.SalesRecord{SubCategory: tt.sub}
		assert.Equal(t, tt.want, IsBike(r), tt.sub)
	}
}

func TestSplitPartitionsEveryRow(t *testing.T) {
	table := sampleTable()
	p := Split(table)

	assert.Len(t, p.Bikes, 2)
	assert.Len(t, p.Accessories, 3)
	assert.Equal(t, len(table), len(p.Bikes)+len(p.Accessories))
	assert.Equal(t, "Road Bikes", p.Bikes[0].SubCategory)
	assert.Equal(t, "Mountain Bikes", p.Bikes[1].SubCategory)
	assert.Equal(t, "Helmets", p.Accessories[0].SubCategory)
}

func TestSplitEmpty(t *testing.T) {
	p := Split(nil)
	assert.NotNil(t, p.Bikes)
	assert.NotNil(t, p.Accessories)
	assert.Empty(t, p.Bikes)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()[3:4]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(models.Headers(), ","), lines[0])
	assert.Equal(t, "2015-03-01,5,1,Canada,F,P-,Cat,", lines[1])
}

func TestSaveSplitCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := SaveSplitCSV(dir, Split(sampleTable()), true)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "bikes.csv"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
}

func TestSaveSplitSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "split.db")
	ctx := context.Background()
	require.NoError(t, SaveSplitSQLite(ctx, path, Split(sampleTable())))

	// A second run replaces the tables instead of appending.
	require.NoError(t, SaveSplitSQLite(ctx, path, Split(sampleTable())))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var bikes, accessories int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bikes`).Scan(&bikes))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accessories`).Scan(&accessories))
	assert.Equal(t, 2, bikes)
	assert.Equal(t, 3, accessories)

	var revenue float64
	require.NoError(t, db.QueryRow(`SELECT SUM("Revenue") FROM bikes`).Scan(&revenue))
	assert.InDelta(t, 2500, revenue, 1e-9)

	var nullSubs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accessories WHERE "Sub_Category" IS NULL`).Scan(&nullSubs))
	assert.Equal(t, 1, nullSubs)
}

func TestWriteWorkbook(t *testing.T) {
	series := models.Series{View: "revenue_by_year", Points: []models.Point{{Key: "2015", Value: 2660}}}
	pivot := models.Pivot{
		View:         "revenue_by_country_gender",
		RowDimension: "country",
		Columns:      []string{"F", "M"},
		Rows:         []models.PivotRow{{Key: "France", Values: []float64{10, 5}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, []Sheet{SeriesSheet(series), PivotSheet(pivot)}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"revenue_by_year", "revenue_by_country_gender"}, f.GetSheetList())

	rows, err := f.GetRows("revenue_by_year")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Key", "Label", "Value"}, {"2015", "2015", "2660"}}, rows)

	rows, err = f.GetRows("revenue_by_country_gender")
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "F", "M", "Total"}, rows[0])
	assert.Equal(t, []string{"France", "10", "5", "15"}, rows[1])
}

func TestSnapshotSheets(t *testing.T) {
	analytics := services.NewAnalytics()
	table := models.Table{}
	for month := 1; month <= 12; month++ {
		r := record("2015-01-01", "France", "Road Bikes", 100, 1)
		r.Date = time.Date(2015, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		r.RawDate = r.Date.Format(models.DateLayout)
		table = append(table, r)
	}
	require.NoError(t, analytics.SetData(table))

	snap, err := analytics.Snapshot(context.Background())
	require.NoError(t, err)

	sheets := SnapshotSheets(snap)
	require.Len(t, sheets, 9)
	assert.Equal(t, "quality", sheets[len(sheets)-1].Name)

	path := filepath.Join(t.TempDir(), "reports", "report.xlsx")
	require.NoError(t, SaveWorkbook(path, sheets))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 9)
}

func TestWorkbookNoSheets(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteWorkbook(&buf, nil), ErrNoSheets)
}
