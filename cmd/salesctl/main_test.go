package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/selection"
)

// writeDataset writes a full 2015 for France and Canada plus one 2016 row,
// which the complete-year filter drops.
func writeDataset(t *testing.T) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("Date,Revenue,Order_Quantity,Country,Customer_Gender,Product,Product_Category,Sub_Category\n")
	for m := 1; m <= 12; m++ {
		fmt.Fprintf(&b, "2015-%02d-10,200,2,France,M,Road-150,Bikes,Road Bikes\n", m)
		fmt.Fprintf(&b, "2015-%02d-12,50,1,Canada,F,Sport Helmet,Accessories,Helmets\n", m)
	}
	b.WriteString("2016-01-05,300,3,Germany,F,Road-150,Bikes,Road Bikes\n")

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Dataset.CacheEnabled = false
	return cfg
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(testConfig(t))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestReportSeries(t *testing.T) {
	file := writeDataset(t)

	out, err := run(t, "", "report", "revenue_by_country", "--file", file)
	require.NoError(t, err)

	assert.Contains(t, out, "France")
	assert.Contains(t, out, "2400")
	assert.Contains(t, out, "Canada")
	assert.Contains(t, out, "600")
	assert.Contains(t, out, "3000")
	assert.NotContains(t, out, "Germany")
	assert.Less(t, strings.Index(out, "France"), strings.Index(out, "Canada"))
}

func TestReportViews(t *testing.T) {
	file := writeDataset(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"pivot", []string{"report", "revenue_by_country_gender"}, []string{"France", "2400"}},
		{"volume", []string{"report", "volume_by_month", "--country", "2", "--year", "2015"}, []string{"January", "December", "12"}},
		{"seasonality", []string{"report", "seasonality", "--from", "2015", "--to", "2015"}, []string{"France", "Canada", "June"}},
		{"top products", []string{"report", "top_products", "-n", "1"}, []string{"Road-150", "24"}},
		{"categories", []string{"report", "category_volume"}, []string{"Accessories", "Helmets", "Road Bikes"}},
		{"quality", []string{"report", "quality"}, []string{"rows_in", "25", "rows_out", "24", "2015"}},
		{"empty volume", []string{"report", "volume_by_month", "--country", "France", "--year", "2013"}, []string{"No data for volume_by_month."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", append(tt.args, "--file", file)...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestReportJSON(t *testing.T) {
	file := writeDataset(t)

	out, err := run(t, "", "report", "quality", "--json", "--file", file)
	require.NoError(t, err)

	var report struct {
		RowsIn        int   `json:"rows_in"`
		RowsOut       int   `json:"rows_out"`
		CompleteYears []int `json:"complete_years"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 25, report.RowsIn)
	assert.Equal(t, 24, report.RowsOut)
	assert.Equal(t, []int{2015}, report.CompleteYears)
}

func TestReportErrors(t *testing.T) {
	file := writeDataset(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown view", []string{"report", "weekday", "--file", file}},
		{"missing view", []string{"report", "--file", file}},
		{"volume without country", []string{"report", "volume_by_month", "--file", file}},
		{"bad country", []string{"report", "volume_by_month", "--country", "Narnia", "--file", file}},
		{"missing file", []string{"report", "revenue_by_year", "--file", filepath.Join(t.TempDir(), "nope.csv")}},
		{"bad pipeline", []string{"report", "revenue_by_year", "--pipeline", "fast", "--file", file}},
		{"inverted period", []string{"report", "seasonality", "--from", "2015", "--to", "2014", "--file", file}},
		{"zero top", []string{"report", "seasonality", "--top", "0", "--file", file}},
		{"zero limit", []string{"report", "top_products", "-n", "0", "--file", file}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestReportRejectsInvertedPeriod(t *testing.T) {
	file := writeDataset(t)

	out, err := run(t, "", "report", "seasonality", "--from", "2015", "--to", "2014", "--file", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2015-2014 is inverted")
	assert.NotContains(t, out, "No data")

	out, err = run(t, "", "report", "seasonality", "--from", "0", "--to", "2015", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "France")
}

func TestLogsNameComponentOnce(t *testing.T) {
	file := writeDataset(t)

	cmd := newRootCmd(testConfig(t))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"report", "revenue_by_year", "--log-level", "info", "--file", file})
	require.NoError(t, cmd.Execute())

	logs := errOut.String()
	require.Contains(t, logs, "component=analytics")
	for _, line := range strings.Split(strings.TrimSpace(logs), "\n") {
		assert.LessOrEqual(t, strings.Count(line, "component="), 1, line)
	}
}

func TestSeasonalityPrompt(t *testing.T) {
	file := writeDataset(t)

	out, err := run(t, "1\n", "seasonality", "--file", file)
	require.NoError(t, err)

	assert.Contains(t, out, "1 = France")
	assert.Contains(t, out, "2 = Canada")
	assert.Contains(t, out, "France: 24 orders")
	assert.Contains(t, out, "January")
}

func TestSeasonalityFlag(t *testing.T) {
	file := writeDataset(t)

	out, err := run(t, "", "seasonality", "--country", "canada", "--file", file)
	require.NoError(t, err)

	assert.Contains(t, out, "Canada: 12 orders")
	assert.NotContains(t, out, "1 = France")
}

func TestSeasonalityRejected(t *testing.T) {
	file := writeDataset(t)

	for _, input := range []string{"9\n", "0\n", "abc\n", "\n"} {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			_, err := run(t, input, "seasonality", "--file", file)
			assert.ErrorIs(t, err, selection.ErrInvalidSelection)
		})
	}
}

func TestSplit(t *testing.T) {
	file := writeDataset(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "sales.db")

	out, err := run(t, "", "split", "--out", dir, "--sqlite", db, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "bikes")
	assert.Contains(t, out, "accessories")

	bikes, err := os.ReadFile(filepath.Join(dir, "bikes.csv"))
	require.NoError(t, err)
	assert.Equal(t, 13, strings.Count(string(bikes), "\n"))
	assert.NotContains(t, string(bikes), "Helmets")

	accessories, err := os.ReadFile(filepath.Join(dir, "accessories.csv"))
	require.NoError(t, err)
	assert.Equal(t, 13, strings.Count(string(accessories), "\n"))

	_, err = os.Stat(db)
	assert.NoError(t, err)
}

func TestExport(t *testing.T) {
	file := writeDataset(t)
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")

	out, err := run(t, "", "export", "--out", path, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "9 sheets")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestChart(t *testing.T) {
	file := writeDataset(t)
	dir := t.TempDir()

	tests := []struct {
		view string
		args []string
	}{
		{"revenue_by_year", nil},
		{"top_products", nil},
		{"seasonality", nil},
		{"country_seasonality", []string{"--country", "1"}},
		{"volume_by_month", []string{"--country", "France", "--year", "2015"}},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			path := filepath.Join(dir, tt.view+".png")
			args := append([]string{"chart", tt.view, "--out", path, "--file", file}, tt.args...)

			out, err := run(t, "", args...)
			require.NoError(t, err)
			assert.Contains(t, out, path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
		})
	}
}

func TestChartErrors(t *testing.T) {
	file := writeDataset(t)
	dir := t.TempDir()

	_, err := run(t, "", "chart", "weekday", "--out", filepath.Join(dir, "w.png"), "--file", file)
	assert.Error(t, err)

	_, err = run(t, "", "chart", "country_seasonality", "--out", filepath.Join(dir, "c.png"), "--file", file)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.png")
	_, err = run(t, "", "chart", "volume_by_month", "--country", "1", "--year", "2013", "--out", empty, "--file", file)
	assert.Error(t, err)
	_, statErr := os.Stat(empty)
	assert.True(t, os.IsNotExist(statErr))
}
