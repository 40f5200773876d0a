package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"sales-dashboard/internal/cleaning"
	"sales-dashboard/internal/models"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeSeries(w io.Writer, s models.Series) {
	table := newTable(w, "Group", "Value")
	labels := s.Labels()
	for i, p := range s.Points {
		table.Append([]string{labels[i], formatValue(p.Value)})
	}
	table.SetFooter([]string{"Total", formatValue(s.Total())})
	table.Render()
}

func writePivot(w io.Writer, p models.Pivot) {
	header := append([]string{p.RowDimension}, p.Columns...)
	table := newTable(w, append(header, "Total")...)
	for _, row := range p.Rows {
		line := []string{row.Key}
		for _, v := range row.Values {
			line = append(line, formatValue(v))
		}
		table.Append(append(line, formatValue(row.Total())))
	}
	table.Render()
}

func writeSeasonality(w io.Writer, s models.Seasonality) {
	table := newTable(w, "Country", "Month", "Sum", "Mean", "Std Dev", "Years")
	for _, c := range s.Countries {
		for _, m := range c.Months {
			table.Append([]string{
				c.Country,
				m.Name,
				formatValue(m.Sum),
				fmt.Sprintf("%.2f", m.Mean),
				fmt.Sprintf("%.2f", m.StdDev),
				strconv.Itoa(m.Years),
			})
		}
	}
	table.Render()
}

func writeCategories(w io.Writer, c models.CategoryBreakdown) {
	table := newTable(w, "Category", "Sub Category", "Quantity")
	for _, row := range c.Rows {
		table.Append([]string{row.Category, row.SubCategory, formatValue(row.Quantity)})
	}
	table.Render()
}

func writeQuality(w io.Writer, r cleaning.Report) {
	table := newTable(w, "Step", "Rows")
	dropped := r.Dropped()
	table.Append([]string{"rows_in", strconv.Itoa(r.RowsIn)})
	for _, step := range []string{"deduplicate", "drop_incomplete", "incomplete_year"} {
		table.Append([]string{step, strconv.Itoa(-dropped[step])})
	}
	table.Append([]string{"unparseable_dates", strconv.Itoa(r.UnparseableDates)})
	table.Append([]string{"rows_out", strconv.Itoa(r.RowsOut)})
	table.SetCaption(true, fmt.Sprintf("pipeline %s, complete years %v", r.Pipeline, r.CompleteYears))
	table.Render()
}
