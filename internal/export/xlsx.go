// Package export writes cleaned data and report views to files: an XLSX
// workbook with one sheet per view, and the bikes/accessories split as CSV
// or SQLite tables.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/cleaning"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

var ErrNoSheets = errors.New("workbook has no sheets")

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

func SeriesSheet(s models.Series) Sheet {
	sheet := Sheet{Name: s.View, Header: []string{"Key", "Label", "Value"}}
	for _, p := range s.Points {
		label := p.Label
		if label == "" {
			label = p.Key
		}
		sheet.Rows = append(sheet.Rows, []any{p.Key, label, p.Value})
	}
	return sheet
}

func PivotSheet(p models.Pivot) Sheet {
	header := append([]string{p.RowDimension}, p.Columns...)
	sheet := Sheet{Name: p.View, Header: append(header, "Total")}
	for _, row := range p.Rows {
		cells := make([]any, 0, len(row.Values)+2)
		cells = append(cells, row.Key)
		for _, v := range row.Values {
			cells = append(cells, v)
		}
		sheet.Rows = append(sheet.Rows, append(cells, row.Total()))
	}
	return sheet
}

func SeasonalitySheet(s models.Seasonality) Sheet {
	sheet := Sheet{
		Name:   s.View,
		Header: []string{"Country", "Month", "Name", "Sum", "Mean", "StdDev", "Years"},
	}
	for _, c := range s.Countries {
		for _, m := range c.Months {
			sheet.Rows = append(sheet.Rows, []any{c.Country, m.Month, m.Name, m.Sum, m.Mean, m.StdDev, m.Years})
		}
	}
	return sheet
}

func CategorySheet(c models.CategoryBreakdown) Sheet {
	sheet := Sheet{Name: c.View, Header: []string{"Category", "SubCategory", "Quantity"}}
	for _, row := range c.Rows {
		sheet.Rows = append(sheet.Rows, []any{row.Category, row.SubCategory, row.Quantity})
	}
	return sheet
}

func QualitySheet(r cleaning.Report) Sheet {
	return Sheet{
		Name:   "quality",
		Header: []string{"Metric", "Value"},
		Rows: [][]any{
			{"pipeline", string(r.Pipeline)},
			{"rows_in", r.RowsIn},
			{"duplicates_removed", r.DuplicatesRemoved},
			{"incomplete_dropped", r.IncompleteDropped},
			{"unparseable_dates", r.UnparseableDates},
			{"rows_after_pipeline", r.RowsAfterPipeline},
			{"rows_out", r.RowsOut},
			{"complete_years", fmt.Sprint(r.CompleteYears)},
			{"excluded_years", fmt.Sprint(r.ExcludedYears)},
		},
	}
}

// SnapshotSheets lays out every dashboard view, quality summary last.
func SnapshotSheets(snap *services.Snapshot) []Sheet {
	return []Sheet{
		SeriesSheet(snap.RevenueByYear),
		SeriesSheet(snap.RevenueByMonth),
		SeriesSheet(snap.RevenueByCountry),
		SeriesSheet(snap.RevenueByGender),
		PivotSheet(snap.RevenueByCountryGender),
		SeasonalitySheet(snap.Seasonality),
		SeriesSheet(snap.TopProducts),
		CategorySheet(snap.Categories),
		QualitySheet(snap.Quality),
	}
}

// Workbook builds an in-memory workbook. The caller owns the result and
// must Close it.
func Workbook(sheets []Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet.Name, err)
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, sheet.Name, err)
		}
	}
	return nil
}

func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	f, err := Workbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func SaveWorkbook(path string, sheets []Sheet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := Workbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
