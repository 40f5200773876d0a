// Package loader reads the raw sales dataset from CSV or XLSX into a
// models.Table. Malformed cells become missing values; only structural
// problems such as an absent column are errors.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

var (
	ErrEmptyFile         = errors.New("empty file")
	ErrMissingColumn     = errors.New("missing required column")
	ErrNoRows            = errors.New("no data rows found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// nullTokens are cell values read as missing, matching common spreadsheet
// exports.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"#N/A": {},
}

// LoadFile reads path, choosing the format by extension.
func LoadFile(ctx context.Context, path string) (models.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return ReadCSV(ctx, file)
	case ".xlsx", ".xlsm":
		return ReadXLSX(ctx, file)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadCSV parses a CSV stream with a header row. A UTF-8 byte order mark is
// tolerated.
func ReadCSV(ctx context.Context, r io.Reader) (models.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return parseRows(ctx, header, rows)
}

// ReadXLSX parses the first sheet of a workbook. The first row is the header.
func ReadXLSX(ctx context.Context, r io.Reader) (models.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	// Raw values keep numbers free of display formats; date cells come back
	// as serial numbers.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	if cols, err := resolveColumns(rows[0]); err == nil {
		if i := cols[models.FieldDate]; i >= 0 {
			for _, row := range rows[1:] {
				if i < len(row) {
					row[i] = serialDate(row[i])
				}
			}
		}
	}
	return parseRows(ctx, rows[0], rows[1:])
}

// serialDate rewrites an Excel date serial as a DateLayout date. Other text is
// returned unchanged for the date parser.
func serialDate(s string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return s
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return s
	}
	return t.Format(models.DateLayout)
}

// columns maps each field to its position in a source row.
type columns []int

func resolveColumns(header []string) (columns, error) {
	cols := make(columns, len(models.Fields()))
	for i := range cols {
		cols[i] = -1
	}
	for i, name := range header {
		if f, ok := models.FieldByHeader(name); ok && cols[f] < 0 {
			cols[f] = i
		}
	}

	var missing []string
	for _, f := range models.Fields() {
		if cols[f] < 0 {
			missing = append(missing, f.String())
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// parseRows converts rows in parallel batches. Each record is written to its
// own slot so input order is preserved.
func parseRows(ctx context.Context, header []string, rows [][]string) (models.Table, error) {
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	rows = skipBlank(rows)
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make(models.Table, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%1000 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = parseRecord(cols, rows[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func skipBlank(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// parseRecord builds a record from one source row. Cells that are empty or
// fail to parse are marked missing.
func parseRecord(cols columns, row []string) models.SalesRecord {
	var rec models.SalesRecord

	cell := func(f models.Field) (string, bool) {
		i := cols[f]
		if i < 0 || i >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[i])
		if _, null := nullTokens[v]; null {
			return "", false
		}
		return v, true
	}
	text := func(f models.Field, dst *string) {
		v, ok := cell(f)
		if !ok {
			rec.Missing = rec.Missing.With(f)
			return
		}
		*dst = v
	}

	text(models.FieldDate, &rec.RawDate)
	text(models.FieldCountry, &rec.Country)
	text(models.FieldCustomerGender, &rec.CustomerGender)
	text(models.FieldProduct, &rec.Product)
	text(models.FieldProductCategory, &rec.ProductCategory)
	text(models.FieldSubCategory, &rec.SubCategory)

	if v, ok := cell(models.FieldRevenue); ok {
		if revenue, ok := parseAmount(v); ok {
			rec.Revenue = revenue
		} else {
			rec.Missing = rec.Missing.With(models.FieldRevenue)
		}
	} else {
		rec.Missing = rec.Missing.With(models.FieldRevenue)
	}

	if v, ok := cell(models.FieldOrderQuantity); ok {
		if qty, ok := parseQuantity(v); ok {
			rec.OrderQuantity = qty
		} else {
			rec.Missing = rec.Missing.With(models.FieldOrderQuantity)
		}
	} else {
		rec.Missing = rec.Missing.With(models.FieldOrderQuantity)
	}

	return rec
}

func parseAmount(s string) (float64, bool) {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseQuantity(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
