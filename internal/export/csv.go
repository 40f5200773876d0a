package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sales-dashboard/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes t with the canonical column headers. Missing values are
// written as empty cells.
func WriteCSV(w io.Writer, t models.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(models.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	fields := models.Fields()
	record := make([]string, len(fields))
	for _, r := range t {
		for i, f := range fields {
			record[i] = r.Text(f)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes t to path, creating parent directories. A UTF-8 BOM is
// prepended when bom is set, for spreadsheet applications.
func SaveCSV(path string, t models.Table, bom bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if bom {
		if _, err := file.Write(utf8BOM); err != nil {
			return err
		}
	}

	if err := WriteCSV(file, t); err != nil {
		return err
	}
	return file.Close()
}

// SaveSplitCSV writes the partition as <dir>/bikes.csv and
// <dir>/accessories.csv and returns the paths written.
func SaveSplitCSV(dir string, p Partition, bom bool) ([]string, error) {
	paths := make([]string, 0, 2)
	for _, name := range []string{TableBikes, TableAccessories} {
		path := filepath.Join(dir, name+".csv")
		if err := SaveCSV(path, p.Tables()[name], bom); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
