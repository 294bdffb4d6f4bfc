package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Required columns of a daily source. Other columns are ignored.
const (
	ColumnProduct  = "product"
	ColumnPrice    = "price"
	ColumnQuantity = "quantity"
	ColumnDate     = "date"
	ColumnRegion   = "region"
)

var requiredColumns = []string{ColumnProduct, ColumnPrice, ColumnQuantity, ColumnDate, ColumnRegion}

// rawTable is one source read into memory, header first.
type rawTable struct {
	path    string
	columns map[string]int
	rows    [][]string
}

// cell returns the named column of row, or "" when the row is short.
func (t *rawTable) cell(row []string, column string) string {
	idx := t.columns[column]
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// readSource opens a CSV or XLSX source. A missing file yields
// ErrSourceUnavailable.
func readSource(path string) (*rawTable, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, path)
		}
		return nil, fmt.Errorf("failed to stat source %s: %w", path, err)
	}

	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", "":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrMissingColumn, path)
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%w: '%s' in %s", ErrMissingColumn, col, path)
		}
	}
	return &rawTable{path: path, columns: columns, rows: records[1:]}, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records := make([][]string, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read source %s: %w", path, err)
		}
		records = append(records, row)
	}
	return records, nil
}

// readXLSX reads the first sheet of a workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrMissingColumn, path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}
