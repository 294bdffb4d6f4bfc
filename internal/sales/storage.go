package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no canonical table has been persisted yet.
var ErrNotFound = errors.New("canonical table not found")

// ErrNilTable is returned when trying to store a nil table.
var ErrNilTable = errors.New("nil canonical table")

// ErrMalformedArtifact is returned when a persisted table cannot be decoded.
var ErrMalformedArtifact = errors.New("malformed canonical table")

// ArtifactHeader is the header row of the hand-off artifact.
var ArtifactHeader = []string{"sales", "date", "region"}

// Storage is the main interface for the canonical table hand-off.
type Storage interface {
	Save(table *Table) error
	Load() (*Table, error)
}

// LocalStorage keeps the canonical table in memory.
type LocalStorage struct {
	table *Table
}

// NewLocalStorage instantiates an empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// Returns ErrNilTable if table is nil.
func (l *LocalStorage) Save(table *Table) error {
	if table == nil {
		return ErrNilTable
	}
	l.table = table
	return nil
}

// Load returns the stored table or ErrNotFound.
func (l *LocalStorage) Load() (*Table, error) {
	if l.table == nil {
		return nil, ErrNotFound
	}
	return l.table, nil
}

// FileStorage persists the canonical table as a CSV file.
type FileStorage struct {
	path string
}

// NewFileStorage creates a FileStorage backed by path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the artifact location.
func (f *FileStorage) Path() string {
	return f.path
}

// Save writes the table to a temporary file next to the artifact and renames
// it into place, so readers never observe a partially written file.
func (f *FileStorage) Save(table *Table) error {
	if table == nil {
		return ErrNilTable
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, table); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// Load reads the artifact. A missing file yields ErrNotFound.
func (f *FileStorage) Load() (*Table, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.path)
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// WriteCSV encodes the table as `sales,date,region` rows with two-decimal
// amounts and ISO dates.
func WriteCSV(w io.Writer, table *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ArtifactHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range table.Records() {
		row := []string{r.Amount.StringFixed(2), r.Date.Format(DateLayout), r.Region}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush artifact: %w", err)
	}
	return nil
}

// ReadCSV decodes an artifact produced by WriteCSV.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(ArtifactHeader)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedArtifact)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	for i, col := range ArtifactHeader {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return nil, fmt.Errorf("%w: column %d is '%s', want '%s'", ErrMalformedArtifact, i+1, header[i], col)
		}
	}

	records := make([]Record, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad sales value '%s'", ErrMalformedArtifact, line, row[0])
		}
		date, err := ParseDate(row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedArtifact, line, err)
		}
		records = append(records, Record{Amount: amount, Date: date, Region: NormalizeRegion(row[2])})
	}
	return NewTable(records), nil
}
