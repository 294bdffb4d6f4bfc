package sales

import (
	"sort"
	"time"
)

// Table is the canonical sales table. It is sorted by (date, region) when
// built and never modified afterwards, so one instance is shared by every
// request.
type Table struct {
	records []Record
}

// NewTable copies records and orders them by date then region. Ties keep
// their input order so duplicates from overlapping sources stay stable.
func NewTable(records []Record) *Table {
	rows := make([]Record, len(records))
	copy(rows, records)
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Region < rows[j].Region
	})
	return &Table{records: rows}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the ordered records.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Bounds returns the first and last dates in the table.
func (t *Table) Bounds() (first, last time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.records[0].Date, t.records[len(t.records)-1].Date, true
}

// Regions returns the distinct regions present, sorted.
func (t *Table) Regions() []string {
	if t == nil {
		return nil
	}
	return distinctRegions(t.records)
}

func distinctRegions(records []Record) []string {
	seen := make(map[string]struct{})
	regions := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		regions = append(regions, r.Region)
	}
	sort.Strings(regions)
	return regions
}
