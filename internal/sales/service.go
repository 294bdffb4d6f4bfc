package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Error para rangos de fechas invertidos
var ErrInvalidRange = errors.New("invalid date range")

// Error para regiones fuera del filtro
var ErrUnrecognizedRegion = errors.New("unrecognized region")

// ErrInvalidDate is returned for dates that are not ISO-8601 calendar dates.
var ErrInvalidDate = errors.New("invalid date")

// ErrNoData is returned when the canonical table holds no records at all.
// It is distinct from a valid filter that matches nothing.
var ErrNoData = errors.New("no sales data loaded")

// Service answers filter requests against one immutable canonical table.
type Service struct {
	table  *Table
	logger *zap.Logger
}

// Metadata describes the loaded table for building filter controls.
type Metadata struct {
	FirstDate     string   `json:"first_date,omitempty"`
	LastDate      string   `json:"last_date,omitempty"`
	RecordCount   int      `json:"record_count"`
	FilterRegions []Region `json:"filter_regions"`
	DataRegions   []string `json:"data_regions"`
	CutoverDate   string   `json:"cutover_date"`
}

// NewService creates a new Service over table.
func NewService(table *Table, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
		defer logger.Sync() // flushes buffer, if any
	}

	return &Service{
		table:  table,
		logger: logger,
	}
}

// LoadService reads the canonical table once from storage and wraps it.
func LoadService(storage Storage, logger *zap.Logger) (*Service, error) {
	table, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load canonical table: %w", err)
	}
	return NewService(table, logger), nil
}

// Recompute restricts the service table to criteria and aggregates it.
func (s *Service) Recompute(criteria Criteria) (*AggregateResult, error) {
	if s.table.Len() == 0 {
		return nil, ErrNoData
	}

	result, err := Recompute(s.table, criteria)
	if err != nil {
		s.logger.Warn("Rejected filter request", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Sales recompute completed",
		zap.Stringp("start_filter", formatOptionalDate(criteria.Start)),
		zap.Stringp("end_filter", formatOptionalDate(criteria.End)),
		zap.String("region_filter", string(criteria.Region)),
		zap.Int("results_count", result.Stats.RecordCount),
		zap.Bool("cutover_in_range", result.Comparison != nil),
	)
	return result, nil
}

// Metadata reports the table bounds and the regions available for filtering.
func (s *Service) Metadata() Metadata {
	m := Metadata{
		RecordCount:   s.table.Len(),
		FilterRegions: FilterRegions,
		DataRegions:   s.table.Regions(),
		CutoverDate:   CutoverDate.Format(DateLayout),
	}
	if m.DataRegions == nil {
		m.DataRegions = []string{}
	}
	if first, last, ok := s.table.Bounds(); ok {
		m.FirstDate = first.Format(DateLayout)
		m.LastDate = last.Format(DateLayout)
	}
	return m
}

// Recompute derives a fresh AggregateResult from table and criteria. It
// validates criteria before touching the table and never mutates it.
func Recompute(table *Table, criteria Criteria) (*AggregateResult, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	restricted := make([]Record, 0)
	total := decimal.Zero
	for _, r := range table.Records() {
		if !criteria.matches(r) {
			continue
		}
		restricted = append(restricted, r)
		total = total.Add(r.Amount)
	}

	result := &AggregateResult{
		Records: restricted,
		Series:  groupByRegion(restricted),
		Stats: Stats{
			TotalSales:  total,
			RecordCount: len(restricted),
		},
		Comparison: compareCutover(restricted),
	}
	if len(restricted) > 0 {
		avg := total.Div(decimal.NewFromInt(int64(len(restricted))))
		result.Stats.AverageSales = &avg
	}
	return result, nil
}

// groupByRegion keeps date order inside each region; regions come out sorted.
func groupByRegion(records []Record) []RegionSeries {
	index := make(map[string][]Point)
	for _, r := range records {
		index[r.Region] = append(index[r.Region], Point{
			Date:  r.Date.Format(DateLayout),
			Sales: r.Amount,
		})
	}
	series := make([]RegionSeries, 0, len(index))
	for _, region := range distinctRegions(records) {
		series = append(series, RegionSeries{Region: region, Points: index[region]})
	}
	return series
}

// compareCutover splits records around CutoverDate when it lies within the
// records' own date span. Records dated on the cutover belong to "after".
func compareCutover(records []Record) *Comparison {
	if len(records) == 0 {
		return nil
	}
	first, last := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	if CutoverDate.Before(first) || CutoverDate.After(last) {
		return nil
	}

	before, after := decimal.Zero, decimal.Zero
	for _, r := range records {
		if r.Date.Before(CutoverDate) {
			before = before.Add(r.Amount)
		} else {
			after = after.Add(r.Amount)
		}
	}

	c := &Comparison{
		BeforeTotal: before,
		AfterTotal:  after,
		Delta:       after.Sub(before).Abs(),
		Direction:   AfterLowerOrEqual,
	}
	if after.GreaterThan(before) {
		c.Direction = AfterHigher
	}
	return c
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
