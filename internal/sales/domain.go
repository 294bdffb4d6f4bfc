package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 calendar date layout used on every boundary.
const DateLayout = "2006-01-02"

// TargetProduct is the only product line kept by ingestion.
const TargetProduct = "pink morsel"

// CutoverDate splits a range into before/after partitions. It is the day the
// Pink Morsel price increased.
var CutoverDate = time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC)

// Region is a geographic category attached to each sale.
type Region string

const (
	RegionAll   Region = "all"
	RegionNorth Region = "north"
	RegionSouth Region = "south"
	RegionEast  Region = "east"
	RegionWest  Region = "west"
)

// FilterRegions is the curated set accepted as a filter, in display order.
var FilterRegions = []Region{RegionAll, RegionNorth, RegionSouth, RegionEast, RegionWest}

// ParseRegion validates a filter region. An empty value means "all".
func ParseRegion(s string) (Region, error) {
	if s == "" {
		return RegionAll, nil
	}
	r := Region(NormalizeRegion(s))
	for _, known := range FilterRegions {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnrecognizedRegion, s)
}

// NormalizeRegion lowercases a raw region value the way canonical storage does.
func NormalizeRegion(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Record is one canonical sale.
type Record struct {
	Amount decimal.Decimal `json:"sales"`
	Date   time.Time       `json:"date"`
	Region string          `json:"region"`
}

// Criteria is the filter applied on each recomputation. Nil bounds are unbounded.
type Criteria struct {
	Start  *time.Time
	End    *time.Time
	Region Region
}

// NewCriteria parses request values into Criteria. Dates are ISO-8601 or empty.
func NewCriteria(start, end, region string) (Criteria, error) {
	var c Criteria
	var err error
	if c.Start, err = parseOptionalDate(start); err != nil {
		return Criteria{}, err
	}
	if c.End, err = parseOptionalDate(end); err != nil {
		return Criteria{}, err
	}
	if c.Region, err = ParseRegion(region); err != nil {
		return Criteria{}, err
	}
	if err := c.Validate(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// Validate rejects ranges whose start is after their end and unknown regions.
func (c Criteria) Validate() error {
	if c.Start != nil && c.End != nil && c.Start.After(*c.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			c.Start.Format(DateLayout), c.End.Format(DateLayout))
	}
	if _, err := ParseRegion(string(c.Region)); err != nil {
		return err
	}
	return nil
}

func (c Criteria) matches(r Record) bool {
	if c.Start != nil && r.Date.Before(*c.Start) {
		return false
	}
	if c.End != nil && r.Date.After(*c.End) {
		return false
	}
	region := Region(NormalizeRegion(string(c.Region)))
	return region == RegionAll || region == "" || r.Region == string(region)
}

// ParseDate parses an ISO-8601 calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: '%s'", ErrInvalidDate, s)
	}
	return t, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Point is one sample of a region series.
type Point struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// RegionSeries is the restricted records of one region, in date order.
type RegionSeries struct {
	Region string  `json:"region"`
	Points []Point `json:"points"`
}

// Direction reports which side of the cutover sold more.
type Direction string

const (
	AfterHigher       Direction = "after-higher"
	AfterLowerOrEqual Direction = "after-lower-or-equal"
)

// Comparison holds before/after totals around CutoverDate.
type Comparison struct {
	BeforeTotal decimal.Decimal `json:"before_total"`
	AfterTotal  decimal.Decimal `json:"after_total"`
	Delta       decimal.Decimal `json:"delta"`
	Direction   Direction       `json:"direction"`
}

// Stats is the summary bundle of a restriction. AverageSales is nil when
// RecordCount is zero.
type Stats struct {
	TotalSales   decimal.Decimal  `json:"total_sales"`
	AverageSales *decimal.Decimal `json:"average_sales"`
	RecordCount  int              `json:"record_count"`
}

// AggregateResult is recomputed from scratch for every Criteria.
type AggregateResult struct {
	Records    []Record       `json:"-"`
	Series     []RegionSeries `json:"series"`
	Stats      Stats          `json:"stats"`
	Comparison *Comparison    `json:"comparison,omitempty"`
}
