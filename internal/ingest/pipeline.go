package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"morsel_sales/internal/sales"
)

// Pipeline turns raw daily sources into the canonical sales table and
// persists it through a sales.Storage.
type Pipeline struct {
	storage sales.Storage
	logger  *zap.Logger
	product string
}

// SourceReport describes what one source contributed.
type SourceReport struct {
	Path      string `json:"path"`
	Available bool   `json:"available"`
	RowsRead  int    `json:"rows_read"`
	RowsKept  int    `json:"rows_kept"`
}

// RegionSummary is the per-region count, sum and mean of the built table.
type RegionSummary struct {
	Region string          `json:"region"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	Mean   decimal.Decimal `json:"mean"`
}

// Report summarizes one ingestion run.
type Report struct {
	RunID       string          `json:"run_id"`
	Sources     []SourceReport  `json:"sources"`
	Missing     []string        `json:"missing"`
	RecordCount int             `json:"record_count"`
	Regions     []RegionSummary `json:"regions"`
	Artifact    string          `json:"artifact,omitempty"`
}

type sourceResult struct {
	report  SourceReport
	records []sales.Record
}

// NewPipeline creates a Pipeline that keeps sales.TargetProduct rows.
func NewPipeline(storage sales.Storage, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger, _ = zap.NewProduction()
		defer logger.Sync()
	}
	return &Pipeline{
		storage: storage,
		logger:  logger,
		product: sales.TargetProduct,
	}
}

// Run builds the canonical table from sources and saves it. Nothing is saved
// when any step fails.
func (p *Pipeline) Run(ctx context.Context, sources []string) (*Report, error) {
	table, report, err := p.Build(ctx, sources)
	if err != nil {
		return report, err
	}
	if err := p.storage.Save(table); err != nil {
		p.logger.Error("failed to save canonical table", zap.String("run_id", report.RunID), zap.Error(err))
		return report, fmt.Errorf("failed to save canonical table: %w", err)
	}
	if fs, ok := p.storage.(*sales.FileStorage); ok {
		report.Artifact = fs.Path()
	}

	p.logger.Info("canonical table saved",
		zap.String("run_id", report.RunID),
		zap.Int("record_count", report.RecordCount),
		zap.Strings("missing_sources", report.Missing),
		zap.String("artifact", report.Artifact),
	)
	return report, nil
}

// Build reads every source and returns the canonical table without
// persisting it. Sources are read concurrently; their rows are concatenated
// in the order given.
func (p *Pipeline) Build(ctx context.Context, sources []string) (*sales.Table, *Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Sources: make([]SourceReport, 0, len(sources)),
		Missing: make([]string, 0),
		Regions: make([]RegionSummary, 0),
	}

	results := make([]sourceResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range sources {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.processSource(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error("ingestion aborted", zap.String("run_id", report.RunID), zap.Error(err))
		return nil, report, err
	}

	records := make([]sales.Record, 0)
	for _, res := range results {
		report.Sources = append(report.Sources, res.report)
		if !res.report.Available {
			report.Missing = append(report.Missing, res.report.Path)
		}
		records = append(records, res.records...)
	}

	if len(report.Missing) > 0 && len(report.Missing) < len(sources) {
		p.logger.Warn("some sources are unavailable",
			zap.String("run_id", report.RunID),
			zap.Strings("missing_sources", report.Missing),
			zap.Int("available_sources", len(sources)-len(report.Missing)),
		)
	}
	if len(records) == 0 {
		p.logger.Warn("no data was processed",
			zap.String("run_id", report.RunID),
			zap.Int("sources", len(sources)),
			zap.Int("missing_sources", len(report.Missing)),
		)
		return nil, report, ErrEmptyResult
	}

	table := sales.NewTable(records)
	report.RecordCount = table.Len()
	report.Regions = summarizeRegions(table)
	return table, report, nil
}

func (p *Pipeline) processSource(path string) (sourceResult, error) {
	res := sourceResult{report: SourceReport{Path: path}}

	raw, err := readSource(path)
	if errors.Is(err, ErrSourceUnavailable) {
		p.logger.Warn("source not found, skipping", zap.String("source", path))
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.report.Available = true
	res.report.RowsRead = len(raw.rows)

	records, err := p.normalize(raw)
	if err != nil {
		return res, err
	}
	res.records = records
	res.report.RowsKept = len(records)

	if len(records) == 0 {
		p.logger.Info("no target product records in source",
			zap.String("source", path), zap.String("product", p.product))
	} else {
		p.logger.Info("processed source",
			zap.String("source", path), zap.Int("rows_read", len(raw.rows)), zap.Int("rows_kept", len(records)))
	}
	return res, nil
}

// normalize filters raw rows to the target product and projects them to
// canonical records. The first bad value aborts the source.
func (p *Pipeline) normalize(raw *rawTable) ([]sales.Record, error) {
	records := make([]sales.Record, 0)
	for i, row := range raw.rows {
		line := i + 2
		if strings.ToLower(raw.cell(row, ColumnProduct)) != p.product {
			continue
		}

		priceText := raw.cell(row, ColumnPrice)
		price, err := ParsePrice(priceText)
		if err != nil {
			return nil, &RowError{Source: raw.path, Line: line, Column: ColumnPrice, Value: priceText, Err: ErrMalformedPrice}
		}

		qtyText := raw.cell(row, ColumnQuantity)
		qty, err := strconv.ParseInt(strings.TrimSpace(qtyText), 10, 64)
		if err != nil {
			return nil, &RowError{Source: raw.path, Line: line, Column: ColumnQuantity, Value: qtyText, Err: ErrMalformedQuantity}
		}

		dateText := raw.cell(row, ColumnDate)
		date, err := sales.ParseDate(dateText)
		if err != nil {
			return nil, &RowError{Source: raw.path, Line: line, Column: ColumnDate, Value: dateText, Err: ErrMalformedDate}
		}

		records = append(records, sales.Record{
			Amount: price.Mul(decimal.NewFromInt(qty)),
			Date:   date,
			Region: sales.NormalizeRegion(raw.cell(row, ColumnRegion)),
		})
	}
	return records, nil
}

func summarizeRegions(table *sales.Table) []RegionSummary {
	totals := make(map[string]*RegionSummary)
	for _, r := range table.Records() {
		s, ok := totals[r.Region]
		if !ok {
			s = &RegionSummary{Region: r.Region, Total: decimal.Zero}
			totals[r.Region] = s
		}
		s.Count++
		s.Total = s.Total.Add(r.Amount)
	}
	out := make([]RegionSummary, 0, len(totals))
	for _, s := range totals {
		s.Mean = s.Total.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}
