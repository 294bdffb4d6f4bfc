package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"morsel_sales/internal/config"
	"morsel_sales/internal/ingest"
	"morsel_sales/internal/sales"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline := ingest.NewPipeline(sales.NewFileStorage(cfg.ArtifactPath), logger)
	report, err := pipeline.Run(ctx, cfg.Sources)
	if err != nil {
		logger.Error("ingestion failed, no artifact written", zap.Strings("sources", cfg.Sources), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	for _, region := range report.Regions {
		logger.Info("region summary",
			zap.String("region", region.Region),
			zap.Int("count", region.Count),
			zap.String("sum", region.Total.StringFixed(2)),
			zap.String("mean", region.Mean.StringFixed(2)),
		)
	}
	logger.Info("processing complete",
		zap.String("run_id", report.RunID),
		zap.Int("total_records", report.RecordCount),
		zap.String("output", report.Artifact),
	)
}
