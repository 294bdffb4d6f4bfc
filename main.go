package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"morsel_sales/api"
	"morsel_sales/internal/config"
	"morsel_sales/internal/sales"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	// The canonical table is read once; rebuild it with cmd/ingest.
	salesService, err := sales.LoadService(sales.NewFileStorage(cfg.ArtifactPath), logger)
	if err != nil {
		logger.Fatal("canonical table unavailable, run the ingest command first",
			zap.String("artifact", cfg.ArtifactPath), zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	api.InitRoutes(r, salesService, logger, cfg.AllowedOrigins)

	logger.Info("starting server", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}
