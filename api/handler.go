package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"morsel_sales/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for the dashboard.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
	metrics      *metrics
}

// dashboardQuery are the filter inputs of the dashboard.
type dashboardQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Region    string `form:"region"`
}

// dashboardResponse is the figure-ready series plus the stats bundle.
type dashboardResponse struct {
	Series         []sales.RegionSeries `json:"series"`
	Stats          sales.Stats          `json:"stats"`
	Comparison     *sales.Comparison    `json:"comparison,omitempty"`
	CutoverDate    string               `json:"cutover_date"`
	CutoverInRange bool                 `json:"cutover_in_range"`
	Insight        string               `json:"insight"`
	Note           string               `json:"note,omitempty"`
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger, m *metrics) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
		metrics:      m,
	}
}

// handleDashboard handles the GET /sales/dashboard endpoint.
func (h *salesHandler) handleDashboard(ctx *gin.Context) {
	var q dashboardQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		h.logger.Warn("failed to bind dashboard query", zap.Error(err))
		h.metrics.observe(outcomeBadRequest)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	criteria, err := sales.NewCriteria(q.StartDate, q.EndDate, q.Region)
	if err != nil {
		h.fail(ctx, q, err)
		return
	}

	result, err := h.salesService.Recompute(criteria)
	if err != nil {
		h.fail(ctx, q, err)
		return
	}

	resp := dashboardResponse{
		Series:         result.Series,
		Stats:          result.Stats,
		Comparison:     result.Comparison,
		CutoverDate:    sales.CutoverDate.Format(sales.DateLayout),
		CutoverInRange: result.Comparison != nil,
		Insight:        sales.Insight(result.Comparison),
	}
	if result.Comparison == nil {
		resp.Note = sales.NoCutoverNote
	}
	h.metrics.observe(outcomeOK)
	ctx.JSON(http.StatusOK, resp)
}

// handleMetadata handles the GET /sales/meta endpoint.
func (h *salesHandler) handleMetadata(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.salesService.Metadata())
}

func (h *salesHandler) fail(ctx *gin.Context, q dashboardQuery, err error) {
	h.logger.Error("Error recomputing dashboard",
		zap.String("start_filter", q.StartDate),
		zap.String("end_filter", q.EndDate),
		zap.String("region_filter", q.Region),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, sales.ErrInvalidRange),
		errors.Is(err, sales.ErrUnrecognizedRegion),
		errors.Is(err, sales.ErrInvalidDate):
		h.metrics.observe(outcomeBadRequest)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrNoData):
		h.metrics.observe(outcomeNoData)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.metrics.observe(outcomeError)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recompute dashboard"})
	}
}
