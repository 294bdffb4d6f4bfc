package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"morsel_sales/internal/sales"
)

const artifact = "sales,date,region\n" +
	"6.00,2021-01-10,north\n" +
	"4.00,2021-01-12,south\n" +
	"9.00,2021-01-20,north\n" +
	"1.00,2021-01-21,south\n"

func initRoutesTests(t *testing.T, body string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	table, err := sales.ReadCSV(strings.NewReader(body))
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	InitRoutes(router, sales.NewService(table, logger), logger, []string{"http://localhost:3000"})
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type dashboardBody struct {
	Series []sales.RegionSeries `json:"series"`
	Stats  struct {
		TotalSales   decimal.Decimal  `json:"total_sales"`
		AverageSales *decimal.Decimal `json:"average_sales"`
		RecordCount  int              `json:"record_count"`
	} `json:"stats"`
	Comparison     *sales.Comparison `json:"comparison"`
	CutoverInRange bool              `json:"cutover_in_range"`
	Insight        string            `json:"insight"`
	Note           string            `json:"note"`
}

// TestDashboard_FullFlow exercises the dashboard as the front end drives it.
func TestDashboard_FullFlow(t *testing.T) {
	router := initRoutesTests(t, artifact)

	t.Run("GET_Meta", func(t *testing.T) {
		w := get(router, "/sales/meta")
		assert.Equal(t, http.StatusOK, w.Code)

		var meta sales.Metadata
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
		assert.Equal(t, "2021-01-10", meta.FirstDate)
		assert.Equal(t, "2021-01-21", meta.LastDate)
		assert.Equal(t, []string{"north", "south"}, meta.DataRegions)
		assert.Len(t, meta.FilterRegions, 5)
	})

	t.Run("GET_Dashboard_AllRegions", func(t *testing.T) {
		w := get(router, "/sales/dashboard?start_date=2021-01-01&end_date=2021-01-31&region=all")
		assert.Equal(t, http.StatusOK, w.Code)

		var body dashboardBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 4, body.Stats.RecordCount)
		assert.True(t, decimal.NewFromInt(20).Equal(body.Stats.TotalSales))
		require.NotNil(t, body.Stats.AverageSales)
		assert.True(t, decimal.NewFromInt(5).Equal(*body.Stats.AverageSales))
		require.Len(t, body.Series, 2)
		assert.Equal(t, "north", body.Series[0].Region)

		require.NotNil(t, body.Comparison)
		assert.True(t, body.CutoverInRange)
		assert.True(t, decimal.NewFromInt(10).Equal(body.Comparison.BeforeTotal))
		assert.True(t, decimal.NewFromInt(10).Equal(body.Comparison.AfterTotal))
		assert.Equal(t, sales.AfterLowerOrEqual, body.Comparison.Direction)
		assert.Contains(t, body.Insight, "LOWER")
		assert.Empty(t, body.Note)
	})

	t.Run("GET_Dashboard_Region", func(t *testing.T) {
		w := get(router, "/sales/dashboard?region=north")
		assert.Equal(t, http.StatusOK, w.Code)

		var body dashboardBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Stats.RecordCount)
		require.Len(t, body.Series, 1)
		assert.Equal(t, "north", body.Series[0].Region)
		require.NotNil(t, body.Comparison)
		assert.Equal(t, sales.AfterHigher, body.Comparison.Direction)
		assert.Equal(t, "Sales were HIGHER after the price increase! Sales increased by $3.00 after January 15, 2021.", body.Insight)
	})

	t.Run("GET_Dashboard_NoMatches", func(t *testing.T) {
		w := get(router, "/sales/dashboard?start_date=2021-01-01&end_date=2021-01-05")
		assert.Equal(t, http.StatusOK, w.Code)

		var body dashboardBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 0, body.Stats.RecordCount)
		assert.Nil(t, body.Stats.AverageSales)
		assert.Nil(t, body.Comparison)
		assert.False(t, body.CutoverInRange)
		assert.Equal(t, sales.NoCutoverInsight, body.Insight)
		assert.Equal(t, sales.NoCutoverNote, body.Note)
	})
}

func TestDashboard_BadRequests(t *testing.T) {
	router := initRoutesTests(t, artifact)

	paths := map[string]string{
		"inverted range":  "/sales/dashboard?start_date=2021-01-31&end_date=2021-01-01",
		"unknown region":  "/sales/dashboard?region=central",
		"malformed date":  "/sales/dashboard?start_date=31-01-2021",
		"impossible date": "/sales/dashboard?end_date=2021-02-30",
	}
	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			w := get(router, path)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestDashboard_NoData(t *testing.T) {
	router := initRoutesTests(t, "sales,date,region\n")

	w := get(router, "/sales/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPingAndMetrics(t *testing.T) {
	router := initRoutesTests(t, artifact)

	w := get(router, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	get(router, "/sales/dashboard")
	get(router, "/sales/dashboard?region=central")

	w = get(router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sales_dashboard_recomputes_total{outcome="ok"} 1`)
	assert.Contains(t, w.Body.String(), `sales_dashboard_recomputes_total{outcome="bad_request"} 1`)
	assert.Contains(t, w.Body.String(), "sales_canonical_table_records 4")
}

func TestCORS(t *testing.T) {
	router := initRoutesTests(t, artifact)

	req := httptest.NewRequest(http.MethodGet, "/sales/meta", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
