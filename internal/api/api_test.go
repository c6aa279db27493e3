package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/forecast"
	"github.com/buildstok/inventory/backend-go/internal/repository/memory"
	"github.com/buildstok/inventory/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	materials := memory.NewMaterialRepository()
	consumption := memory.NewConsumptionRepository()
	ctx := context.Background()

	require.NoError(t, materials.CreateMaterial(ctx, &domain.Material{ID: "cement", Name: "Cement", CurrentStock: 100}))

	now := time.Now()
	for i := 0; i < 60; i++ {
		e := &domain.ConsumptionEvent{
			MaterialID:   "cement",
			QuantityUsed: 5,
			RecordedAt:   now.Add(-time.Duration(i)*24*time.Hour - time.Hour),
		}
		require.NoError(t, consumption.RecordConsumption(ctx, e))
	}

	engine := forecast.NewEngine(materials, consumption, 2)
	svc := service.NewForecastService(engine, nil)

	return NewRouter(&Services{ForecastService: svc}, nil)
}

func doRequest(t *testing.T, router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetRecords(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/forecast/records")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Records []domain.ForecastRecord `json:"records"`
		Total   int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "cement", body.Records[0].MaterialID)
	assert.True(t, body.Records[0].NeedsReorder)
}

func TestGetProjection(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/forecast/materials/cement/projection")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		MaterialID string                  `json:"material_id"`
		Points     []domain.ProjectionPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "cement", body.MaterialID)
	assert.Len(t, body.Points, 30)
	assert.Equal(t, float64(100), body.Points[0].ExpectedStock)
}

func TestGetProjection_UnknownMaterial(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/forecast/materials/nope/projection")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRate_DaysQuery(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/forecast/materials/cement/rate?days=60")
	require.Equal(t, http.StatusOK, w.Code)

	var est domain.ConsumptionRateEstimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &est))
	assert.Equal(t, 60, est.SampleCount)
	assert.InDelta(t, 5, est.DailyAverage, 1e-9)
}

func TestGetTop_LimitQuery(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/forecast/top?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Records []domain.ForecastRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Records, 1)
}

func TestGetSummary(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/forecast/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var summary domain.ForecastSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Total)
}

func TestExport_NotConfigured(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/forecast/export")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestInvalidate(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/forecast/invalidate")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	parsed, allowAll := normalizeAllowedOrigins([]string{"http://a.example, http://b.example", " ", "*"})
	assert.True(t, allowAll)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, parsed)
}
