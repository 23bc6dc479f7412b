package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mhazlan/ordready/internal/api"
	"github.com/mhazlan/ordready/internal/forecast"
	"github.com/mhazlan/ordready/internal/models"
	"github.com/mhazlan/ordready/internal/store"

	_ "modernc.org/sqlite"
)

func setupHandler(t *testing.T, predictor api.Predictor) http.Handler {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	engine := &forecast.Engine{Now: func() time.Time {
		return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	}}

	return api.NewServer(st, engine, predictor, 42, "0").Handler()
}

type stubPredictor struct {
	payload []byte
	err     error
}

func (p *stubPredictor) Propose(_ context.Context, _ models.ForecastingInput) ([]byte, error) {
	return p.payload, p.err
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) models.ForecastResult {
	t.Helper()
	var result models.ForecastResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode forecast: %v", err)
	}
	return result
}

func TestHealth(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestGenerateWithSuppliedInput(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/forecasts/generate", map[string]any{
		"input": map[string]any{"current_readiness": 85.0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	result := decodeResult(t, rec)
	if result.Metadata.GeneratedAs != models.GeneratedAsFallback {
		t.Errorf("generated_as = %q, want fallback", result.Metadata.GeneratedAs)
	}
	if len(result.Timeframe.Projections) != 3 || result.Timeframe.Projections[0].Readiness != 84.5 {
		t.Errorf("unexpected projections: %+v", result.Timeframe.Projections)
	}

	// Stored and retrievable.
	rec = doJSON(t, h, http.MethodGet, "/api/forecasts/"+result.ForecastID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	stored := decodeResult(t, rec)
	if stored.ForecastID != result.ForecastID {
		t.Errorf("stored id = %q, want %q", stored.ForecastID, result.ForecastID)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/forecasts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var summaries []store.ForecastSummary
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].ForecastID != result.ForecastID {
		t.Errorf("unexpected summaries: %+v", summaries)
	}
}

func TestGenerateEmptyBodyUsesDemoInput(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/forecasts/generate", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	result := decodeResult(t, rec)
	if len(result.Timeframe.Projections) != 3 {
		t.Errorf("projections = %d, want 3", len(result.Timeframe.Projections))
	}
	if result.Timeframe.CurrentReadiness < 75 || result.Timeframe.CurrentReadiness >= 95 {
		t.Errorf("demo readiness %v outside [75, 95)", result.Timeframe.CurrentReadiness)
	}
}

func TestGenerateDerivesReadinessFromInventory(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/forecasts/generate", map[string]any{
		"input": map[string]any{
			"inventory_snapshot": []map[string]any{
				{"ordnance_category": "Missile", "quantity": 50},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	result := decodeResult(t, rec)
	if result.Timeframe.CurrentReadiness != 50 {
		t.Errorf("current readiness = %v, want 50 derived from inventory", result.Timeframe.CurrentReadiness)
	}
}

func TestGetForecastNotFound(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/forecasts/fcst_missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGenerateWithPredictor(t *testing.T) {
	t.Parallel()
	candidate := []byte(`{"timeframe":{"projections":[
		{"days":30,"readiness":83,"confidence_interval":[78,88],"risk_level":"low"},
		{"days":60,"readiness":82,"confidence_interval":[77,87],"risk_level":"low"},
		{"days":90,"readiness":81,"confidence_interval":[76,86],"risk_level":"low"}
	]},"model":"gpt-4o"}`)
	h := setupHandler(t, &stubPredictor{payload: candidate})

	rec := doJSON(t, h, http.MethodPost, "/api/forecasts/generate", map[string]any{
		"input": map[string]any{"current_readiness": 85.0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	result := decodeResult(t, rec)
	if result.Metadata.GeneratedAs != models.GeneratedAsCandidate {
		t.Errorf("generated_as = %q, want validated candidate", result.Metadata.GeneratedAs)
	}
	if result.Metadata.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", result.Metadata.Model)
	}
}

func TestGenerateFallsBackOnPredictorError(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, &stubPredictor{err: errors.New("service unavailable")})

	rec := doJSON(t, h, http.MethodPost, "/api/forecasts/generate", map[string]any{
		"input": map[string]any{"current_readiness": 85.0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	result := decodeResult(t, rec)
	if result.Metadata.GeneratedAs != models.GeneratedAsFallback {
		t.Errorf("generated_as = %q, want fallback after predictor error", result.Metadata.GeneratedAs)
	}
}

func TestScenarios(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/forecasts/generate", map[string]any{
		"input": map[string]any{"current_readiness": 85.0},
	})
	base := decodeResult(t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/forecasts/"+base.ForecastID+"/scenarios", map[string]any{
		"scenarios": []map[string]any{
			{"name": "supply disruption", "lead_time_increase_days": 30},
			{"name": "high tempo", "exercise_intensity_multiplier": 1.5},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var results []models.ScenarioResult
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].ScenarioName != "supply disruption" {
		t.Errorf("scenario name = %q", results[0].ScenarioName)
	}
	if results[0].BaseReadiness != 85 {
		t.Errorf("base readiness = %v, want 85", results[0].BaseReadiness)
	}
	if len(results[0].TimelineComparison) != 3 {
		t.Errorf("timeline = %d projections, want 3", len(results[0].TimelineComparison))
	}
}

func TestScenariosUnknownForecast(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/forecasts/fcst_missing/scenarios", map[string]any{
		"scenarios": []map[string]any{{"name": "stress"}},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestScenariosInvalidBody(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/forecasts/x/scenarios", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAccuracyFlow(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/forecasts/generate", map[string]any{
		"input": map[string]any{"current_readiness": 85.0},
	})
	base := decodeResult(t, rec)

	// Projections are 84.5 / 84.0 / 83.5; errors 4.5/80 and 6/90 average to
	// a score near 0.9385.
	rec = doJSON(t, h, http.MethodPost, "/api/forecasts/"+base.ForecastID+"/accuracy", map[string]any{
		"actual_readiness_data": map[string]float64{"30": 80.0, "60": 90.0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ForecastID    string                  `json:"forecast_id"`
		AccuracyScore float64                 `json:"accuracy_score"`
		Validation    models.ValidationResult `json:"validation"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ForecastID != base.ForecastID {
		t.Errorf("forecast id = %q, want %q", resp.ForecastID, base.ForecastID)
	}
	if math.Abs(resp.AccuracyScore-0.93854167) > 1e-6 {
		t.Errorf("score = %v, want ~0.93854167", resp.AccuracyScore)
	}
	if len(resp.Validation.Records) != 2 {
		t.Errorf("validation records = %d, want 2", len(resp.Validation.Records))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/forecasts/accuracy/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	var metrics models.AccuracyMetrics
	if err := json.NewDecoder(rec.Body).Decode(&metrics); err != nil {
		t.Fatal(err)
	}
	if math.Abs(metrics.OverallAccuracy-resp.AccuracyScore) > 1e-6 {
		t.Errorf("overall = %v, want %v", metrics.OverallAccuracy, resp.AccuracyScore)
	}
	if metrics.RecentTrend != "stable" {
		t.Errorf("trend = %q, want stable", metrics.RecentTrend)
	}
}

func TestAccuracyMetricsEmpty(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/forecasts/accuracy/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var metrics models.AccuracyMetrics
	if err := json.NewDecoder(rec.Body).Decode(&metrics); err != nil {
		t.Fatal(err)
	}
	if metrics.RecentTrend != "insufficient_data" {
		t.Errorf("trend = %q, want insufficient_data", metrics.RecentTrend)
	}
}

func TestActiveAlertsEndpoint(t *testing.T) {
	t.Parallel()
	h := setupHandler(t, nil)

	// Low readiness produces one alert.
	rec := doJSON(t, h, http.MethodPost, "/api/forecasts/generate", map[string]any{
		"input": map[string]any{"current_readiness": 60.0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/alerts/active", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("alerts status = %d, want 200", rec.Code)
	}
	var alerts []store.AlertRecord
	if err := json.NewDecoder(rec.Body).Decode(&alerts); err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 || alerts[0].Category != "General Ordnance" {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/alerts/active?severity=critical", nil)
	alerts = nil
	if err := json.NewDecoder(rec.Body).Decode(&alerts); err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 0 {
		t.Errorf("severity filter should exclude medium alerts, got %+v", alerts)
	}
}
