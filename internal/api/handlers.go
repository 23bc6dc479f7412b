package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/mhazlan/ordready/internal/accuracy"
	"github.com/mhazlan/ordready/internal/analysis"
	"github.com/mhazlan/ordready/internal/metrics"
	"github.com/mhazlan/ordready/internal/models"
	"github.com/mhazlan/ordready/internal/scenario"
)

type generateRequest struct {
	Input *models.ForecastingInput `json:"input,omitempty"`
}

// handleGenerate produces and stores a forecast. When the request carries no
// input, a synthetic demo input is used. When a predictor is configured, its
// candidate goes through engine validation; any failure just means the
// deterministic fallback runs.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var input models.ForecastingInput
	if req.Input != nil {
		input = *req.Input
	} else {
		input = s.demoInput()
	}
	if input.CurrentReadiness == 0 && len(input.InventorySnapshot) > 0 {
		input.CurrentReadiness = analysis.CurrentReadiness(input.InventorySnapshot)
	}

	var candidate []byte
	if s.predictor != nil {
		payload, err := s.predictor.Propose(r.Context(), input)
		if err != nil {
			log.Printf("prediction unavailable, using fallback: %v", err)
		} else {
			candidate = payload
		}
	}

	result := s.engine.Generate(input, candidate)
	metrics.ForecastsGenerated.WithLabelValues(result.Metadata.GeneratedAs).Inc()

	if err := s.store.SaveForecast(input, result); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store forecast")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	summaries, err := s.store.ListForecasts(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list forecasts")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	result, _, err := s.store.GetForecast(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve forecast")
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "forecast not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type scenarioRequest struct {
	Scenarios []models.ScenarioParameters `json:"scenarios"`
}

// handleScenarios re-runs the engine on stress-transformed copies of a stored
// forecast's input and compares each run to the baseline.
func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	base, input, err := s.store.GetForecast(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve forecast")
		return
	}
	if base == nil {
		writeError(w, http.StatusNotFound, "base forecast not found")
		return
	}

	results := make([]models.ScenarioResult, 0, len(req.Scenarios))
	for _, params := range req.Scenarios {
		modified := scenario.Apply(*input, withScenarioDefaults(params))
		stressed := s.engine.Generate(modified, nil)
		results = append(results, scenario.BuildResult(params, *base, stressed))
		metrics.ScenariosAnalyzed.Inc()
	}

	writeJSON(w, http.StatusOK, results)
}

// withScenarioDefaults treats multipliers omitted from the request body as
// no-ops rather than zeros.
func withScenarioDefaults(params models.ScenarioParameters) models.ScenarioParameters {
	if params.ExerciseIntensityMultiplier == 0 {
		params.ExerciseIntensityMultiplier = 1.0
	}
	if params.SupplierReliabilityFactor == 0 {
		params.SupplierReliabilityFactor = 1.0
	}
	if params.WeatherImpactFactor == 0 {
		params.WeatherImpactFactor = 1.0
	}
	if params.DemandVolatilityMultiplier == 0 {
		params.DemandVolatilityMultiplier = 1.0
	}
	return params
}

type accuracyRequest struct {
	ActualReadiness map[string]float64 `json:"actual_readiness_data"`
	Notes           string             `json:"notes,omitempty"`
}

type accuracyResponse struct {
	ForecastID    string                  `json:"forecast_id"`
	AccuracyScore float64                 `json:"accuracy_score"`
	Validation    models.ValidationResult `json:"validation"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// handleAccuracy scores a stored forecast against observed actuals and
// persists both the score and the per-horizon records.
func (s *Server) handleAccuracy(w http.ResponseWriter, r *http.Request) {
	var req accuracyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, _, err := s.store.GetForecast(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve forecast")
		return
	}
	if stored == nil {
		writeError(w, http.StatusNotFound, "forecast not found")
		return
	}

	actuals := make(map[int]float64, len(req.ActualReadiness))
	for k, v := range req.ActualReadiness {
		days, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		actuals[days] = v
	}

	score := accuracy.Score(*stored, actuals)
	validation := accuracy.Validate(*stored, actuals)

	now := time.Now()
	if err := s.store.UpdateAccuracy(stored.ForecastID, score, now); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update accuracy")
		return
	}
	if err := s.store.SaveAccuracyRecords(validation.Records); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store accuracy records")
		return
	}
	metrics.AccuracyUpdates.Inc()

	writeJSON(w, http.StatusOK, accuracyResponse{
		ForecastID:    stored.ForecastID,
		AccuracyScore: score,
		Validation:    validation,
		UpdatedAt:     now,
	})
}

func (s *Server) handleAccuracyMetrics(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.AccuracyHistory()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load accuracy history")
		return
	}
	writeJSON(w, http.StatusOK, accuracy.Aggregate(history))
}

func (s *Server) handleActiveAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.ActiveAlerts(r.URL.Query().Get("severity"), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
