package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mhazlan/ordready/internal/models"
)

// ForecastSummary is the listing row for stored forecasts.
type ForecastSummary struct {
	ForecastID          string    `json:"forecast_id"`
	GeneratedAt         time.Time `json:"generated_at"`
	GeneratedAs         string    `json:"generated_as"`
	CurrentReadiness    float64   `json:"current_readiness"`
	ProjectedReadiness  *float64  `json:"projected_readiness_90d"`
	CriticalAlertsCount int       `json:"critical_alerts_count"`
	AccuracyScore       *float64  `json:"accuracy_score"`
}

// SaveForecast stores a forecast document along with the input it was
// generated from, and records its alerts in the alert history.
func (s *Store) SaveForecast(input models.ForecastingInput, result models.ForecastResult) error {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO forecast_history (forecast_id, generated_at, generated_as, current_readiness, input_json, result_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(forecast_id) DO UPDATE SET
			generated_at = excluded.generated_at,
			generated_as = excluded.generated_as,
			current_readiness = excluded.current_readiness,
			input_json = excluded.input_json,
			result_json = excluded.result_json
	`, result.ForecastID, result.GeneratedAt, result.Metadata.GeneratedAs,
		result.Timeframe.CurrentReadiness, string(inputJSON), string(resultJSON))
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}

	// Regenerating a forecast replaces its alert rows.
	if _, err := s.db.Exec(`DELETE FROM alert_history WHERE forecast_id = ?`, result.ForecastID); err != nil {
		return fmt.Errorf("clear alerts: %w", err)
	}
	for _, alert := range result.CriticalAlerts {
		if _, err := s.db.Exec(`
			INSERT INTO alert_history (forecast_id, category, severity, predicted_date, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, result.ForecastID, alert.Category, string(alert.Severity), alert.ExpectedShortageDate,
			result.GeneratedAt.UTC()); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}

	return nil
}

// GetForecast returns a stored forecast and its input, or nil when the id is
// unknown.
func (s *Store) GetForecast(forecastID string) (*models.ForecastResult, *models.ForecastingInput, error) {
	row := s.db.QueryRow(`
		SELECT input_json, result_json FROM forecast_history WHERE forecast_id = ?
	`, forecastID)

	var inputJSON, resultJSON string
	err := row.Scan(&inputJSON, &resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var result models.ForecastResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, nil, fmt.Errorf("unmarshal result: %w", err)
	}
	var input models.ForecastingInput
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return nil, nil, fmt.Errorf("unmarshal input: %w", err)
	}

	return &result, &input, nil
}

// ListForecasts returns summaries of recent forecasts, newest first.
func (s *Store) ListForecasts(limit, offset int) ([]ForecastSummary, error) {
	rows, err := s.db.Query(`
		SELECT forecast_id, generated_at, generated_as, current_readiness, result_json, accuracy_score
		FROM forecast_history
		ORDER BY generated_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []ForecastSummary{}
	for rows.Next() {
		var sum ForecastSummary
		var resultJSON string
		var accuracy sql.NullFloat64
		if err := rows.Scan(&sum.ForecastID, &sum.GeneratedAt, &sum.GeneratedAs,
			&sum.CurrentReadiness, &resultJSON, &accuracy); err != nil {
			return nil, err
		}
		if accuracy.Valid {
			v := accuracy.Float64
			sum.AccuracyScore = &v
		}

		var result models.ForecastResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err == nil {
			sum.CriticalAlertsCount = len(result.CriticalAlerts)
			if n := len(result.Timeframe.Projections); n > 0 {
				v := result.Timeframe.Projections[n-1].Readiness
				sum.ProjectedReadiness = &v
			}
		}

		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// UpdateAccuracy records a forecast's accuracy score once actuals arrive.
func (s *Store) UpdateAccuracy(forecastID string, score float64, now time.Time) error {
	_, err := s.db.Exec(`
		UPDATE forecast_history
		SET accuracy_score = ?, accuracy_updated_at = ?
		WHERE forecast_id = ?
	`, score, now.UTC(), forecastID)
	return err
}

// AccuracyHistory returns all recorded accuracy scores ordered by when their
// forecasts were generated, oldest first.
func (s *Store) AccuracyHistory() ([]float64, error) {
	rows, err := s.db.Query(`
		SELECT accuracy_score FROM forecast_history
		WHERE accuracy_score IS NOT NULL
		ORDER BY generated_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}
