package store

import (
	"fmt"

	"github.com/mhazlan/ordready/internal/models"
)

// SaveAccuracyRecords upserts per-horizon validation records for a forecast.
func (s *Store) SaveAccuracyRecords(records []models.AccuracyRecord) error {
	for _, r := range records {
		if _, err := s.db.Exec(`
			INSERT INTO accuracy_records (forecast_id, horizon_days, predicted, actual, error_pct, within_interval)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(forecast_id, horizon_days) DO UPDATE SET
				predicted = excluded.predicted,
				actual = excluded.actual,
				error_pct = excluded.error_pct,
				within_interval = excluded.within_interval
		`, r.ForecastID, r.HorizonDays, r.Predicted, r.Actual, r.ErrorPct, r.WithinConfidenceInterval); err != nil {
			return fmt.Errorf("insert accuracy record: %w", err)
		}
	}
	return nil
}

// AccuracyRecords returns the stored validation records for one forecast,
// ordered by horizon.
func (s *Store) AccuracyRecords(forecastID string) ([]models.AccuracyRecord, error) {
	rows, err := s.db.Query(`
		SELECT forecast_id, horizon_days, predicted, actual, error_pct, within_interval
		FROM accuracy_records
		WHERE forecast_id = ?
		ORDER BY horizon_days ASC
	`, forecastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.AccuracyRecord{}
	for rows.Next() {
		var r models.AccuracyRecord
		if err := rows.Scan(&r.ForecastID, &r.HorizonDays, &r.Predicted, &r.Actual,
			&r.ErrorPct, &r.WithinConfidenceInterval); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
