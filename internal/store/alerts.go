package store

import (
	"database/sql"
	"time"
)

// AlertRecord is one persisted forecast alert.
type AlertRecord struct {
	ID            int64      `json:"id"`
	ForecastID    string     `json:"forecast_id"`
	Category      string     `json:"category"`
	Severity      string     `json:"severity"`
	PredictedDate string     `json:"predicted_date"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

// ActiveAlerts returns unresolved alerts, newest first. Empty filter values
// match everything.
func (s *Store) ActiveAlerts(severity, category string) ([]AlertRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, forecast_id, category, severity, predicted_date, status, created_at, resolved_at
		FROM alert_history
		WHERE status = 'active'
		  AND (? = '' OR severity = ?)
		  AND (? = '' OR category = ?)
		ORDER BY created_at DESC
		LIMIT 100
	`, severity, severity, category, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []AlertRecord{}
	for rows.Next() {
		var a AlertRecord
		var resolvedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.ForecastID, &a.Category, &a.Severity,
			&a.PredictedDate, &a.Status, &a.CreatedAt, &resolvedAt); err != nil {
			return nil, err
		}
		if resolvedAt.Valid {
			a.ResolvedAt = &resolvedAt.Time
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ResolveAlert marks an alert resolved (or false_positive).
func (s *Store) ResolveAlert(id int64, status string, now time.Time) error {
	_, err := s.db.Exec(`
		UPDATE alert_history SET status = ?, resolved_at = ? WHERE id = ?
	`, status, now.UTC(), id)
	return err
}
