// Package accuracy scores stored forecasts against later-observed readiness
// values and summarizes accuracy history across forecasts.
package accuracy

import (
	"math"

	"github.com/mhazlan/ordready/internal/models"
)

const (
	// Trend detection compares the mean of this many recent scores against
	// the mean of everything earlier.
	trendWindow    = 5
	trendThreshold = 0.05
)

// Per-horizon accuracy decays by fixed factors relative to overall accuracy.
// Placeholder constants until enough per-horizon history accumulates to
// derive them from data.
var horizonDegradation = map[int]float64{
	30: 0.95,
	60: 0.90,
	90: 0.85,
}

// Score computes a 0-1 accuracy score for a stored forecast given actual
// readiness values keyed by horizon days. Horizons missing from either side
// are ignored; actuals of zero are excluded from the average since their
// percentage error is undefined. No overlap scores 0.
func Score(stored models.ForecastResult, actuals map[int]float64) float64 {
	var errors []float64
	for _, p := range stored.Timeframe.Projections {
		actual, ok := actuals[p.Days]
		if !ok || actual == 0 {
			continue
		}
		errors = append(errors, math.Abs(p.Readiness-actual)/actual)
	}
	if len(errors) == 0 {
		return 0.0
	}

	var sum float64
	for _, e := range errors {
		sum += e
	}
	mape := sum / float64(len(errors))

	return clamp01(1 - mape)
}

// Validate emits one AccuracyRecord per overlapping horizon plus the overall
// accuracy across records. Horizons whose actual value is zero produce no
// record: their percentage error is undefined and must not skew the mean.
func Validate(stored models.ForecastResult, actuals map[int]float64) models.ValidationResult {
	records := []models.AccuracyRecord{}
	for _, p := range stored.Timeframe.Projections {
		actual, ok := actuals[p.Days]
		if !ok || actual == 0 {
			continue
		}
		records = append(records, models.AccuracyRecord{
			ForecastID:               stored.ForecastID,
			HorizonDays:              p.Days,
			Predicted:                p.Readiness,
			Actual:                   actual,
			ErrorPct:                 math.Abs(p.Readiness-actual) / actual,
			WithinConfidenceInterval: p.ConfidenceInterval[0] <= actual && actual <= p.ConfidenceInterval[1],
		})
	}

	if len(records) == 0 {
		return models.ValidationResult{Records: records}
	}

	var sum float64
	for _, r := range records {
		sum += r.ErrorPct
	}

	return models.ValidationResult{
		Records:         records,
		OverallAccuracy: clamp01(1 - sum/float64(len(records))),
	}
}

// Aggregate summarizes a time-ordered history of accuracy scores. The trend
// label compares the mean of the last five scores against the mean of all
// earlier scores; with no earlier window the trend is stable, and with no
// scores at all it is insufficient_data.
func Aggregate(history []float64) models.AccuracyMetrics {
	if len(history) == 0 {
		return models.AccuracyMetrics{
			TimeHorizonAccuracy: map[int]float64{},
			RecentTrend:         "insufficient_data",
		}
	}

	overall := mean(history)

	trend := "stable"
	if len(history) > trendWindow {
		recent := mean(history[len(history)-trendWindow:])
		earlier := mean(history[:len(history)-trendWindow])
		if recent > earlier+trendThreshold {
			trend = "improving"
		} else if recent < earlier-trendThreshold {
			trend = "declining"
		}
	}

	horizonAccuracy := make(map[int]float64, len(horizonDegradation))
	for h, factor := range horizonDegradation {
		horizonAccuracy[h] = clamp01(overall * factor)
	}

	return models.AccuracyMetrics{
		OverallAccuracy:     overall,
		TimeHorizonAccuracy: horizonAccuracy,
		RecentTrend:         trend,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
