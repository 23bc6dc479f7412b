// Package forecast turns a forecasting input, and optionally an untrusted
// external candidate payload, into a structurally valid readiness forecast.
//
// Generation is a two-state decision: either the candidate parses into the
// expected shape and is normalized into the result, or the deterministic
// fallback computes one from the input alone. Nothing in this package
// performs I/O, and no condition is fatal.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mhazlan/ordready/internal/models"
)

const (
	// Fallback projection constants. Conservative 0.5% readiness decline per
	// month with a fixed ±5 point confidence margin.
	fallbackMonthlyDecline  = -0.5
	fallbackMargin          = 5.0
	alertReadinessThreshold = 70.0
	procureThreshold        = 80.0
	alertLeadDays           = 45
	procureDeadlineDays     = 30
)

// Engine generates readiness forecasts. The clock is injectable so the
// fallback path is reproducible under test; it defaults to time.Now.
type Engine struct {
	Now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// Generate produces a forecast from input. If candidate is non-nil and
// well-formed it is normalized and tagged as validated; otherwise the
// deterministic fallback runs. The returned result always satisfies the
// structural invariants: projections sorted ascending by days, every readiness
// within [0,100] and inside its own confidence interval.
func (e *Engine) Generate(input models.ForecastingInput, candidate []byte) models.ForecastResult {
	now := e.now()

	if cand, ok := parseCandidate(candidate); ok {
		result := e.normalizeCandidate(input, cand)
		result.ForecastID = forecastID(now)
		result.GeneratedAt = now
		return result
	}

	result := e.fallback(input, now)
	result.ForecastID = forecastID(now)
	result.GeneratedAt = now
	return result
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func forecastID(now time.Time) string {
	return fmt.Sprintf("fcst_%s", now.Format("20060102_150405"))
}

// fallback computes the rule-based forecast: a linear conservative decline per
// horizon with fixed confidence margins and threshold-driven alerts.
func (e *Engine) fallback(input models.ForecastingInput, now time.Time) models.ForecastResult {
	current := clamp(input.CurrentReadiness, 0, 100)

	horizons := input.Config.Horizons()
	sort.Ints(horizons)

	projections := make([]models.ReadinessProjection, 0, len(horizons))
	for _, days := range horizons {
		months := float64(days) / 30.0
		projected := clamp(current+fallbackMonthlyDecline*months, 0, 100)

		projections = append(projections, models.ReadinessProjection{
			Days:      days,
			Readiness: projected,
			ConfidenceInterval: [2]float64{
				math.Max(0, projected-fallbackMargin),
				math.Min(100, projected+fallbackMargin),
			},
			RiskLevel: riskLevelFor(projected),
		})
	}

	alerts := []models.CriticalAlert{}
	if anyBelow(projections, alertReadinessThreshold) {
		alerts = append(alerts, models.CriticalAlert{
			Category:             "General Ordnance",
			ExpectedShortageDate: now.AddDate(0, 0, alertLeadDays).Format("2006-01-02"),
			Severity:             models.SeverityMedium,
			ImpactedOperations:   []string{"Standard Operations"},
			CurrentStockLevel:    int(math.Round(current)),
			ProjectedNeed:        80,
		})
	}

	recommendations := []models.ProcurementRecommendation{}
	if current < procureThreshold {
		recommendations = append(recommendations, models.ProcurementRecommendation{
			Priority:            "high",
			Category:            "Critical Ordnance",
			RecommendedQuantity: 100,
			Deadline:            now.AddDate(0, 0, procureDeadlineDays).Format("2006-01-02"),
			Rationale:           "Fallback recommendation to maintain readiness above 80%",
			SupplierLeadTime:    30,
		})
	}

	return models.ForecastResult{
		Timeframe: models.Timeframe{
			CurrentReadiness: current,
			Projections:      projections,
		},
		CriticalAlerts:             alerts,
		ProcurementRecommendations: recommendations,
		OperationImpactAssessment:  []models.OperationImpactAssessment{},
		MitigationStrategies: []models.MitigationStrategy{
			{
				Strategy:           "Inventory Optimization",
				Effectiveness:      0.7,
				ImplementationTime: 14,
				Impact:             "Improve readiness by 5-10%",
				ItemsAffected:      []string{"All Categories"},
			},
		},
		ConfidenceMetrics: models.ConfidenceMetrics{
			ModelAccuracy:       0.70,
			DataQualityScore:    0.65,
			ForecastReliability: "medium",
		},
		Metadata: models.ForecastMetadata{
			GeneratedAs: models.GeneratedAsFallback,
		},
	}
}

// riskLevelFor maps projected readiness onto the risk enum.
func riskLevelFor(readiness float64) models.RiskLevel {
	switch {
	case readiness < 50:
		return models.RiskCritical
	case readiness < 65:
		return models.RiskHigh
	case readiness < 80:
		return models.RiskMedium
	}
	return models.RiskLow
}

func anyBelow(projections []models.ReadinessProjection, threshold float64) bool {
	for _, p := range projections {
		if p.Readiness < threshold {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
