// Package scenario applies named stress parameters to a forecasting input so
// the projection engine can be re-run under what-if conditions.
package scenario

import (
	"math"

	"github.com/mhazlan/ordready/internal/models"
)

// Apply returns a copy of base with the scenario's stressors applied. The base
// input is never mutated, and a default (no-op) parameter set returns an input
// equal to base.
//
// Supported transforms:
//   - ExerciseIntensityMultiplier != 1.0 escalates every exercise's intensity
//     one step up the low<medium<high<critical scale (critical stays critical).
//   - LeadTimeIncreaseDays > 0 adds that many days to every supply profile's
//     average lead time.
//   - SupplierReliabilityFactor != 1.0 multiplies every supply profile's
//     reliability percentage, clamped to [0,100].
//
// All other parameters are carried but not yet applied; unknown or future
// parameters never cause an error.
func Apply(base models.ForecastingInput, params models.ScenarioParameters) models.ForecastingInput {
	out := copyInput(base)

	if params.ExerciseIntensityMultiplier != 1.0 {
		for i := range out.ScheduledExercises {
			out.ScheduledExercises[i].Intensity = out.ScheduledExercises[i].Intensity.Next()
		}
	}

	if params.LeadTimeIncreaseDays > 0 {
		for i := range out.LeadTimes {
			out.LeadTimes[i].AverageLeadTimeDays += params.LeadTimeIncreaseDays
		}
	}

	if params.SupplierReliabilityFactor != 1.0 {
		for i := range out.LeadTimes {
			scaled := out.LeadTimes[i].SupplierReliability * params.SupplierReliabilityFactor
			out.LeadTimes[i].SupplierReliability = math.Min(100, math.Max(0, scaled))
		}
	}

	return out
}

// BuildResult assembles the scenario comparison: last-horizon readiness of the
// stressed forecast, its delta against the baseline's last horizon, and a
// summary of the stressed forecast's alert load.
func BuildResult(params models.ScenarioParameters, base, stressed models.ForecastResult) models.ScenarioResult {
	scenarioReadiness := base.Timeframe.CurrentReadiness
	if n := len(stressed.Timeframe.Projections); n > 0 {
		scenarioReadiness = stressed.Timeframe.Projections[n-1].Readiness
	}

	var impact float64
	if len(stressed.Timeframe.Projections) > 0 && len(base.Timeframe.Projections) > 0 {
		impact = stressed.Timeframe.Projections[len(stressed.Timeframe.Projections)-1].Readiness -
			base.Timeframe.Projections[len(base.Timeframe.Projections)-1].Readiness
	}

	highPriority := 0
	for _, rec := range stressed.ProcurementRecommendations {
		if rec.Priority == "urgent" || rec.Priority == "high" {
			highPriority++
		}
	}

	return models.ScenarioResult{
		ScenarioName:      params.Name,
		Description:       params.Description,
		BaseReadiness:     base.Timeframe.CurrentReadiness,
		ScenarioReadiness: scenarioReadiness,
		ReadinessImpact:   impact,
		RiskAssessment: models.RiskAssessment{
			CriticalAlerts:              len(stressed.CriticalAlerts),
			HighPriorityRecommendations: highPriority,
		},
		Recommendations:    stressed.MitigationStrategies,
		TimelineComparison: stressed.Timeframe.Projections,
	}
}

// copyInput deep-copies the slices of a forecasting input so transforms never
// alias the caller's data.
func copyInput(in models.ForecastingInput) models.ForecastingInput {
	out := in

	out.UsageTrends = append([]models.UsageObservation(nil), in.UsageTrends...)
	out.LeadTimes = append([]models.SupplyChainProfile(nil), in.LeadTimes...)
	out.InventorySnapshot = append([]models.InventorySnapshot(nil), in.InventorySnapshot...)
	out.Config.HorizonDays = append([]int(nil), in.Config.HorizonDays...)

	out.ScheduledExercises = make([]models.ExerciseEvent, len(in.ScheduledExercises))
	for i, ex := range in.ScheduledExercises {
		cp := ex
		cp.RequiredOrdnance = append([]models.OrdnanceRequirement(nil), ex.RequiredOrdnance...)
		cp.ParticipatingUnits = append([]string(nil), ex.ParticipatingUnits...)
		out.ScheduledExercises[i] = cp
	}

	out.HistoricalPatterns = make([]models.HistoricalPeriod, len(in.HistoricalPatterns))
	for i, hp := range in.HistoricalPatterns {
		cp := hp
		cp.Events = append([]string(nil), hp.Events...)
		out.HistoricalPatterns[i] = cp
	}

	return out
}
