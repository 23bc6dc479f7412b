package forecast

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/mhazlan/ordready/internal/models"
)

// rawCandidate is the loosely-typed shape an external prediction source
// proposes. Pointer fields distinguish absent from zero; everything is
// re-validated before acceptance.
type rawCandidate struct {
	Timeframe *struct {
		CurrentReadiness *float64        `json:"current_readiness"`
		Projections      []rawProjection `json:"projections"`
	} `json:"timeframe"`
	CriticalAlerts             []rawAlert          `json:"critical_alerts"`
	ProcurementRecommendations []rawRecommendation `json:"procurement_recommendations"`
	OperationImpactAssessment  []rawImpact         `json:"operation_impact_assessment"`
	MitigationStrategies       []rawMitigation     `json:"mitigation_strategies"`
	ConfidenceMetrics          *struct {
		ModelAccuracy       *float64 `json:"model_accuracy"`
		DataQualityScore    *float64 `json:"data_quality_score"`
		ForecastReliability string   `json:"forecast_reliability"`
	} `json:"confidence_metrics"`
	Model string `json:"model"`
}

type rawProjection struct {
	Days               *int      `json:"days"`
	Readiness          *float64  `json:"readiness"`
	ConfidenceInterval []float64 `json:"confidence_interval"`
	RiskLevel          string    `json:"risk_level"`
}

type rawAlert struct {
	Category             string   `json:"category"`
	ExpectedShortageDate string   `json:"expected_shortage_date"`
	Severity             string   `json:"severity"`
	ImpactedOperations   []string `json:"impacted_operations"`
	CurrentStockLevel    int      `json:"current_stock_level"`
	ProjectedNeed        int      `json:"projected_need"`
}

type rawRecommendation struct {
	Priority            string `json:"priority"`
	Category            string `json:"category"`
	RecommendedQuantity int    `json:"recommended_quantity"`
	Deadline            string `json:"deadline"`
	Rationale           string `json:"rationale"`
	SupplierLeadTime    int    `json:"supplier_lead_time"`
}

type rawImpact struct {
	ExerciseName          string   `json:"exercise_name"`
	ReadinessImpact       float64  `json:"readiness_impact"`
	CriticalItemsAffected []string `json:"critical_items_affected"`
	Recommendations       []string `json:"recommendations"`
}

type rawMitigation struct {
	Strategy           string   `json:"strategy"`
	Effectiveness      float64  `json:"effectiveness"`
	ImplementationTime int      `json:"implementation_time"`
	Impact             string   `json:"impact"`
	ItemsAffected      []string `json:"items_affected"`
}

// parseCandidate decides the generation path. A candidate is well-formed when
// it parses as JSON and carries a timeframe with at least one projection whose
// days and readiness are present. Everything else means fallback.
func parseCandidate(payload []byte) (*rawCandidate, bool) {
	if len(payload) == 0 {
		return nil, false
	}

	var cand rawCandidate
	if err := json.Unmarshal(payload, &cand); err != nil {
		return nil, false
	}
	if cand.Timeframe == nil || len(cand.Timeframe.Projections) == 0 {
		return nil, false
	}
	for _, p := range cand.Timeframe.Projections {
		if p.Days == nil || p.Readiness == nil {
			return nil, false
		}
	}
	return &cand, true
}

// normalizeCandidate coerces a well-formed candidate into a valid result:
// readiness clamped to [0,100], risk levels forced into the enum, intervals
// reordered and widened until they contain their readiness, and every missing
// optional section defaulted.
func (e *Engine) normalizeCandidate(input models.ForecastingInput, cand *rawCandidate) models.ForecastResult {
	projections := make([]models.ReadinessProjection, 0, len(cand.Timeframe.Projections))
	for _, p := range cand.Timeframe.Projections {
		projections = append(projections, normalizeProjection(p))
	}
	sort.SliceStable(projections, func(i, j int) bool {
		return projections[i].Days < projections[j].Days
	})

	current := clamp(input.CurrentReadiness, 0, 100)
	if cand.Timeframe.CurrentReadiness != nil {
		current = clamp(*cand.Timeframe.CurrentReadiness, 0, 100)
	}

	alerts := make([]models.CriticalAlert, 0, len(cand.CriticalAlerts))
	for _, a := range cand.CriticalAlerts {
		alerts = append(alerts, models.CriticalAlert{
			Category:             orDefault(a.Category, "Unknown"),
			ExpectedShortageDate: a.ExpectedShortageDate,
			Severity:             models.ParseSeverity(a.Severity),
			ImpactedOperations:   orEmpty(a.ImpactedOperations),
			CurrentStockLevel:    a.CurrentStockLevel,
			ProjectedNeed:        a.ProjectedNeed,
		})
	}

	recommendations := make([]models.ProcurementRecommendation, 0, len(cand.ProcurementRecommendations))
	for _, r := range cand.ProcurementRecommendations {
		recommendations = append(recommendations, models.ProcurementRecommendation{
			Priority:            orDefault(r.Priority, "medium"),
			Category:            orDefault(r.Category, "Unknown"),
			RecommendedQuantity: r.RecommendedQuantity,
			Deadline:            r.Deadline,
			Rationale:           r.Rationale,
			SupplierLeadTime:    r.SupplierLeadTime,
		})
	}

	impacts := make([]models.OperationImpactAssessment, 0, len(cand.OperationImpactAssessment))
	for _, i := range cand.OperationImpactAssessment {
		impacts = append(impacts, models.OperationImpactAssessment{
			ExerciseName:          orDefault(i.ExerciseName, "Unknown Exercise"),
			ReadinessImpact:       i.ReadinessImpact,
			CriticalItemsAffected: orEmpty(i.CriticalItemsAffected),
			Recommendations:       orEmpty(i.Recommendations),
		})
	}

	mitigations := make([]models.MitigationStrategy, 0, len(cand.MitigationStrategies))
	for _, m := range cand.MitigationStrategies {
		mitigations = append(mitigations, models.MitigationStrategy{
			Strategy:           orDefault(m.Strategy, "Unknown Strategy"),
			Effectiveness:      clamp(m.Effectiveness, 0, 1),
			ImplementationTime: m.ImplementationTime,
			Impact:             m.Impact,
			ItemsAffected:      orEmpty(m.ItemsAffected),
		})
	}

	metrics := models.ConfidenceMetrics{
		ModelAccuracy:       0.85,
		DataQualityScore:    0.80,
		ForecastReliability: "medium",
	}
	if cm := cand.ConfidenceMetrics; cm != nil {
		if cm.ModelAccuracy != nil {
			metrics.ModelAccuracy = clamp(*cm.ModelAccuracy, 0, 1)
		}
		if cm.DataQualityScore != nil {
			metrics.DataQualityScore = clamp(*cm.DataQualityScore, 0, 1)
		}
		switch cm.ForecastReliability {
		case "high", "medium", "low":
			metrics.ForecastReliability = cm.ForecastReliability
		}
	}

	return models.ForecastResult{
		Timeframe: models.Timeframe{
			CurrentReadiness: current,
			Projections:      projections,
		},
		CriticalAlerts:             alerts,
		ProcurementRecommendations: recommendations,
		OperationImpactAssessment:  impacts,
		MitigationStrategies:       mitigations,
		ConfidenceMetrics:          metrics,
		Metadata: models.ForecastMetadata{
			GeneratedAs: models.GeneratedAsCandidate,
			Model:       cand.Model,
		},
	}
}

// normalizeProjection repairs one candidate projection. The interval defaults
// to a point interval at the readiness value, lower/upper are swapped when out
// of order, and the interval is widened symmetrically until it contains the
// readiness value. Bounds stay inside [0,100].
func normalizeProjection(p rawProjection) models.ReadinessProjection {
	readiness := clamp(*p.Readiness, 0, 100)

	lower, upper := readiness, readiness
	if len(p.ConfidenceInterval) >= 2 {
		lower = p.ConfidenceInterval[0]
		upper = p.ConfidenceInterval[1]
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	if readiness < lower {
		delta := lower - readiness
		lower -= delta
		upper += delta
	} else if readiness > upper {
		delta := readiness - upper
		lower -= delta
		upper += delta
	}
	lower = math.Max(0, lower)
	upper = math.Min(100, upper)

	return models.ReadinessProjection{
		Days:               *p.Days,
		Readiness:          readiness,
		ConfidenceInterval: [2]float64{lower, upper},
		RiskLevel:          models.ParseRiskLevel(p.RiskLevel),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
