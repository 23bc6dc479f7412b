package models

import (
	"time"
)

// Intensity is the ordinal severity of a scheduled demand event.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityMedium   Intensity = "medium"
	IntensityHigh     Intensity = "high"
	IntensityCritical Intensity = "critical"
)

// ParseIntensity coerces a free-form string into the closed intensity scale.
// Unknown values map to medium, matching the consumption multiplier default.
func ParseIntensity(s string) Intensity {
	switch Intensity(s) {
	case IntensityLow, IntensityMedium, IntensityHigh, IntensityCritical:
		return Intensity(s)
	}
	return IntensityMedium
}

// Next returns the intensity one step up the scale. Critical stays critical.
func (i Intensity) Next() Intensity {
	switch i {
	case IntensityLow:
		return IntensityMedium
	case IntensityMedium:
		return IntensityHigh
	case IntensityHigh:
		return IntensityCritical
	}
	return IntensityCritical
}

// RiskLevel classifies a readiness projection.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ParseRiskLevel coerces a free-form string into the closed risk enum,
// defaulting to medium for absent or invalid values.
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return RiskLevel(s)
	}
	return RiskMedium
}

// Severity classifies a critical alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity coerces a free-form string into the closed severity enum,
// defaulting to medium.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s)
	}
	return SeverityMedium
}

// UsageObservation is one historical consumption record. Immutable.
type UsageObservation struct {
	Date          time.Time `json:"date"`
	Category      string    `json:"category"`
	QuantityUsed  float64   `json:"quantity_used"`
	OperationType string    `json:"operation_type"`
	Location      string    `json:"location"`
}

// OrdnanceRequirement is a per-category quantity an exercise expects to consume.
type OrdnanceRequirement struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Priority string `json:"priority"`
}

// ExerciseEvent is a scheduled demand-generating event.
type ExerciseEvent struct {
	Name               string                `json:"name"`
	StartDate          time.Time             `json:"start_date"`
	EndDate            time.Time             `json:"end_date"`
	Intensity          Intensity             `json:"intensity"`
	RequiredOrdnance   []OrdnanceRequirement `json:"required_ordnance"`
	ParticipatingUnits []string              `json:"participating_units"`
}

// SupplyChainProfile describes procurement characteristics for one category.
type SupplyChainProfile struct {
	Category            string  `json:"category"`
	AverageLeadTimeDays int     `json:"average_lead_time_days"`
	VariabilityDays     int     `json:"lead_time_variability_days"`
	SupplierReliability float64 `json:"supplier_reliability_pct"`
	CurrentBacklog      int     `json:"current_backlog"`
}

// HistoricalPeriod is a month-level readiness/consumption summary.
type HistoricalPeriod struct {
	Period      string   `json:"period"`
	Readiness   float64  `json:"readiness"`
	Consumption float64  `json:"consumption"`
	Events      []string `json:"events"`
}

// InventorySnapshot is the current stock of one ordnance line.
type InventorySnapshot struct {
	InventoryID string `json:"inventory_id"`
	Category    string `json:"ordnance_category"`
	Name        string `json:"ordnance_name"`
	Quantity    int    `json:"quantity"`
	Condition   string `json:"condition"`
	Location    string `json:"location"`
	ExpiryDate  string `json:"expiry_date"`
}

// ForecastConfig tunes the projection horizons.
type ForecastConfig struct {
	HorizonDays     []int   `json:"horizon_days,omitempty"`
	ConfidenceLevel float64 `json:"confidence_level,omitempty"`
}

// DefaultHorizons is the canonical projection horizon set.
var DefaultHorizons = []int{30, 60, 90}

// Horizons returns the configured horizon set, or the 30/60/90 default.
func (c ForecastConfig) Horizons() []int {
	if len(c.HorizonDays) == 0 {
		return append([]int(nil), DefaultHorizons...)
	}
	return append([]int(nil), c.HorizonDays...)
}

// ForecastingInput bundles everything a forecast is computed from.
type ForecastingInput struct {
	CurrentReadiness   float64              `json:"current_readiness"`
	UsageTrends        []UsageObservation   `json:"usage_trends"`
	ScheduledExercises []ExerciseEvent      `json:"scheduled_exercises"`
	LeadTimes          []SupplyChainProfile `json:"lead_times"`
	HistoricalPatterns []HistoricalPeriod   `json:"historical_patterns"`
	InventorySnapshot  []InventorySnapshot  `json:"inventory_snapshot"`
	Config             ForecastConfig       `json:"config"`
}

// ConsumptionPattern is the statistical profile of a usage history.
// Recomputed on every analysis call, never mutated after creation.
type ConsumptionPattern struct {
	BaseConsumptionRate float64  `json:"base_consumption_rate"`
	TrendDirection      string   `json:"trend_direction"` // increasing, decreasing, stable
	Volatility          float64  `json:"volatility"`
	AnomalyFlags        []string `json:"anomaly_flags"`
}

// ConsumptionProjection is the expected consumption over one horizon.
type ConsumptionProjection struct {
	ExpectedConsumption float64    `json:"expected_consumption"`
	ConfidenceRange     [2]float64 `json:"confidence_range"`
	RiskFactors         []string   `json:"risk_factors"`
}

// ReadinessProjection is one horizon's readiness estimate.
type ReadinessProjection struct {
	Days               int        `json:"days"`
	Readiness          float64    `json:"readiness"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"`
	RiskLevel          RiskLevel  `json:"risk_level"`
}

// Timeframe groups current readiness with its horizon projections,
// ordered ascending by days.
type Timeframe struct {
	CurrentReadiness float64               `json:"current_readiness"`
	Projections      []ReadinessProjection `json:"projections"`
}

// CriticalAlert flags a projected shortage.
type CriticalAlert struct {
	Category             string   `json:"category"`
	ExpectedShortageDate string   `json:"expected_shortage_date"` // YYYY-MM-DD
	Severity             Severity `json:"severity"`
	ImpactedOperations   []string `json:"impacted_operations"`
	CurrentStockLevel    int      `json:"current_stock_level"`
	ProjectedNeed        int      `json:"projected_need"`
}

// ProcurementRecommendation proposes a purchase to sustain readiness.
type ProcurementRecommendation struct {
	Priority            string `json:"priority"` // urgent, high, medium, low
	Category            string `json:"category"`
	RecommendedQuantity int    `json:"recommended_quantity"`
	Deadline            string `json:"deadline"` // YYYY-MM-DD
	Rationale           string `json:"rationale"`
	SupplierLeadTime    int    `json:"supplier_lead_time"`
}

// OperationImpactAssessment estimates one exercise's readiness impact.
type OperationImpactAssessment struct {
	ExerciseName          string   `json:"exercise_name"`
	ReadinessImpact       float64  `json:"readiness_impact"`
	CriticalItemsAffected []string `json:"critical_items_affected"`
	Recommendations       []string `json:"recommendations"`
}

// MitigationStrategy is an action that offsets projected shortfalls.
type MitigationStrategy struct {
	Strategy           string   `json:"strategy"`
	Effectiveness      float64  `json:"effectiveness"`       // 0-1
	ImplementationTime int      `json:"implementation_time"` // days
	Impact             string   `json:"impact"`
	ItemsAffected      []string `json:"items_affected"`
}

// ConfidenceMetrics qualifies how much to trust a forecast.
type ConfidenceMetrics struct {
	ModelAccuracy       float64 `json:"model_accuracy"`
	DataQualityScore    float64 `json:"data_quality_score"`
	ForecastReliability string  `json:"forecast_reliability"` // high, medium, low
}

// Generation path provenance values.
const (
	GeneratedAsCandidate = "validated-candidate"
	GeneratedAsFallback  = "fallback-deterministic"
)

// ForecastMetadata records which path produced a forecast.
type ForecastMetadata struct {
	GeneratedAs string `json:"generated_as"`
	Model       string `json:"model,omitempty"`
}

// ForecastResult is the aggregate forecast document.
type ForecastResult struct {
	ForecastID                 string                      `json:"forecast_id"`
	GeneratedAt                time.Time                   `json:"generated_at"`
	Timeframe                  Timeframe                   `json:"timeframe"`
	CriticalAlerts             []CriticalAlert             `json:"critical_alerts"`
	ProcurementRecommendations []ProcurementRecommendation `json:"procurement_recommendations"`
	OperationImpactAssessment  []OperationImpactAssessment `json:"operation_impact_assessment"`
	MitigationStrategies       []MitigationStrategy        `json:"mitigation_strategies"`
	ConfidenceMetrics          ConfidenceMetrics           `json:"confidence_metrics"`
	Metadata                   ForecastMetadata            `json:"metadata"`
}

// ScenarioParameters is a named bundle of stressors. Zero-value multipliers of
// 1.0 and increases of 0 are no-ops. Parameters beyond the supported set are
// carried so callers can round-trip them, but are applied as no-ops.
type ScenarioParameters struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	ExerciseIntensityMultiplier float64 `json:"exercise_intensity_multiplier"`
	OperationalTempoIncrease    float64 `json:"operational_tempo_increase"`

	LeadTimeIncreaseDays      int     `json:"lead_time_increase_days"`
	SupplierReliabilityFactor float64 `json:"supplier_reliability_factor"`

	ProcurementDelayDays       int      `json:"procurement_delay_days"`
	BudgetConstraintPercentage float64  `json:"budget_constraint_percentage"`
	WeatherImpactFactor        float64  `json:"weather_impact_factor"`
	GeopoliticalTensionLevel   string   `json:"geopolitical_tension_level"`
	DemandVolatilityMultiplier float64  `json:"demand_volatility_multiplier"`
	ScenarioDurationDays       int      `json:"scenario_duration_days"`
	AffectedCategories         []string `json:"affected_categories,omitempty"`
}

// DefaultScenarioParameters returns the no-op parameter set.
func DefaultScenarioParameters(name string) ScenarioParameters {
	return ScenarioParameters{
		Name:                        name,
		ExerciseIntensityMultiplier: 1.0,
		SupplierReliabilityFactor:   1.0,
		BudgetConstraintPercentage:  100.0,
		WeatherImpactFactor:         1.0,
		GeopoliticalTensionLevel:    "normal",
		DemandVolatilityMultiplier:  1.0,
		ScenarioDurationDays:        90,
	}
}

// RiskAssessment summarizes a scenario forecast's alert load.
type RiskAssessment struct {
	CriticalAlerts              int `json:"critical_alerts"`
	HighPriorityRecommendations int `json:"high_priority_recommendations"`
}

// ScenarioResult compares a stressed forecast against its baseline.
type ScenarioResult struct {
	ScenarioName       string                `json:"scenario_name"`
	Description        string                `json:"description,omitempty"`
	BaseReadiness      float64               `json:"base_readiness"`
	ScenarioReadiness  float64               `json:"scenario_readiness"`
	ReadinessImpact    float64               `json:"readiness_impact"`
	RiskAssessment     RiskAssessment        `json:"risk_assessment"`
	Recommendations    []MitigationStrategy  `json:"recommendations"`
	TimelineComparison []ReadinessProjection `json:"timeline_comparison"`
}

// AccuracyRecord compares one stored projection to its observed outcome.
// Created only once ground truth is available.
type AccuracyRecord struct {
	ForecastID               string  `json:"forecast_id"`
	HorizonDays              int     `json:"horizon_days"`
	Predicted                float64 `json:"predicted"`
	Actual                   float64 `json:"actual"`
	ErrorPct                 float64 `json:"error_pct"`
	WithinConfidenceInterval bool    `json:"within_confidence_interval"`
}

// ValidationResult is the per-horizon accuracy breakdown for one forecast.
type ValidationResult struct {
	Records         []AccuracyRecord `json:"per_horizon"`
	OverallAccuracy float64          `json:"overall_accuracy"`
}

// AccuracyMetrics summarizes accuracy history across forecasts.
type AccuracyMetrics struct {
	OverallAccuracy     float64         `json:"overall_accuracy"`
	TimeHorizonAccuracy map[int]float64 `json:"time_horizon_accuracy"`
	RecentTrend         string          `json:"recent_trend"` // improving, declining, stable, insufficient_data
}
