package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/mhazlan/ordready/internal/models"
)

const (
	// Trend detection requires at least this many observations; below it the
	// half-split means are too noisy to call a direction.
	minTrendObservations = 5

	trendIncreaseRatio = 1.10
	trendDecreaseRatio = 0.90

	// Quantities beyond mean + 2 stddev count as anomalous.
	anomalyStddevs = 2.0
)

// Exercise intensity to consumption multiplier. Unknown intensities use the
// medium multiplier.
var intensityMultipliers = map[models.Intensity]float64{
	models.IntensityLow:      1.2,
	models.IntensityMedium:   1.5,
	models.IntensityHigh:     2.0,
	models.IntensityCritical: 3.0,
}

// Analyzer reduces usage histories into consumption profiles. It holds no
// state; every call is a pure function of its inputs.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze computes the consumption profile of a usage history. An empty
// history yields a zero-rate stable pattern rather than an error.
func (a *Analyzer) Analyze(observations []models.UsageObservation) models.ConsumptionPattern {
	if len(observations) == 0 {
		return models.ConsumptionPattern{
			TrendDirection: "stable",
			AnomalyFlags:   []string{},
		}
	}

	ordered := append([]models.UsageObservation(nil), observations...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	quantities := make([]float64, len(ordered))
	for i, obs := range ordered {
		quantities[i] = obs.QuantityUsed
	}

	rate := mean(quantities)
	volatility := sampleStddev(quantities)

	trend := "stable"
	if len(quantities) >= minTrendObservations {
		half := len(quantities) / 2
		first := mean(quantities[:half])
		second := mean(quantities[half:])
		if second > first*trendIncreaseRatio {
			trend = "increasing"
		} else if second < first*trendDecreaseRatio {
			trend = "decreasing"
		}
	}

	flags := []string{}
	threshold := rate + anomalyStddevs*volatility
	anomalous := 0
	for _, q := range quantities {
		if q > threshold {
			anomalous++
		}
	}
	if anomalous > 0 {
		flags = append(flags, fmt.Sprintf("%d anomalous consumption periods detected", anomalous))
	}

	return models.ConsumptionPattern{
		BaseConsumptionRate: rate,
		TrendDirection:      trend,
		Volatility:          volatility,
		AnomalyFlags:        flags,
	}
}

// Project estimates consumption over horizonDays given a pattern and the
// exercises scheduled within the horizon. Each exercise is assumed to compress
// one week of elevated consumption into the horizon.
func (a *Analyzer) Project(pattern models.ConsumptionPattern, exercises []models.ExerciseEvent, horizonDays int) models.ConsumptionProjection {
	base := pattern.BaseConsumptionRate * (float64(horizonDays) / 30.0)

	var exerciseImpact float64
	for _, ex := range exercises {
		multiplier, ok := intensityMultipliers[ex.Intensity]
		if !ok {
			multiplier = intensityMultipliers[models.IntensityMedium]
		}
		exerciseImpact += base * (multiplier - 1) * (7.0 / float64(horizonDays))
	}

	expected := base + exerciseImpact

	margin := 0.5 * pattern.Volatility
	confidenceRange := [2]float64{math.Max(0, expected-margin), expected + margin}

	riskFactors := []string{}
	if pattern.TrendDirection == "increasing" {
		riskFactors = append(riskFactors, "Increasing consumption trend detected")
	}
	if pattern.Volatility > pattern.BaseConsumptionRate*0.5 {
		riskFactors = append(riskFactors, "High consumption volatility")
	}
	if exerciseImpact > base*0.3 {
		riskFactors = append(riskFactors, "High exercise impact on consumption")
	}

	return models.ConsumptionProjection{
		ExpectedConsumption: expected,
		ConfidenceRange:     confidenceRange,
		RiskFactors:         riskFactors,
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

// sampleStddev returns the sample standard deviation, or 0 for fewer than
// two values.
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
