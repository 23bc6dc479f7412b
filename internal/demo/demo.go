// Package demo generates synthetic forecasting inputs and candidate payloads
// for demos and tests. All randomness flows through an injected source, so the
// deterministic core never touches it and a fixed seed reproduces identical
// data.
package demo

import (
	"encoding/json"
	"math"
	"math/rand"
	"time"

	"github.com/mhazlan/ordready/internal/models"
)

var categories = []string{"Missile", "Torpedo", "Ammunition", "Pyrotechnic"}

// Generator produces synthetic data from a seeded random source.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator returns a generator seeded for reproducible output. The
// reference time anchors all generated dates.
func NewGenerator(seed int64, now time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: now.UTC(),
	}
}

// Input builds a complete synthetic forecasting input: 30 days of usage per
// category, two scheduled exercises, supply chain profiles, a year of
// historical periods, and an inventory snapshot.
func (g *Generator) Input() models.ForecastingInput {
	usage := make([]models.UsageObservation, 0, 30*len(categories))
	for i := 0; i < 30; i++ {
		date := g.now.AddDate(0, 0, -i)
		opType := "Training"
		if i%7 >= 5 {
			opType = "Exercise"
		}
		for _, cat := range categories {
			usage = append(usage, models.UsageObservation{
				Date:          date,
				Category:      cat,
				QuantityUsed:  math.Max(1, 10+float64(i%7)*2+float64(g.rng.Intn(5))),
				OperationType: opType,
				Location:      "WNAED",
			})
		}
	}

	exercises := []models.ExerciseEvent{
		{
			Name:               "Exercise Taming Sari",
			StartDate:          g.now.AddDate(0, 0, 30),
			EndDate:            g.now.AddDate(0, 0, 37),
			Intensity:          models.IntensityHigh,
			RequiredOrdnance:   []models.OrdnanceRequirement{},
			ParticipatingUnits: []string{"KD Lekiu", "KD Kasturi"},
		},
		{
			Name:               "Coastal Defense Training",
			StartDate:          g.now.AddDate(0, 0, 60),
			EndDate:            g.now.AddDate(0, 0, 63),
			Intensity:          models.IntensityMedium,
			RequiredOrdnance:   []models.OrdnanceRequirement{},
			ParticipatingUnits: []string{"KD Kedah"},
		},
	}

	leadTimes := []models.SupplyChainProfile{
		{Category: "Missile", AverageLeadTimeDays: 45, VariabilityDays: 10, SupplierReliability: 85.0},
		{Category: "Torpedo", AverageLeadTimeDays: 60, VariabilityDays: 15, SupplierReliability: 90.0, CurrentBacklog: 2},
		{Category: "Ammunition", AverageLeadTimeDays: 30, VariabilityDays: 5, SupplierReliability: 95.0},
	}

	historical := make([]models.HistoricalPeriod, 0, 12)
	for i := 0; i < 12; i++ {
		historical = append(historical, models.HistoricalPeriod{
			Period:      g.now.AddDate(0, 0, -i*30).Format("2006-01"),
			Readiness:   85.0 + float64(i%3)*5 - 2.5,
			Consumption: 100 + float64(i%4)*20,
			Events:      []string{},
		})
	}

	inventory := make([]models.InventorySnapshot, 0, len(categories))
	for i, cat := range categories {
		inventory = append(inventory, models.InventorySnapshot{
			InventoryID: cat + "-std",
			Category:    cat,
			Name:        cat + " Standard",
			Quantity:    100 + i*50,
			Condition:   "Serviceable",
			Location:    "WNAED",
			ExpiryDate:  g.now.AddDate(1, 0, 0).Format("2006-01-02"),
		})
	}

	return models.ForecastingInput{
		CurrentReadiness:   75.0 + g.rng.Float64()*20,
		UsageTrends:        usage,
		ScheduledExercises: exercises,
		LeadTimes:          leadTimes,
		HistoricalPatterns: historical,
		InventorySnapshot:  inventory,
	}
}

// Candidate builds a plausible raw prediction payload for the given input, in
// the loose JSON shape an external prediction source would return. Useful for
// exercising the validated-candidate path without a live service.
func (g *Generator) Candidate(input models.ForecastingInput) []byte {
	decline := 0.3 + g.rng.Float64()*0.5

	projections := make([]map[string]any, 0, 3)
	for _, days := range models.DefaultHorizons {
		months := float64(days) / 30.0
		readiness := input.CurrentReadiness - decline*months + g.rng.Float64()*4 - 2
		readiness = math.Max(40, math.Min(100, readiness))
		margin := 3 + months*2

		risk := "low"
		switch {
		case readiness < 50:
			risk = "critical"
		case readiness < 65:
			risk = "high"
		case readiness < 80:
			risk = "medium"
		}

		projections = append(projections, map[string]any{
			"days":                days,
			"readiness":           round1(readiness),
			"confidence_interval": []float64{round1(math.Max(0, readiness - margin)), round1(math.Min(100, readiness + margin))},
			"risk_level":          risk,
		})
	}

	payload := map[string]any{
		"timeframe": map[string]any{
			"current_readiness": input.CurrentReadiness,
			"projections":       projections,
		},
		"mitigation_strategies": []map[string]any{
			{
				"strategy":            "Inventory Redistribution",
				"effectiveness":       round1(0.6+g.rng.Float64()*0.2),
				"implementation_time": 5 + g.rng.Intn(10),
				"impact":              "Optimize distribution across naval bases",
				"items_affected":      []string{"All Categories"},
			},
		},
		"confidence_metrics": map[string]any{
			"model_accuracy":       round1(0.82 + g.rng.Float64()*0.12),
			"data_quality_score":   round1(0.85 + g.rng.Float64()*0.11),
			"forecast_reliability": "high",
		},
	}

	out, _ := json.Marshal(payload)
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
