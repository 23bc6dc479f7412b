package analysis

import (
	"math"

	"github.com/mhazlan/ordready/internal/models"
)

// Target stock levels per ordnance category used for readiness scoring.
// Categories without an entry use defaultTargetQuantity.
var categoryTargets = map[string]int{
	"Missile":     100,
	"Torpedo":     80,
	"Ammunition":  1000,
	"Pyrotechnic": 200,
	"Seamine":     60,
	"Demolition":  50,
}

const (
	defaultTargetQuantity = 100
	defaultReadiness      = 75.0
)

// CurrentReadiness derives a 0-100 readiness percentage from an inventory
// snapshot: each category scores against its target quantity (capped at 100),
// and the category scores are averaged. An empty snapshot yields the
// conservative default.
func CurrentReadiness(inventory []models.InventorySnapshot) float64 {
	if len(inventory) == 0 {
		return defaultReadiness
	}

	totals := make(map[string]int)
	for _, item := range inventory {
		totals[item.Category] += item.Quantity
	}

	var sum float64
	for category, quantity := range totals {
		target, ok := categoryTargets[category]
		if !ok {
			target = defaultTargetQuantity
		}
		sum += math.Min(100, float64(quantity)/float64(target)*100)
	}

	return math.Round(sum/float64(len(totals))*10) / 10
}
