package predict

import (
	"fmt"
	"strings"

	"github.com/mhazlan/ordready/internal/models"
)

const systemPrompt = `You are a predictive analytics engine for naval ordnance readiness forecasting. You specialize in ordnance consumption modeling, exercise impact analysis, and supply chain risk assessment.

Always respond with a single valid JSON object matching the requested schema. Use conservative estimates to prioritize mission readiness over cost optimization.`

// BuildPrompt renders a forecasting input into the prediction request prompt.
// Summaries are built from the typed input, so every field access is defined
// once on the data model.
func BuildPrompt(input models.ForecastingInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CURRENT READINESS: %.1f%%\n", input.CurrentReadiness)
	b.WriteString("TIME HORIZON: 30/60/90 days\n")
	b.WriteString("FORECASTING REQUEST: Generate readiness projections with actionable recommendations\n\n")

	b.WriteString("USAGE TRENDS:\n")
	b.WriteString(summarizeUsage(input.UsageTrends))
	b.WriteString("\n\nSCHEDULED EXERCISES:\n")
	b.WriteString(summarizeExercises(input.ScheduledExercises))
	b.WriteString("\n\nSUPPLY CHAIN STATUS:\n")
	b.WriteString(summarizeSupplyChain(input.LeadTimes))
	b.WriteString("\n\nHISTORICAL PATTERNS:\n")
	b.WriteString(summarizeHistorical(input.HistoricalPatterns))
	b.WriteString("\n\nCURRENT INVENTORY:\n")
	b.WriteString(summarizeInventory(input.InventorySnapshot))

	b.WriteString("\n\nRESPONSE FORMAT: Return valid JSON with this structure:\n")
	b.WriteString(responseSchema)

	return b.String()
}

const responseSchema = `{
  "timeframe": {
    "current_readiness": <percentage>,
    "projections": [
      {"days": 30, "readiness": <percentage>, "confidence_interval": [<lower>, <upper>], "risk_level": "<low|medium|high|critical>"},
      {"days": 60, "readiness": <percentage>, "confidence_interval": [<lower>, <upper>], "risk_level": "<low|medium|high|critical>"},
      {"days": 90, "readiness": <percentage>, "confidence_interval": [<lower>, <upper>], "risk_level": "<low|medium|high|critical>"}
    ]
  },
  "critical_alerts": [{"category": "...", "expected_shortage_date": "YYYY-MM-DD", "severity": "<low|medium|high|critical>", "impacted_operations": ["..."], "current_stock_level": <number>, "projected_need": <number>}],
  "procurement_recommendations": [{"priority": "<urgent|high|medium|low>", "category": "...", "recommended_quantity": <number>, "deadline": "YYYY-MM-DD", "rationale": "...", "supplier_lead_time": <days>}],
  "operation_impact_assessment": [{"exercise_name": "...", "readiness_impact": <percentage_change>, "critical_items_affected": ["..."], "recommendations": ["..."]}],
  "mitigation_strategies": [{"strategy": "...", "effectiveness": <0-1>, "implementation_time": <days>, "impact": "...", "items_affected": ["..."]}],
  "confidence_metrics": {"model_accuracy": <0-1>, "data_quality_score": <0-1>, "forecast_reliability": "<high|medium|low>"}
}`

func summarizeUsage(usage []models.UsageObservation) string {
	if len(usage) == 0 {
		return "No historical usage data available"
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	order := []string{}
	for _, u := range usage {
		if _, seen := totals[u.Category]; !seen {
			order = append(order, u.Category)
		}
		totals[u.Category] += u.QuantityUsed
		counts[u.Category]++
	}

	lines := make([]string, 0, len(order))
	for _, cat := range order {
		avg := totals[cat] / float64(counts[cat])
		lines = append(lines, fmt.Sprintf("- %s: Avg %.1f/period, Total %.0f", cat, avg, totals[cat]))
	}
	return strings.Join(lines, "\n")
}

func summarizeExercises(exercises []models.ExerciseEvent) string {
	if len(exercises) == 0 {
		return "No scheduled exercises"
	}

	lines := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		lines = append(lines, fmt.Sprintf("- %s (%s intensity, starts %s)",
			ex.Name, ex.Intensity, ex.StartDate.Format("2006-01-02")))
	}
	return strings.Join(lines, "\n")
}

func summarizeSupplyChain(profiles []models.SupplyChainProfile) string {
	if len(profiles) == 0 {
		return "No supply chain data available"
	}

	lines := make([]string, 0, len(profiles))
	for _, p := range profiles {
		lines = append(lines, fmt.Sprintf("- %s: %d days lead time, %.0f%% reliability",
			p.Category, p.AverageLeadTimeDays, p.SupplierReliability))
	}
	return strings.Join(lines, "\n")
}

func summarizeHistorical(periods []models.HistoricalPeriod) string {
	if len(periods) == 0 {
		return "No historical pattern data available"
	}

	var readinessSum, consumptionSum float64
	for _, p := range periods {
		readinessSum += p.Readiness
		consumptionSum += p.Consumption
	}
	n := float64(len(periods))
	return fmt.Sprintf("Historical average: %.1f%% readiness, %.1f consumption rate",
		readinessSum/n, consumptionSum/n)
}

func summarizeInventory(inventory []models.InventorySnapshot) string {
	if len(inventory) == 0 {
		return "No inventory data available"
	}

	totals := make(map[string]int)
	order := []string{}
	for _, item := range inventory {
		if _, seen := totals[item.Category]; !seen {
			order = append(order, item.Category)
		}
		totals[item.Category] += item.Quantity
	}

	lines := make([]string, 0, len(order))
	for _, cat := range order {
		lines = append(lines, fmt.Sprintf("- %s: %d units", cat, totals[cat]))
	}
	return strings.Join(lines, "\n")
}
