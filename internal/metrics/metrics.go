package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ForecastsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordready_forecasts_generated_total",
			Help: "Total forecasts generated, by generation path",
		},
		[]string{"path"},
	)

	PredictionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordready_prediction_api_calls_total",
			Help: "Total external prediction service calls",
		},
		[]string{"status"},
	)

	PredictionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ordready_prediction_api_latency_seconds",
			Help:    "External prediction service call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ScenariosAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ordready_scenarios_analyzed_total",
			Help: "Total what-if scenarios analyzed",
		},
	)

	AccuracyUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ordready_accuracy_updates_total",
			Help: "Total forecast accuracy updates from observed actuals",
		},
	)
)
