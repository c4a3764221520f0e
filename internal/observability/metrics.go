package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	PipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_pipeline_runs_total",
		Help: "Total number of dataset synthesis runs",
	}, []string{"outcome", "error_code"})

	PipelineRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sales_pipeline_run_duration_seconds",
		Help:    "Duration of a full synthesis and transformation run",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	FactRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sales_fact_rows",
		Help: "Rows in the current fact table",
	})

	RFMCustomers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sales_rfm_customers",
		Help: "Distinct customers in the current RFM segmentation",
	})

	TotalProfit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sales_total_profit",
		Help: "Total profit across the current fact table",
	})
)
