package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgen_rows_total",
			Help: "Total number of dataset rows handled by batch runs",
		},
		[]string{"outcome"},
	)

	RunsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgen_runs_total",
			Help: "Total number of batch runs by terminal state",
		},
		[]string{"state"},
	)

	RunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docgen_runs_active",
			Help: "Number of batch runs in progress",
		},
	)

	Conversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgen_pdf_conversions_total",
			Help: "Total number of docx to pdf conversions by result",
		},
		[]string{"result"},
	)

	RowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docgen_row_duration_seconds",
			Help:    "Duration of document assembly for one row in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)
