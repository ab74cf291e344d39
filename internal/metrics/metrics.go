package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_reel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	Extractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_reel_extractions_total",
			Help: "Listing extractions by outcome",
		},
		[]string{"outcome"},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_reel_pipeline_runs_total",
			Help: "Pipeline runs by terminal status",
		},
		[]string{"status"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "listing_reel_pipeline_run_duration_seconds",
			Help:    "Wall time of one pipeline run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	Enqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_reel_queue_enqueued_total",
			Help: "Pipeline runs handed to the queue, by backend and result",
		},
		[]string{"backend", "result"},
	)

	BusSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "listing_reel_bus_subscriptions",
			Help: "Live change bus subscriptions",
		},
	)
)
