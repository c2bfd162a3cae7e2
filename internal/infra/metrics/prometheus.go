package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pfg_catalog_jobs_total",
		Help: "Total number of catalog jobs processed, by kind and status",
	}, []string{"kind", "status"})

	JobStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pfg_job_stage_duration_seconds",
		Help:    "Duration of catalog job pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 1800, 3600},
	}, []string{"stage"})

	FramesIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pfg_frames_ingested_total",
		Help: "Total number of frames added to the catalog",
	})

	PredictionsMergedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pfg_predictions_merged_total",
		Help: "Total number of FSOD predictions merged back as draft annotations",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pfg_active_workers",
		Help: "Number of currently active workers processing jobs",
	})
)
