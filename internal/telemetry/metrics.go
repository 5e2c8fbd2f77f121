// Package telemetry holds the Prometheus collectors of the benchmark runner
// and the report viewer.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "htrbench_pages_total",
		Help: "Pages evaluated, by outcome",
	}, []string{"outcome"})

	TranscriptionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "htrbench_transcription_duration_seconds",
		Help:    "Per-page transcription latency",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider"})

	ScoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "htrbench_scoring_duration_seconds",
		Help:    "Per-page metric computation latency",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	PageWER = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "htrbench_page_wer",
		Help:    "Word error rate per page",
		Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1, 2},
	})

	RunWER = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "htrbench_run_corpus_wer",
		Help: "Corpus word error rate of the latest run per model",
	}, []string{"model"})

	RunCER = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "htrbench_run_corpus_cer",
		Help: "Corpus character error rate of the latest run per model",
	}, []string{"model"})

	ReportsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "htrbench_reports_loaded",
		Help: "Reports held by the viewer",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "htrbench_http_requests_total",
		Help: "Viewer requests by route and status",
	}, []string{"route", "status"})
)
