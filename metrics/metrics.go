package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floodscan_assessments_total",
		Help: "Total number of analysis attempts, by outcome",
	}, []string{"outcome"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "floodscan_analysis_duration_seconds",
		Help:    "Duration of the analysis pipeline",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "floodscan_frames_extracted_total",
		Help: "Total number of frames sampled across all videos",
	})

	SpeechSynthesesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floodscan_speech_syntheses_total",
		Help: "Total number of speech synthesis attempts, by outcome",
	}, []string{"outcome"})
)
