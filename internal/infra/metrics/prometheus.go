package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swinglab_videos_processed_total",
		Help: "Total number of videos processed, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swinglab_stage_duration_seconds",
		Help:    "Duration of detection pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swinglab_frames_analyzed_total",
		Help: "Total number of frames run through flow estimation",
	})

	EventsDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swinglab_events_detected_total",
		Help: "Total number of impact events detected",
	})

	ClipsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swinglab_clips_written_total",
		Help: "Total number of clips cut from source videos",
	})

	ClipCutFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swinglab_clip_cut_failures_total",
		Help: "Total number of clip cuts that exited non-zero",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swinglab_active_workers",
		Help: "Number of workers currently running the detection pipeline",
	})
)
