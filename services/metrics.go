package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "editor_sessions_active",
			Help: "Number of editor sessions held in memory",
		},
	)
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total number of raster exports",
		},
		[]string{"format", "result"},
	)
	exportSkippedImages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "export_skipped_images_total",
			Help: "Images left out of an export because they could not be loaded",
		},
	)
	generationFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_fallbacks_total",
			Help: "Generation calls answered with mock or placeholder content",
		},
		[]string{"kind", "reason"},
	)
	gestureEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gesture_events_total",
			Help: "Pointer and focus events received over gesture streams",
		},
		[]string{"type"},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers the editor metrics. Call this from main.go
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(activeSessions, exportsTotal, exportSkippedImages, generationFallbacks, gestureEvents)
	})
}
