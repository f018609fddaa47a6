package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursegen_jobs_total",
		Help: "Course generation jobs by terminal outcome.",
	}, []string{"outcome"})

	ModelAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursegen_model_attempts_total",
		Help: "Model calls per pipeline step, split by whether the result was usable.",
	}, []string{"step", "result"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursegen_ws_connections",
		Help: "Open progress websocket connections.",
	})

	ProgressEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursegen_progress_events_total",
		Help: "Progress events by whether a live client received them.",
	}, []string{"delivered"})
)
