package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	gradeTotal    *prometheus.CounterVec
	gradeDuration *prometheus.HistogramVec
	gradeInFlight prometheus.Gauge
	queueLag      *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	gradeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grader",
			Subsystem: "worker",
			Name:      "batch_grade_total",
			Help:      "Total graded batches by status.",
		},
		[]string{"service", "status"},
	)
	gradeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grader",
			Subsystem: "worker",
			Name:      "batch_grade_duration_seconds",
			Help:      "Batch grading duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"service", "status"},
	)
	gradeInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "grader",
			Subsystem: "worker",
			Name:      "batch_grade_in_flight",
			Help:      "Number of in-flight batch grading runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grader",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between batch creation and grading start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(gradeTotal, gradeDuration, gradeInFlight, queueLag)

	return &WorkerMetrics{
		registry:      registry,
		gradeTotal:    gradeTotal,
		gradeDuration: gradeDuration,
		gradeInFlight: gradeInFlight,
		queueLag:      queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartBatch() {
	m.gradeInFlight.Inc()
}

func (m *WorkerMetrics) FinishBatch(service string, duration time.Duration, err error) {
	m.gradeInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.gradeTotal.WithLabelValues(service, status).Inc()
	m.gradeDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
