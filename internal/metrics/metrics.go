package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	editJobs       *prometheus.CounterVec
	editDuration   prometheus.Histogram
	editsInFlight  prometheus.Gauge
	uploads        *prometheus.CounterVec
	messagesByRole *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dreambees_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dreambees_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		editJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dreambees_image_edits_total",
			Help: "Finished image edit jobs by outcome.",
		}, []string{"status"}),
		editDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dreambees_image_edit_duration_seconds",
			Help:    "Wall time of image edit jobs.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		}),
		editsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dreambees_image_edits_in_flight",
			Help: "Image edit jobs currently running.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dreambees_uploads_total",
			Help: "Image uploads by outcome.",
		}, []string{"status"}),
		messagesByRole: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dreambees_messages_created_total",
			Help: "Messages created by role.",
		}, []string{"role"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.editJobs,
		m.editDuration,
		m.editsInFlight,
		m.uploads,
		m.messagesByRole,
	)
	return m
}

// Middleware records request count and latency keyed by the matched route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		route := ctx.Route().Path
		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		m.httpRequests.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// EditStarted marks one edit as running and returns the func that records its outcome.
func (m *Metrics) EditStarted() func(status string) {
	start := time.Now()
	m.editsInFlight.Inc()
	return func(status string) {
		m.editsInFlight.Dec()
		m.editJobs.WithLabelValues(status).Inc()
		m.editDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) UploadFinished(status string) {
	m.uploads.WithLabelValues(status).Inc()
}

func (m *Metrics) MessageCreated(role string) {
	m.messagesByRole.WithLabelValues(role).Inc()
}
