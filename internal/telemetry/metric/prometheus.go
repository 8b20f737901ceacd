package metric

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "cmsadmin"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	NotificationsTotal *prometheus.CounterVec
	SessionClears      *prometheus.CounterVec
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API calls by endpoint, method and status (\"error\" when no response).",
		}, []string{"endpoint", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API call latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"endpoint", "method"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications shown to the user by type.",
		}, []string{"type"}),
		SessionClears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_clears_total",
			Help:      "Session clears by reason.",
		}, []string{"reason"}),
	}
	r.registry.MustRegister(r.RequestsTotal, r.RequestDuration, r.NotificationsTotal, r.SessionClears)
	return r
}

// Register adds an extra collector, e.g. the session collector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// ObserveRequest records one API call.
func (r *Registry) ObserveRequest(endpoint, method, status string, d time.Duration) {
	r.RequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	r.RequestDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

// RecordNotification counts a notification of the given type.
func (r *Registry) RecordNotification(kind string) {
	r.NotificationsTotal.WithLabelValues(kind).Inc()
}

// RecordSessionClear counts a session clear.
func (r *Registry) RecordSessionClear(reason string) {
	r.SessionClears.WithLabelValues(reason).Inc()
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry to path for node_exporter's textfile
// collector. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// WriteText writes the registry in Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	mfs, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
