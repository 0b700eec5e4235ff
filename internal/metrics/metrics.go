package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "health_monitor"

// Metrics is the set of Prometheus series the collector maintains.
type Metrics struct {
	registry       *prometheus.Registry
	probes         *prometheus.CounterVec
	probeDuration  *prometheus.HistogramVec
	serviceHealthy *prometheus.GaugeVec
	notifications  *prometheus.CounterVec
	passesSkipped  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Health probes issued, by service and result.",
		}, []string{"service", "result"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of health probes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		serviceHealthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_healthy",
			Help:      "1 when the service is healthy, 0 otherwise.",
		}, []string{"service"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries, by channel and result.",
		}, []string{"channel", "result"}),
		passesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_skipped_total",
			Help:      "Scheduled passes dropped because another pass was running.",
		}, []string{"task"}),
	}

	m.registry.MustRegister(
		m.probes,
		m.probeDuration,
		m.serviceHealthy,
		m.notifications,
		m.passesSkipped,
	)

	return m
}

func (m *Metrics) RecordProbe(service string, duration time.Duration, success bool) {
	m.probes.WithLabelValues(service, result(success)).Inc()
	m.probeDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *Metrics) UpdateHealthStatus(service string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	m.serviceHealthy.WithLabelValues(service).Set(v)
}

// TrackServices marks every named service healthy so the gauge has a
// series for it before its first state change.
func (m *Metrics) TrackServices(names ...string) {
	for _, name := range names {
		m.UpdateHealthStatus(name, true)
	}
}

func (m *Metrics) RecordNotification(channel string, success bool) {
	m.notifications.WithLabelValues(channel, result(success)).Inc()
}

func (m *Metrics) RecordSkippedPass(task string) {
	m.passesSkipped.WithLabelValues(task).Inc()
}

// Registry exposes the underlying registry for handlers and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Probes() *prometheus.CounterVec {
	return m.probes
}

func (m *Metrics) ServiceHealthy() *prometheus.GaugeVec {
	return m.serviceHealthy
}

func (m *Metrics) Notifications() *prometheus.CounterVec {
	return m.notifications
}

func (m *Metrics) PassesSkipped() *prometheus.CounterVec {
	return m.passesSkipped
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
