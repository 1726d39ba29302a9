// Package metrics exposes worker pool activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/otp-2025.net/internal/domain"
)

// PoolMetrics is safe to use as a nil pointer, in which case every method is
// a no-op.
type PoolMetrics struct {
	active   prometheus.Gauge
	units    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPoolMetrics creates the pool collectors and registers them with reg
func NewPoolMetrics(reg prometheus.Registerer, direction domain.Direction) (*PoolMetrics, error) {
	labels := prometheus.Labels{"direction": string(direction)}
	m := &PoolMetrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "otp",
			Name:        "units_active",
			Help:        "Execution units currently holding a worker slot.",
			ConstLabels: labels,
		}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "otp",
			Name:        "units_total",
			Help:        "Finished execution units by outcome status.",
			ConstLabels: labels,
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "otp",
			Name:        "unit_duration_seconds",
			Help:        "Time an execution unit held its worker slot.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{m.active, m.units, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// UnitStarted records a newly occupied slot
func (m *PoolMetrics) UnitStarted() {
	if m == nil {
		return
	}
	m.active.Inc()
}

// UnitFinished records a freed slot and the unit's outcome
func (m *PoolMetrics) UnitFinished(outcome *domain.UnitOutcome) {
	if m == nil {
		return
	}
	m.active.Dec()
	status := string(outcome.Status)
	m.units.WithLabelValues(status).Inc()
	m.duration.WithLabelValues(status).Observe(outcome.Duration().Seconds())
}
