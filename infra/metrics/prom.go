package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/evfleet/ocppcore/core/metrics"
)

// PromSink records profile decisions and composite schedule queries in
// Prometheus metrics.
type PromSink struct {
	decisions *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	cleared   prometheus.Counter
	stored    prometheus.Gauge
}

// NewPromSink registers charging metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charging_profile_decisions_total",
		Help: "Total number of SetChargingProfile validation decisions",
	}, []string{"purpose", "result", "accepted"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "composite_schedule_duration_seconds",
		Help:    "Time spent computing a composite schedule",
		Buckets: prometheus.DefBuckets,
	}, []string{"unit"})
	cleared := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "charging_profiles_cleared_total",
		Help: "Total number of charging profiles removed by clear requests",
	})
	stored := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "charging_profiles_stored",
		Help: "Number of charging profiles currently installed",
	})

	if err := reg.Register(decisions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			decisions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(cleared); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			cleared = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(stored); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			stored = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{decisions: decisions, latency: latency, cleared: cleared, stored: stored}, nil
}

// RecordProfileDecision increments the decision counter.
func (s *PromSink) RecordProfileDecision(d coremetrics.ProfileDecision) error {
	s.decisions.WithLabelValues(string(d.Purpose), d.Result, strconv.FormatBool(d.Accepted)).Inc()
	return nil
}

// RecordCompositeQuery records the computation latency histogram.
func (s *PromSink) RecordCompositeQuery(q coremetrics.CompositeQuery) error {
	s.latency.WithLabelValues(string(q.Unit)).Observe(q.Duration.Seconds())
	return nil
}

// RecordClear counts removed profiles.
func (s *PromSink) RecordClear(ev coremetrics.ClearEvent) error {
	s.cleared.Add(float64(ev.Removed))
	return nil
}

// RecordStoredProfiles sets the gauge to the number of installed profiles.
func (s *PromSink) RecordStoredProfiles(count int) error {
	if s.stored != nil {
		s.stored.Set(float64(count))
	}
	return nil
}
