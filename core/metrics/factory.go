package metrics

import "github.com/evfleet/ocppcore/core/factory"

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink creates a MetricsSink from the provided configuration.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordProfileDecision forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordProfileDecision(ev ProfileDecision) error {
	for _, s := range m.Sinks {
		if err := s.RecordProfileDecision(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCompositeQuery forwards composite query events when supported by the
// sink.
func (m *MultiSink) RecordCompositeQuery(ev CompositeQuery) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CompositeQueryRecorder); ok {
			if err := rec.RecordCompositeQuery(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStoredProfiles forwards the stored-profile gauge when supported.
func (m *MultiSink) RecordStoredProfiles(count int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(StoredProfilesRecorder); ok {
			if err := rec.RecordStoredProfiles(count); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordClear forwards clear events when supported.
func (m *MultiSink) RecordClear(ev ClearEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ClearRecorder); ok {
			if err := rec.RecordClear(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
