package metrics

import (
	"time"

	"github.com/evfleet/ocppcore/core/model"
)

// ProfileDecision is the outcome of a single SetChargingProfile request.
type ProfileDecision struct {
	EvseID    int
	ProfileID int
	Purpose   model.ChargingProfilePurpose
	Result    string
	Accepted  bool
	Time      time.Time
}

// MetricsSink records profile decisions for observability purposes.
type MetricsSink interface {
	RecordProfileDecision(ev ProfileDecision) error
}

// CompositeQuery captures one composite schedule computation.
type CompositeQuery struct {
	EvseID        int
	Unit          model.ChargingRateUnit
	WindowSeconds int
	Periods       int
	Duration      time.Duration
	Time          time.Time
}

// CompositeQueryRecorder is implemented by sinks able to record composite
// schedule queries.
type CompositeQueryRecorder interface {
	RecordCompositeQuery(ev CompositeQuery) error
}

// StoredProfilesRecorder tracks how many profiles the station currently holds.
type StoredProfilesRecorder interface {
	RecordStoredProfiles(count int) error
}

// ClearEvent captures a ClearChargingProfile request and how many profiles it
// removed.
type ClearEvent struct {
	Removed int
	Time    time.Time
}

// ClearRecorder records profile clear requests.
type ClearRecorder interface {
	RecordClear(ev ClearEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordProfileDecision(ProfileDecision) error { return nil }

func (NopSink) RecordCompositeQuery(CompositeQuery) error { return nil }
func (NopSink) RecordStoredProfiles(int) error            { return nil }
func (NopSink) RecordClear(ClearEvent) error              { return nil }
