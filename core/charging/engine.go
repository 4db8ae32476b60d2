package charging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evfleet/ocppcore/core/clock"
	"github.com/evfleet/ocppcore/core/evse"
	"github.com/evfleet/ocppcore/core/logger"
	"github.com/evfleet/ocppcore/core/metrics"
	"github.com/evfleet/ocppcore/core/model"
)

// Engine is the public façade of the smart charging core. Mutating
// operations are serialized by a single mutex; composite queries snapshot
// the profile set and compute outside the critical section.
type Engine struct {
	mu        sync.Mutex
	store     *ProfileStore
	registry  evse.Registry
	clock     clock.Clock
	validator Validator
	composer  Composer
	log       logger.Logger
	sink      metrics.MetricsSink
}

// NewEngine assembles an engine. clk, log and sink may be nil; they default
// to the system clock, a no-op logger and a no-op sink.
func NewEngine(store *ProfileStore, registry evse.Registry, clk clock.Clock, log logger.Logger, sink metrics.MetricsSink) *Engine {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{
		store:    store,
		registry: registry,
		clock:    clk,
		log:      log,
		sink:     sink,
	}
}

// SetProfile validates the profile for the EVSE and stores it when accepted.
// The validation result is always meaningful; the error is non-nil only when
// an accepted profile could not be durably recorded, in which case nothing
// was stored.
func (e *Engine) SetProfile(evseID int, profile *model.ChargingProfile) (ValidationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate := profile.Clone()
	result := e.validator.Validate(candidate, evseID, e.registry, e.store)
	e.recordDecision(evseID, candidate, result)
	if !result.Accepted() {
		e.log.Infof("profile %d rejected for evse %d: %s", candidate.ID, evseID, result)
		return result, nil
	}
	if err := e.store.Add(evseID, candidate); err != nil {
		e.log.Errorf("profile %d accepted but not persisted: %v", candidate.ID, err)
		return result, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	e.log.Debugw("profile stored", map[string]any{
		"profile_id":  candidate.ID,
		"evse_id":     evseID,
		"purpose":     string(candidate.ChargingProfilePurpose),
		"stack_level": candidate.StackLevel,
	})
	e.recordStoredCount()
	return result, nil
}

// ClearProfile removes the profile with the given id and reports whether it
// existed.
func (e *Engine) ClearProfile(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed, err := e.store.Remove(id)
	if err != nil {
		e.log.Errorf("clear profile %d: %v", id, err)
		return false
	}
	if removed {
		e.recordClear(1)
	}
	return removed
}

// ClearCriteria selects profiles for ClearProfiles. A profile matches when
// its id equals ProfileID, or, unless CheckIDOnly is set, when every present
// criterion matches.
type ClearCriteria struct {
	ProfileID   *int
	StackLevel  *int
	Purpose     *model.ChargingProfilePurpose
	EvseID      *int
	CheckIDOnly bool
}

func (c ClearCriteria) matches(evseID int, p *model.ChargingProfile) bool {
	if c.ProfileID != nil && p.ID == *c.ProfileID {
		return true
	}
	if c.CheckIDOnly {
		return false
	}
	// External constraints are owned by the station, never cleared on CSMS
	// request.
	if p.ChargingProfilePurpose == model.PurposeChargingStationExternalConstraints {
		return false
	}
	if c.ProfileID != nil {
		return false
	}
	if c.Purpose != nil && p.ChargingProfilePurpose != *c.Purpose {
		return false
	}
	if c.StackLevel != nil && p.StackLevel != *c.StackLevel {
		return false
	}
	if c.EvseID != nil && evseID != *c.EvseID {
		return false
	}
	return true
}

// ClearProfiles removes every profile the criteria select and reports
// whether anything was removed.
func (e *Engine) ClearProfiles(c ClearCriteria) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed, err := e.store.RemoveWhere(c.matches)
	if err != nil {
		e.log.Errorf("clear profiles: %v", err)
	}
	if removed > 0 {
		e.recordClear(removed)
	}
	return removed > 0
}

// GetCompositeSchedule computes the effective envelope for the EVSE over
// [now, now+duration). An empty unit defaults to amps.
func (e *Engine) GetCompositeSchedule(ctx context.Context, evseID, duration int, unit model.ChargingRateUnit) (*model.CompositeSchedule, error) {
	if unit == "" {
		unit = model.ChargingRateUnitA
	}
	if evseID != evse.StationWideID {
		if _, ok := e.registry.Info(evseID); !ok {
			return nil, fmt.Errorf("%w: evse %d", ErrEvseUnavailable, evseID)
		}
	}
	now := e.clock.Now()
	in := ComposeInput{
		EvseID:   evseID,
		Start:    now,
		End:      now.Add(time.Duration(duration) * time.Second),
		Unit:     unit,
		Profiles: e.store.ListFor(evseID),
	}
	if tx, ok := e.registry.ActiveTransaction(evseID); ok {
		id := tx.ID
		started := tx.StartedAt.Time
		in.TransactionID = &id
		in.TxStartedAt = &started
	}
	began := time.Now()
	schedule, err := e.composer.Compose(ctx, in)
	if err != nil {
		e.log.Warnf("composite schedule for evse %d: %v", evseID, err)
		return nil, err
	}
	e.recordCompositeQuery(schedule, duration, unit, time.Since(began))
	return schedule, nil
}

// ReportCriteria filters the stored profiles for GetChargingProfiles
// reporting. Nil fields match everything; a non-empty ProfileIDs list keeps
// only the listed ids.
type ReportCriteria struct {
	Purpose    *model.ChargingProfilePurpose
	StackLevel *int
	EvseID     *int
	ProfileIDs []int
}

func (c ReportCriteria) matches(evseID int, p *model.ChargingProfile) bool {
	if c.Purpose != nil && p.ChargingProfilePurpose != *c.Purpose {
		return false
	}
	if c.StackLevel != nil && p.StackLevel != *c.StackLevel {
		return false
	}
	if c.EvseID != nil && evseID != *c.EvseID {
		return false
	}
	if len(c.ProfileIDs) > 0 {
		for _, id := range c.ProfileIDs {
			if p.ID == id {
				return true
			}
		}
		return false
	}
	return true
}

// ReportedProfiles returns clones of the stored profiles matching the
// criteria, ordered by ascending profile id.
func (e *Engine) ReportedProfiles(c ReportCriteria) []StoredProfile {
	var out []StoredProfile
	for _, sp := range e.store.All() {
		if c.matches(sp.EvseID, sp.Profile) {
			out = append(out, StoredProfile{EvseID: sp.EvseID, Profile: sp.Profile.Clone()})
		}
	}
	return out
}

// StoredCount returns the number of profiles currently held.
func (e *Engine) StoredCount() int { return e.store.Count() }

// OnTransactionEnded erases the TxProfiles bound to the finished
// transaction. Wire it to the EVSE registry's close notification.
func (e *Engine) OnTransactionEnded(transactionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed, err := e.store.ClearTransaction(transactionID)
	if err != nil {
		e.log.Errorf("clear profiles of transaction %s: %v", transactionID, err)
		return
	}
	if removed > 0 {
		e.log.Infof("transaction %s ended, %d profile(s) removed", transactionID, removed)
		e.recordStoredCount()
	}
}

func (e *Engine) recordDecision(evseID int, p *model.ChargingProfile, result ValidationResult) {
	err := e.sink.RecordProfileDecision(metrics.ProfileDecision{
		EvseID:    evseID,
		ProfileID: p.ID,
		Purpose:   p.ChargingProfilePurpose,
		Result:    result.String(),
		Accepted:  result.Accepted(),
		Time:      e.clock.Now(),
	})
	if err != nil {
		e.log.Warnf("record profile decision: %v", err)
	}
}

func (e *Engine) recordCompositeQuery(cs *model.CompositeSchedule, window int, unit model.ChargingRateUnit, took time.Duration) {
	if rec, ok := e.sink.(metrics.CompositeQueryRecorder); ok {
		err := rec.RecordCompositeQuery(metrics.CompositeQuery{
			EvseID:        cs.EvseID,
			Unit:          unit,
			WindowSeconds: window,
			Periods:       len(cs.ChargingSchedulePeriod),
			Duration:      took,
			Time:          e.clock.Now(),
		})
		if err != nil {
			e.log.Warnf("record composite query: %v", err)
		}
	}
}

func (e *Engine) recordStoredCount() {
	if rec, ok := e.sink.(metrics.StoredProfilesRecorder); ok {
		if err := rec.RecordStoredProfiles(e.store.Count()); err != nil {
			e.log.Warnf("record stored profiles: %v", err)
		}
	}
}

func (e *Engine) recordClear(removed int) {
	if rec, ok := e.sink.(metrics.ClearRecorder); ok {
		if err := rec.RecordClear(metrics.ClearEvent{Removed: removed, Time: e.clock.Now()}); err != nil {
			e.log.Warnf("record clear: %v", err)
		}
	}
	e.recordStoredCount()
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
