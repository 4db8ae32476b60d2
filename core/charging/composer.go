package charging

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/evfleet/ocppcore/core/model"
)

// ComposeInput carries everything one composite schedule computation needs.
// Profiles are borrowed for the duration of the call and never mutated.
type ComposeInput struct {
	EvseID int
	Start  time.Time
	End    time.Time
	Unit   model.ChargingRateUnit
	// Profiles are the station-wide and per-EVSE profiles that may apply.
	Profiles []*model.ChargingProfile
	// TransactionID and TxStartedAt describe the EVSE's active transaction,
	// when there is one. Relative profiles and TxProfiles are inactive
	// without it.
	TransactionID *string
	TxStartedAt   *time.Time
}

// Composer flattens the applicable profiles into a single non-overlapping
// envelope. It does no I/O; a caller-supplied context deadline aborts the
// sweep with ErrTimeout and no partial result.
type Composer struct{}

// purpose evaluation order for the cross-purpose minimum; fixed so phase
// attribution on limit ties is deterministic.
var purposeOrder = []model.ChargingProfilePurpose{
	model.PurposeChargingStationExternalConstraints,
	model.PurposeChargingStationMaxProfile,
	model.PurposeTxDefaultProfile,
	model.PurposeTxProfile,
}

// Compose sweeps the window [in.Start, in.End) and emits one period per
// stretch of uniform (limit, numberPhases). Instants where no profile
// applies produce no period at all.
func (Composer) Compose(ctx context.Context, in ComposeInput) (*model.CompositeSchedule, error) {
	start := in.Start.UTC().Truncate(time.Second)
	end := in.End.UTC().Truncate(time.Second)
	out := &model.CompositeSchedule{
		EvseID:                 in.EvseID,
		Duration:               0,
		ScheduleStart:          model.NewDateTime(start),
		ChargingRateUnit:       in.Unit,
		ChargingSchedulePeriod: []model.ChargingSchedulePeriod{},
	}
	if !end.After(start) {
		return out, nil
	}
	out.Duration = int(end.Sub(start) / time.Second)

	entries := buildEntries(in)

	t := start
	prevActive := false
	var prevLimit float64
	var prevPhases int
	for t.Before(end) {
		select {
		case <-ctx.Done():
			return nil, ErrTimeout
		default:
		}

		limit := math.Inf(1)
		phases := defaultNumberPhases
		active := false
		for _, purpose := range purposeOrder {
			pl, pp, ok := bestForPurpose(entries, purpose, t)
			if !ok {
				continue
			}
			if pl < limit {
				limit = pl
				phases = pp
			}
			active = true
		}

		if active && (!prevActive || limit != prevLimit || phases != prevPhases) {
			n := phases
			out.ChargingSchedulePeriod = append(out.ChargingSchedulePeriod, model.ChargingSchedulePeriod{
				StartPeriod:  int(t.Sub(start) / time.Second),
				Limit:        limit,
				NumberPhases: &n,
			})
		}
		prevActive, prevLimit, prevPhases = active, limit, phases

		next := end
		for _, e := range entries {
			if nb, ok := e.nextBoundary(t); ok && nb.After(t) && nb.Before(next) {
				next = nb
			}
		}
		t = next
	}
	return out, nil
}

// scheduleEntry is one profile prepared for the sweep: the consumed schedule
// and its resolved time anchor.
type scheduleEntry struct {
	profile   *model.ChargingProfile
	schedule  *model.ChargingSchedule
	anchor    time.Time
	recurring bool
	cycle     int
}

// buildEntries filters and anchors the input profiles. Profiles in a
// different unit are skipped: converting between amps and watts would need
// hardware-specific voltage knowledge. Only the first schedule of each
// profile is consumed.
func buildEntries(in ComposeInput) []scheduleEntry {
	profiles := make([]*model.ChargingProfile, len(in.Profiles))
	copy(profiles, in.Profiles)
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })

	var entries []scheduleEntry
	for _, p := range profiles {
		if len(p.ChargingSchedule) == 0 {
			continue
		}
		schedule := &p.ChargingSchedule[0]
		if schedule.ChargingRateUnit != in.Unit {
			continue
		}
		if p.ChargingProfilePurpose == model.PurposeTxProfile {
			if in.TransactionID == nil || p.TransactionID == nil || *p.TransactionID != *in.TransactionID {
				continue
			}
		}
		e := scheduleEntry{profile: p, schedule: schedule}
		switch p.ChargingProfileKind {
		case model.KindAbsolute:
			if schedule.StartSchedule == nil {
				continue
			}
			e.anchor = schedule.StartSchedule.Time
		case model.KindRelative:
			if in.TxStartedAt == nil {
				continue
			}
			e.anchor = in.TxStartedAt.UTC().Truncate(time.Second)
		case model.KindRecurring:
			if schedule.StartSchedule == nil {
				continue
			}
			e.anchor = schedule.StartSchedule.Time
			e.recurring = true
			e.cycle = secondsPerDay
			if p.RecurrencyKind != nil && *p.RecurrencyKind == model.RecurrencyWeekly {
				e.cycle = secondsPerWeek
			}
		default:
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// bestForPurpose picks the profile with the highest stack level in effect at
// t for the purpose; among ties it keeps the lowest limit. Entries arrive in
// ascending profile id order, which breaks full ties deterministically.
func bestForPurpose(entries []scheduleEntry, purpose model.ChargingProfilePurpose, t time.Time) (float64, int, bool) {
	found := false
	var bestStack int
	var bestLimit float64
	var bestPhases int
	for _, e := range entries {
		if e.profile.ChargingProfilePurpose != purpose {
			continue
		}
		limit, phases, ok := e.stateAt(t)
		if !ok {
			continue
		}
		switch {
		case !found || e.profile.StackLevel > bestStack:
			found = true
			bestStack = e.profile.StackLevel
			bestLimit = limit
			bestPhases = phases
		case e.profile.StackLevel == bestStack && limit < bestLimit:
			bestLimit = limit
			bestPhases = phases
		}
	}
	return bestLimit, bestPhases, found
}

// effectiveStart resolves the schedule start the entry is running at t.
// Recurring schedules shift the anchor forward to the cycle containing t.
func (e scheduleEntry) effectiveStart(t time.Time) time.Time {
	if !e.recurring {
		return e.anchor
	}
	diff := int(t.Sub(e.anchor) / time.Second)
	return t.Add(-time.Duration(floorMod(diff, e.cycle)) * time.Second)
}

// stateAt returns the limit and phase count the entry imposes at t, or false
// when it imposes nothing: outside its validity window, before its effective
// start, or past its schedule duration.
func (e scheduleEntry) stateAt(t time.Time) (float64, int, bool) {
	p := e.profile
	if p.ValidFrom != nil && t.Before(p.ValidFrom.Time) {
		return 0, 0, false
	}
	if p.ValidTo != nil && !t.Before(p.ValidTo.Time) {
		return 0, 0, false
	}
	start := e.effectiveStart(t)
	if t.Before(start) {
		return 0, 0, false
	}
	offset := int(t.Sub(start) / time.Second)
	if e.schedule.Duration != nil && offset >= *e.schedule.Duration {
		return 0, 0, false
	}
	periods := e.schedule.ChargingSchedulePeriod
	idx := sort.Search(len(periods), func(i int) bool { return periods[i].StartPeriod > offset }) - 1
	if idx < 0 {
		return 0, 0, false
	}
	return periods[idx].Limit, periods[idx].PhaseCount(defaultNumberPhases), true
}

// nextBoundary returns the earliest instant strictly after t at which the
// entry's contribution can change.
func (e scheduleEntry) nextBoundary(t time.Time) (time.Time, bool) {
	var next time.Time
	consider := func(c time.Time) {
		if c.After(t) && (next.IsZero() || c.Before(next)) {
			next = c
		}
	}
	p := e.profile
	if p.ValidFrom != nil {
		consider(p.ValidFrom.Time)
	}
	if p.ValidTo != nil {
		consider(p.ValidTo.Time)
	}
	start := e.effectiveStart(t)
	if start.After(t) {
		consider(start)
	} else {
		offset := int(t.Sub(start) / time.Second)
		for _, per := range e.schedule.ChargingSchedulePeriod {
			if per.StartPeriod > offset {
				consider(start.Add(time.Duration(per.StartPeriod) * time.Second))
				break
			}
		}
		if e.schedule.Duration != nil && *e.schedule.Duration > offset {
			consider(start.Add(time.Duration(*e.schedule.Duration) * time.Second))
		}
		if e.recurring {
			consider(start.Add(time.Duration(e.cycle) * time.Second))
		}
	}
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
