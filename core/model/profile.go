package model

// ChargingSchedulePeriod caps the charging rate from StartPeriod (seconds
// after the schedule start) until the next period begins.
type ChargingSchedulePeriod struct {
	StartPeriod  int     `json:"startPeriod"`
	Limit        float64 `json:"limit"`
	NumberPhases *int    `json:"numberPhases,omitempty"`
	PhaseToUse   *int    `json:"phaseToUse,omitempty"`
}

// PhaseCount returns the number of phases the period applies to, falling back
// to def when the period does not carry one.
func (p ChargingSchedulePeriod) PhaseCount(def int) int {
	if p.NumberPhases != nil {
		return *p.NumberPhases
	}
	return def
}

// ChargingSchedule is an ordered list of rate-limit periods sharing one unit.
type ChargingSchedule struct {
	ID                     int                      `json:"id"`
	StartSchedule          *DateTime                `json:"startSchedule,omitempty"`
	Duration               *int                     `json:"duration,omitempty"`
	ChargingRateUnit       ChargingRateUnit         `json:"chargingRateUnit"`
	MinChargingRate        *float64                 `json:"minChargingRate,omitempty"`
	ChargingSchedulePeriod []ChargingSchedulePeriod `json:"chargingSchedulePeriod"`
}

// ChargingProfile is the unit of smart charging intent exchanged with a CSMS.
type ChargingProfile struct {
	ID                     int                    `json:"id"`
	StackLevel             int                    `json:"stackLevel"`
	ChargingProfilePurpose ChargingProfilePurpose `json:"chargingProfilePurpose"`
	ChargingProfileKind    ChargingProfileKind    `json:"chargingProfileKind"`
	RecurrencyKind         *RecurrencyKind        `json:"recurrencyKind,omitempty"`
	ValidFrom              *DateTime              `json:"validFrom,omitempty"`
	ValidTo                *DateTime              `json:"validTo,omitempty"`
	TransactionID          *string                `json:"transactionId,omitempty"`
	ChargingSchedule       []ChargingSchedule     `json:"chargingSchedule"`
}

// Clone returns a deep copy of the profile so callers and stores never share
// mutable state.
func (p *ChargingProfile) Clone() *ChargingProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.RecurrencyKind = clonePtr(p.RecurrencyKind)
	out.ValidFrom = clonePtr(p.ValidFrom)
	out.ValidTo = clonePtr(p.ValidTo)
	out.TransactionID = clonePtr(p.TransactionID)
	out.ChargingSchedule = make([]ChargingSchedule, len(p.ChargingSchedule))
	for i, s := range p.ChargingSchedule {
		cs := s
		cs.StartSchedule = clonePtr(s.StartSchedule)
		cs.Duration = clonePtr(s.Duration)
		cs.MinChargingRate = clonePtr(s.MinChargingRate)
		cs.ChargingSchedulePeriod = make([]ChargingSchedulePeriod, len(s.ChargingSchedulePeriod))
		for j, per := range s.ChargingSchedulePeriod {
			cp := per
			cp.NumberPhases = clonePtr(per.NumberPhases)
			cp.PhaseToUse = clonePtr(per.PhaseToUse)
			cs.ChargingSchedulePeriod[j] = cp
		}
		out.ChargingSchedule[i] = cs
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
