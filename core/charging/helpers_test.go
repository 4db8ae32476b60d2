package charging

import (
	"github.com/evfleet/ocppcore/core/evse"
	"github.com/evfleet/ocppcore/core/model"
)

func dt(s string) model.DateTime {
	d, err := model.ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dtp(s string) *model.DateTime {
	d := dt(s)
	return &d
}

func intp(v int) *int { return &v }

func strp(s string) *string { return &s }

func acStation() *evse.MemoryRegistry {
	return evse.NewMemoryRegistry(
		evse.Info{ID: 1, PhaseType: evse.PhaseTypeAC},
		evse.Info{ID: 2, PhaseType: evse.PhaseTypeAC},
	)
}

// absoluteProfile builds a minimal accepted Absolute profile with one period.
func absoluteProfile(id, stack int, purpose model.ChargingProfilePurpose, limit float64, start string) *model.ChargingProfile {
	return &model.ChargingProfile{
		ID:                     id,
		StackLevel:             stack,
		ChargingProfilePurpose: purpose,
		ChargingProfileKind:    model.KindAbsolute,
		ChargingSchedule: []model.ChargingSchedule{{
			ID:               1,
			StartSchedule:    dtp(start),
			ChargingRateUnit: model.ChargingRateUnitA,
			ChargingSchedulePeriod: []model.ChargingSchedulePeriod{
				{StartPeriod: 0, Limit: limit, NumberPhases: intp(3)},
			},
		}},
	}
}
