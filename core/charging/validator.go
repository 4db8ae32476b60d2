package charging

import (
	"github.com/evfleet/ocppcore/core/evse"
	"github.com/evfleet/ocppcore/core/model"
)

// Validator decides whether a submitted profile may be accepted. Validation
// is deterministic and produces exactly one ValidationResult.
//
// The only state it touches is the profile itself: absent phase counts on AC
// periods are defaulted to three, so callers that want the input pristine
// should hand in a clone.
type Validator struct{}

// Validate runs the full decision tree for a profile targeting evseID
// (0 = station-wide). Purpose-level conflicts are reported in preference to
// schedule structural problems so the CSMS sees the most specific diagnosis.
func (v Validator) Validate(profile *model.ChargingProfile, evseID int, reg evse.Registry, stored ProfileView) ValidationResult {
	var info evse.Info
	known := false
	if evseID != evse.StationWideID {
		var ok bool
		info, ok = reg.Info(evseID)
		if !ok {
			return ResultEvseDoesNotExist
		}
		known = true
	}

	switch profile.ChargingProfilePurpose {
	case model.PurposeTxProfile:
		if res := v.validateTxProfile(profile, evseID, reg, stored); res != ResultValid {
			return res
		}
	case model.PurposeTxDefaultProfile:
		if res := v.validateTxDefault(profile, evseID, stored); res != ResultValid {
			return res
		}
	}

	return v.validateSchedules(profile, known, info)
}

func (v Validator) validateTxProfile(profile *model.ChargingProfile, evseID int, reg evse.Registry, stored ProfileView) ValidationResult {
	if profile.TransactionID == nil || *profile.TransactionID == "" {
		return ResultTxProfileMissingTransactionID
	}
	if evseID <= 0 {
		return ResultTxProfileEvseIDNotGreaterThanZero
	}
	if !reg.HasActiveTransaction(evseID) {
		return ResultTxProfileEvseHasNoActiveTransaction
	}
	tx, _ := reg.ActiveTransaction(evseID)
	if tx.ID != *profile.TransactionID {
		return ResultTxProfileTransactionNotOnEvse
	}
	for _, existing := range stored.TxProfiles(*profile.TransactionID) {
		if existing.ID != profile.ID && existing.StackLevel == profile.StackLevel {
			return ResultTxProfileConflictingStackLevel
		}
	}
	return ResultValid
}

func (v Validator) validateTxDefault(profile *model.ChargingProfile, evseID int, stored ProfileView) ValidationResult {
	for _, existing := range stored.TxDefaultProfiles(evseID) {
		if existing.ID != profile.ID && existing.StackLevel == profile.StackLevel {
			return ResultDuplicateTxDefaultProfileFound
		}
	}
	return ResultValid
}

func (v Validator) validateSchedules(profile *model.ChargingProfile, evseKnown bool, info evse.Info) ValidationResult {
	for i := range profile.ChargingSchedule {
		schedule := &profile.ChargingSchedule[i]
		periods := schedule.ChargingSchedulePeriod
		if len(periods) == 0 {
			return ResultNoChargingSchedulePeriods
		}
		if periods[0].StartPeriod != 0 {
			return ResultFirstStartScheduleIsNotZero
		}
		for j := 1; j < len(periods); j++ {
			if periods[j].StartPeriod <= periods[j-1].StartPeriod {
				return ResultPeriodsOutOfOrder
			}
		}
		if !schedule.ChargingRateUnit.Valid() {
			return ResultChargingRateUnitUnsupported
		}
		for j := range periods {
			period := &periods[j]
			if period.PhaseToUse != nil && (period.NumberPhases == nil || *period.NumberPhases != 1) {
				return ResultPeriodInvalidPhaseToUse
			}
			if evseKnown && info.PhaseType == evse.PhaseTypeDC {
				if period.NumberPhases != nil || period.PhaseToUse != nil {
					return ResultPeriodExtraneousPhaseValues
				}
			}
			if evseKnown && info.PhaseType == evse.PhaseTypeAC {
				if period.NumberPhases != nil && (*period.NumberPhases < 1 || *period.NumberPhases > maxNumberPhases) {
					return ResultPeriodUnsupportedNumberPhases
				}
				if period.NumberPhases == nil {
					phases := defaultNumberPhases
					period.NumberPhases = &phases
				}
			}
		}
		if profile.ChargingProfileKind == model.KindRelative {
			if schedule.StartSchedule != nil {
				return ResultExtraneousStartSchedule
			}
		} else if schedule.StartSchedule == nil {
			return ResultMissingRequiredStartSchedule
		}
	}
	return ResultValid
}
