package charging

// ValidationResult is the outcome of validating a charging profile. The
// string values are stable identifiers surfaced to the CSMS verbatim as
// reason codes.
type ValidationResult string

const (
	ResultValid ValidationResult = "Valid"

	ResultEvseDoesNotExist ValidationResult = "EvseDoesNotExist"

	ResultTxProfileMissingTransactionID       ValidationResult = "TxProfileMissingTransactionId"
	ResultTxProfileEvseIDNotGreaterThanZero   ValidationResult = "TxProfileEvseIdNotGreaterThanZero"
	ResultTxProfileTransactionNotOnEvse       ValidationResult = "TxProfileTransactionNotOnEvse"
	ResultTxProfileEvseHasNoActiveTransaction ValidationResult = "TxProfileEvseHasNoActiveTransaction"
	ResultTxProfileConflictingStackLevel      ValidationResult = "TxProfileConflictingStackLevel"

	ResultNoChargingSchedulePeriods     ValidationResult = "ChargingProfileNoChargingSchedulePeriods"
	ResultFirstStartScheduleIsNotZero   ValidationResult = "ChargingProfileFirstStartScheduleIsNotZero"
	ResultMissingRequiredStartSchedule  ValidationResult = "ChargingProfileMissingRequiredStartSchedule"
	ResultExtraneousStartSchedule       ValidationResult = "ChargingProfileExtraneousStartSchedule"
	ResultChargingRateUnitUnsupported   ValidationResult = "ChargingScheduleChargingRateUnitUnsupported"
	ResultPeriodsOutOfOrder             ValidationResult = "ChargingSchedulePeriodsOutOfOrder"
	ResultPeriodInvalidPhaseToUse       ValidationResult = "ChargingSchedulePeriodInvalidPhaseToUse"
	ResultPeriodUnsupportedNumberPhases ValidationResult = "ChargingSchedulePeriodUnsupportedNumberPhases"
	ResultPeriodExtraneousPhaseValues   ValidationResult = "ChargingSchedulePeriodExtraneousPhaseValues"

	ResultDuplicateTxDefaultProfileFound ValidationResult = "DuplicateTxDefaultProfileFound"
)

// Accepted reports whether the result allows the profile to be stored.
func (r ValidationResult) Accepted() bool { return r == ResultValid }

// String returns the stable identifier.
func (r ValidationResult) String() string { return string(r) }
