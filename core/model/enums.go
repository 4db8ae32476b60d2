package model

// ChargingRateUnit is the unit a schedule limit is expressed in.
type ChargingRateUnit string

const (
	ChargingRateUnitA ChargingRateUnit = "A"
	ChargingRateUnitW ChargingRateUnit = "W"
)

// Valid reports whether u is a known rate unit.
func (u ChargingRateUnit) Valid() bool {
	return u == ChargingRateUnitA || u == ChargingRateUnitW
}

// ChargingProfilePurpose classifies what a profile constrains.
type ChargingProfilePurpose string

const (
	PurposeChargingStationExternalConstraints ChargingProfilePurpose = "ChargingStationExternalConstraints"
	PurposeChargingStationMaxProfile          ChargingProfilePurpose = "ChargingStationMaxProfile"
	PurposeTxDefaultProfile                   ChargingProfilePurpose = "TxDefaultProfile"
	PurposeTxProfile                          ChargingProfilePurpose = "TxProfile"
)

// Valid reports whether p is a known purpose.
func (p ChargingProfilePurpose) Valid() bool {
	switch p {
	case PurposeChargingStationExternalConstraints,
		PurposeChargingStationMaxProfile,
		PurposeTxDefaultProfile,
		PurposeTxProfile:
		return true
	}
	return false
}

// ChargingProfileKind describes how schedule start times are anchored.
type ChargingProfileKind string

const (
	KindAbsolute  ChargingProfileKind = "Absolute"
	KindRecurring ChargingProfileKind = "Recurring"
	KindRelative  ChargingProfileKind = "Relative"
)

// RecurrencyKind is the repetition period of a Recurring profile.
type RecurrencyKind string

const (
	RecurrencyDaily  RecurrencyKind = "Daily"
	RecurrencyWeekly RecurrencyKind = "Weekly"
)
