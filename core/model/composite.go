package model

// CompositeSchedule is the merged view of every profile that applies to an
// EVSE over a query window. Periods are relative to ScheduleStart.
type CompositeSchedule struct {
	EvseID                 int                      `json:"evseId"`
	Duration               int                      `json:"duration"`
	ScheduleStart          DateTime                 `json:"scheduleStart"`
	ChargingRateUnit       ChargingRateUnit         `json:"chargingRateUnit"`
	ChargingSchedulePeriod []ChargingSchedulePeriod `json:"chargingSchedulePeriod"`
}
