// Package ocppmsg defines the OCPP 2.0.1 smart charging wire payloads and
// their structural validation. Decoding checks shape only; semantic checks
// are the charging engine's job.
package ocppmsg

import "github.com/evfleet/ocppcore/core/model"

// StatusInfo carries additional detail about a response status.
type StatusInfo struct {
	ReasonCode     string `json:"reasonCode" validate:"required,max=20"`
	AdditionalInfo string `json:"additionalInfo,omitempty" validate:"max=512"`
}

// ChargingProfileStatus reports the outcome of a SetChargingProfile request.
type ChargingProfileStatus string

const (
	ProfileStatusAccepted ChargingProfileStatus = "Accepted"
	ProfileStatusRejected ChargingProfileStatus = "Rejected"
)

// SetChargingProfileRequest installs a charging profile on an EVSE. EvseID 0
// targets the whole station.
type SetChargingProfileRequest struct {
	EvseID          int                   `json:"evseId" validate:"gte=0"`
	ChargingProfile model.ChargingProfile `json:"chargingProfile" validate:"required"`
}

// SetChargingProfileResponse reports acceptance; the reason code carries the
// validation verdict on rejection.
type SetChargingProfileResponse struct {
	Status     ChargingProfileStatus `json:"status" validate:"required,oneof=Accepted Rejected"`
	StatusInfo *StatusInfo           `json:"statusInfo,omitempty"`
}

// ClearChargingProfileStatus reports whether any profile was removed.
type ClearChargingProfileStatus string

const (
	ClearStatusAccepted ClearChargingProfileStatus = "Accepted"
	ClearStatusUnknown  ClearChargingProfileStatus = "Unknown"
)

// ClearChargingProfileCriteria selects profiles to remove when no explicit id
// is given.
type ClearChargingProfileCriteria struct {
	EvseID                 *int                          `json:"evseId,omitempty" validate:"omitempty,gte=0"`
	ChargingProfilePurpose *model.ChargingProfilePurpose `json:"chargingProfilePurpose,omitempty"`
	StackLevel             *int                          `json:"stackLevel,omitempty" validate:"omitempty,gte=0"`
}

// ClearChargingProfileRequest removes profiles by id or by criteria.
type ClearChargingProfileRequest struct {
	ChargingProfileID       *int                          `json:"chargingProfileId,omitempty"`
	ChargingProfileCriteria *ClearChargingProfileCriteria `json:"chargingProfileCriteria,omitempty"`
}

// ClearChargingProfileResponse reports the clear outcome.
type ClearChargingProfileResponse struct {
	Status ClearChargingProfileStatus `json:"status" validate:"required,oneof=Accepted Unknown"`
}

// GenericStatus is the Accepted/Rejected pair used by composite schedule
// responses.
type GenericStatus string

const (
	GenericStatusAccepted GenericStatus = "Accepted"
	GenericStatusRejected GenericStatus = "Rejected"
)

// GetCompositeScheduleRequest asks for the effective charging envelope over
// the coming duration seconds.
type GetCompositeScheduleRequest struct {
	Duration         int                     `json:"duration" validate:"gt=0"`
	ChargingRateUnit *model.ChargingRateUnit `json:"chargingRateUnit,omitempty" validate:"omitempty,oneof=A W"`
	EvseID           int                     `json:"evseId" validate:"gte=0"`
}

// GetCompositeScheduleResponse carries the computed schedule on success.
type GetCompositeScheduleResponse struct {
	Status     GenericStatus            `json:"status" validate:"required,oneof=Accepted Rejected"`
	StatusInfo *StatusInfo              `json:"statusInfo,omitempty"`
	Schedule   *model.CompositeSchedule `json:"schedule,omitempty"`
}

// GetChargingProfileStatus reports whether any profiles matched the request.
type GetChargingProfileStatus string

const (
	GetProfilesStatusAccepted   GetChargingProfileStatus = "Accepted"
	GetProfilesStatusNoProfiles GetChargingProfileStatus = "NoProfiles"
)

// ChargingProfileCriterion filters the profiles to report. Empty fields match
// everything.
type ChargingProfileCriterion struct {
	ChargingProfilePurpose *model.ChargingProfilePurpose `json:"chargingProfilePurpose,omitempty"`
	StackLevel             *int                          `json:"stackLevel,omitempty" validate:"omitempty,gte=0"`
	ChargingProfileID      []int                         `json:"chargingProfileId,omitempty"`
}

// GetChargingProfilesRequest asks the station to report installed profiles.
type GetChargingProfilesRequest struct {
	RequestID       int                      `json:"requestId" validate:"gte=0"`
	EvseID          *int                     `json:"evseId,omitempty" validate:"omitempty,gte=0"`
	ChargingProfile ChargingProfileCriterion `json:"chargingProfile"`
}

// GetChargingProfilesResponse acknowledges the report request.
type GetChargingProfilesResponse struct {
	Status GetChargingProfileStatus `json:"status" validate:"required,oneof=Accepted NoProfiles"`
}

// ReportChargingProfilesRequest is the notification streamed in answer to
// GetChargingProfiles. Tbc is true on every message but the last.
type ReportChargingProfilesRequest struct {
	RequestID       int                     `json:"requestId" validate:"gte=0"`
	EvseID          int                     `json:"evseId" validate:"gte=0"`
	ChargingProfile []model.ChargingProfile `json:"chargingProfile" validate:"required,min=1"`
	Tbc             bool                    `json:"tbc,omitempty"`
}
