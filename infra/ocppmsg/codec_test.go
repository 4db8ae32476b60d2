package ocppmsg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evfleet/ocppcore/core/model"
)

const setProfileJSON = `{
  "evseId": 1,
  "chargingProfile": {
    "id": 11,
    "stackLevel": 0,
    "chargingProfilePurpose": "TxDefaultProfile",
    "chargingProfileKind": "Absolute",
    "chargingSchedule": [{
      "id": 1,
      "startSchedule": "2024-01-17T17:00:00Z",
      "chargingRateUnit": "A",
      "chargingSchedulePeriod": [{"startPeriod": 0, "limit": 16, "numberPhases": 3}]
    }]
  }
}`

func TestDecode_SetChargingProfileRequest(t *testing.T) {
	var req SetChargingProfileRequest
	require.NoError(t, Decode([]byte(setProfileJSON), &req))

	assert.Equal(t, 1, req.EvseID)
	assert.Equal(t, 11, req.ChargingProfile.ID)
	assert.Equal(t, model.PurposeTxDefaultProfile, req.ChargingProfile.ChargingProfilePurpose)
	require.Len(t, req.ChargingProfile.ChargingSchedule, 1)
	sched := req.ChargingProfile.ChargingSchedule[0]
	require.NotNil(t, sched.StartSchedule)
	assert.Equal(t, model.ChargingRateUnitA, sched.ChargingRateUnit)
	require.Len(t, sched.ChargingSchedulePeriod, 1)
	assert.Equal(t, 16.0, sched.ChargingSchedulePeriod[0].Limit)
}

func TestDecode_MalformedJSON(t *testing.T) {
	var req SetChargingProfileRequest
	err := Decode([]byte(`{"evseId": `), &req)
	var werr *WireError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, ErrorCodeFormationViolation, werr.Code)
}

func TestDecode_StructuralViolation(t *testing.T) {
	var req GetCompositeScheduleRequest
	err := Decode([]byte(`{"duration": 0, "evseId": 1}`), &req)
	var werr *WireError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, ErrorCodeTypeConstraint, werr.Code)

	err = Decode([]byte(`{"duration": 600, "evseId": -1}`), &req)
	require.True(t, errors.As(err, &werr))

	err = Decode([]byte(`{"duration": 600, "evseId": 1, "chargingRateUnit": "VA"}`), &req)
	require.True(t, errors.As(err, &werr))
}

func TestEncode_ResponseShapes(t *testing.T) {
	b, err := Encode(SetChargingProfileResponse{
		Status:     ProfileStatusRejected,
		StatusInfo: &StatusInfo{ReasonCode: "DuplicateProfile"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Rejected","statusInfo":{"reasonCode":"DuplicateProfile"}}`, string(b))

	b, err = Encode(ClearChargingProfileResponse{Status: ClearStatusUnknown})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Unknown"}`, string(b))
}

func TestDecode_ClearRequestVariants(t *testing.T) {
	var req ClearChargingProfileRequest
	require.NoError(t, Decode([]byte(`{"chargingProfileId": 7}`), &req))
	require.NotNil(t, req.ChargingProfileID)
	assert.Equal(t, 7, *req.ChargingProfileID)

	req = ClearChargingProfileRequest{}
	payload := `{"chargingProfileCriteria": {"evseId": 2, "chargingProfilePurpose": "TxDefaultProfile", "stackLevel": 1}}`
	require.NoError(t, Decode([]byte(payload), &req))
	require.NotNil(t, req.ChargingProfileCriteria)
	assert.Equal(t, 2, *req.ChargingProfileCriteria.EvseID)
	assert.Equal(t, model.PurposeTxDefaultProfile, *req.ChargingProfileCriteria.ChargingProfilePurpose)
}
