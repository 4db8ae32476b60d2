package ocppmsg

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Error codes follow the OCPP CALLERROR vocabulary.
const (
	ErrorCodeFormationViolation = "FormationViolation"
	ErrorCodeTypeConstraint     = "TypeConstraintViolation"
	ErrorCodeInternalError      = "InternalError"
	ErrorCodeNotSupported       = "NotSupported"
)

// WireError is the CALLERROR-style payload returned when a request cannot be
// decoded or processed.
type WireError struct {
	Code        string `json:"errorCode"`
	Description string `json:"errorDescription,omitempty"`
}

func (e *WireError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Decode unmarshals data into v and checks its structural constraints.
// Failures are reported as a WireError so callers can answer with a
// CALLERROR payload directly.
func Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &WireError{Code: ErrorCodeFormationViolation, Description: err.Error()}
	}
	if err := validate.Struct(v); err != nil {
		return &WireError{Code: ErrorCodeTypeConstraint, Description: err.Error()}
	}
	return nil
}

// Encode marshals a payload for publication.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
