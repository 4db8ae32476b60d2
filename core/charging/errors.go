package charging

import (
	"errors"
	"fmt"
)

// Operational errors. Validation failures are returned as ValidationResult
// values; these errors cover everything else that can go wrong while serving
// a request. They unwind the current call but never kill the process.
var (
	// ErrPersistence signals that a durable write or delete failed. The
	// in-memory state is unchanged when it is returned.
	ErrPersistence = errors.New("profile persistence failure")

	// ErrEvseUnavailable signals a request targeting an EVSE the station
	// does not expose.
	ErrEvseUnavailable = errors.New("evse unavailable")

	// ErrTimeout signals that a composite schedule computation exceeded its
	// deadline. No partial schedule is produced.
	ErrTimeout = errors.New("composite schedule computation timed out")
)

// InvariantError reports internal state that contradicts the store's
// guarantees. The profile id is kept for offline inspection.
type InvariantError struct {
	ProfileID int
	Reason    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated for profile %d: %s", e.ProfileID, e.Reason)
}
