// Package evse exposes the charging station's view of its EVSEs: which ones
// exist, what supply they run on, and which transactions are active.
package evse

import "github.com/evfleet/ocppcore/core/model"

// StationWideID addresses the charging station itself rather than a single
// EVSE.
const StationWideID = 0

// PhaseType is the supply type of an EVSE.
type PhaseType string

const (
	PhaseTypeAC PhaseType = "AC"
	PhaseTypeDC PhaseType = "DC"
)

// Info describes a single EVSE.
type Info struct {
	ID        int
	PhaseType PhaseType
}

// Transaction is a snapshot of a charging session on an EVSE.
type Transaction struct {
	ID        string
	StartedAt model.DateTime
}

// Registry answers capability and session queries about EVSEs. Implementations
// must be safe for concurrent use.
type Registry interface {
	// Info returns the EVSE description, or false if no such EVSE exists.
	// StationWideID is never a valid argument here.
	Info(evseID int) (Info, bool)
	// HasActiveTransaction reports whether a transaction is running on the
	// EVSE.
	HasActiveTransaction(evseID int) bool
	// ActiveTransaction returns the running transaction, or false if none.
	ActiveTransaction(evseID int) (Transaction, bool)
}
