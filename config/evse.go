package config

import (
	"fmt"

	"github.com/evfleet/ocppcore/core/evse"
)

// EvseConfig declares one EVSE of the station.
type EvseConfig struct {
	ID        int    `json:"id"`
	PhaseType string `json:"phase_type"`
}

// Validate checks the EVSE declaration.
func (c EvseConfig) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("evse id must be positive, got %d", c.ID)
	}
	if c.PhaseType != string(evse.PhaseTypeAC) && c.PhaseType != string(evse.PhaseTypeDC) {
		return fmt.Errorf("evse %d: unknown phase type %s", c.ID, c.PhaseType)
	}
	return nil
}

// Info converts the declaration to a registry entry.
func (c EvseConfig) Info() evse.Info {
	return evse.Info{ID: c.ID, PhaseType: evse.PhaseType(c.PhaseType)}
}
