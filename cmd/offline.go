package cmd

import (
	"fmt"

	"github.com/evfleet/ocppcore/config"
	"github.com/evfleet/ocppcore/core/charging"
	"github.com/evfleet/ocppcore/core/evse"
	"github.com/evfleet/ocppcore/infra/store"
)

// offlineState is the engine state the offline subcommands rebuild from the
// configuration without connecting to the broker.
type offlineState struct {
	profiles *charging.ProfileStore
	registry *evse.MemoryRegistry
	close    func() error
}

func loadOfflineState(cfgPath string) (*offlineState, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var persistence charging.ProfilePersistence
	closeFn := func() error { return nil }
	if cfg.Store.Backend == "sqlite" {
		sq, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open profile store: %w", err)
		}
		persistence = sq
		closeFn = sq.Close
	}
	profiles := charging.NewProfileStore(persistence)
	if err := profiles.Reload(); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("reload profiles: %w", err)
	}

	registry := evse.NewMemoryRegistry()
	for _, e := range cfg.Evse {
		registry.AddEVSE(e.Info())
	}
	return &offlineState{profiles: profiles, registry: registry, close: closeFn}, nil
}
