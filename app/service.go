package app

import (
	"context"
	"fmt"
	"os"

	"github.com/evfleet/ocppcore/config"
	"github.com/evfleet/ocppcore/core/charging"
	"github.com/evfleet/ocppcore/core/evse"
	coremetrics "github.com/evfleet/ocppcore/core/metrics"
	"github.com/evfleet/ocppcore/infra/logger"
	"github.com/evfleet/ocppcore/infra/metrics"
	"github.com/evfleet/ocppcore/infra/mqtt"
	"github.com/evfleet/ocppcore/infra/store"
)

// Service wires the charging engine to its MQTT transport, persistence and
// metrics sinks.
type Service struct {
	Engine      *charging.Engine
	Registry    *evse.MemoryRegistry
	bridge      *mqtt.Bridge
	db          *store.SQLiteStore
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	applyLogging(cfg.Logging)
	logg := logger.New("service")

	var (
		persistence charging.ProfilePersistence
		db          *store.SQLiteStore
	)
	if cfg.Store.Backend == "sqlite" {
		sq, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open profile store: %w", err)
		}
		persistence = sq
		db = sq
	}
	profiles := charging.NewProfileStore(persistence)
	if err := profiles.Reload(); err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("reload profiles: %w", err)
	}

	registry := evse.NewMemoryRegistry()
	for _, e := range cfg.Evse {
		registry.AddEVSE(e.Info())
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	engine := charging.NewEngine(profiles, registry, nil, logger.New("charging"), sink)
	registry.OnTransactionClosed(engine.OnTransactionEnded)

	bridge, err := mqtt.NewBridge(cfg.MQTT, engine)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("mqtt bridge: %w", err)
	}

	return &Service{
		Engine:      engine,
		Registry:    registry,
		bridge:      bridge,
		db:          db,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled(),
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("smart charging service started, %d profile(s) loaded", s.Engine.StoredCount())
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bridge.Disconnect()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// applyLogging exports the configured level so every component logger picks
// it up.
func applyLogging(cfg config.LoggingConfig) {
	_ = os.Setenv("OCPP_LOG_LEVEL", cfg.Level)
	if cfg.Pretty {
		_ = os.Setenv("APP_ENV", "dev")
	}
}
