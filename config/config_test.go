package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "station"
  username: "user"
  password: "pass"
  topic_prefix: "ocpp"
  use_tls: false
store:
  backend: "sqlite"
  path: "profiles.db"
logging:
  level: "debug"
metrics:
  sinks:
    - type: "nop"
evse:
  - id: 1
    phase_type: "AC"
  - id: 2
    phase_type: "DC"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "station"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "ocpp"},
		{"use_tls", cfg.MQTT.UseTLS, false},
		{"store.backend", cfg.Store.Backend, "sqlite"},
		{"store.path", cfg.Store.Path, "profiles.db"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"evse_count", len(cfg.Evse), 2},
		{"evse_phase", cfg.Evse[1].PhaseType, "DC"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `mqtt:
  broker: "tcp://localhost:1883"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.Path != "profiles.db" {
		t.Errorf("store defaults not applied: %+v", cfg.Store)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging default not applied: %+v", cfg.Logging)
	}
	if cfg.Metrics.PrometheusPort != "9090" {
		t.Errorf("metrics default not applied: %+v", cfg.Metrics)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad backend":   "store:\n  backend: \"redis\"\n",
		"bad log level": "logging:\n  level: \"loud\"\n",
		"bad evse id":   "evse:\n  - id: 0\n    phase_type: \"AC\"\n",
		"bad phase":     "evse:\n  - id: 1\n    phase_type: \"XX\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, data)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
