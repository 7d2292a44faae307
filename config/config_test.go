package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `enabled: true
charger:
  base_url: "http://192.168.1.40/api"
viessmann:
  iam:
    base_url: "https://iam.example.com/idp/v3"
    client_id: "client"
    redirect_uri: "http://localhost:4200/"
    use_pkce_flow: true
    username: "user"
    password: "pass"
  iot:
    base_url: "https://api.example.com/iot/v2"
    installation_id: "12345"
    gateway_id: "67890"
control:
  min_amp: 6
  max_amp: 16
  interval_minutes: 15
  window_start: "07:00"
  window_end: "21:00"
history:
  backend: "sqlite"
  path: "history.db"
api:
  addr: ":8000"
  auth_token: "secret"
metrics:
  prometheus_enabled: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"enabled", cfg.Enabled, true},
		{"charger.base_url", cfg.Charger.BaseURL, "http://192.168.1.40/api"},
		{"charger.timeout default", cfg.Charger.TimeoutSeconds, 10},
		{"iam.client_id", cfg.Viessmann.IAM.ClientID, "client"},
		{"iam.use_pkce_flow", cfg.Viessmann.IAM.UsePKCEFlow, true},
		{"iot.installation_id", cfg.Viessmann.IoT.InstallationID, "12345"},
		{"token_cache default", cfg.Viessmann.TokenCache, "token.json"},
		{"control.max_amp", cfg.Control.MaxAmp, 16},
		{"control.off_delay default", cfg.Control.OffDelayCycles, 3},
		{"history.backend", cfg.History.Backend, "sqlite"},
		{"api.auth_token", cfg.API.AuthToken, "secret"},
		{"api.static_dir default", cfg.API.StaticDir, "static"},
		{"logging.dir default", cfg.Logging.Dir, "logs"},
		{"metrics.prometheus", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.addr default", cfg.Metrics.PrometheusAddr, ":2112"},
		{"mqtt disabled", cfg.MQTT.Enabled(), false},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
  "enabled": false,
  "charger": {"base_url": "http://charger/api"},
  "viessmann": {
    "iam": {"base_url": "https://iam", "client_id": "c", "username": "u", "password": "p"},
    "iot": {"base_url": "https://iot", "installation_id": "1", "gateway_id": "2"}
  }
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Enabled {
		t.Fatalf("expected disabled")
	}
	if cfg.Control.IntervalMinutes != 15 {
		t.Fatalf("interval default: %d", cfg.Control.IntervalMinutes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "enabled": true,
  "charger": {"base_url": "http://charger/api"},
  "viessmann": {
    "iam": {"base_url": "https://iam", "client_id": "c", "username": "u", "password": "p"},
    "iot": {"base_url": "https://iot", "installation_id": "1", "gateway_id": "2"}
  }
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PV_ENABLED", "false")
	t.Setenv("PV_CHARGER__BASE_URL", "http://other/api")
	t.Setenv("PV_VIESSMANN__IAM__CLIENT_ID", "env-client")
	t.Setenv("PV_CONTROL__MAX_AMP", "20")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Enabled {
		t.Fatalf("top-level override not applied")
	}
	if cfg.Charger.BaseURL != "http://other/api" {
		t.Fatalf("nested override lost: base_url=%q", cfg.Charger.BaseURL)
	}
	if cfg.Viessmann.IAM.ClientID != "env-client" {
		t.Fatalf("deeply nested override lost: client_id=%q", cfg.Viessmann.IAM.ClientID)
	}
	if cfg.Control.MaxAmp != 20 {
		t.Fatalf("numeric override lost: max_amp=%d", cfg.Control.MaxAmp)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	// charger section missing base_url
	if err := os.WriteFile(path, []byte(`{"enabled": true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSetEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"enabled": true, "charger": {"base_url": "http://charger/api"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := SetEnabled(path, false); err != nil {
		t.Fatalf("set enabled: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["enabled"] != false {
		t.Fatalf("enabled not toggled: %v", out["enabled"])
	}
	charger, ok := out["charger"].(map[string]any)
	if !ok || charger["base_url"] != "http://charger/api" {
		t.Fatalf("other keys lost: %v", out)
	}

	// the rewrite goes through a rename, so no temp file may remain
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected files after rewrite: %v", names)
	}
}
