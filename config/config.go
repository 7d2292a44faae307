package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/pvcharge/core/control"
	"github.com/kilianp07/pvcharge/core/history"
	coremetrics "github.com/kilianp07/pvcharge/core/metrics"
	"github.com/kilianp07/pvcharge/infra/goe"
	"github.com/kilianp07/pvcharge/infra/mqtt"
	"github.com/kilianp07/pvcharge/infra/viessmann"
)

// Config is the root configuration of the controller.
type Config struct {
	// Enabled is the master switch; the web UI toggles it without touching
	// the rest of the file.
	Enabled   bool               `json:"enabled"`
	Charger   goe.Config         `json:"charger"`
	Viessmann viessmann.Config   `json:"viessmann"`
	Control   control.Config     `json:"control"`
	History   history.Config     `json:"history"`
	API       APIConfig          `json:"api"`
	Logging   LoggingConfig      `json:"logging"`
	Metrics   coremetrics.Config `json:"metrics"`
	MQTT      mqtt.Config        `json:"mqtt"`
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}

// Load reads the configuration file and applies PV_ environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("PV_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pv_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Charger.SetDefaults()
	cfg.Viessmann.SetDefaults()
	cfg.Control.SetDefaults()
	cfg.History.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.Charger.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Viessmann.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Control.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetEnabled rewrites only the enabled flag in the config file, preserving its
// format and the remaining keys.
func SetEnabled(path string, enabled bool) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return err
	}
	if err := k.Set("enabled", enabled); err != nil {
		return err
	}
	out, err := parser.Marshal(k.Raw())
	if err != nil {
		return err
	}
	// write-then-rename so a crash mid-write cannot truncate the config file
	// and a concurrent Load never sees a torn file
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
