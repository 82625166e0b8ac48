package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	coremetrics "github.com/kilianp07/bems/core/metrics"
	"github.com/kilianp07/bems/core/sim"
	"github.com/kilianp07/bems/infra/mqtt"
)

// Config is the top-level service configuration.
type Config struct {
	Buildings  []sim.BuildingConfig `json:"buildings"`
	Controller ControllerConfig     `json:"controller"`
	Episode    sim.EpisodeConfig    `json:"episode"`
	Metrics    coremetrics.Config   `json:"metrics"`
	MQTT       mqtt.Config          `json:"mqtt"`
}

// Load reads the configuration file (yaml or json by extension) and applies
// BEMS_ environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("BEMS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bems_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	for i := range cfg.Buildings {
		cfg.Buildings[i].SetDefaults()
		if err := cfg.Buildings[i].Validate(); err != nil {
			return nil, err
		}
	}
	cfg.Episode.SetDefaults()
	if err := cfg.Episode.Validate(); err != nil {
		return nil, err
	}
	cfg.Controller.SetDefaults()
	if err := cfg.Controller.Resolve(); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Buildings) == 0 {
		return nil, fmt.Errorf("at least one building must be configured")
	}
	return &cfg, nil
}
