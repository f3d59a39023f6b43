package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every process setting read from the environment.
const EnvPrefix = "OPENVPN_RADIUS"

// Settings are the process level options, independent of the configuration file.
type Settings struct {
	Config     string `envconfig:"CONFIG" default:"/etc/openvpn/radius/config.yaml"`
	LogDir     string `envconfig:"LOG_DIR"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	VersionTag string `envconfig:"VERSION_TAG"`
}

// LoadSettings reads OPENVPN_RADIUS_* variables.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &s, nil
}

// Apply overrides the log section of cfg with the non-empty settings.
func (s *Settings) Apply(cfg *Config) {
	if s.LogDir != "" {
		cfg.Log.Dir = s.LogDir
	}
	if s.LogLevel != "" {
		cfg.Log.Level = s.LogLevel
	}
}

// LoadConfig loads the configuration file named by the settings with the log
// overrides applied before validation.
func (s *Settings) LoadConfig() (*Config, error) {
	return load(s.Config, s.Apply)
}
