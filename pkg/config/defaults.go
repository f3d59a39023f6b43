package config

import (
	"strings"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
)

const (
	DefaultConfigPath  = "/etc/openvpn/radius/config.yaml"
	DefaultLogDir      = "/var/log/openvpn/radius"
	DefaultLogLevel    = "info"
	DefaultNASPortType = "async"
)

// ApplyDefaults fills every unset field. Explicit zero values are kept where zero is meaningful.
func ApplyDefaults(cfg *Config) {
	if cfg.NASPortType == "" {
		cfg.NASPortType = DefaultNASPortType
	}
	cfg.NASPortType = strings.ToLower(cfg.NASPortType)

	if cfg.MessageAuthenticator == nil {
		enabled := true
		cfg.MessageAuthenticator = &enabled
	}

	if cfg.Parallelism == 0 {
		cfg.Parallelism = len(cfg.Servers)
	}

	applyLogDefaults(&cfg.Log)
	applyServerDefaults(cfg.Servers)
}

func applyLogDefaults(cfg *LogConfig) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultLogDir
	}

	if cfg.Level == "" {
		cfg.Level = DefaultLogLevel
	}
	cfg.Level = strings.ToLower(cfg.Level)

	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = log.DefaultRetentionDays
	}

	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = log.DefaultMaxFiles
	}
}

func applyServerDefaults(servers []ServerConfig) {
	for i := range servers {
		s := &servers[i]

		if s.Address == "" {
			s.Address = s.Name
		}
		if s.AuthPort == 0 {
			s.AuthPort = client.DefaultAuthPort
		}
		if s.AcctPort == 0 {
			s.AcctPort = client.DefaultAcctPort
		}
		if s.Wait == 0 {
			s.Wait = client.DefaultWait.Seconds()
		}
		if s.Retries == nil {
			retries := client.DefaultRetries
			s.Retries = &retries
		}
	}
}
