// Package config loads the server list and process settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/packet"
)

// Config is the configuration file.
type Config struct {
	NASIdentifier string `mapstructure:"nas_identifier" yaml:"nas_identifier,omitempty"`
	NASPortType   string `mapstructure:"nas_port_type" yaml:"nas_port_type" validate:"oneof=async sync isdn virtual ethernet none"`
	// Parallelism bounds the number of servers contacted at once.
	Parallelism          int   `mapstructure:"parallelism" yaml:"parallelism,omitempty" validate:"gte=0"`
	MessageAuthenticator *bool `mapstructure:"message_authenticator" yaml:"message_authenticator,omitempty"`

	Log     LogConfig      `mapstructure:"log" yaml:"log"`
	Servers []ServerConfig `mapstructure:"servers" yaml:"servers" validate:"dive"`
}

// LogConfig controls the per-run log files.
type LogConfig struct {
	Dir           string `mapstructure:"dir" yaml:"dir" validate:"required"`
	Level         string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn warning error"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days" validate:"gte=0"`
	MaxFiles      int    `mapstructure:"max_files" yaml:"max_files" validate:"gte=0"`
}

// ServerConfig is one RADIUS server.
type ServerConfig struct {
	Name string `mapstructure:"name" yaml:"name" validate:"required"`
	// Address defaults to Name.
	Address      string `mapstructure:"address" yaml:"address,omitempty" validate:"omitempty,ip|hostname_rfc1123"`
	AuthPort     int    `mapstructure:"auth_port" yaml:"auth_port" validate:"min=1,max=65535"`
	AcctPort     int    `mapstructure:"acct_port" yaml:"acct_port" validate:"min=1,max=65535"`
	SharedSecret string `mapstructure:"shared_secret" yaml:"shared_secret"`
	// Wait is the per-attempt timeout in seconds.
	Wait    float64 `mapstructure:"wait" yaml:"wait" validate:"gt=0"`
	Retries *int    `mapstructure:"retries" yaml:"retries,omitempty" validate:"omitempty,gte=0"`
}

// Load reads the configuration file at path, applies defaults and validates it.
// The format is chosen from the file extension.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

func load(path string, override func(*Config)) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if override != nil {
		override(&cfg)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// ToTargets converts the configured servers, in file order.
func (c *Config) ToTargets() []client.Server {
	servers := make([]client.Server, 0, len(c.Servers))
	for _, s := range c.Servers {
		retries := client.DefaultRetries
		if s.Retries != nil {
			retries = *s.Retries
		}

		servers = append(servers, client.NewServer(
			s.Name,
			s.Address,
			s.AuthPort,
			s.AcctPort,
			s.SharedSecret,
			time.Duration(s.Wait*float64(time.Second)),
			retries,
		))
	}
	return servers
}

// ToNAS returns the attributes identifying this gateway.
func (c *Config) ToNAS() (packet.NAS, error) {
	portType, err := packet.ParseNASPortType(c.NASPortType)
	if err != nil {
		return packet.NAS{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return packet.NAS{
		Identifier:           c.NASIdentifier,
		PortType:             portType,
		MessageAuthenticator: c.MessageAuthenticator == nil || *c.MessageAuthenticator,
	}, nil
}
