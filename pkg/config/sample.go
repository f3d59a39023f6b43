package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
)

var sampleComments = map[string]string{
	"nas_identifier":        "NAS-Identifier sent with every request",
	"nas_port_type":         "NAS-Port-Type: async, sync, isdn, virtual, ethernet or none",
	"parallelism":           "servers contacted at once, 0 for all of them",
	"message_authenticator": "add a Message-Authenticator to Access-Requests",
	"log":                   "per-run application and error logs",
	"servers":               "queried concurrently, the first accept wins",
	"address":               "defaults to name",
	"wait":                  "seconds per attempt",
	"retries":               "additional attempts after the first",
}

// SampleConfig returns the configuration written by WriteSample.
func SampleConfig() *Config {
	enabled := true
	retries := client.DefaultRetries

	return &Config{
		NASIdentifier:        "openvpn",
		NASPortType:          DefaultNASPortType,
		MessageAuthenticator: &enabled,
		Log: LogConfig{
			Dir:           DefaultLogDir,
			Level:         DefaultLogLevel,
			RetentionDays: log.DefaultRetentionDays,
			MaxFiles:      log.DefaultMaxFiles,
		},
		Servers: []ServerConfig{
			{
				Name:         "radius1.example.com",
				AuthPort:     client.DefaultAuthPort,
				AcctPort:     client.DefaultAcctPort,
				SharedSecret: "change-me",
				Wait:         client.DefaultWait.Seconds(),
				Retries:      &retries,
			},
		},
	}
}

// WriteSample writes a commented sample configuration to path. An existing
// file is only replaced when force is set.
func WriteSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to access %s: %w", path, err)
		}
	}

	var doc yaml.Node
	if err := doc.Encode(SampleConfig()); err != nil {
		return fmt.Errorf("failed to encode sample config: %w", err)
	}
	annotate(&doc)

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// shared secrets
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// annotate attaches sampleComments to matching mapping keys at any depth.
func annotate(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if c, ok := sampleComments[n.Content[i].Value]; ok {
				n.Content[i].HeadComment = c
			}
		}
	}

	for _, child := range n.Content {
		annotate(child)
	}
}
