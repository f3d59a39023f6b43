package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"layeh.com/radius/rfc2865"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const fullConfig = `
nas_identifier: vpn-gw
nas_port_type: virtual
parallelism: 1
message_authenticator: false
log:
  dir: /tmp/radius
  level: DEBUG
  retention_days: 7
  max_files: 5
servers:
  - name: radius1
    address: 192.0.2.10
    auth_port: 11812
    acct_port: 11813
    shared_secret: s3cret
    wait: 0.5
    retries: 0
  - name: radius2.example.com
    shared_secret: other
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "vpn-gw", cfg.NASIdentifier)
	assert.Equal(t, "virtual", cfg.NASPortType)
	assert.Equal(t, 1, cfg.Parallelism)
	require.NotNil(t, cfg.MessageAuthenticator)
	assert.False(t, *cfg.MessageAuthenticator)

	assert.Equal(t, LogConfig{Dir: "/tmp/radius", Level: "debug", RetentionDays: 7, MaxFiles: 5}, cfg.Log)

	require.Len(t, cfg.Servers, 2)
	first := cfg.Servers[0]
	assert.Equal(t, "192.0.2.10", first.Address)
	assert.Equal(t, 11812, first.AuthPort)
	assert.Equal(t, 0.5, first.Wait)
	require.NotNil(t, first.Retries)
	assert.Equal(t, 0, *first.Retries)

	second := cfg.Servers[1]
	assert.Equal(t, "radius2.example.com", second.Address)
	assert.Equal(t, 1812, second.AuthPort)
	assert.Equal(t, 1813, second.AcctPort)
	assert.Equal(t, 5.0, second.Wait)
	assert.Equal(t, 2, *second.Retries)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", "servers:\n  - name: radius1\n    shared_secret: s\n  - name: radius2\n    shared_secret: t\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultNASPortType, cfg.NASPortType)
	assert.True(t, *cfg.MessageAuthenticator)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, DefaultLogDir, cfg.Log.Dir)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, 30, cfg.Log.RetentionDays)
	assert.Equal(t, 30, cfg.Log.MaxFiles)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"servers": [{"name": "radius1", "shared_secret": "s"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "radius1", cfg.Servers[0].Name)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"no servers", "nas_identifier: gw\n", ErrNoServers},
		{"empty server list", "servers: []\n", ErrNoServers},
		{"empty secret", "servers:\n  - name: radius1\n", ErrInvalid},
		{"duplicate name", "servers:\n  - name: a\n    shared_secret: s\n  - name: a\n    shared_secret: s\n", ErrInvalid},
		{"missing name", "servers:\n  - shared_secret: s\n", ErrInvalid},
		{"bad port type", "nas_port_type: fiber\nservers:\n  - name: a\n    shared_secret: s\n", ErrInvalid},
		{"bad port", "servers:\n  - name: a\n    shared_secret: s\n    auth_port: 70000\n", ErrInvalid},
		{"bad level", "log:\n  level: loud\nservers:\n  - name: a\n    shared_secret: s\n", ErrInvalid},
		{"negative retries", "servers:\n  - name: a\n    shared_secret: s\n    retries: -1\n", ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLoadValidationErrorDetail(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "servers:\n  - name: a\n    shared_secret: s\n    acct_port: 70000\n"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Config.Servers[0].AcctPort", verr.Field)
	assert.Equal(t, "max", verr.Tag)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadUnreadable(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "servers: [\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestToTargets(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", fullConfig))
	require.NoError(t, err)

	targets := cfg.ToTargets()
	require.Len(t, targets, 2)

	assert.Equal(t, "radius1", targets[0].Name)
	assert.Equal(t, "192.0.2.10:11812", targets[0].AuthAddr)
	assert.Equal(t, "192.0.2.10:11813", targets[0].AcctAddr)
	assert.Equal(t, []byte("s3cret"), targets[0].Secret)
	assert.Equal(t, 500*time.Millisecond, targets[0].Wait)
	assert.Equal(t, 0, targets[0].Retries)

	assert.Equal(t, "radius2.example.com:1812", targets[1].AuthAddr)
	assert.Equal(t, 5*time.Second, targets[1].Wait)
	assert.Equal(t, 2, targets[1].Retries)
}

func TestToNAS(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", fullConfig))
	require.NoError(t, err)

	nas, err := cfg.ToNAS()
	require.NoError(t, err)
	assert.Equal(t, "vpn-gw", nas.Identifier)
	require.NotNil(t, nas.PortType)
	assert.Equal(t, rfc2865.NASPortType_Value_Virtual, *nas.PortType)
	assert.False(t, nas.MessageAuthenticator)

	cfg.NASPortType = "none"
	nas, err = cfg.ToNAS()
	require.NoError(t, err)
	assert.Nil(t, nas.PortType)
}

func TestSettings(t *testing.T) {
	t.Setenv("OPENVPN_RADIUS_LOG_DIR", "/srv/logs")
	t.Setenv("OPENVPN_RADIUS_VERSION_TAG", "1.2.3")

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfigPath, s.Config)
	assert.Equal(t, "1.2.3", s.VersionTag)

	cfg := &Config{Log: LogConfig{Dir: "/var/log", Level: "info"}}
	s.Apply(cfg)
	assert.Equal(t, "/srv/logs", cfg.Log.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSettingsLoadConfig(t *testing.T) {
	path := writeConfig(t, "config.yaml", fullConfig)

	s := &Settings{Config: path, LogDir: "/srv/logs", LogLevel: "WARN"}
	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/logs", cfg.Log.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)

	s.LogLevel = "loud"
	_, err = s.LoadConfig()
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = (&Settings{Config: filepath.Join(t.TempDir(), "missing.yaml")}).LoadConfig()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radius", "config.yaml")

	require.NoError(t, WriteSample(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# seconds per attempt")
	assert.Contains(t, string(data), "shared_secret: change-me")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SampleConfig().Servers[0].Name, cfg.Servers[0].Name)

	assert.ErrorIs(t, WriteSample(path, false), ErrExists)
	assert.NoError(t, WriteSample(path, true))
}
