package openvpn

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionelberton/openvpn-auth-radius/pkg/orchestrator"
)

func sessionEnv() map[string]string {
	return map[string]string{
		EnvCommonName:    "alice",
		EnvUntrustedIP:   "203.0.113.9",
		EnvTrustedIP:     "198.51.100.7",
		EnvPoolRemoteIP:  "10.8.0.6",
		EnvBytesReceived: "1024",
		EnvBytesSent:     "2048",
		EnvTimeDuration:  "90",
	}
}

func TestCallerAddress(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"untrusted preferred", map[string]string{EnvUntrustedIP: "203.0.113.9", EnvTrustedIP: "198.51.100.7"}, "203.0.113.9"},
		{"trusted fallback", map[string]string{EnvTrustedIP: "198.51.100.7"}, "198.51.100.7"},
		{"empty untrusted", map[string]string{EnvUntrustedIP: "", EnvTrustedIP: "198.51.100.7"}, "198.51.100.7"},
		{"none", map[string]string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromMap(tt.vars).CallerAddress())
		})
	}
}

func TestAccountingEventStop(t *testing.T) {
	env := FromMap(sessionEnv())
	now := time.Unix(1700000000, 0)
	env.now = func() time.Time { return now }

	ev, err := env.AccountingEvent(orchestrator.EventStop)
	require.NoError(t, err)

	assert.Equal(t, orchestrator.EventStop, ev.Kind)
	assert.Equal(t, "alice", ev.SessionID)
	assert.Equal(t, "alice", ev.Username)
	assert.Equal(t, "198.51.100.7", ev.CallingStation)
	assert.True(t, net.ParseIP("10.8.0.6").Equal(ev.FramedIP))
	assert.Equal(t, now, ev.Timestamp)
	assert.Equal(t, uint64(1024), ev.InputOctets)
	assert.Equal(t, uint64(2048), ev.OutputOctets)
	assert.Equal(t, 90*time.Second, ev.SessionTime)
}

func TestAccountingEventStartIgnoresCounters(t *testing.T) {
	ev, err := FromMap(sessionEnv()).AccountingEvent(orchestrator.EventStart)
	require.NoError(t, err)

	assert.Zero(t, ev.InputOctets)
	assert.Zero(t, ev.OutputOctets)
	assert.Zero(t, ev.SessionTime)
}

func TestAccountingEventFallbacks(t *testing.T) {
	ev, err := FromMap(map[string]string{
		EnvCommonName:  "alice",
		EnvUntrustedIP: "203.0.113.9",
	}).AccountingEvent(orchestrator.EventStart)
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.9", ev.CallingStation)
	assert.Nil(t, ev.FramedIP)

	ev, err = FromMap(map[string]string{
		EnvCommonName: "alice",
		EnvTrustedIP:  "198.51.100.7",
	}).AccountingEvent(orchestrator.EventStart)
	require.NoError(t, err)

	assert.True(t, net.ParseIP("198.51.100.7").Equal(ev.FramedIP))
}

func TestAccountingEventMissing(t *testing.T) {
	tests := []struct {
		name string
		drop []string
		kind orchestrator.EventKind
	}{
		{"start without common name", []string{EnvCommonName}, orchestrator.EventStart},
		{"stop without address", []string{EnvTrustedIP, EnvUntrustedIP}, orchestrator.EventStop},
		{"interim without common name", []string{EnvCommonName}, orchestrator.EventInterimUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := sessionEnv()
			for _, key := range tt.drop {
				delete(vars, key)
			}

			_, err := FromMap(vars).AccountingEvent(tt.kind)
			assert.ErrorIs(t, err, ErrMissingEnv)
		})
	}
}

func TestAccountingEventNASScoped(t *testing.T) {
	for _, kind := range []orchestrator.EventKind{orchestrator.EventAccountingOn, orchestrator.EventAccountingOff} {
		ev, err := FromMap(nil).AccountingEvent(kind)
		require.NoError(t, err, kind.String())
		assert.Empty(t, ev.SessionID)
		assert.Nil(t, ev.FramedIP)
	}
}

func TestAccountingEventInvalid(t *testing.T) {
	for _, key := range []string{EnvBytesReceived, EnvBytesSent, EnvTimeDuration, EnvPoolRemoteIP} {
		t.Run(key, func(t *testing.T) {
			vars := sessionEnv()
			vars[key] = "not-a-number"

			_, err := FromMap(vars).AccountingEvent(orchestrator.EventStop)
			assert.ErrorIs(t, err, ErrInvalidEnv)
		})
	}
}

func TestAccountingEventInvalidFramedIPNamesSource(t *testing.T) {
	tests := []struct {
		name string
		pool string
		key  string
	}{
		{"pool address", "bogus", EnvPoolRemoteIP},
		{"trusted fallback", "", EnvTrustedIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := sessionEnv()
			vars[EnvPoolRemoteIP] = tt.pool
			vars[EnvTrustedIP] = "bogus"

			_, err := FromMap(vars).AccountingEvent(orchestrator.EventStart)
			require.ErrorIs(t, err, ErrInvalidEnv)
			assert.Contains(t, err.Error(), tt.key+"=")
		})
	}
}

func TestNewEnvironmentUsesProcessEnv(t *testing.T) {
	t.Setenv(EnvUntrustedIP, "192.0.2.1")
	assert.Equal(t, "192.0.2.1", NewEnvironment(nil).CallerAddress())
}
