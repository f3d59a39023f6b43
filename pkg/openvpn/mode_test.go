package openvpn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionelberton/openvpn-auth-radius/pkg/orchestrator"
)

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	for _, arg := range []string{"", "authentication", "Stop", "clientconnect"} {
		_, err := ParseMode(arg)
		assert.ErrorIs(t, err, ErrUnknownMode, arg)
	}
}

func TestModeEventKind(t *testing.T) {
	tests := []struct {
		mode Mode
		kind orchestrator.EventKind
		ok   bool
	}{
		{ModeClientConnect, orchestrator.EventStart, true},
		{ModeClientDisconnect, orchestrator.EventStop, true},
		{ModeInterim, orchestrator.EventInterimUpdate, true},
		{ModeAccountingOn, orchestrator.EventAccountingOn, true},
		{ModeAccountingOff, orchestrator.EventAccountingOff, true},
		{ModeAuthentication, 0, false},
		{ModeInit, 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			kind, ok := tt.mode.EventKind()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
