package openvpn

import (
	"errors"
	"fmt"

	"github.com/lionelberton/openvpn-auth-radius/pkg/orchestrator"
)

// Mode is the first command line argument, naming the OpenVPN hook being served.
type Mode string

const (
	ModeAuthentication   Mode = "Authentication"
	ModeClientConnect    Mode = "ClientConnect"
	ModeClientDisconnect Mode = "ClientDisconnect"
	ModeInterim          Mode = "Interim"
	ModeAccountingOn     Mode = "AccountingOn"
	ModeAccountingOff    Mode = "AccountingOff"
	ModeInit             Mode = "init"
)

var ErrUnknownMode = errors.New("unknown mode")

var modeEvents = map[Mode]orchestrator.EventKind{
	ModeClientConnect:    orchestrator.EventStart,
	ModeClientDisconnect: orchestrator.EventStop,
	ModeInterim:          orchestrator.EventInterimUpdate,
	ModeAccountingOn:     orchestrator.EventAccountingOn,
	ModeAccountingOff:    orchestrator.EventAccountingOff,
}

// ParseMode validates a mode argument. Matching is case sensitive.
func ParseMode(arg string) (Mode, error) {
	m := Mode(arg)
	if m == ModeAuthentication || m == ModeInit {
		return m, nil
	}
	if _, ok := modeEvents[m]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, arg)
}

// EventKind returns the accounting event reported by an accounting mode.
func (m Mode) EventKind() (orchestrator.EventKind, bool) {
	k, ok := modeEvents[m]
	return k, ok
}

// Modes lists every mode in usage order.
func Modes() []Mode {
	return []Mode{
		ModeAuthentication,
		ModeClientConnect,
		ModeClientDisconnect,
		ModeInterim,
		ModeAccountingOn,
		ModeAccountingOff,
		ModeInit,
	}
}
