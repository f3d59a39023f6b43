package orchestrator

import (
	"fmt"
	"net"
	"time"

	"layeh.com/radius/rfc2866"
)

// EventKind is the session lifecycle event reported to accounting.
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventStop
	EventInterimUpdate
	EventAccountingOn
	EventAccountingOff
)

var eventStatusTypes = map[EventKind]rfc2866.AcctStatusType{
	EventStart:         rfc2866.AcctStatusType_Value_Start,
	EventStop:          rfc2866.AcctStatusType_Value_Stop,
	EventInterimUpdate: rfc2866.AcctStatusType_Value_InterimUpdate,
	EventAccountingOn:  rfc2866.AcctStatusType_Value_AccountingOn,
	EventAccountingOff: rfc2866.AcctStatusType_Value_AccountingOff,
}

var eventNames = map[EventKind]string{
	EventStart:         "Start",
	EventStop:          "Stop",
	EventInterimUpdate: "InterimUpdate",
	EventAccountingOn:  "AccountingOn",
	EventAccountingOff: "AccountingOff",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(k))
}

// StatusType returns the Acct-Status-Type value of the event.
func (k EventKind) StatusType() (rfc2866.AcctStatusType, bool) {
	st, ok := eventStatusTypes[k]
	return st, ok
}

// SessionScoped reports whether the event describes a single user session.
func (k EventKind) SessionScoped() bool {
	return k == EventStart || k == EventStop || k == EventInterimUpdate
}

// AccountingEvent is an immutable snapshot of one accounting event.
type AccountingEvent struct {
	Kind           EventKind
	SessionID      string
	Username       string
	CallingStation string
	FramedIP       net.IP
	Timestamp      time.Time

	// Stop only.
	InputOctets    uint64
	OutputOctets   uint64
	SessionTime    time.Duration
	TerminateCause rfc2866.AcctTerminateCause
}
