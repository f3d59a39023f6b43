package orchestrator

import (
	"fmt"

	"layeh.com/radius"

	"github.com/lionelberton/openvpn-auth-radius/pkg/packet"
)

// OutcomeKind classifies the result of one round with one server.
type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota + 1
	OutcomeRejected
	OutcomeChallenged
	OutcomeAcknowledged
	OutcomeUnreachable
	OutcomeProtocolError
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeAccepted:      "Accepted",
	OutcomeRejected:      "Rejected",
	OutcomeChallenged:    "Challenged",
	OutcomeAcknowledged:  "Acknowledged",
	OutcomeUnreachable:   "Unreachable",
	OutcomeProtocolError: "ProtocolError",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(k))
}

// Round numbers the exchanges made with one server during one call.
type Round int

const (
	RoundInitial   Round = 1
	RoundChallenge Round = 2
)

func (r Round) String() string {
	switch r {
	case RoundInitial:
		return "initial"
	case RoundChallenge:
		return "challenge"
	default:
		return fmt.Sprintf("round-%d", int(r))
	}
}

// AttemptOutcome is the immutable record of one (server, round) exchange.
type AttemptOutcome struct {
	Server string
	Round  Round
	Kind   OutcomeKind
	// Code is zero when no valid response was received.
	Code       radius.Code
	Attributes []packet.Attribute
	Err        error
}

// AcceptVia tells how an authentication success was reached.
type AcceptVia int

const (
	ViaNone AcceptVia = iota
	ViaDirect
	ViaChallenge
)

func (v AcceptVia) String() string {
	switch v {
	case ViaDirect:
		return "direct accept"
	case ViaChallenge:
		return "accept after challenge"
	default:
		return "none"
	}
}

// ServerTrace collects the outcomes of one server in round order.
type ServerTrace struct {
	Server   string
	Outcomes []AttemptOutcome
	// Skipped is set when the server was not contacted because a success was already recorded.
	Skipped bool
	// Succeeded is set when the server accepted or acknowledged.
	Succeeded   bool
	Via         AcceptVia
	MFAMismatch bool
}

func (t *ServerTrace) add(o AttemptOutcome) {
	t.Outcomes = append(t.Outcomes, o)
}

// Verdict is the aggregated decision of one orchestrator call.
type Verdict int

const (
	Failure Verdict = iota
	Success
)

func (v Verdict) String() string {
	if v == Success {
		return "Success"
	}
	return "Failure"
}

// Result is the verdict of one orchestrator call plus the per-server trace in configuration order.
type Result struct {
	TraceID string
	Verdict Verdict
	// Winner is the first server that reached success.
	Winner string
	Via    AcceptVia
	// MFAMismatch is set when a one-time code was supplied but a server accepted without a challenge.
	MFAMismatch bool
	Servers     []ServerTrace
}

// Outcomes returns every outcome of every server, in configuration then round order.
func (r *Result) Outcomes() []AttemptOutcome {
	var all []AttemptOutcome
	for _, t := range r.Servers {
		all = append(all, t.Outcomes...)
	}
	return all
}
