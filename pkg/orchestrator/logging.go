package orchestrator

import (
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
)

var outcomeStatus = map[OutcomeKind]log.Status{
	OutcomeAccepted:      log.StatusSuccess,
	OutcomeAcknowledged:  log.StatusSuccess,
	OutcomeChallenged:    log.StatusInformation,
	OutcomeRejected:      log.StatusWarning,
	OutcomeUnreachable:   log.StatusWarning,
	OutcomeProtocolError: log.StatusError,
}

// logOutcome writes a summary line for the round and one line per received attribute.
func logOutcome(logger log.Logger, o AttemptOutcome) {
	l := logger.WithFields(map[string]interface{}{
		"server":  o.Server,
		"round":   o.Round.String(),
		"outcome": o.Kind.String(),
	})

	switch {
	case o.Err != nil:
		log.Report(l, outcomeStatus[o.Kind], o.Server+": "+o.Kind.String()+": "+o.Err.Error())
	case o.Code != 0:
		log.Report(l, outcomeStatus[o.Kind], o.Server+": received "+o.Code.String())
	default:
		log.Report(l, outcomeStatus[o.Kind], o.Server+": "+o.Kind.String())
	}

	for _, attr := range o.Attributes {
		l.Info(o.Server + ": " + attr.String())
	}
}
