package orchestrator

import (
	"context"
	"fmt"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"
	"layeh.com/radius/rfc2866"
	"layeh.com/radius/rfc2869"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
	"github.com/lionelberton/openvpn-auth-radius/pkg/packet"
)

// Accountant reports one accounting event to every configured server concurrently.
// It keeps no state between calls.
type Accountant struct {
	exchanger client.Exchanger
	logger    log.Logger
	opts      Options
}

// NewAccountant creates an accounting orchestrator.
func NewAccountant(exchanger client.Exchanger, logger log.Logger, opts Options) *Accountant {
	if logger == nil {
		logger = log.NewDefaultLogger()
	}

	return &Accountant{
		exchanger: exchanger,
		logger:    logger,
		opts:      opts,
	}
}

// Account sends ev to every server and succeeds when at least one acknowledges it.
func (a *Accountant) Account(ctx context.Context, ev AccountingEvent, servers []client.Server) (*Result, error) {
	if err := validateServers(servers); err != nil {
		return nil, err
	}
	if _, ok := ev.Kind.StatusType(); !ok {
		return nil, fmt.Errorf("unknown accounting event kind %d", int(ev.Kind))
	}

	r := newRun(a.logger.WithFields(map[string]interface{}{
		"event":   ev.Kind.String(),
		"session": ev.SessionID,
	}))
	r.logger.Infof("reporting %s for %q to %d server(s)", ev.Kind, ev.SessionID, len(servers))

	traces := r.dispatch(ctx, servers, a.opts.Parallelism, func(ctx context.Context, i int, s client.Server, trace *ServerTrace) {
		a.account(ctx, r, i, s, ev, trace)
	})

	res := r.result(traces)
	if res.Verdict == Success {
		log.Report(r.logger, log.StatusSuccess, fmt.Sprintf("%s acknowledged by %s", ev.Kind, res.Winner))
	} else {
		log.Report(r.logger, log.StatusError, fmt.Sprintf("%s not acknowledged by any server", ev.Kind))
	}

	return res, nil
}

func (a *Accountant) account(ctx context.Context, r *run, i int, s client.Server, ev AccountingEvent, trace *ServerTrace) {
	req, err := BuildAccountingRequest(s, a.opts.NAS, ev)
	if err != nil {
		o := AttemptOutcome{Server: s.Name, Round: RoundInitial, Kind: OutcomeProtocolError, Err: err}
		trace.add(o)
		logOutcome(r.logger, o)
		return
	}

	resp, err := a.exchanger.Exchange(ctx, s.Acct(), req)
	o := newOutcome(s.Name, RoundInitial, resp, err)
	if err == nil {
		if resp.Code == radius.CodeAccountingResponse {
			o.Kind = OutcomeAcknowledged
		} else {
			o.Kind = OutcomeProtocolError
			o.Err = fmt.Errorf("%w: %s", ErrUnexpectedCode, resp.Code)
		}
	}

	trace.add(o)
	logOutcome(r.logger, o)

	if o.Kind == OutcomeAcknowledged {
		trace.Succeeded = true
		r.succeed(i)
	}
}

// BuildAccountingRequest creates the Accounting-Request for ev, signed for s.
// Terminate cause, octet counters and session time are only sent with Stop.
func BuildAccountingRequest(s client.Server, nas packet.NAS, ev AccountingEvent) (*packet.Request, error) {
	status, ok := ev.Kind.StatusType()
	if !ok {
		return nil, fmt.Errorf("unknown accounting event kind %d", int(ev.Kind))
	}

	req, err := packet.BuildAccountingRequest(s.Secret, nas, status)
	if err != nil {
		return nil, err
	}

	set := []func() error{
		func() error { return req.SetString(rfc2866.AcctSessionID_Type, ev.SessionID) },
		func() error { return req.SetString(rfc2865.UserName_Type, ev.Username) },
		func() error { return req.SetInteger(rfc2866.AcctAuthentic_Type, uint32(rfc2866.AcctAuthentic_Value_RADIUS)) },
		func() error { return req.SetIPv4(rfc2865.FramedIPAddress_Type, ev.FramedIP) },
		func() error { return req.SetString(rfc2865.CallingStationID_Type, ev.CallingStation) },
	}

	if !ev.Timestamp.IsZero() {
		set = append(set, func() error {
			return req.SetInteger(rfc2869.EventTimestamp_Type, uint32(ev.Timestamp.Unix()))
		})
	}

	if ev.Kind == EventStop {
		cause := ev.TerminateCause
		if cause == 0 {
			cause = rfc2866.AcctTerminateCause_Value_UserRequest
		}

		set = append(set,
			func() error { return req.SetInteger(rfc2866.AcctTerminateCause_Type, uint32(cause)) },
			func() error { return req.SetInteger(rfc2866.AcctInputOctets_Type, uint32(ev.InputOctets)) },
			func() error { return req.SetInteger(rfc2866.AcctOutputOctets_Type, uint32(ev.OutputOctets)) },
		)

		if gw := ev.InputOctets >> 32; gw > 0 {
			set = append(set, func() error { return req.SetInteger(rfc2869.AcctInputGigawords_Type, uint32(gw)) })
		}
		if gw := ev.OutputOctets >> 32; gw > 0 {
			set = append(set, func() error { return req.SetInteger(rfc2869.AcctOutputGigawords_Type, uint32(gw)) })
		}
		if ev.SessionTime > 0 {
			set = append(set, func() error {
				return req.SetInteger(rfc2866.AcctSessionTime_Type, uint32(ev.SessionTime.Seconds()))
			})
		}
	}

	for _, fn := range set {
		if err := fn(); err != nil {
			return nil, err
		}
	}

	return req, nil
}
