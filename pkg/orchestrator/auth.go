package orchestrator

import (
	"context"
	"fmt"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/credential"
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
	"github.com/lionelberton/openvpn-auth-radius/pkg/packet"
)

// AuthRequest is the input of one authentication call.
type AuthRequest struct {
	Credential credential.Credential
	// CallingStation is the client address, sent as Calling-Station-Id when set.
	CallingStation string
}

// Authenticator checks one credential against every configured server concurrently.
// The first server to accept decides the verdict.
type Authenticator struct {
	exchanger client.Exchanger
	logger    log.Logger
	opts      Options
}

// NewAuthenticator creates an authentication orchestrator.
func NewAuthenticator(exchanger client.Exchanger, logger log.Logger, opts Options) *Authenticator {
	if logger == nil {
		logger = log.NewDefaultLogger()
	}

	return &Authenticator{
		exchanger: exchanger,
		logger:    logger,
		opts:      opts,
	}
}

// Authenticate runs the credential check and returns once every contacted server has settled.
// Server failures never produce an error; only a configuration problem does.
func (a *Authenticator) Authenticate(ctx context.Context, in AuthRequest, servers []client.Server) (*Result, error) {
	if err := validateServers(servers); err != nil {
		return nil, err
	}

	r := newRun(a.logger.WithField("user", in.Credential.Username))
	r.logger.Infof("authenticating %s against %d server(s)", in.Credential, len(servers))

	traces := r.dispatch(ctx, servers, a.opts.Parallelism, func(ctx context.Context, i int, s client.Server, trace *ServerTrace) {
		a.authenticate(ctx, r, i, s, in, trace)
	})

	res := r.result(traces)
	if res.Verdict == Success {
		log.Report(r.logger, log.StatusSuccess, fmt.Sprintf("%s authenticated by %s (%s)", in.Credential.Username, res.Winner, res.Via))
	} else {
		log.Report(r.logger, log.StatusError, fmt.Sprintf("%s rejected by every server", in.Credential.Username))
	}

	return res, nil
}

func (a *Authenticator) authenticate(ctx context.Context, r *run, i int, s client.Server, in AuthRequest, trace *ServerTrace) {
	req, err := a.buildInitial(s, in)
	if err != nil {
		o := AttemptOutcome{Server: s.Name, Round: RoundInitial, Kind: OutcomeProtocolError, Err: err}
		trace.add(o)
		logOutcome(r.logger, o)
		return
	}

	first, resp := a.round(ctx, r.logger, s, RoundInitial, req)
	trace.add(first)

	switch first.Kind {
	case OutcomeAccepted:
		if in.Credential.OneTimeCode != "" {
			trace.MFAMismatch = true
			log.Report(r.logger.WithField("server", s.Name), log.StatusWarning,
				fmt.Sprintf("%s: one-time code supplied but accepted without challenge, second factor must be activated for %s", s.Name, in.Credential.Username))
		}
		a.accept(r, i, trace, ViaDirect)

	case OutcomeChallenged:
		if r.satisfied() {
			r.logger.WithField("server", s.Name).Debug("challenge round not started, a server already accepted")
			return
		}

		second := a.challenge(ctx, r.logger, s, in, resp)
		trace.add(second)
		if second.Kind == OutcomeAccepted {
			a.accept(r, i, trace, ViaChallenge)
		}
	}
}

func (a *Authenticator) accept(r *run, i int, trace *ServerTrace, via AcceptVia) {
	trace.Succeeded = true
	trace.Via = via
	if !r.succeed(i) {
		r.logger.WithField("server", trace.Server).Debug("accepted after the verdict was already fixed")
	}
}

func (a *Authenticator) buildInitial(s client.Server, in AuthRequest) (*packet.Request, error) {
	req, err := packet.BuildAuthRequest(s.Secret, a.opts.NAS, in.Credential.Username, in.Credential.Password)
	if err != nil {
		return nil, err
	}

	if err := req.SetString(rfc2865.CallingStationID_Type, in.CallingStation); err != nil {
		return nil, err
	}

	return req, nil
}

// round performs one exchange with the server's authentication endpoint and logs it.
func (a *Authenticator) round(ctx context.Context, logger log.Logger, s client.Server, round Round, req *packet.Request) (AttemptOutcome, *packet.Response) {
	resp, err := a.exchanger.Exchange(ctx, s.Auth(), req)
	o := newOutcome(s.Name, round, resp, err)

	if err == nil {
		switch resp.Code {
		case radius.CodeAccessAccept:
			o.Kind = OutcomeAccepted
		case radius.CodeAccessReject:
			o.Kind = OutcomeRejected
		case radius.CodeAccessChallenge:
			o.Kind = OutcomeChallenged
		default:
			o.Kind = OutcomeProtocolError
			o.Err = fmt.Errorf("%w: %s", ErrUnexpectedCode, resp.Code)
		}
	}

	logOutcome(logger, o)
	return o, resp
}

// newOutcome fills the parts of an outcome common to every round. Kind is left
// for the caller when a response was received.
func newOutcome(server string, round Round, resp *packet.Response, err error) AttemptOutcome {
	o := AttemptOutcome{Server: server, Round: round}

	if err != nil {
		o.Err = err
		o.Kind = OutcomeUnreachable
		if client.IsProtocolError(err) {
			o.Kind = OutcomeProtocolError
		}
		return o
	}

	o.Code = resp.Code
	o.Attributes = resp.Attributes
	return o
}
