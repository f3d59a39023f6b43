package orchestrator

import (
	"context"

	"layeh.com/radius/rfc2865"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
	"github.com/lionelberton/openvpn-auth-radius/pkg/packet"
)

// challenge answers an Access-Challenge from s with the one-time code and the State
// it issued. The request is signed with the secret of s only.
func (a *Authenticator) challenge(ctx context.Context, logger log.Logger, s client.Server, in AuthRequest, challenge *packet.Response) AttemptOutcome {
	fail := func(err error) AttemptOutcome {
		o := AttemptOutcome{Server: s.Name, Round: RoundChallenge, Kind: OutcomeProtocolError, Err: err}
		logOutcome(logger, o)
		return o
	}

	state, err := challenge.State()
	if err != nil {
		return fail(err)
	}

	if in.Credential.OneTimeCode == "" {
		log.Report(logger.WithField("server", s.Name), log.StatusWarning, s.Name+": challenge requested but no one-time code supplied, answering with an empty code")
	}

	req, err := packet.BuildChallengeResponse(s.Secret, a.opts.NAS, in.Credential.Username, in.Credential.OneTimeCode, state)
	if err != nil {
		return fail(err)
	}

	if err := req.SetString(rfc2865.CallingStationID_Type, in.CallingStation); err != nil {
		return fail(err)
	}

	o, _ := a.round(ctx, logger, s, RoundChallenge, req)
	return o
}
