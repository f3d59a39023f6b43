package main

import (
	"errors"

	"github.com/lionelberton/openvpn-auth-radius/pkg/config"
	"github.com/lionelberton/openvpn-auth-radius/pkg/credential"
	"github.com/lionelberton/openvpn-auth-radius/pkg/openvpn"
	"github.com/lionelberton/openvpn-auth-radius/pkg/orchestrator"
)

// Process exit codes read by the OpenVPN plugin scripts.
const (
	ExitSuccess           = 0
	ExitCredentialMissing = 1
	ExitConfigInvalid     = 2
	ExitNoServers         = 3
	ExitAuthFailed        = 4
	ExitLogDir            = 5
	ExitLineCount         = 6
	ExitMalformedMarker   = 7
	ExitBadMode           = 8
	ExitAccountingFailed  = 9
	ExitAccountingEnv     = 10
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, credential.ErrFileMissing):
		return ExitCredentialMissing
	case errors.Is(err, credential.ErrLineCount):
		return ExitLineCount
	case errors.Is(err, credential.ErrMalformedMarker):
		return ExitMalformedMarker
	case errors.Is(err, config.ErrNoServers), errors.Is(err, orchestrator.ErrNoServers):
		return ExitNoServers
	case errors.Is(err, openvpn.ErrUnknownMode):
		return ExitBadMode
	case errors.Is(err, openvpn.ErrMissingEnv), errors.Is(err, openvpn.ErrInvalidEnv):
		return ExitAccountingEnv
	default:
		return ExitConfigInvalid
	}
}
