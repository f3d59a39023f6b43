// Package openvpn reads the invocation context OpenVPN passes to plugin scripts.
package openvpn

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/lionelberton/openvpn-auth-radius/pkg/orchestrator"
)

// Environment variables set by OpenVPN for auth-user-pass-verify, client-connect and client-disconnect.
const (
	EnvCommonName    = "common_name"
	EnvUntrustedIP   = "untrusted_ip"
	EnvTrustedIP     = "trusted_ip"
	EnvPoolRemoteIP  = "ifconfig_pool_remote_ip"
	EnvBytesReceived = "bytes_received"
	EnvBytesSent     = "bytes_sent"
	EnvTimeDuration  = "time_duration"
)

var (
	ErrMissingEnv = errors.New("missing environment variable")
	ErrInvalidEnv = errors.New("invalid environment variable")
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Environment is a read-only view over the variables of one invocation.
type Environment struct {
	lookup LookupFunc
	now    func() time.Time
}

// NewEnvironment reads variables through lookup, or the process environment when nil.
func NewEnvironment(lookup LookupFunc) *Environment {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	return &Environment{
		lookup: lookup,
		now:    time.Now,
	}
}

// FromMap builds an Environment over a fixed set of variables.
func FromMap(vars map[string]string) *Environment {
	return NewEnvironment(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
}

func (e *Environment) get(key string) string {
	v, ok := e.lookup(key)
	if !ok {
		return ""
	}
	return v
}

// first returns the first non-empty value among keys and the key it came from.
func (e *Environment) first(keys ...string) (string, string) {
	for _, key := range keys {
		if v := e.get(key); v != "" {
			return v, key
		}
	}
	return "", ""
}

// CallerAddress returns the client address sent as Calling-Station-Id during authentication.
func (e *Environment) CallerAddress() string {
	addr, _ := e.first(EnvUntrustedIP, EnvTrustedIP)
	return addr
}

// AccountingEvent snapshots the variables describing kind. Session scoped kinds
// require the common name and the client address.
func (e *Environment) AccountingEvent(kind orchestrator.EventKind) (orchestrator.AccountingEvent, error) {
	station, _ := e.first(EnvTrustedIP, EnvUntrustedIP)
	ev := orchestrator.AccountingEvent{
		Kind:           kind,
		SessionID:      e.get(EnvCommonName),
		Username:       e.get(EnvCommonName),
		CallingStation: station,
		Timestamp:      e.now(),
	}

	if kind.SessionScoped() {
		if ev.SessionID == "" {
			return orchestrator.AccountingEvent{}, fmt.Errorf("%w: %s", ErrMissingEnv, EnvCommonName)
		}
		if ev.CallingStation == "" {
			return orchestrator.AccountingEvent{}, fmt.Errorf("%w: %s or %s", ErrMissingEnv, EnvTrustedIP, EnvUntrustedIP)
		}
	}

	if framed, key := e.first(EnvPoolRemoteIP, EnvTrustedIP); framed != "" {
		ip := net.ParseIP(framed)
		if ip == nil {
			return orchestrator.AccountingEvent{}, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, key, framed)
		}
		ev.FramedIP = ip
	}

	if kind != orchestrator.EventStop {
		return ev, nil
	}

	var err error
	if ev.InputOctets, err = e.counter(EnvBytesReceived); err != nil {
		return orchestrator.AccountingEvent{}, err
	}
	if ev.OutputOctets, err = e.counter(EnvBytesSent); err != nil {
		return orchestrator.AccountingEvent{}, err
	}

	seconds, err := e.counter(EnvTimeDuration)
	if err != nil {
		return orchestrator.AccountingEvent{}, err
	}
	ev.SessionTime = time.Duration(seconds) * time.Second

	return ev, nil
}

// counter parses an unsigned counter; an absent variable reads as zero.
func (e *Environment) counter(key string) (uint64, error) {
	v := e.get(key)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, key, v)
	}
	return n, nil
}
