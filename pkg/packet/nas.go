package packet

import (
	"fmt"
	"strings"

	"layeh.com/radius/rfc2865"
)

// NAS holds the attributes identifying the gateway on every request it sends.
type NAS struct {
	Identifier string
	// PortType is omitted from requests when nil.
	PortType *rfc2865.NASPortType
	// MessageAuthenticator signs Access-Requests with RFC 2869 Message-Authenticator.
	MessageAuthenticator bool
}

var nasPortTypes = map[string]rfc2865.NASPortType{
	"async":    rfc2865.NASPortType_Value_Async,
	"sync":     rfc2865.NASPortType_Value_Sync,
	"isdn":     rfc2865.NASPortType_Value_ISDN,
	"virtual":  rfc2865.NASPortType_Value_Virtual,
	"ethernet": rfc2865.NASPortType_Value_Ethernet,
}

// ParseNASPortType maps a configuration name to a NAS-Port-Type value. "none" and "" yield nil.
func ParseNASPortType(name string) (*rfc2865.NASPortType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" {
		return nil, nil
	}

	v, ok := nasPortTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown NAS-Port-Type %q", name)
	}

	return &v, nil
}

func (n NAS) apply(r *Request) error {
	if n.Identifier != "" {
		if err := rfc2865.NASIdentifier_SetString(r.packet, n.Identifier); err != nil {
			return fmt.Errorf("failed to set NAS-Identifier: %w", err)
		}
	}

	if n.PortType != nil {
		if err := rfc2865.NASPortType_Set(r.packet, *n.PortType); err != nil {
			return fmt.Errorf("failed to set NAS-Port-Type: %w", err)
		}
	}

	return nil
}
