package client

//go:generate mockgen -source=interfaces.go -destination=../../internal/mocks/mock_exchanger.go -package=mocks

import (
	"context"

	"github.com/lionelberton/openvpn-auth-radius/pkg/packet"
)

// Exchanger performs one logical round trip to one server endpoint.
type Exchanger interface {
	// Exchange sends req to ep and returns the first valid correlated response.
	// Failures are returned as *ExchangeError.
	Exchange(ctx context.Context, ep Endpoint, req *packet.Request) (*packet.Response, error)
}
