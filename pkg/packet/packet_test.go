package packet

import (
	"crypto/md5"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"layeh.com/radius"
	"layeh.com/radius/rfc2865"
	"layeh.com/radius/rfc2866"
)

var testSecret = []byte("testing123")

// encodeReply builds the server side answer to req, optionally signed with a Message-Authenticator.
func encodeReply(t *testing.T, req *Request, code radius.Code, withMessageAuth bool, attrs ...Attribute) []byte {
	t.Helper()

	wire, err := req.Encode()
	require.NoError(t, err)

	reqPkt, err := radius.Parse(wire, req.Secret())
	require.NoError(t, err)

	reply := reqPkt.Response(code)
	for _, a := range attrs {
		reply.Add(a.Type, radius.Attribute(a.Value))
	}
	if withMessageAuth {
		reply.Add(MessageAuthenticatorType, make(radius.Attribute, MessageAuthenticatorLength))
	}

	b, err := reply.Encode()
	require.NoError(t, err)

	if withMessageAuth {
		sum, err := calculateMessageAuthenticator(b, req.Secret(), wire[4:headerLength])
		require.NoError(t, err)
		copy(b[findMessageAuthenticatorOffset(b):], sum[:])

		h := md5.New()
		h.Write(b[:4])
		h.Write(wire[4:headerLength])
		h.Write(b[headerLength:])
		h.Write(req.Secret())
		copy(b[4:headerLength], h.Sum(nil))
	}

	return b
}

func TestBuildAuthRequest(t *testing.T) {
	async := rfc2865.NASPortType_Value_Async

	tests := []struct {
		name       string
		nas        NAS
		wantNASID  bool
		wantPort   bool
		wantMsgAut bool
	}{
		{"bare", NAS{}, false, false, false},
		{"identifier", NAS{Identifier: "vpn-gw"}, true, false, false},
		{"port type", NAS{PortType: &async}, false, true, false},
		{"everything", NAS{Identifier: "vpn-gw", PortType: &async, MessageAuthenticator: true}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildAuthRequest(testSecret, tt.nas, "alice", "secret")
			require.NoError(t, err)

			p := req.Packet()
			assert.Equal(t, radius.CodeAccessRequest, req.Code())
			assert.Equal(t, "alice", rfc2865.UserName_GetString(p))
			assert.Equal(t, "secret", rfc2865.UserPassword_GetString(p))
			assert.Equal(t, tt.wantNASID, req.Has(rfc2865.NASIdentifier_Type))
			assert.Equal(t, tt.wantPort, req.Has(rfc2865.NASPortType_Type))
			assert.False(t, req.Has(rfc2865.State_Type))

			wire, err := req.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMsgAut, findMessageAuthenticatorOffset(wire) != -1)
		})
	}
}

func TestBuildChallengeResponse(t *testing.T) {
	state := []byte{0xAB, 0x01}

	req, err := BuildChallengeResponse(testSecret, NAS{Identifier: "vpn-gw"}, "alice", "123456", state)
	require.NoError(t, err)

	p := req.Packet()
	assert.Equal(t, "alice", rfc2865.UserName_GetString(p))
	assert.Equal(t, "123456", rfc2865.UserPassword_GetString(p))
	assert.Equal(t, state, rfc2865.State_Get(p))
	assert.Equal(t, "vpn-gw", rfc2865.NASIdentifier_GetString(p))

	_, err = BuildChallengeResponse(testSecret, NAS{}, "alice", "123456", nil)
	assert.ErrorIs(t, err, ErrNoState)
}

func TestEmptyOneTimeCode(t *testing.T) {
	req, err := BuildChallengeResponse(testSecret, NAS{}, "alice", "", []byte{1})
	require.NoError(t, err)
	assert.True(t, req.Has(rfc2865.UserPassword_Type))

	_, err = req.Encode()
	require.NoError(t, err)
}

func TestBuildAccountingRequest(t *testing.T) {
	req, err := BuildAccountingRequest(testSecret, NAS{Identifier: "vpn-gw", MessageAuthenticator: true}, rfc2866.AcctStatusType_Value_Start)
	require.NoError(t, err)

	assert.Equal(t, radius.CodeAccountingRequest, req.Code())
	assert.Equal(t, rfc2866.AcctStatusType_Value_Start, rfc2866.AcctStatusType_Get(req.Packet()))

	wire, err := req.Encode()
	require.NoError(t, err)

	// Message-Authenticator is only added to Access-Requests
	assert.Equal(t, -1, findMessageAuthenticatorOffset(wire))
	assert.True(t, radius.IsAuthenticRequest(wire, testSecret))
}

func TestAccountingAuthenticatorPerSecret(t *testing.T) {
	build := func(secret []byte) []byte {
		req, err := BuildAccountingRequest(secret, NAS{}, rfc2866.AcctStatusType_Value_Stop)
		require.NoError(t, err)
		require.NoError(t, req.SetString(rfc2866.AcctSessionID_Type, "alice"))
		wire, err := req.Encode()
		require.NoError(t, err)
		return wire
	}

	a := build([]byte("secret-a"))
	b := build([]byte("secret-b"))

	assert.True(t, radius.IsAuthenticRequest(a, []byte("secret-a")))
	assert.False(t, radius.IsAuthenticRequest(a, []byte("secret-b")))
	assert.True(t, radius.IsAuthenticRequest(b, []byte("secret-b")))
}

func TestEncodeIsStable(t *testing.T) {
	req, err := BuildAuthRequest(testSecret, NAS{MessageAuthenticator: true}, "alice", "secret")
	require.NoError(t, err)

	first, err := req.Encode()
	require.NoError(t, err)
	second, err := req.Encode()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, req.Identifier(), first[1])
}

func TestSetAttribute(t *testing.T) {
	req, err := BuildAccountingRequest(testSecret, NAS{}, rfc2866.AcctStatusType_Value_Start)
	require.NoError(t, err)

	require.NoError(t, req.SetString(rfc2865.CallingStationID_Type, "198.51.100.7"))
	require.NoError(t, req.SetString(rfc2865.CallingStationID_Type, "198.51.100.8"))
	assert.Equal(t, "198.51.100.8", rfc2865.CallingStationID_GetString(req.Packet()))

	require.NoError(t, req.SetString(rfc2865.FilterID_Type, ""))
	assert.False(t, req.Has(rfc2865.FilterID_Type))

	require.NoError(t, req.SetIPv4(rfc2865.FramedIPAddress_Type, net.ParseIP("10.8.0.6")))
	assert.Equal(t, "10.8.0.6", rfc2865.FramedIPAddress_Get(req.Packet()).String())

	require.NoError(t, req.SetIPv4(rfc2865.FramedIPAddress_Type, nil))
	assert.Error(t, req.SetIPv4(rfc2865.FramedIPAddress_Type, net.ParseIP("2001:db8::1")))

	assert.Error(t, req.SetAttribute(rfc2865.Class_Type, make([]byte, 300)))
}

func TestSetAttributeInvalidatesEncoding(t *testing.T) {
	req, err := BuildAccountingRequest(testSecret, NAS{}, rfc2866.AcctStatusType_Value_Start)
	require.NoError(t, err)

	before, err := req.Encode()
	require.NoError(t, err)

	require.NoError(t, req.SetInteger(rfc2866.AcctSessionTime_Type, 60))

	after, err := req.Encode()
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestParseNASPortType(t *testing.T) {
	tests := []struct {
		name    string
		want    *rfc2865.NASPortType
		wantErr bool
	}{
		{"", nil, false},
		{"none", nil, false},
		{"Async", func() *rfc2865.NASPortType { v := rfc2865.NASPortType_Value_Async; return &v }(), false},
		{"virtual", func() *rfc2865.NASPortType { v := rfc2865.NASPortType_Value_Virtual; return &v }(), false},
		{"wireless", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNASPortType(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
