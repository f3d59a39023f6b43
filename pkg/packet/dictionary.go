package packet

import "layeh.com/radius"

// DataType describes how an attribute value is rendered in logs.
type DataType int

const (
	DataTypeOctets DataType = iota
	DataTypeString
	DataTypeInteger
	DataTypeIPAddr
	DataTypeDate
)

// AttributeDefinition names a standard attribute and optionally its enumerated values.
type AttributeDefinition struct {
	ID       radius.Type
	Name     string
	DataType DataType
	Secret   bool
	Values   map[uint32]string
}

// StandardAttributes lists the RFC 2865/2866/2869 attributes seen by an OpenVPN NAS.
var StandardAttributes = []*AttributeDefinition{
	{ID: 1, Name: "User-Name", DataType: DataTypeString},                     // RFC2865
	{ID: 2, Name: "User-Password", DataType: DataTypeOctets, Secret: true},   // RFC2865
	{ID: 3, Name: "CHAP-Password", DataType: DataTypeOctets, Secret: true},   // RFC2865
	{ID: 4, Name: "NAS-IP-Address", DataType: DataTypeIPAddr},                // RFC2865
	{ID: 5, Name: "NAS-Port", DataType: DataTypeInteger},                     // RFC2865
	{ // RFC2865
		ID:       6,
		Name:     "Service-Type",
		DataType: DataTypeInteger,
		Values: map[uint32]string{
			1:  "Login-User",
			2:  "Framed-User",
			3:  "Callback-Login-User",
			4:  "Callback-Framed-User",
			5:  "Outbound-User",
			6:  "Administrative-User",
			7:  "NAS-Prompt-User",
			8:  "Authenticate-Only",
			9:  "Callback-NAS-Prompt",
			10: "Call-Check",
			11: "Callback-Administrative",
		},
	},
	{ID: 7, Name: "Framed-Protocol", DataType: DataTypeInteger},    // RFC2865
	{ID: 8, Name: "Framed-IP-Address", DataType: DataTypeIPAddr},   // RFC2865
	{ID: 9, Name: "Framed-IP-Netmask", DataType: DataTypeIPAddr},   // RFC2865
	{ID: 11, Name: "Filter-Id", DataType: DataTypeString},          // RFC2865
	{ID: 12, Name: "Framed-MTU", DataType: DataTypeInteger},        // RFC2865
	{ID: 18, Name: "Reply-Message", DataType: DataTypeString},      // RFC2865
	{ID: 22, Name: "Framed-Route", DataType: DataTypeString},       // RFC2865
	{ID: 24, Name: "State", DataType: DataTypeOctets},              // RFC2865
	{ID: 25, Name: "Class", DataType: DataTypeOctets},              // RFC2865
	{ID: 26, Name: "Vendor-Specific", DataType: DataTypeOctets},    // RFC2865
	{ID: 27, Name: "Session-Timeout", DataType: DataTypeInteger},   // RFC2865
	{ID: 28, Name: "Idle-Timeout", DataType: DataTypeInteger},      // RFC2865
	{ID: 30, Name: "Called-Station-Id", DataType: DataTypeString},  // RFC2865
	{ID: 31, Name: "Calling-Station-Id", DataType: DataTypeString}, // RFC2865
	{ID: 32, Name: "NAS-Identifier", DataType: DataTypeString},     // RFC2865
	{ID: 33, Name: "Proxy-State", DataType: DataTypeOctets},        // RFC2865
	{ // RFC2866
		ID:       40,
		Name:     "Acct-Status-Type",
		DataType: DataTypeInteger,
		Values: map[uint32]string{
			1: "Start",
			2: "Stop",
			3: "Interim-Update",
			7: "Accounting-On",
			8: "Accounting-Off",
		},
	},
	{ID: 41, Name: "Acct-Delay-Time", DataType: DataTypeInteger},    // RFC2866
	{ID: 42, Name: "Acct-Input-Octets", DataType: DataTypeInteger},  // RFC2866
	{ID: 43, Name: "Acct-Output-Octets", DataType: DataTypeInteger}, // RFC2866
	{ID: 44, Name: "Acct-Session-Id", DataType: DataTypeString},     // RFC2866
	{ // RFC2866
		ID:       45,
		Name:     "Acct-Authentic",
		DataType: DataTypeInteger,
		Values: map[uint32]string{
			1: "RADIUS",
			2: "Local",
			3: "Remote",
		},
	},
	{ID: 46, Name: "Acct-Session-Time", DataType: DataTypeInteger}, // RFC2866
	{ // RFC2866
		ID:       49,
		Name:     "Acct-Terminate-Cause",
		DataType: DataTypeInteger,
		Values: map[uint32]string{
			1:  "User-Request",
			2:  "Lost-Carrier",
			3:  "Lost-Service",
			4:  "Idle-Timeout",
			5:  "Session-Timeout",
			6:  "Admin-Reset",
			7:  "Admin-Reboot",
			8:  "Port-Error",
			9:  "NAS-Error",
			10: "NAS-Request",
			11: "NAS-Reboot",
		},
	},
	{ID: 52, Name: "Acct-Input-Gigawords", DataType: DataTypeInteger},  // RFC2869
	{ID: 53, Name: "Acct-Output-Gigawords", DataType: DataTypeInteger}, // RFC2869
	{ID: 55, Name: "Event-Timestamp", DataType: DataTypeDate},          // RFC2869
	{ID: 60, Name: "CHAP-Challenge", DataType: DataTypeOctets},         // RFC2865
	{ // RFC2865
		ID:       61,
		Name:     "NAS-Port-Type",
		DataType: DataTypeInteger,
		Values: map[uint32]string{
			0:  "Async",
			1:  "Sync",
			2:  "ISDN",
			5:  "Virtual",
			15: "Ethernet",
		},
	},
	{ID: 79, Name: "EAP-Message", DataType: DataTypeOctets},          // RFC2869
	{ID: 80, Name: "Message-Authenticator", DataType: DataTypeOctets}, // RFC2869
	{ID: 85, Name: "Acct-Interim-Interval", DataType: DataTypeInteger}, // RFC2869
	{ID: 87, Name: "NAS-Port-Id", DataType: DataTypeString},            // RFC2869
	{ID: 88, Name: "Framed-Pool", DataType: DataTypeString},            // RFC2869
}

var attributesByID = func() map[radius.Type]*AttributeDefinition {
	m := make(map[radius.Type]*AttributeDefinition, len(StandardAttributes))
	for _, def := range StandardAttributes {
		m[def.ID] = def
	}
	return m
}()

// LookupAttribute returns the definition of a standard attribute type.
func LookupAttribute(t radius.Type) (*AttributeDefinition, bool) {
	def, ok := attributesByID[t]
	return def, ok
}
