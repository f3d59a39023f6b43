package packet

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"time"
	"unicode/utf8"

	"layeh.com/radius"
)

// Attribute is one received type/value pair, in wire order.
type Attribute struct {
	Type  radius.Type
	Value []byte
}

// Name returns the dictionary name of the attribute, or Attr-N for unknown types.
func (a Attribute) Name() string {
	if def, ok := LookupAttribute(a.Type); ok {
		return def.Name
	}
	return "Attr-" + strconv.Itoa(int(a.Type))
}

// String returns the log representation of the attribute
func (a Attribute) String() string {
	return fmt.Sprintf("%s(%d) = %s", a.Name(), int(a.Type), a.FormatValue())
}

// FormatValue renders the value according to the attribute data type.
func (a Attribute) FormatValue() string {
	def, known := LookupAttribute(a.Type)
	if known && def.Secret {
		return "<hidden>"
	}

	dataType := DataTypeOctets
	if known {
		dataType = def.DataType
	}

	switch dataType {
	case DataTypeString:
		if utf8.Valid(a.Value) {
			return strconv.Quote(string(a.Value))
		}
	case DataTypeIPAddr:
		if len(a.Value) == net.IPv4len {
			return net.IP(a.Value).String()
		}
	case DataTypeInteger:
		if len(a.Value) == 4 {
			v := binary.BigEndian.Uint32(a.Value)
			if name, ok := def.Values[v]; ok {
				return fmt.Sprintf("%s(%d)", name, v)
			}
			return strconv.FormatUint(uint64(v), 10)
		}
	case DataTypeDate:
		if len(a.Value) == 4 {
			return time.Unix(int64(binary.BigEndian.Uint32(a.Value)), 0).UTC().Format(time.RFC3339)
		}
	}

	return "0x" + hex.EncodeToString(a.Value)
}

func attributesOf(p *radius.Packet) []Attribute {
	attrs := make([]Attribute, 0, len(p.Attributes))
	for _, avp := range p.Attributes {
		value := make([]byte, len(avp.Attribute))
		copy(value, avp.Attribute)
		attrs = append(attrs, Attribute{Type: avp.Type, Value: value})
	}
	return attrs
}
