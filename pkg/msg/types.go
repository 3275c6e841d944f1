package msg

// Type enumerates the ASTM F3411 broadcast message kinds
type Type uint8

const (
	TypeBasicID    Type = 0x0
	TypeLocation   Type = 0x1
	TypeAuth       Type = 0x2
	TypeSelfID     Type = 0x3
	TypeSystem     Type = 0x4
	TypeOperatorID Type = 0x5

	// TypePack is the message pack container. It does not fit a legacy
	// advertisement payload, so this package enumerates it but does not
	// encode it.
	TypePack Type = 0xF
)

// String returns string representation of Type
func (t Type) String() string {
	switch t {
	case TypeBasicID:
		return "BasicID"
	case TypeLocation:
		return "Location"
	case TypeAuth:
		return "Auth"
	case TypeSelfID:
		return "SelfID"
	case TypeSystem:
		return "SystemMsg"
	case TypeOperatorID:
		return "OperatorID"
	case TypePack:
		return "MessagePack"
	default:
		return "Unknown"
	}
}

// Frame is one ready-to-broadcast advertisement payload
type Frame struct {
	Type    Type
	Payload string // full AD structure as a hex string, 31 bytes encoded
}

const (
	// protocolVersion is the F3411-22a protocol version nibble
	protocolVersion = 2

	// bodyLen is the kind-specific portion of every message
	bodyLen = 24

	// Field limits
	maxIDLen       = 20 // Basic ID / Operator ID identifier bytes
	maxSelfIDLen   = 23 // Self ID free text bytes
	maxAuthDataLen = authPage0Data + (authLastPage * authPageData)

	// Auth message paging
	authPage0Data = 17 // payload bytes on page 0
	authPageData  = 23 // payload bytes on pages >= 1
	authLastPage  = 2  // pages 0..2, fixed 3-page layout
)

// adPrefix is the fixed AD structure header: length 0x1E (30 bytes follow),
// Service Data AD type 0x16, the ASTM service UUID 0xFFFA little endian,
// and the Remote ID application code 0x0D.
var adPrefix = []byte{0x1e, 0x16, 0xfa, 0xff, 0x0d}
