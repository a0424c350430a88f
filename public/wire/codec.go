package wire

import "errors"

// Format selects one of the four interchangeable wire encodings.
type Format int

const (
	JSON Format = iota
	BSON
	MsgPack
	CBOR
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case BSON:
		return "bson"
	case MsgPack:
		return "msgpack"
	case CBOR:
		return "cbor"
	default:
		return "unknown"
	}
}

// ParseFormat maps a config-file/flag name to a Format. Unknown names
// fall back to JSON, the connection-scoped default per the protocol's
// external interface.
func ParseFormat(name string) Format {
	switch name {
	case "bson":
		return BSON
	case "msgpack":
		return MsgPack
	case "cbor":
		return CBOR
	default:
		return JSON
	}
}

// ErrMalformed is returned by Decode when bytes cannot be parsed as a
// message of the codec's format. The protocol engine turns this into
// a protocol-malformed failure: the frame is logged and dropped.
var ErrMalformed = errors.New("wire: malformed message")

// Codec encodes and decodes a Value using one concrete wire format.
// Encode and Decode must be mutual inverses modulo the Value model:
// numeric precision is preserved, map key order is not.
type Codec interface {
	Encode(v Value) ([]byte, error)
	Decode(data []byte) (Value, error)
	Format() Format
}

// New returns the Codec for the requested format.
func New(format Format) Codec {
	switch format {
	case BSON:
		return bsonCodec{}
	case MsgPack:
		return msgpackCodec{}
	case CBOR:
		return cborCodec{}
	default:
		return jsonCodec{}
	}
}
