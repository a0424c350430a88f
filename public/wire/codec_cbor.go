package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborCodec encodes using CBOR. Like MessagePack, CBOR allows an
// array at the document root.
type cborCodec struct{}

func (cborCodec) Format() Format { return CBOR }

func (cborCodec) Encode(v Value) ([]byte, error) {
	return cbor.Marshal(ToNative(v))
}

func (cborCodec) Decode(data []byte) (Value, error) {
	var raw interface{}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	v, err := fromCBORNative(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// fromCBORNative normalizes the shapes cbor.Unmarshal produces when
// decoding into an interface{} target: maps come back as
// map[interface{}]interface{} unless every key happens to be a
// string, in which case the library already gives us
// map[string]interface{}.
func fromCBORNative(x interface{}) (Value, error) {
	switch t := x.(type) {
	case map[string]interface{}:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			cv, err := fromCBORNative(e)
			if err != nil {
				return Value{}, err
			}
			out[k] = cv
		}
		return NewMap(out), nil
	case map[interface{}]interface{}:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("wire: non-string map key %v", k)
			}
			cv, err := fromCBORNative(e)
			if err != nil {
				return Value{}, err
			}
			out[ks] = cv
		}
		return NewMap(out), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			cv, err := fromCBORNative(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = cv
		}
		return NewArray(out...), nil
	default:
		return FromNative(x)
	}
}
