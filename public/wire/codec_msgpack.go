package wire

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// msgpackCodec encodes using MessagePack, which (unlike BSON) allows
// an array at the document root, so no wrapping is needed.
type msgpackCodec struct{}

func (msgpackCodec) Format() Format { return MsgPack }

func (msgpackCodec) Encode(v Value) ([]byte, error) {
	return msgpack.Marshal(ToNative(v))
}

func (msgpackCodec) Decode(data []byte) (Value, error) {
	var raw interface{}
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	v, err := fromMsgpackNative(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// fromMsgpackNative normalizes the shapes msgpack.Unmarshal produces
// for a map[string]interface{}/[]interface{} target.
func fromMsgpackNative(x interface{}) (Value, error) {
	switch t := x.(type) {
	case map[string]interface{}:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			cv, err := fromMsgpackNative(e)
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
			cv, err := fromMsgpackNative(e)
			if err != nil {
				return Value{}, err
			}
			out[ks] = cv
		}
		return NewMap(out), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			cv, err := fromMsgpackNative(e)
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
