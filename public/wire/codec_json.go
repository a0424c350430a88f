package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonCodec is the default wire format: encoding/json over the
// Value tree's native projection.
//
// JSON numbers carry no int/float distinction on the wire, so a
// plain decode into interface{} always yields float64. To keep the
// round-trip invariant for integers we decode with UseNumber and
// classify each json.Number by whether it contains a fractional or
// exponent marker.
type jsonCodec struct{}

func (jsonCodec) Format() Format { return JSON }

func (jsonCodec) Encode(v Value) ([]byte, error) {
	return json.Marshal(ToNative(v))
}

func (jsonCodec) Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	v, err := fromJSONNative(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

func fromJSONNative(x interface{}) (Value, error) {
	switch t := x.(type) {
	case json.Number:
		return numberToValue(t)
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			cv, err := fromJSONNative(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = cv
		}
		return NewArray(out...), nil
	case map[string]interface{}:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			cv, err := fromJSONNative(e)
			if err != nil {
				return Value{}, err
			}
			out[k] = cv
		}
		return NewMap(out), nil
	default:
		return FromNative(x)
	}
}

func numberToValue(n json.Number) (Value, error) {
	s := string(n)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			f, err := n.Float64()
			if err != nil {
				return Value{}, err
			}
			return NewFloat(f), nil
		}
	}
	i, err := n.Int64()
	if err != nil {
		// out of int64 range; fall back to float rather than fail
		f, ferr := n.Float64()
		if ferr != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	}
	return NewInt(i), nil
}
