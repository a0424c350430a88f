package wire

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bsonCodec wraps each message in a single-field document, since BSON
// documents (unlike JSON texts) cannot hold a bare array at the root.
// The field is stripped back off on decode so callers never see it.
type bsonCodec struct{}

const bsonRootField = "m"

func (bsonCodec) Format() Format { return BSON }

func (bsonCodec) Encode(v Value) ([]byte, error) {
	data, err := bson.Marshal(bson.M{bsonRootField: toBSONNative(v)})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (bsonCodec) Decode(data []byte) (Value, error) {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, ok := doc[bsonRootField]
	if !ok {
		return Value{}, fmt.Errorf("%w: missing root field", ErrMalformed)
	}
	v, err := fromBSONNative(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

func toBSONNative(v Value) interface{} {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.AsBool()
	case KindInt:
		return v.AsInt()
	case KindFloat:
		return v.AsFloat()
	case KindString:
		return v.AsString()
	case KindArray:
		a := v.AsArray()
		out := make(bson.A, len(a))
		for i, e := range a {
			out[i] = toBSONNative(e)
		}
		return out
	case KindMap:
		m := v.AsMap()
		out := make(bson.M, len(m))
		for k, e := range m {
			out[k] = toBSONNative(e)
		}
		return out
	}
	return nil
}

// fromBSONNative normalizes the shapes the mongo-driver produces when
// decoding into an interface{} target (primitive.A for arrays,
// primitive.D for embedded documents, plus the scalar Go types) back
// into Value.
func fromBSONNative(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case primitive.A:
		out := make([]Value, len(t))
		for i, e := range t {
			cv, err := fromBSONNative(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = cv
		}
		return NewArray(out...), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			cv, err := fromBSONNative(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = cv
		}
		return NewArray(out...), nil
	case primitive.D:
		out := make(map[string]Value, len(t))
		for _, e := range t {
			cv, err := fromBSONNative(e.Value)
			if err != nil {
				return Value{}, err
			}
			out[e.Key] = cv
		}
		return NewMap(out), nil
	case primitive.M:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			cv, err := fromBSONNative(e)
			if err != nil {
				return Value{}, err
			}
			out[k] = cv
		}
		return NewMap(out), nil
	case map[string]interface{}:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			cv, err := fromBSONNative(e)
			if err != nil {
				return Value{}, err
			}
			out[k] = cv
		}
		return NewMap(out), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case float64:
		return NewFloat(t), nil
	case string:
		return NewString(t), nil
	case bool:
		return NewBool(t), nil
	default:
		return FromNative(x)
	}
}
