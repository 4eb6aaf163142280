package instance

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Value is a tagged variant used for instance settings and per-player custom
// data. Typed accessors report a kind mismatch through their ok result so
// callers can fall back to a default instead of handling an error.
type Value struct {
	kind Kind
	s    string
	i    int
	b    bool
	f    float64
}

func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func IntValue(i int) Value       { return Value{kind: KindInt, i: i} }
func BoolValue(b bool) Value     { return Value{kind: KindBool, b: b} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsInt() (int, bool)       { return v.i, v.kind == KindInt }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// Text renders the value for console output.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.Itoa(v.i)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON writes the bare JSON scalar for the held variant.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return json.Marshal(v.i)
	case KindBool:
		return json.Marshal(v.b)
	case KindFloat:
		return json.Marshal(v.f)
	default:
		return nil, fmt.Errorf("marshal value: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON infers the kind from the JSON scalar. Numbers without a
// fractional part decode as ints.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case string:
		*v = StringValue(val)
	case bool:
		*v = BoolValue(val)
	case float64:
		if val == math.Trunc(val) {
			*v = IntValue(int(val))
		} else {
			*v = FloatValue(val)
		}
	default:
		return fmt.Errorf("unmarshal value: unsupported type %T", raw)
	}
	return nil
}
