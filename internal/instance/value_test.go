package instance

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestValue_TypedAccessors(t *testing.T) {
	tests := map[string]struct {
		value   Value
		expKind Kind
		expText string
	}{
		"string":  {value: StringValue("hello"), expKind: KindString, expText: "hello"},
		"int":     {value: IntValue(42), expKind: KindInt, expText: "42"},
		"bool":    {value: BoolValue(true), expKind: KindBool, expText: "true"},
		"float":   {value: FloatValue(2.5), expKind: KindFloat, expText: "2.5"},
		"zero":    {value: Value{}, expKind: KindString, expText: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "kind", tt.value.Kind(), tt.expKind)
			testutil.AssertEqual(t, "text", tt.value.Text(), tt.expText)
		})
	}
}

func TestValue_MismatchReportsNotOk(t *testing.T) {
	v := IntValue(7)

	_, ok := v.AsString()
	testutil.AssertEqual(t, "string from int", ok, false)
	_, ok = v.AsBool()
	testutil.AssertEqual(t, "bool from int", ok, false)
	_, ok = v.AsFloat()
	testutil.AssertEqual(t, "float from int", ok, false)

	i, ok := v.AsInt()
	testutil.AssertEqual(t, "int ok", ok, true)
	testutil.AssertEqual(t, "int value", i, 7)
}

func TestValue_JSONRoundTrip(t *testing.T) {
	tests := map[string]struct {
		value   Value
		expJSON string
	}{
		"string": {value: StringValue("camp"), expJSON: `"camp"`},
		"int":    {value: IntValue(-3), expJSON: `-3`},
		"bool":   {value: BoolValue(false), expJSON: `false`},
		"float":  {value: FloatValue(0.25), expJSON: `0.25`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("unexpected marshal error: %v", err)
			}
			testutil.AssertEqual(t, "json", string(data), tt.expJSON)

			var back Value
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unexpected unmarshal error: %v", err)
			}
			testutil.AssertEqual(t, "round trip", back, tt.value, cmpAllowUnexported)
		})
	}
}

func TestValue_UnmarshalRejectsComposites(t *testing.T) {
	var v Value
	err := json.Unmarshal([]byte(`{"nested": true}`), &v)
	testutil.AssertErrorContains(t, err, "unsupported type")
}
