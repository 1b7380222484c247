package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ValueKind discriminates the variants of Value
type ValueKind string

const (
	KindNil    ValueKind = "nil"
	KindNumber ValueKind = "number"
	KindString ValueKind = "string"
	KindBool   ValueKind = "bool"
	KindList   ValueKind = "list"
)

// Value is a tagged variant holding a single feature value or risk factor
// threshold. Values are JSON encoded on the wire and in storage, so the
// supported kinds mirror the JSON scalar types plus lists. Dates travel as
// ISO-8601 strings and stay KindString; the feature validator and ordered
// comparisons interpret them.
type Value struct {
	kind    ValueKind
	num     float64
	str     string
	boolean bool
	list    []Value
}

// NumberValue returns a Value holding a number
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// StringValue returns a Value holding a string
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BoolValue returns a Value holding a boolean
func BoolValue(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// ListValue returns a Value holding a list of values
func ListValue(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Kind returns the variant tag of the value
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return KindNil
	}
	return v.kind
}

// IsNil reports whether the value is absent
func (v Value) IsNil() bool {
	return v.Kind() == KindNil
}

// Number returns the numeric payload when the value is a number
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the string payload when the value is a string
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Bool returns the boolean payload when the value is a boolean
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// List returns the list payload when the value is a list
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Equal reports whether two values have the same kind and payload
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNil:
		return true
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindBool:
		return v.boolean == other.boolean
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare returns the ordering of v relative to other (-1, 0, 1). It is
// defined for number/number and string/string pairs; string pairs that both
// parse as ISO-8601 timestamps are compared chronologically. The second
// return is false when the pair is not comparable.
func (v Value) Compare(other Value) (int, bool) {
	switch {
	case v.kind == KindNumber && other.kind == KindNumber:
		switch {
		case v.num < other.num:
			return -1, true
		case v.num > other.num:
			return 1, true
		default:
			return 0, true
		}
	case v.kind == KindString && other.kind == KindString:
		if vt, ok := parseTimestamp(v.str); ok {
			if ot, ok := parseTimestamp(other.str); ok {
				switch {
				case vt.Before(ot):
					return -1, true
				case vt.After(ot):
					return 1, true
				default:
					return 0, true
				}
			}
		}
		return strings.Compare(v.str, other.str), true
	default:
		return 0, false
	}
}

// String renders the value for log and error messages
func (v Value) String() string {
	switch v.Kind() {
	case KindNil:
		return "null"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// MarshalJSON encodes the value as its plain JSON representation
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindNil:
		return []byte("null"), nil
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.boolean)
	case KindList:
		return json.Marshal(v.list)
	default:
		return nil, goerr.New("unknown value kind", goerr.V("kind", v.kind))
	}
}

// UnmarshalJSON decodes a plain JSON value into the matching variant
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "failed to decode value")
	}
	decoded, err := ValueFrom(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ValueFrom converts a decoded JSON value (as produced by encoding/json
// into any) to a tagged Value
func ValueFrom(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Value{}, nil
	case float64:
		return NumberValue(val), nil
	case int:
		return NumberValue(float64(val)), nil
	case int64:
		return NumberValue(float64(val)), nil
	case string:
		return StringValue(val), nil
	case bool:
		return BoolValue(val), nil
	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			decoded, err := ValueFrom(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = decoded
		}
		return ListValue(items...), nil
	case []Value:
		return ListValue(val...), nil
	case Value:
		return val, nil
	default:
		return Value{}, goerr.New("unsupported value type", goerr.V("type_name", fmt.Sprintf("%T", raw)))
	}
}

// parseTimestamp parses an ISO-8601 date or date-time string
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
