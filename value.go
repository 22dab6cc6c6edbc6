package distill

import (
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

// Value kinds. The zero kind is Unavailable.
const (
	KindUnavailable ValueKind = iota
	KindInteger
	KindFloat
	KindString
	KindBoolean
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	default:
		return "unavailable"
	}
}

// Value is a typed property value. The zero Value is Unavailable, which
// means the property did not match or its raw text could not be converted.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    bool
}

// Unavailable returns the "not available" value.
func Unavailable() Value { return Value{} }

// IntegerValue returns an integer value.
func IntegerValue(i int64) Value { return Value{kind: KindInteger, i: i} }

// FloatValue returns a float value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// BooleanValue returns a boolean value.
func BooleanValue(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// IsUnavailable reports whether v is the Unavailable sentinel.
func (v Value) IsUnavailable() bool { return v.kind == KindUnavailable }

// Integer returns the integer payload and whether v holds one.
func (v Value) Integer() (int64, bool) { return v.i, v.kind == KindInteger }

// Float returns the float payload and whether v holds one.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Str returns the string payload and whether v holds one.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Boolean returns the boolean payload and whether v holds one.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBoolean }

// Interface returns the payload as int64, float64, string or bool.
// Unavailable returns nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBoolean:
		return v.b
	default:
		return nil
	}
}

// String returns the natural string form of v. Unavailable is "".
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Coerce converts raw into a Value of type t. It never fails: text that
// does not parse as t becomes Unavailable. Strings pass through unchanged,
// including the empty string.
func Coerce(raw string, t ValueType) Value {
	switch t {
	case ValueTypeString:
		return StringValue(raw)
	case ValueTypeInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Unavailable()
		}
		return IntegerValue(i)
	case ValueTypeFloat:
		if !isDecimalFloatSyntax(raw) {
			return Unavailable()
		}
		// Literals beyond float64 range report ErrRange and are rejected
		// rather than becoming infinite.
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Unavailable()
		}
		return FloatValue(f)
	case ValueTypeBoolean:
		switch raw {
		case "true":
			return BooleanValue(true)
		case "false":
			return BooleanValue(false)
		}
		return Unavailable()
	default:
		return Unavailable()
	}
}

// isDecimalFloatSyntax rejects the Go-only forms strconv.ParseFloat
// understands: hexadecimal mantissas and digit-separating underscores.
func isDecimalFloatSyntax(s string) bool {
	if strings.ContainsRune(s, '_') {
		return false
	}
	s = strings.TrimLeft(s, "+-")
	return !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X")
}
