// Package datalayer models the page-global analytics event queue and turns
// its heterogeneous, nested entries into flat records.
package datalayer

import (
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Field is one named member of a composite Value. Array elements use their
// decimal index as the key.
type Field struct {
	Key   string
	Value Value
}

// Value is a decoded dataLayer value: either a scalar (null, bool, number,
// string) or a composite with ordered fields. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	text   string
	fields []Field
}

// Null returns the null scalar.
func Null() Value { return Value{} }

// Bool returns a boolean scalar.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric scalar holding the literal as written in the source.
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// Int is a convenience constructor for integral numbers.
func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

// String returns a string scalar.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Object builds an object from fields in the given order. A repeated key
// keeps its first position and takes the last value.
func Object(fields ...Field) Value {
	return Value{kind: KindObject, fields: dedupe(fields)}
}

// Array builds an array whose elements are keyed by index.
func Array(items ...Value) Value {
	fields := make([]Field, len(items))
	for i, item := range items {
		fields[i] = Field{Key: strconv.Itoa(i), Value: item}
	}
	return Value{kind: KindArray, fields: fields}
}

// F is shorthand for building a Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null scalar.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsComposite reports whether v is an object or an array.
func (v Value) IsComposite() bool { return v.kind == KindObject || v.kind == KindArray }

// Fields returns the ordered members of a composite, or nil for scalars.
func (v Value) Fields() []Field { return v.fields }

// Len is the number of members of a composite.
func (v Value) Len() int { return len(v.fields) }

// Field looks up an own member of an object by key.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// FieldOr returns the member under key, or def when it is missing or null.
func (v Value) FieldOr(key string, def Value) Value {
	if f, ok := v.Field(key); ok && !f.IsNull() {
		return f
	}
	return def
}

// Str returns the contents of a string scalar, or "" for any other kind.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.text
}

// String renders a scalar the way it appears in a tabular cell. Null and
// composites render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber, KindString:
		return v.text
	default:
		return ""
	}
}

// Equal reports deep equality, including field order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.b != o.b || v.text != o.text || len(v.fields) != len(o.fields) {
		return false
	}
	for i := range v.fields {
		if v.fields[i].Key != o.fields[i].Key || !v.fields[i].Value.Equal(o.fields[i].Value) {
			return false
		}
	}
	return true
}

func dedupe(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	pos := make(map[string]int, len(fields))
	for _, f := range fields {
		if i, seen := pos[f.Key]; seen {
			out[i].Value = f.Value
			continue
		}
		pos[f.Key] = len(out)
		out = append(out, f)
	}
	return out
}
