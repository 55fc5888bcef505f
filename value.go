package jdelta

import (
	"bytes"
	"slices"
)

// Type identifies the variant held by a Value.
type Type uint8

const (
	typeNone Type = iota // zero Value, never constructed
	TypeBool
	TypeNumber
	TypeString
	TypeBinary
	TypeArray
	TypeObject
	TypeUnknown
)

var typeNames = [...]string{
	typeNone:    "none",
	TypeBool:    "bool",
	TypeNumber:  "number",
	TypeString:  "string",
	TypeBinary:  "binary",
	TypeArray:   "array",
	TypeObject:  "object",
	TypeUnknown: "unknown",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Container reports whether values of this type hold other values.
func (t Type) Container() bool {
	return t == TypeArray || t == TypeObject
}

// Value is an immutable comparable value: a scalar, a binary blob, an ordered
// array, an object with insertion-ordered keys, or an unknown shape.
//
// The zero Value holds no variant and is rejected by Align and Build. Use the
// constructors (Bool, Number, String, Binary, Array, Object, Unknown) or
// FromAny to create values.
type Value struct {
	typ    Type
	b      bool
	num    float64
	str    string // string payload, or unknown reason
	bin    []byte
	elems  []Value
	fields []Field
	index  map[string]int
}

// Field represents a single entry in an object. It consists of a string key and
// an associated value.
type Field struct {
	Key   string
	Value Value
}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{typ: TypeBool, b: b} }

// Number returns a numeric Value. Non-finite numbers are accepted; they
// compare with a zero score against everything.
func Number(n float64) Value { return Value{typ: TypeNumber, num: n} }

// String returns a string Value.
func String(s string) Value { return Value{typ: TypeString, str: s} }

// Binary returns a Value wrapping a copy of p. Binary values are compared as
// opaque units.
func Binary(p []byte) Value {
	return Value{typ: TypeBinary, bin: bytes.Clone(p)}
}

// Unknown returns a Value for a shape that cannot be compared, such as a JSON
// null or an unsupported Go type. reason is kept for rendering.
func Unknown(reason string) Value {
	if reason == "" {
		reason = "unknown"
	}
	return Value{typ: TypeUnknown, str: reason}
}

// Array returns an ordered array Value. Zero Values among elems are stored
// as Unknown.
func Array(elems ...Value) Value {
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[i] = normalize(e)
	}
	return Value{typ: TypeArray, elems: out}
}

// Object returns an object Value preserving the order of fields. When a key
// repeats, the first occurrence keeps its position and the last value wins.
func Object(fields ...Field) Value {
	out := make([]Field, 0, len(fields))
	index := make(map[string]int, len(fields))
	for _, f := range fields {
		f.Value = normalize(f.Value)
		if i, ok := index[f.Key]; ok {
			out[i].Value = f.Value
			continue
		}
		index[f.Key] = len(out)
		out = append(out, f)
	}
	return Value{typ: TypeObject, fields: out, index: index}
}

func normalize(v Value) Value {
	if v.typ == typeNone {
		return Unknown("missing value")
	}
	return v
}

// Type returns the variant of v.
func (v Value) Type() Type { return v.typ }

// TypeName returns the name of the variant of v, e.g. "number" or "object".
func (v Value) TypeName() string { return v.typ.String() }

// IsZero reports whether v was never constructed.
func (v Value) IsZero() bool { return v.typ == typeNone }

// Bool returns the boolean payload; false for other variants.
func (v Value) Bool() bool { return v.b }

// Float returns the numeric payload; 0 for other variants.
func (v Value) Float() float64 { return v.num }

// Str returns the string payload of a string Value, or the reason of an
// unknown Value.
func (v Value) Str() string { return v.str }

// Bytes returns a copy of the binary payload.
func (v Value) Bytes() []byte { return bytes.Clone(v.bin) }

// Len returns the number of elements or fields of a container, the byte length
// of a binary value, and 0 otherwise.
func (v Value) Len() int {
	switch v.typ {
	case TypeArray:
		return len(v.elems)
	case TypeObject:
		return len(v.fields)
	case TypeBinary:
		return len(v.bin)
	}
	return 0
}

// Elems returns a copy of the elements of an array Value.
func (v Value) Elems() []Value { return slices.Clone(v.elems) }

// Fields returns a copy of the fields of an object Value in insertion order.
func (v Value) Fields() []Field { return slices.Clone(v.fields) }

// Get returns the value stored under key in an object Value.
func (v Value) Get(key string) (Value, bool) {
	i, ok := v.index[key]
	if !ok {
		return Value{}, false
	}
	return v.fields[i].Value, true
}
