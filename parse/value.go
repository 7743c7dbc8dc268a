package parse

import "fmt"

// Kind identifies the concrete type carried by a Value. It is a closed set:
// the encoder is total over these kinds and nothing else.
type Kind uint8

// Value kinds. The numeric constants are part of the wire schema's type
// tagging and must not be reordered.
const (
	KindNull Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindText
	KindURI
	KindArray
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindText:
		return "text"
	case KindURI:
		return "uri"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Width returns the element width in bytes for fixed-width kinds, 0 otherwise.
func (k Kind) Width() int {
	switch k {
	case KindBool, KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// Value is a closed variant holding exactly one typed payload, selected by
// Kind. Values are produced once by the parser (or constructed directly for
// array data) and consumed once by the encoder; they are never mutated.
type Value struct {
	Kind Kind

	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Text  string // KindText and KindURI

	// Array payload: homogeneous elements in row-major order
	Elem  Kind
	Shape []uint32
	Data  []byte
}

// Pair is one key with its typed value. Keys are not required to be unique;
// input order is preserved.
type Pair struct {
	Key   string
	Value Value
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int returns a signed integer value of the given kind.
func Int(kind Kind, v int64) Value { return Value{Kind: kind, Int: v} }

// Uint returns an unsigned integer value of the given kind.
func Uint(kind Kind, v uint64) Value { return Value{Kind: kind, Uint: v} }

// Float returns a 64-bit float value.
func Float(v float64) Value { return Value{Kind: KindFloat64, Float: v} }

// Text returns a text value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// URI returns a URI reference value.
func URI(uri string) Value { return Value{Kind: KindURI, Text: uri} }

// Array returns an array value with the given element kind, shape and
// row-major element bytes. It panics if the byte length does not match the
// shape, since that is a programming error rather than bad input.
func Array(elem Kind, shape []uint32, data []byte) Value {
	want := elem.Width()
	for _, d := range shape {
		want *= int(d)
	}
	if len(shape) == 0 {
		want = 0
	}
	if want != len(data) {
		panic(fmt.Sprintf("parse: array data length %d does not match shape %v of %s", len(data), shape, elem))
	}
	return Value{Kind: KindArray, Elem: elem, Shape: shape, Data: data}
}

// Count returns the number of elements described by an array shape.
func Count(shape []uint32) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= int(d)
	}
	return n
}
