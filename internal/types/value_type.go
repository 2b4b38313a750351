// Package types implements SoupDB's value type and tuple schema model.
//
// What: a tagged description of a field (ValueType) with deterministic byte
// sizes and a textual DDL form, plus an ordered tuple of named fields.
// How: ValueType is a small struct carrying a Kind tag and, for the variants
// that need it, an inline size and/or a nested element type. Size and DDL
// rendering are pure functions of the tag, kept as a small
// lookup-style switch over the Kind tag so the arithmetic contracts
// SoupDB's on-disk format requires stay in one place.
// Why: every other layer (parser, page layout, model layer) needs a single
// authoritative notion of "how many bytes does this field take" and "how do
// I write/read it as text" — keeping that logic in one small package avoids
// it drifting out of sync across the buffer manager and the DDL grammar.
package types

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind tags the variant of a ValueType.
type Kind int

const (
	// Unknown is a placeholder used during type inference; it is illegal in
	// a stored schema and SizeOf on it always fails.
	Unknown Kind = iota
	AutoId
	Bool
	Uint
	Int
	Float
	Str
	Nullable
	Vector
)

var kindNames = map[Kind]string{
	Unknown:  "unknown",
	AutoId:   "autoid",
	Bool:     "bool",
	Uint:     "uint",
	Int:      "int",
	Float:    "float",
	Str:      "str",
	Nullable: "nullable",
	Vector:   "vector",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// maxInlineStr is the maximum on-page footprint of an inline Str(n) field.
const maxInlineStr = 256

// offPageHandleSize is the inline footprint of a Str(0) off-page marker:
// an 8-byte page id plus a 2-byte offset.
const offPageHandleSize = 10

// ValueType is a tagged description of a field.
//
// Str carries its requested capacity in N (0 means off-page).
// Nullable and Vector carry their element type in Elem; Vector additionally
// carries its element count in N.
type ValueType struct {
	Kind Kind
	N    int
	Elem *ValueType
}

// Scalar constructors for the fixed-size kinds.
func NewAutoId() ValueType { return ValueType{Kind: AutoId} }
func NewBool() ValueType   { return ValueType{Kind: Bool} }
func NewUint() ValueType   { return ValueType{Kind: Uint} }
func NewInt() ValueType    { return ValueType{Kind: Int} }
func NewFloat() ValueType  { return ValueType{Kind: Float} }

// NewStr builds a Str(n) value type. n == 0 means variable, off-page.
func NewStr(n int) ValueType {
	return ValueType{Kind: Str, N: n}
}

// NewNullable wraps t as Nullable(t).
func NewNullable(t ValueType) ValueType {
	elem := t
	return ValueType{Kind: Nullable, Elem: &elem}
}

// NewVector builds Vector(n, t); n must be a fixed positive element count.
func NewVector(n int, t ValueType) ValueType {
	elem := t
	return ValueType{Kind: Vector, N: n, Elem: &elem}
}

// SizeOf returns the on-page byte footprint of t, or an error if t contains
// Unknown anywhere (Unknown must never appear in a stored schema).
func SizeOf(t ValueType) (int, error) {
	switch t.Kind {
	case Unknown:
		return 0, errors.New("soupdb/types: size_of(Unknown) is undefined; Unknown must not appear in a stored schema")
	case AutoId, Uint, Int, Float:
		return 8, nil
	case Bool:
		return 1, nil
	case Str:
		if t.N == 0 {
			return offPageHandleSize, nil
		}
		if t.N > maxInlineStr {
			return maxInlineStr, nil
		}
		return t.N, nil
	case Nullable:
		if t.Elem == nil {
			return 0, errors.New("soupdb/types: Nullable with no element type")
		}
		inner, err := SizeOf(*t.Elem)
		if err != nil {
			return 0, err
		}
		return inner + 1, nil
	case Vector:
		if t.Elem == nil {
			return 0, errors.New("soupdb/types: Vector with no element type")
		}
		if t.N <= 0 {
			return 0, errors.Errorf("soupdb/types: vector element count must be positive, got %d", t.N)
		}
		inner, err := SizeOf(*t.Elem)
		if err != nil {
			return 0, err
		}
		return t.N * inner, nil
	default:
		return 0, errors.Errorf("soupdb/types: unrecognized kind %v", t.Kind)
	}
}

// ToDDL renders t as the textual form the parser accepts back (ParseValueType
// in the lang package is the inverse for every kind except AutoId and
// Unknown, whose "autoid"/"unknown" forms the parser does not accept).
func ToDDL(t ValueType) string {
	switch t.Kind {
	case AutoId:
		return "autoid"
	case Bool:
		return "bool"
	case Uint:
		return "unsigned int"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		if t.N == 0 {
			return "str"
		}
		return fmt.Sprintf("str(%d)", t.N)
	case Nullable:
		return "nullable " + ToDDL(*t.Elem)
	case Vector:
		return fmt.Sprintf("vector(%d) %s", t.N, ToDDL(*t.Elem))
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("<invalid kind %v>", t.Kind)
	}
}

// Equal reports whether two value types are structurally identical.
func Equal(a, b ValueType) bool {
	if a.Kind != b.Kind || a.N != b.N {
		return false
	}
	if (a.Elem == nil) != (b.Elem == nil) {
		return false
	}
	if a.Elem != nil && !Equal(*a.Elem, *b.Elem) {
		return false
	}
	return true
}

// Field is one named entry of a Tuple.
type Field struct {
	Name string
	Type ValueType
}

// Tuple is an ordered sequence of named, typed fields.
type Tuple struct {
	Fields []Field
}

// NewTuple builds a Tuple from the given fields, in order.
func NewTuple(fields ...Field) Tuple {
	return Tuple{Fields: append([]Field(nil), fields...)}
}

// SizeOf returns the sum of each field's SizeOf.
func (t Tuple) SizeOf() (int, error) {
	total := 0
	for _, f := range t.Fields {
		n, err := SizeOf(f.Type)
		if err != nil {
			return 0, errors.Wrapf(err, "field %q", f.Name)
		}
		total += n
	}
	return total, nil
}

// ToDDL renders the tuple as "(name1 type1, name2 type2, ...)".
func (t Tuple) ToDDL() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + " " + ToDDL(f.Type)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Equal reports whether two tuples have the same fields, in the same order.
func (t Tuple) Equal(other Tuple) bool {
	if len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i].Name != other.Fields[i].Name {
			return false
		}
		if !Equal(t.Fields[i].Type, other.Fields[i].Type) {
			return false
		}
	}
	return true
}
