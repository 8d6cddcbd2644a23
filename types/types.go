// Package types defines the value types of the language and the rules that
// decide when a value of one type may be stored where another is expected.
package types

import (
	"sort"
	"strings"

	"github.com/psyk-lang/psyk/errors"
)

// Kind identifies the variant of a Type.
type Kind uint8

const (
	NullKind Kind = iota
	AnyKind
	IntegerKind
	FloatKind
	BoolKind
	CharKind
	ArrayKind
	UnionKind
)

// Type is an immutable value type. The zero value is Null.
type Type struct {
	kind    Kind
	elem    *Type
	members []Type
}

var (
	Null    = Type{kind: NullKind}
	Any     = Type{kind: AnyKind}
	Integer = Type{kind: IntegerKind}
	Float   = Type{kind: FloatKind}
	Bool    = Type{kind: BoolKind}
	Char    = Type{kind: CharKind}

	// Numeric is the union of the two number types.
	Numeric = UnionOf(Integer, Float)
)

// ArrayOf returns the array type whose elements have the given type.
func ArrayOf(elem Type) Type {
	return Type{kind: ArrayKind, elem: &elem}
}

// UnionOf returns a union of the given members. Duplicate members are
// dropped and members are kept in name order so that equal unions have
// equal names.
func UnionOf(members ...Type) Type {
	seen := map[string]bool{}
	var uniq []Type
	for _, m := range members {
		if seen[m.Name()] {
			continue
		}
		seen[m.Name()] = true
		uniq = append(uniq, m)
	}
	sort.Slice(uniq, func(i, j int) bool {
		return uniq[i].Name() < uniq[j].Name()
	})
	return Type{kind: UnionKind, members: uniq}
}

// Kind returns the variant of the type.
func (t Type) Kind() Kind {
	return t.kind
}

// IsNull reports whether the type is Null, which the symbol table also uses
// to mean "no type recorded yet".
func (t Type) IsNull() bool {
	return t.kind == NullKind
}

// IsArray reports whether the type is an array type.
func (t Type) IsArray() bool {
	return t.kind == ArrayKind
}

// Elem returns the element type of an array type, or Null for any other
// type.
func (t Type) Elem() Type {
	if t.kind != ArrayKind || t.elem == nil {
		return Null
	}
	return *t.elem
}

// Members returns the members of a union type.
func (t Type) Members() []Type {
	return t.members
}

// Name returns the canonical name of the type.
func (t Type) Name() string {
	switch t.kind {
	case AnyKind:
		return "Any"
	case IntegerKind:
		return "Int"
	case FloatKind:
		return "Float"
	case BoolKind:
		return "Bool"
	case CharKind:
		return "Char"
	case ArrayKind:
		return "Array[" + t.Elem().Name() + "]"
	case UnionKind:
		names := make([]string, 0, len(t.members))
		for _, m := range t.members {
			names = append(names, m.Name())
		}
		return "Union[" + strings.Join(names, ",") + "]"
	default:
		return "Null"
	}
}

func (t Type) String() string {
	return t.Name()
}

// Equal reports whether two types have the same canonical name.
func (t Type) Equal(other Type) bool {
	return t.Name() == other.Name()
}

// Accepts reports whether a value of type from may be stored where a value
// of type t is expected. Coercion lets Bool stand in for Int and Int stand
// in for Float.
func (t Type) Accepts(from Type, coerce bool) bool {
	if t.kind == AnyKind {
		return true
	}
	if from.kind == UnionKind && t.kind != UnionKind {
		return acceptsAll(t, from.members, coerce)
	}
	switch t.kind {
	case IntegerKind:
		return from.kind == IntegerKind || (coerce && from.kind == BoolKind)
	case FloatKind:
		return from.kind == FloatKind || (coerce && from.kind == IntegerKind)
	case BoolKind, CharKind, NullKind:
		return from.kind == t.kind
	case ArrayKind:
		return from.kind == ArrayKind && t.Elem().Accepts(from.Elem(), coerce)
	case UnionKind:
		if from.kind == UnionKind {
			return acceptsAll(t, from.members, coerce)
		}
		for _, m := range t.members {
			if m.Accepts(from, coerce) {
				return true
			}
		}
		return false
	}
	return false
}

func acceptsAll(t Type, members []Type, coerce bool) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if !t.Accepts(m, coerce) {
			return false
		}
	}
	return true
}

// AssertAssignable returns a TypeMismatch error when to does not accept
// from.
func AssertAssignable(to, from Type, coerce bool) error {
	if to.Accepts(from, coerce) {
		return nil
	}
	return errors.TypeMismatch(to.Name(), from.Name(), coerce)
}

// PromoteBinaryResult returns the type of a binary numeric operation. Bool
// operands take the type of the other side.
func PromoteBinaryResult(lhs, rhs Type) (Type, error) {
	if err := AssertAssignable(Numeric, lhs, true); err != nil {
		return Null, err
	}
	if err := AssertAssignable(Numeric, rhs, true); err != nil {
		return Null, err
	}
	switch {
	case lhs.Equal(rhs):
		return lhs, nil
	case lhs.kind == BoolKind:
		return rhs, nil
	case rhs.kind == BoolKind:
		return lhs, nil
	default:
		return Float, nil
	}
}
