package bytecode

import (
	"fmt"
	"strconv"
)

// Operand is one argument of an instruction: an Address, a Literal or a
// Label.
type Operand interface {
	String() string
	operand()
}

// AddressKind tags an address as a scalar or an array.
type AddressKind byte

const (
	ScalarKind AddressKind = 's'
	ArrayKind  AddressKind = 'a'
)

// Address identifies a memory slot. The scalar and array views of a slot
// name the same memory cell. An element address additionally carries an
// index and refers to one element of the array stored at Slot; element
// addresses exist only inside the compiler and never appear in a
// serialized stream.
type Address struct {
	Kind  AddressKind
	Slot  int
	index Operand
}

func (Address) operand() {}

// Scalar returns the scalar address of a slot.
func Scalar(slot int) Address {
	return Address{Kind: ScalarKind, Slot: slot}
}

// Array returns the array address of a slot.
func Array(slot int) Address {
	return Address{Kind: ArrayKind, Slot: slot}
}

// IsZero reports whether the address is the zero value, which statements
// return since they produce no result.
func (a Address) IsZero() bool {
	return a.Kind == 0
}

// IsArray reports whether the address is an array view.
func (a Address) IsArray() bool {
	return a.Kind == ArrayKind && a.index == nil
}

// Element returns the address of the element at idx of the array stored
// at this address's slot.
func (a Address) Element(idx Operand) Address {
	return Address{Kind: ArrayKind, Slot: a.Slot, index: idx}
}

// IsElement reports whether the address refers to an array element.
func (a Address) IsElement() bool {
	return a.index != nil
}

// Index returns the element index, or nil for plain addresses.
func (a Address) Index() Operand {
	return a.index
}

// Base returns the array view of the slot with any element index dropped.
func (a Address) Base() Address {
	return Array(a.Slot)
}

// AsScalar returns the scalar view of the slot.
func (a Address) AsScalar() Address {
	return Scalar(a.Slot)
}

// String returns the textual form, for example "s7" or "a3". Element
// addresses render as "a3[s5]" for diagnostics.
func (a Address) String() string {
	if a.IsZero() {
		return "<none>"
	}
	s := string(a.Kind) + strconv.Itoa(a.Slot)
	if a.index != nil {
		s += "[" + a.index.String() + "]"
	}
	return s
}

// Literal is a constant operand.
type Literal struct {
	Value Value
}

func (Literal) operand() {}

// String returns the literal as it appears in the stream.
func (l Literal) String() string {
	return l.Value.Literal()
}

// Int returns an integer literal operand.
func Int(i int64) Literal {
	return Literal{Value: IntValue(i)}
}

// Float returns a float literal operand.
func Float(f float64) Literal {
	return Literal{Value: FloatValue(f)}
}

// Char returns a character literal operand.
func Char(r rune) Literal {
	return Literal{Value: CharValue(r)}
}

// Bool returns the integer literal 1 or 0.
func Bool(b bool) Literal {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Label is the name of a label used as a jump target.
type Label string

func (Label) operand() {}

func (l Label) String() string {
	return string(l)
}

// ParseAddress parses the textual form of a scalar or array address.
func ParseAddress(s string) (Address, error) {
	if len(s) < 2 || (s[0] != byte(ScalarKind) && s[0] != byte(ArrayKind)) {
		return Address{}, fmt.Errorf("invalid address %q", s)
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return Address{}, fmt.Errorf("invalid address %q", s)
		}
	}
	slot, err := strconv.Atoi(s[1:])
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q", s)
	}
	return Address{Kind: AddressKind(s[0]), Slot: slot}, nil
}
