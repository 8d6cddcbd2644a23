package bytecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies what a memory cell holds.
type ValueKind uint8

const (
	IntKind ValueKind = iota + 1
	FloatKind
	CharKind
)

func (k ValueKind) String() string {
	switch k {
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case CharKind:
		return "char"
	default:
		return "invalid"
	}
}

// Value is the content of one memory cell. Booleans are stored as the
// integers 0 and 1.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Char  rune
}

// IntValue returns an integer value.
func IntValue(i int64) Value {
	return Value{Kind: IntKind, Int: i}
}

// FloatValue returns a float value.
func FloatValue(f float64) Value {
	return Value{Kind: FloatKind, Float: f}
}

// CharValue returns a character value.
func CharValue(r rune) Value {
	return Value{Kind: CharKind, Char: r}
}

// IsZero reports whether the value is numerically zero. Characters are
// never zero.
func (v Value) IsZero() bool {
	switch v.Kind {
	case IntKind:
		return v.Int == 0
	case FloatKind:
		return v.Float == 0
	default:
		return false
	}
}

// IsNumber reports whether the value is an integer or a float.
func (v Value) IsNumber() bool {
	return v.Kind == IntKind || v.Kind == FloatKind
}

// AsFloat returns the value as a float64.
func (v Value) AsFloat() float64 {
	if v.Kind == IntKind {
		return float64(v.Int)
	}
	return v.Float
}

// Literal returns the value as it is written in the instruction stream.
func (v Value) Literal() string {
	switch v.Kind {
	case IntKind:
		return strconv.FormatInt(v.Int, 10)
	case FloatKind:
		return FormatFloat(v.Float)
	case CharKind:
		return QuoteChar(v.Char)
	default:
		return "<invalid>"
	}
}

// String returns the value as OUT_NUM or OUT_CHAR would print it.
func (v Value) String() string {
	switch v.Kind {
	case IntKind:
		return strconv.FormatInt(v.Int, 10)
	case FloatKind:
		return FormatFloat(v.Float)
	case CharKind:
		return string(v.Char)
	default:
		return "<invalid>"
	}
}

// FormatFloat formats a float the way the language prints it: the shortest
// representation that reads back to the same value, always with a decimal
// point or an exponent, so that 5 prints as "5.0".
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// EscapeChar returns the stream spelling of a character without quotes.
func EscapeChar(r rune) string {
	switch r {
	case '\n':
		return "%n"
	case '\t':
		return "%t"
	case '%':
		return "%%"
	case '\'':
		return "%'"
	default:
		return string(r)
	}
}

// UnescapeChar decodes the stream spelling of exactly one character.
func UnescapeChar(s string) (rune, error) {
	if strings.HasPrefix(s, "%") {
		if len(s) != 2 {
			return 0, fmt.Errorf("invalid escape %q", s)
		}
		switch s[1] {
		case 'n':
			return '\n', nil
		case 't':
			return '\t', nil
		case '%':
			return '%', nil
		case '\'':
			return '\'', nil
		}
		return 0, fmt.Errorf("invalid escape %q", s)
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("character literal %q must hold exactly one character", s)
	}
	return runes[0], nil
}

// QuoteChar returns the quoted stream spelling of a character.
func QuoteChar(r rune) string {
	return "'" + EscapeChar(r) + "'"
}

// ParseChar decodes a character spelled with or without surrounding
// quotes: "a", "'a'", "%n" and "'%n'" are all accepted.
func ParseChar(s string) (rune, error) {
	if len(s) >= 3 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		s = s[1 : len(s)-1]
	}
	return UnescapeChar(s)
}

// ParseValue parses a literal operand. Quoted text is a character;
// anything else is tried as an integer and then as a float.
func ParseValue(s string) (Value, error) {
	if strings.HasPrefix(s, "'") {
		if len(s) < 3 || !strings.HasSuffix(s, "'") {
			return Value{}, fmt.Errorf("unterminated character literal %q", s)
		}
		r, err := UnescapeChar(s[1 : len(s)-1])
		if err != nil {
			return Value{}, err
		}
		return CharValue(r), nil
	}
	if !looksNumeric(s) {
		return Value{}, fmt.Errorf("invalid literal %q", s)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f), nil
	}
	return Value{}, fmt.Errorf("invalid literal %q", s)
}

// looksNumeric rejects words that strconv would accept as floats, such as
// "inf" or hexadecimal mantissas.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	digits := false
	for i, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '-' || c == '+':
			if i != 0 && s[i-1] != 'e' && s[i-1] != 'E' {
				return false
			}
		case c == '.' || c == 'e' || c == 'E':
		default:
			return false
		}
	}
	return digits
}
