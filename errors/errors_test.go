package errors

import (
	"fmt"
	"strings"
	"testing"

	goerrors "errors"

	"github.com/stretchr/testify/require"
)

func TestErrorCodeCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{E2001, "compile"},
		{E2006, "compile"},
		{E3001, "runtime"},
		{E3004, "runtime"},
		{ErrorCode("X"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			require.Equal(t, tt.expected, tt.code.Category())
		})
	}
}

func TestErrorCodeDescription(t *testing.T) {
	require.Equal(t, "type mismatch", E2002.Description())
	require.Equal(t, "division by zero", E3001.Description())
	require.Equal(t, "unknown error", ErrorCode("E9999").Description())
}

func TestTypeMismatch(t *testing.T) {
	err := TypeMismatch("Int", "Bool", false)
	require.Equal(t, "compile error: Bool is not assignable to Int", err.Error())
	require.Equal(t, "Int", err.Expected)
	require.Equal(t, "Bool", err.Actual)
	require.False(t, err.Coerce)
	require.True(t, goerrors.Is(err, ErrTypeMismatch))
	require.False(t, goerrors.Is(err, ErrNotAnArray))
}

func TestCompileErrorIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("lowering: %w", NoEnclosingLoop())
	require.ErrorIs(t, err, ErrNoEnclosingLoop)
	require.Equal(t, E2004, CodeOf(err))
	require.Equal(t, ErrorCode(""), CodeOf(goerrors.New("plain")))
}

func TestUndeclaredVariableSuggestions(t *testing.T) {
	err := UndeclaredVariable("countr", []string{"counter", "total", "x"})
	require.Len(t, err.Suggestions, 1)
	require.Equal(t, "counter", err.Suggestions[0].Value)
	require.Contains(t, err.Error(), "did you mean 'counter'?")
}

func TestRuntimeErrorLocation(t *testing.T) {
	err := DivisionByZero()
	require.False(t, err.HasLocation())
	require.Equal(t, "runtime error: division by zero", err.Error())

	err.At(4, "IDIV 1 0 s1")
	require.True(t, err.HasLocation())
	require.Equal(t, "runtime error: division by zero (line 4: IDIV 1 0 s1)", err.Error())

	// The first location wins.
	err.At(9, "JUMP x")
	require.Equal(t, 4, err.Line)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSuggestSimilar(t *testing.T) {
	require.Nil(t, SuggestSimilar("", []string{"a"}))
	require.Nil(t, SuggestSimilar("abc", nil))

	got := SuggestSimilar("totl", []string{"total", "tote", "totals", "zzzzz", "total"})
	require.Equal(t, []Suggestion{
		{Value: "total", Distance: 1},
		{Value: "tote", Distance: 1},
		{Value: "totals", Distance: 2},
	}, got)
}

func TestFormatSuggestions(t *testing.T) {
	require.Equal(t, "", FormatSuggestions(nil))
	require.Equal(t, "did you mean 'x'?", FormatSuggestions([]Suggestion{{Value: "x"}}))
	require.Equal(t, "did you mean one of: 'x', 'y'?",
		FormatSuggestions([]Suggestion{{Value: "x"}, {Value: "y"}}))
}

func TestLevenshteinDistance(t *testing.T) {
	require.Equal(t, 0, levenshteinDistance("abc", "abc"))
	require.Equal(t, 3, levenshteinDistance("", "abc"))
	require.Equal(t, 1, levenshteinDistance("abc", "abd"))
	require.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestFormatterPlain(t *testing.T) {
	f := NewFormatter(false)
	out := f.Format(TypeMismatch("Int", "Char", false).ToFormatted())
	require.True(t, strings.HasPrefix(out, "compile error[E2002]: Char is not assignable to Int\n"))
	require.Contains(t, out, "note: checked without coercion")

	out = f.Format(UnknownLabel("loop").At(12, "JUMP loop").ToFormatted())
	require.Contains(t, out, "runtime error[E3003]: unknown label \"loop\"")
	require.Contains(t, out, "--> line 12")
	require.Contains(t, out, "12 | JUMP loop")
}

func TestFormatMultiple(t *testing.T) {
	f := NewFormatter(false)
	out := f.FormatMultiple([]*FormattedError{
		MalformedInstruction("unknown opcode %q", "FOO").At(1, "FOO").ToFormatted(),
		MalformedInstruction("missing operands").At(3, "ADD").ToFormatted(),
	})
	require.Contains(t, out, "runtime error[1/2]")
	require.Contains(t, out, "runtime error[2/2]")
	require.Contains(t, out, "found 2 errors")
}

func TestFormatErrorFallback(t *testing.T) {
	out := NewFormatter(false).FormatError(goerrors.New("boom"))
	require.Equal(t, "error: boom\n", out)
}
