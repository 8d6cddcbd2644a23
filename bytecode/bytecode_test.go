package bytecode

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
	"github.com/stretchr/testify/require"
)

func TestAddressViews(t *testing.T) {
	s := Scalar(7)
	require.Equal(t, "s7", s.String())
	require.Equal(t, "a7", s.Base().String())
	require.Equal(t, "s7", Array(7).AsScalar().String())
	require.False(t, s.IsArray())
	require.True(t, Array(3).IsArray())
	require.True(t, Address{}.IsZero())

	elem := Array(3).Element(Scalar(5))
	require.True(t, elem.IsElement())
	require.False(t, elem.IsArray())
	require.Equal(t, "a3[s5]", elem.String())
	require.Equal(t, Array(3), elem.Base())
	require.Equal(t, Scalar(5), elem.Index())
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("a12")
	require.NoError(t, err)
	require.Equal(t, Array(12), a)
	s, err := ParseAddress("s0")
	require.NoError(t, err)
	require.Equal(t, Scalar(0), s)

	for _, bad := range []string{"s", "x1", "s-1", "s1a", ""} {
		_, err := ParseAddress(bad)
		require.Error(t, err, bad)
	}
}

func TestLiteralFormatting(t *testing.T) {
	require.Equal(t, "1", Bool(true).String())
	require.Equal(t, "0", Bool(false).String())
	require.Equal(t, "-42", Int(-42).String())
	require.Equal(t, "5.0", Float(5).String())
	require.Equal(t, "3.25", Float(3.25).String())
	require.Equal(t, "1e+16", Float(1e16).String())
	require.Equal(t, "1.5e-05", Float(0.000015).String())
	require.Equal(t, "'a'", Char('a').String())
	require.Equal(t, "'%n'", Char('\n').String())
	require.Equal(t, "'%t'", Char('\t').String())
	require.Equal(t, "'%%'", Char('%').String())
	require.Equal(t, "'%''", Char('\'').String())
}

func TestLiteralRoundTrip(t *testing.T) {
	values := []Value{
		IntValue(0), IntValue(17), IntValue(-3),
		FloatValue(0), FloatValue(2.5), FloatValue(-0.125), FloatValue(1e20), FloatValue(3),
		CharValue('x'), CharValue(' '), CharValue('\n'), CharValue('\t'), CharValue('%'), CharValue('\''),
	}
	for _, v := range values {
		parsed, err := ParseValue(v.Literal())
		require.NoError(t, err, v.Literal())
		require.Equal(t, v, parsed, v.Literal())
	}
}

func TestParseValueRejects(t *testing.T) {
	for _, bad := range []string{"inf", "nan", "0x10", "abc", "'ab'", "'%q'", "'a", "--1", ""} {
		_, err := ParseValue(bad)
		require.Error(t, err, bad)
	}
}

func TestParseChar(t *testing.T) {
	for text, want := range map[string]rune{"a": 'a', "'a'": 'a', "%n": '\n', "'%''": '\'', "%%": '%'} {
		got, err := ParseChar(text)
		require.NoError(t, err, text)
		require.Equal(t, want, got, text)
	}
	_, err := ParseChar("ab")
	require.Error(t, err)
}

func TestInstructionString(t *testing.T) {
	require.Equal(t, "ADD s1 2 s3", NewInstruction(op.Add, Scalar(1), Int(2), Scalar(3)).String())
	require.Equal(t, "JUMP_IF_0 s4 while_end_2", NewInstruction(op.JumpIf0, Scalar(4), Label("while_end_2")).String())
	require.Equal(t, "while_end_2:", LabelMarker("while_end_2").String())
	require.Equal(t, "", Blank().String())
	require.Equal(t, "OUT_CHAR '%n'", NewInstruction(op.OutChar, Char('\n')).String())
}

func TestProgramString(t *testing.T) {
	p := NewProgram([]Instruction{
		NewInstruction(op.ValCopy, Int(1000), Scalar(0)),
		LabelMarker("top"),
		Blank(),
		NewInstruction(op.Jump, Label("top")),
	})
	require.Equal(t, "VAL_COPY 1000 s0\ntop:\n\nJUMP top\n", p.String())
	require.Equal(t, 4, p.InstructionCount())
	require.True(t, p.InstructionAt(1).IsLabel())
}

func TestParseRoundTrip(t *testing.T) {
	text := `VAL_COPY 1000 s0
VAL_COPY s0 a1
ADD s0 3 s0
ADD s0 1 s0
AR_SET_SZ a1 3
AR_SET_NDX a1 0 'c'
AR_GET_NDX a1 s2 s3
OUT_CHAR ' '
OUT_CHAR '%''
while_start_1:
JUMP_IF_0 s3 while_end_1
DIV 7 2.5 s4
JUMP while_start_1

while_end_1:
`
	p, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, 15, p.InstructionCount())
	require.Equal(t, text, p.String())
	require.NoError(t, p.Validate())

	labels, err := p.Labels()
	require.NoError(t, err)
	require.Equal(t, map[string]int{"while_start_1": 9, "while_end_1": 14}, labels)
}

func TestParseEmpty(t *testing.T) {
	p, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, 0, p.InstructionCount())
	require.Equal(t, "", p.String())
}

func TestParseReportsEveryMalformedLine(t *testing.T) {
	text := "VAL_COPY 1 s1\nFROB s1\nADD s1 s2\nVAL_COPY s1 7\nAR_GET_SZ s1 s2\nOUT_CHAR 'ab\nbad label:\n"
	_, err := Parse(text)
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Len(t, merr.Errors, 6)

	lines := []int{}
	for _, e := range merr.Errors {
		require.ErrorIs(t, e, errors.ErrMalformedInstruction)
		rerr, ok := e.(*errors.RuntimeError)
		require.True(t, ok)
		lines = append(lines, rerr.Line)
	}
	require.Equal(t, []int{2, 3, 4, 5, 6, 7}, lines)
}

func TestValidate(t *testing.T) {
	p := NewProgram([]Instruction{
		LabelMarker("a"),
		LabelMarker("a"),
		NewInstruction(op.Jump, Label("missing")),
		NewInstruction(op.Add, Array(1).Element(Int(0)), Int(1), Scalar(2)),
	})
	err := p.Validate()
	require.Error(t, err)
	merr := err.(*multierror.Error)
	require.Len(t, merr.Errors, 3)
	require.ErrorIs(t, merr.Errors[0], errors.ErrMalformedInstruction)
	require.ErrorIs(t, merr.Errors[1], errors.ErrMalformedInstruction)
	require.ErrorIs(t, merr.Errors[2], errors.ErrUnknownLabel)

	_, err = p.Labels()
	require.ErrorIs(t, err, errors.ErrMalformedInstruction)
}
