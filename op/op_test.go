package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(ArGetNdx)
	require.Equal(t, "AR_GET_NDX", info.Name)
	require.Equal(t, 3, info.OperandCount)
	require.Equal(t, ArGetNdx, info.Code)
	require.True(t, info.HasResult())
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
	}{
		{ValCopy, "VAL_COPY", 2},
		{Add, "ADD", 3},
		{Sub, "SUB", 3},
		{Mul, "MUL", 3},
		{Div, "DIV", 3},
		{IDiv, "IDIV", 3},
		{Mod, "MOD", 3},
		{TestEqu, "TEST_EQU", 3},
		{TestNequ, "TEST_NEQU", 3},
		{TestGtr, "TEST_GTR", 3},
		{TestLess, "TEST_LESS", 3},
		{Jump, "JUMP", 1},
		{JumpIf0, "JUMP_IF_0", 2},
		{JumpIfNe0, "JUMP_IF_NE0", 2},
		{OutNum, "OUT_NUM", 1},
		{OutChar, "OUT_CHAR", 1},
		{InChar, "IN_CHAR", 1},
		{Random, "RANDOM", 1},
		{ArGetSz, "AR_GET_SZ", 2},
		{ArSetSz, "AR_SET_SZ", 2},
		{ArGetNdx, "AR_GET_NDX", 3},
		{ArSetNdx, "AR_SET_NDX", 3},
		{ArCopy, "AR_COPY", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.operands, info.OperandCount)
			require.Len(t, info.Operands, tt.operands)
			require.False(t, info.Pseudo)

			byName, ok := Lookup(tt.name)
			require.True(t, ok)
			require.Equal(t, tt.code, byName.Code)
			require.Equal(t, tt.name, tt.code.String())
		})
	}
}

func TestPseudoOpcodes(t *testing.T) {
	require.True(t, GetInfo(Nop).Pseudo)
	require.True(t, GetInfo(Label).Pseudo)
	_, ok := Lookup("NOP")
	require.False(t, ok)
	_, ok = Lookup("LABEL")
	require.False(t, ok)
	require.Equal(t, "INVALID", Code(200).String())
}

func TestHasResult(t *testing.T) {
	require.True(t, GetInfo(ValCopy).HasResult())
	require.True(t, GetInfo(Random).HasResult())
	require.False(t, GetInfo(ArSetNdx).HasResult())
	require.False(t, GetInfo(OutChar).HasResult())
	require.False(t, GetInfo(Jump).HasResult())
}

func TestOperatorStrings(t *testing.T) {
	for bop := Plus; bop <= Xor; bop++ {
		parsed, ok := ParseBinaryOp(bop.String())
		require.True(t, ok, bop.String())
		require.Equal(t, bop, parsed)
	}
	for cop := LessThan; cop <= GreaterThan; cop++ {
		parsed, ok := ParseCompareOp(cop.String())
		require.True(t, ok, cop.String())
		require.Equal(t, cop, parsed)
	}
	for _, uop := range []UnaryOpType{Negate, Not} {
		parsed, ok := ParseUnaryOp(uop.String())
		require.True(t, ok)
		require.Equal(t, uop, parsed)
	}
	_, ok := ParseBinaryOp("**")
	require.False(t, ok)
	require.True(t, Xor.IsLogic())
	require.False(t, Min.IsLogic())
	require.True(t, NotEqual.IsEquality())
	require.False(t, LessThan.IsEquality())
}
