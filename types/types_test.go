package types

import (
	"testing"

	"github.com/psyk-lang/psyk/errors"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	require.Equal(t, "Int", Integer.Name())
	require.Equal(t, "Array[Char]", ArrayOf(Char).Name())
	require.Equal(t, "Array[Array[Float]]", ArrayOf(ArrayOf(Float)).Name())
	require.Equal(t, "Union[Float,Int]", Numeric.Name())
	require.Equal(t, "Union[Float,Int]", UnionOf(Integer, Float, Integer).Name())
	require.Equal(t, "Null", Type{}.Name())
	require.True(t, Type{}.IsNull())
}

func TestEqualByName(t *testing.T) {
	require.True(t, ArrayOf(Integer).Equal(ArrayOf(Integer)))
	require.False(t, ArrayOf(Integer).Equal(ArrayOf(Float)))
	require.True(t, UnionOf(Float, Integer).Equal(Numeric))
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		name   string
		to     Type
		from   Type
		coerce bool
		want   bool
	}{
		{"any accepts int", Any, Integer, false, true},
		{"any accepts array", Any, ArrayOf(Char), false, true},
		{"int accepts int", Integer, Integer, false, true},
		{"int rejects bool", Integer, Bool, false, false},
		{"int accepts bool with coercion", Integer, Bool, true, true},
		{"int rejects float with coercion", Integer, Float, true, false},
		{"float rejects int", Float, Integer, false, false},
		{"float accepts int with coercion", Float, Integer, true, true},
		{"float rejects bool with coercion", Float, Bool, true, false},
		{"bool rejects int", Bool, Integer, true, false},
		{"char accepts char", Char, Char, false, true},
		{"char rejects int", Char, Integer, true, false},
		{"null accepts null", Null, Null, false, true},
		{"numeric accepts int", Numeric, Integer, false, true},
		{"numeric accepts float", Numeric, Float, false, true},
		{"numeric rejects bool", Numeric, Bool, false, false},
		{"numeric accepts bool with coercion", Numeric, Bool, true, true},
		{"numeric rejects char", Numeric, Char, true, false},
		{"numeric accepts numeric", Numeric, Numeric, false, true},
		{"int rejects numeric", Integer, Numeric, false, false},
		{"array accepts same", ArrayOf(Integer), ArrayOf(Integer), false, true},
		{"array rejects other", ArrayOf(Integer), ArrayOf(Char), true, false},
		{"array of float rejects array of int", ArrayOf(Float), ArrayOf(Integer), false, false},
		{"array of float accepts array of int with coercion", ArrayOf(Float), ArrayOf(Integer), true, true},
		{"array rejects scalar", ArrayOf(Integer), Integer, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.to.Accepts(tt.from, tt.coerce))
		})
	}
}

func TestAssertAssignable(t *testing.T) {
	require.NoError(t, AssertAssignable(Integer, Integer, false))

	err := AssertAssignable(Integer, Bool, false)
	require.ErrorIs(t, err, errors.ErrTypeMismatch)
	var ce *errors.CompileError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "Int", ce.Expected)
	require.Equal(t, "Bool", ce.Actual)
	require.False(t, ce.Coerce)
}

func TestPromoteBinaryResult(t *testing.T) {
	numeric := []Type{Integer, Float, Bool}
	for _, a := range numeric {
		for _, b := range numeric {
			ab, err := PromoteBinaryResult(a, b)
			require.NoError(t, err)
			ba, err := PromoteBinaryResult(b, a)
			require.NoError(t, err)
			require.Equal(t, ab.Name(), ba.Name(), "%s and %s", a, b)
		}
	}

	tests := []struct {
		lhs, rhs Type
		want     Type
	}{
		{Integer, Integer, Integer},
		{Float, Float, Float},
		{Integer, Float, Float},
		{Float, Integer, Float},
		{Bool, Integer, Integer},
		{Bool, Float, Float},
		{Float, Bool, Float},
		{Bool, Bool, Bool},
	}
	for _, tt := range tests {
		got, err := PromoteBinaryResult(tt.lhs, tt.rhs)
		require.NoError(t, err)
		require.True(t, tt.want.Equal(got), "%s %s -> %s", tt.lhs, tt.rhs, got)
	}

	_, err := PromoteBinaryResult(Char, Integer)
	require.ErrorIs(t, err, errors.ErrTypeMismatch)
	_, err = PromoteBinaryResult(Integer, ArrayOf(Integer))
	require.ErrorIs(t, err, errors.ErrTypeMismatch)
}

func TestParse(t *testing.T) {
	for _, typ := range []Type{Any, Integer, Float, Bool, Char, Null, ArrayOf(Char), ArrayOf(ArrayOf(Integer)), Numeric} {
		parsed, err := Parse(typ.Name())
		require.NoError(t, err)
		require.True(t, typ.Equal(parsed), typ.Name())
	}
	parsed, err := Parse("Union[Int,Array[Char]]")
	require.NoError(t, err)
	require.Len(t, parsed.Members(), 2)

	_, err = Parse("Strings")
	require.Error(t, err)
	_, err = Parse("Union[Int,Array[Char]")
	require.Error(t, err)
}

func TestElem(t *testing.T) {
	require.True(t, ArrayOf(Bool).Elem().Equal(Bool))
	require.True(t, Integer.Elem().IsNull())
	require.True(t, ArrayOf(Bool).IsArray())
	require.False(t, Bool.IsArray())
}
