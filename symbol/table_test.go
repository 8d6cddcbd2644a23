package symbol

import (
	"testing"

	"github.com/psyk-lang/psyk/bytecode"
	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/types"
	"github.com/stretchr/testify/require"
)

func newRootTable() *Table {
	t := NewTable()
	t.PushScope(ScopeRoot)
	return t
}

func TestHeapSlotReserved(t *testing.T) {
	table := newRootTable()
	require.Equal(t, bytecode.Scalar(0), table.HeapAddress())
	typ, err := table.Type(table.HeapAddress())
	require.NoError(t, err)
	require.True(t, typ.Equal(types.Integer))

	addr := table.CreateSymbol("x", types.Integer)
	require.Equal(t, bytecode.Scalar(1), addr)
	require.Equal(t, 2, table.SlotCount())
}

func TestLabelIDs(t *testing.T) {
	table := NewTable()
	require.Equal(t, 0, table.PushScope(ScopeRoot).LabelID())
	require.Equal(t, 1, table.PushScope(ScopeWhile).LabelID())
	require.Equal(t, 1, table.PopScope().LabelID())
	require.Equal(t, 2, table.PushScope(ScopeIfElse).LabelID())
	require.Equal(t, 2, table.Depth())
}

func TestCreateAndRetrieve(t *testing.T) {
	table := newRootTable()
	x := table.CreateSymbol("x", types.Float)
	require.True(t, table.DoesSymbolExist("x"))
	got, err := table.RetrieveAddress("x")
	require.NoError(t, err)
	require.Equal(t, x, got)

	arr := table.CreateSymbol("xs", types.ArrayOf(types.Char))
	require.True(t, arr.IsArray())
	got, err = table.RetrieveAddress("xs")
	require.NoError(t, err)
	require.Equal(t, arr, got)

	_, err = table.RetrieveAddress("y")
	require.ErrorIs(t, err, errors.ErrUndeclaredVariable)
	require.False(t, table.DoesSymbolExist("y"))
}

func TestUndeclaredSuggestsVisibleNames(t *testing.T) {
	table := newRootTable()
	table.CreateSymbol("counter", types.Integer)
	_, err := table.RetrieveAddress("countr")
	var ce *errors.CompileError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Suggestions, 1)
	require.Equal(t, "counter", ce.Suggestions[0].Value)
}

func TestShadowing(t *testing.T) {
	table := newRootTable()
	outer := table.CreateSymbol("x", types.Integer)
	table.PushScope(ScopeIf)
	inner := table.CreateSymbol("x", types.Char)
	require.NotEqual(t, outer.Slot, inner.Slot)

	got, err := table.RetrieveAddress("x")
	require.NoError(t, err)
	require.Equal(t, inner, got)
	typ, err := table.Type(got)
	require.NoError(t, err)
	require.True(t, typ.Equal(types.Char))

	table.PopScope()
	got, err = table.RetrieveAddress("x")
	require.NoError(t, err)
	require.Equal(t, outer, got)
	typ, err = table.Type(got)
	require.NoError(t, err)
	require.True(t, typ.Equal(types.Integer))
}

func TestScopeRelease(t *testing.T) {
	table := newRootTable()
	table.PushScope(ScopeWhile)
	a := table.AcquireScalar()
	b := table.AcquireScalar()
	table.SetType(a, types.Integer)
	table.SetType(b, types.Bool)
	require.Len(t, table.Current().Held(), 2)

	popped := table.PopScope()
	require.Equal(t, ScopeWhile, popped.Kind())
	require.Empty(t, popped.Held())
	require.False(t, table.IsHeld(a))

	_, err := table.Type(a)
	require.ErrorIs(t, err, errors.ErrUndeclaredVariable)
	_, err = table.Type(b)
	require.Error(t, err)

	next := table.AcquireScalar()
	require.Contains(t, []bytecode.Address{a, b}, next)
}

func TestDisposedSlotNotReleasedTwice(t *testing.T) {
	table := newRootTable()
	table.PushScope(ScopeIf)
	a := table.AcquireScalar()
	table.DisposeScalar(a)

	// Popping the scope that first acquired it must not pool it twice.
	table.PushScope(ScopeElse)
	table.PopScope()
	table.PopScope()
	again := table.AcquireScalar()
	require.Equal(t, a, again)
	require.True(t, table.IsHeld(again))

	fresh := table.AcquireScalar()
	require.NotEqual(t, again, fresh)
}

func TestReacquiredSlotBelongsToNewHolder(t *testing.T) {
	table := newRootTable()
	loop := table.PushScope(ScopeWhile)
	a := table.AcquireScalar()
	table.DisposeScalar(a)
	body := table.PushScope(ScopeIf)
	b := table.AcquireScalar()
	require.Equal(t, a, b)
	table.SetType(b, types.Integer)

	require.Empty(t, loop.Held())
	require.Equal(t, []bytecode.Address{b}, body.Held())

	table.PopScope()
	require.False(t, table.IsHeld(b))
	table.PopScope()
	require.Empty(t, table.Current().Held())
}

func TestDisposeIgnoresSymbols(t *testing.T) {
	table := newRootTable()
	x := table.CreateSymbol("x", types.Integer)
	table.DisposeScalar(x)
	typ, err := table.Type(x)
	require.NoError(t, err)
	require.True(t, typ.Equal(types.Integer))
	require.NotEqual(t, x, table.AcquireScalar())
}

func TestTempRelease(t *testing.T) {
	table := newRootTable()
	tmp := table.AcquireTemp()
	require.True(t, table.IsHeld(tmp.Address()))
	tmp.Release()
	require.False(t, table.IsHeld(tmp.Address()))
	tmp.Release()

	require.Equal(t, tmp.Address(), table.AcquireScalar())
}

func TestTempReleaseAfterScopeReuse(t *testing.T) {
	table := newRootTable()
	table.PushScope(ScopeWhile)
	tmp := table.AcquireTemp()
	table.PopScope()

	other := table.AcquireScalar()
	require.Equal(t, tmp.Address(), other)

	tmp.Release()
	require.True(t, table.IsHeld(other))
}

func TestTempReleasedByDefer(t *testing.T) {
	table := newRootTable()
	var addr bytecode.Address
	func() {
		tmp := table.AcquireTemp()
		defer tmp.Release()
		addr = tmp.Address()
	}()
	require.False(t, table.IsHeld(addr))
}

func TestElementTypes(t *testing.T) {
	table := newRootTable()
	arr := table.CreateSymbol("xs", types.ArrayOf(types.Float))
	elem := arr.Element(bytecode.Int(2))
	typ, err := table.Type(elem)
	require.NoError(t, err)
	require.True(t, typ.Equal(types.Float))

	table.SetType(elem, types.Char)
	typ, err = table.Type(arr)
	require.NoError(t, err)
	require.True(t, typ.Equal(types.ArrayOf(types.Float)))

	x := table.CreateSymbol("x", types.Integer)
	_, err = table.Type(x.Element(bytecode.Int(0)))
	require.ErrorIs(t, err, errors.ErrNotAnArray)
}

func TestFindScopeOf(t *testing.T) {
	table := newRootTable()
	_, ok := table.FindScopeOf(ScopeWhile)
	require.False(t, ok)

	outer := table.PushScope(ScopeWhile)
	table.PushScope(ScopeIfElse)
	inner := table.PushScope(ScopeWhile)
	table.PushScope(ScopeIf)

	found, ok := table.FindScopeOf(ScopeWhile)
	require.True(t, ok)
	require.Same(t, inner, found)

	table.PopScope()
	table.PopScope()
	found, ok = table.FindScopeOf(ScopeWhile)
	require.True(t, ok)
	require.Same(t, outer, found)
}

func TestSymbolsListsVisibleNames(t *testing.T) {
	table := newRootTable()
	table.CreateSymbol("a", types.Integer)
	table.PushScope(ScopeIf)
	table.CreateSymbol("b", types.Integer)
	table.CreateSymbol("a", types.Char)
	require.Equal(t, []string{"b", "a"}, table.Symbols())
	require.Equal(t, []string{"b", "a"}, table.Current().Names())
}

func TestScopeKindString(t *testing.T) {
	require.Equal(t, "while", ScopeWhile.String())
	require.Equal(t, "if_else", ScopeIfElse.String())
	require.Equal(t, "invalid", ScopeKind(99).String())
}
