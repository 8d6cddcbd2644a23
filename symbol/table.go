// Package symbol implements the compiler's scoped symbol and allocation
// table: name resolution, slot allocation, the scalar reuse pool and the
// per-slot type table.
package symbol

import (
	"github.com/psyk-lang/psyk/bytecode"
	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/types"
)

// HeapSlot is the reserved slot holding the heap bump pointer.
const HeapSlot = 0

// Table tracks scopes, allocated slots and their types for one
// compilation.
type Table struct {
	scopes   []*Scope
	nextSlot int
	types    map[int]types.Type
	free     []int
	isFree   map[int]bool
	holder   map[int]*Scope
	gen      map[int]int
	labelID  int
}

// NewTable returns an empty table. Slot 0 is reserved for the heap pointer
// and typed Int. No scope is open until PushScope is called.
func NewTable() *Table {
	return &Table{
		nextSlot: HeapSlot + 1,
		types:    map[int]types.Type{HeapSlot: types.Integer},
		isFree:   map[int]bool{},
		holder:   map[int]*Scope{},
		gen:      map[int]int{},
		labelID:  -1,
	}
}

// HeapAddress returns the address of the heap bump pointer.
func (t *Table) HeapAddress() bytecode.Address {
	return bytecode.Scalar(HeapSlot)
}

// SlotCount returns how many slots have been allocated, including the
// heap pointer.
func (t *Table) SlotCount() int {
	return t.nextSlot
}

// Depth returns the number of open scopes.
func (t *Table) Depth() int {
	return len(t.scopes)
}

// Current returns the innermost open scope.
func (t *Table) Current() *Scope {
	if len(t.scopes) == 0 {
		panic("symbol: no open scope")
	}
	return t.scopes[len(t.scopes)-1]
}

// PushScope opens a scope with the next label id.
func (t *Table) PushScope(kind ScopeKind) *Scope {
	t.labelID++
	s := newScope(kind, t.labelID)
	t.scopes = append(t.scopes, s)
	return s
}

// PopScope closes the innermost scope, releasing every scalar it still
// holds, and returns it.
func (t *Table) PopScope() *Scope {
	s := t.Current()
	for _, slot := range append([]int(nil), s.held...) {
		t.DisposeScalar(bytecode.Scalar(slot))
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
	return s
}

// FindScopeOf returns the innermost open scope of the given kind.
func (t *Table) FindScopeOf(kind ScopeKind) (*Scope, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if t.scopes[i].kind == kind {
			return t.scopes[i], true
		}
	}
	return nil, false
}

// DoesSymbolExist reports whether any open scope declares name.
func (t *Table) DoesSymbolExist(name string) bool {
	_, ok := t.lookup(name)
	return ok
}

func (t *Table) lookup(name string) (bytecode.Address, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if addr, ok := t.scopes[i].Lookup(name); ok {
			return addr, true
		}
	}
	return bytecode.Address{}, false
}

// RetrieveAddress resolves name from the innermost scope outward. Symbols
// holding arrays resolve to their array view.
func (t *Table) RetrieveAddress(name string) (bytecode.Address, error) {
	addr, ok := t.lookup(name)
	if !ok {
		return bytecode.Address{}, errors.UndeclaredVariable(name, t.Symbols())
	}
	if t.types[addr.Slot].IsArray() {
		return addr.Base(), nil
	}
	return addr.AsScalar(), nil
}

// CreateSymbol declares name in the current scope on a fresh slot, even
// when an outer scope already declares it.
func (t *Table) CreateSymbol(name string, typ types.Type) bytecode.Address {
	slot := t.allocate()
	addr := bytecode.Scalar(slot)
	t.Current().declare(name, addr)
	t.types[slot] = typ
	if typ.IsArray() {
		return addr.Base()
	}
	return addr
}

// Symbols returns every name visible from the current scope.
func (t *Table) Symbols() []string {
	seen := map[string]bool{}
	var names []string
	for i := len(t.scopes) - 1; i >= 0; i-- {
		for _, name := range t.scopes[i].names {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

func (t *Table) allocate() int {
	slot := t.nextSlot
	t.nextSlot++
	return slot
}

// AcquireScalar returns a scalar slot held by the current scope, reusing a
// released one when available.
func (t *Table) AcquireScalar() bytecode.Address {
	var slot int
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
		delete(t.isFree, slot)
	} else {
		slot = t.allocate()
	}
	s := t.Current()
	s.hold(slot)
	t.holder[slot] = s
	t.gen[slot]++
	return bytecode.Scalar(slot)
}

// DisposeScalar returns an acquired scalar to the pool and clears its
// type. Addresses that are not currently held, such as declared symbols,
// are left alone.
func (t *Table) DisposeScalar(addr bytecode.Address) {
	slot := addr.Slot
	s, ok := t.holder[slot]
	if !ok {
		return
	}
	s.unhold(slot)
	delete(t.holder, slot)
	t.types[slot] = types.Null
	if !t.isFree[slot] {
		t.isFree[slot] = true
		t.free = append(t.free, slot)
	}
}

// IsHeld reports whether addr is an acquired scalar that has not been
// released.
func (t *Table) IsHeld(addr bytecode.Address) bool {
	_, ok := t.holder[addr.Slot]
	return ok
}

// Type returns the recorded type of addr. Element addresses have the
// element type of their array.
func (t *Table) Type(addr bytecode.Address) (types.Type, error) {
	if addr.IsElement() {
		base := t.types[addr.Slot]
		if !base.IsArray() {
			return types.Null, errors.NotAnArray(base.Name())
		}
		return base.Elem(), nil
	}
	typ := t.types[addr.Slot]
	if typ.IsNull() {
		return types.Null, errors.NoValue(addr.String())
	}
	return typ, nil
}

// SetType records the type of addr. Element addresses are typed by their
// array and are ignored.
func (t *Table) SetType(addr bytecode.Address, typ types.Type) {
	if addr.IsElement() {
		return
	}
	t.types[addr.Slot] = typ
}

// Temp is a scalar acquired for the duration of one emission. Callers
// defer Release so the slot returns to the pool on every path.
type Temp struct {
	table    *Table
	addr     bytecode.Address
	gen      int
	released bool
}

// AcquireTemp acquires a scalar wrapped in a release guard.
func (t *Table) AcquireTemp() *Temp {
	addr := t.AcquireScalar()
	return &Temp{table: t, addr: addr, gen: t.gen[addr.Slot]}
}

// Address returns the acquired scalar.
func (tmp *Temp) Address() bytecode.Address {
	return tmp.addr
}

// Release returns the scalar to the pool. Calling it again does nothing,
// and neither does releasing a slot that its scope already gave back and
// someone else has since acquired.
func (tmp *Temp) Release() {
	if tmp.released {
		return
	}
	tmp.released = true
	if tmp.table.gen[tmp.addr.Slot] != tmp.gen {
		return
	}
	tmp.table.DisposeScalar(tmp.addr)
}
