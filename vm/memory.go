package vm

import (
	"maps"
	"slices"

	"github.com/psyk-lang/psyk/bytecode"
	errz "github.com/psyk-lang/psyk/errors"
)

// Memory is the flat cell store of one run. Scalar and array addresses with
// the same slot number name the same cell; heap allocations live above the
// heap base.
type Memory struct {
	cells map[int]bytecode.Value
}

func newMemory() *Memory {
	return &Memory{cells: map[int]bytecode.Value{}}
}

// Load returns the content of a cell. Reading a cell that was never
// written is an error.
func (m *Memory) Load(cell int) (bytecode.Value, *errz.RuntimeError) {
	v, ok := m.cells[cell]
	if !ok {
		return bytecode.Value{}, errz.UninitializedAccess(cell)
	}
	return v, nil
}

// Store writes a cell.
func (m *Memory) Store(cell int, v bytecode.Value) {
	m.cells[cell] = v
}

// Len returns the number of cells that have been written.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Cells returns the written cell numbers in ascending order.
func (m *Memory) Cells() []int {
	return slices.Sorted(maps.Keys(m.cells))
}

// Snapshot returns a copy of every written cell.
func (m *Memory) Snapshot() map[int]bytecode.Value {
	return maps.Clone(m.cells)
}

// pointer returns the heap location stored in the base cell of an array.
func (m *Memory) pointer(slot int) (int, *errz.RuntimeError) {
	v, err := m.Load(slot)
	if err != nil {
		return 0, err
	}
	if v.Kind != bytecode.IntKind {
		return 0, errz.MalformedInstruction("a%d does not hold a heap location (found %s)", slot, v.Kind)
	}
	return int(v.Int), nil
}

// element returns the cell that holds element idx of the array at slot.
// Element i lives one past the size cell.
func (m *Memory) element(slot int, idx bytecode.Value) (int, *errz.RuntimeError) {
	ptr, err := m.pointer(slot)
	if err != nil {
		return 0, err
	}
	if idx.Kind != bytecode.IntKind {
		return 0, errz.MalformedInstruction("array index must be an integer, got %s %s", idx.Kind, idx.Literal())
	}
	return ptr + int(idx.Int) + 1, nil
}
