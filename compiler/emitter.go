package compiler

import (
	"fmt"

	"github.com/psyk-lang/psyk/bytecode"
	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
	"github.com/psyk-lang/psyk/symbol"
	"github.com/psyk-lang/psyk/types"
	"github.com/rs/zerolog"
)

// DefaultHeapBase is the value the heap pointer starts at.
const DefaultHeapBase = 1000

// Label name prefixes. The full name appends "_<label id>".
const (
	labelIfElse     = "if_else"
	labelIfEnd      = "if_end"
	labelWhileStart = "while_start"
	labelWhileEnd   = "while_end"
)

var binaryCodes = map[op.BinaryOpType]op.Code{
	op.Plus:      op.Add,
	op.Minus:     op.Sub,
	op.Times:     op.Mul,
	op.Divide:    op.Div,
	op.IntDivide: op.IDiv,
	op.Modulo:    op.Mod,
	// Booleans are stored as 0 and 1, so logic rides on arithmetic.
	op.And: op.Mul,
	op.Or:  op.Add,
	op.Xor: op.TestNequ,
}

var compareCodes = map[op.CompareOpType]op.Code{
	op.LessThan:    op.TestLess,
	op.Equal:       op.TestEqu,
	op.NotEqual:    op.TestNequ,
	op.GreaterThan: op.TestGtr,
}

// Emitter appends instructions to a program under construction. It owns
// the label naming for control flow and applies the safe-output policy to
// every instruction that produces a result: the instruction set can only
// write a named slot, so results destined for an array element go through
// a temporary followed by AR_SET_NDX.
type Emitter struct {
	table        *symbol.Table
	instructions []bytecode.Instruction
	logger       zerolog.Logger
}

// NewEmitter opens the root scope of table and emits the heap pointer
// initialization.
func NewEmitter(table *symbol.Table, heapBase int64, logger zerolog.Logger) *Emitter {
	e := &Emitter{table: table, logger: logger}
	e.pushScope(symbol.ScopeRoot)
	heap := table.HeapAddress()
	e.emit(op.ValCopy, bytecode.Int(heapBase), heap)
	table.SetType(heap, types.Integer)
	return e
}

// Table returns the symbol table the emitter allocates from.
func (e *Emitter) Table() *symbol.Table {
	return e.table
}

// Program returns the instructions emitted so far.
func (e *Emitter) Program() *bytecode.Program {
	return bytecode.NewProgram(e.instructions)
}

func (e *Emitter) emit(code op.Code, operands ...bytecode.Operand) {
	e.instructions = append(e.instructions, bytecode.NewInstruction(code, operands...))
}

func (e *Emitter) pushScope(kind symbol.ScopeKind) *symbol.Scope {
	s := e.table.PushScope(kind)
	e.logger.Debug().
		Str("scope", kind.String()).
		Int("label_id", s.LabelID()).
		Int("depth", e.table.Depth()).
		Msg("push scope")
	return s
}

func (e *Emitter) popScope() *symbol.Scope {
	s := e.table.PopScope()
	e.logger.Debug().
		Str("scope", s.Kind().String()).
		Int("label_id", s.LabelID()).
		Int("depth", e.table.Depth()).
		Msg("pop scope")
	return s
}

func labelName(prefix string, id int) string {
	return fmt.Sprintf("%s_%d", prefix, id)
}

// assertAccess fails if any address operand is read before a type has
// been recorded for it.
func (e *Emitter) assertAccess(operands ...bytecode.Operand) error {
	for _, operand := range operands {
		addr, ok := operand.(bytecode.Address)
		if !ok {
			continue
		}
		if _, err := e.table.Type(addr); err != nil {
			return err
		}
		if addr.IsElement() {
			if err := e.assertAccess(addr.Index()); err != nil {
				return err
			}
		}
	}
	return nil
}

// load makes an operand usable as an instruction source. Element
// addresses are read into a temporary; the returned release func gives it
// back.
func (e *Emitter) load(operand bytecode.Operand) (bytecode.Operand, func()) {
	addr, ok := operand.(bytecode.Address)
	if !ok || !addr.IsElement() {
		return operand, func() {}
	}
	tmp := e.table.AcquireTemp()
	e.emit(op.ArGetNdx, addr.Base(), addr.Index(), tmp.Address())
	return tmp.Address(), tmp.Release
}

// output is the destination of one result-producing emission.
type output struct {
	emitter *Emitter
	dst     bytecode.Address
	tmp     *symbol.Temp
}

func (e *Emitter) beginOutput(dst bytecode.Address) *output {
	out := &output{emitter: e, dst: dst}
	if dst.IsElement() {
		out.tmp = e.table.AcquireTemp()
	}
	return out
}

// Address returns the slot the instruction should write.
func (o *output) Address() bytecode.Address {
	if o.tmp != nil {
		return o.tmp.Address()
	}
	return o.dst
}

// commit stores the temporary into the destination element.
func (o *output) commit() {
	if o.tmp == nil {
		return
	}
	index, release := o.emitter.load(o.dst.Index())
	defer release()
	o.emitter.emit(op.ArSetNdx, o.dst.Base(), index, o.tmp.Address())
}

func (o *output) release() {
	if o.tmp != nil {
		o.tmp.Release()
	}
}

// emitResult emits an instruction whose last operand is its destination.
func (e *Emitter) emitResult(code op.Code, dst bytecode.Address, args ...bytecode.Operand) {
	out := e.beginOutput(dst)
	defer out.release()
	operands := make([]bytecode.Operand, 0, len(args)+1)
	for _, arg := range args {
		src, release := e.load(arg)
		defer release()
		operands = append(operands, src)
	}
	operands = append(operands, out.Address())
	e.emit(code, operands...)
	out.commit()
}

// Copy emits VAL_COPY src dst. A scalar destination without a recorded
// type takes the type of an address source.
func (e *Emitter) Copy(src bytecode.Operand, dst bytecode.Address) error {
	if err := e.assertAccess(src); err != nil {
		return err
	}
	e.emitResult(op.ValCopy, dst, src)
	if addr, ok := src.(bytecode.Address); ok && !dst.IsElement() {
		if _, err := e.table.Type(dst); err != nil {
			typ, _ := e.table.Type(addr)
			e.table.SetType(dst, typ)
		}
	}
	return nil
}

// Unary emits a negation or a logical not of x into dst. Negation is
// multiplication by -1; not is (x - 1) * -1 over the 0/1 encoding.
func (e *Emitter) Unary(uop op.UnaryOpType, x bytecode.Operand, dst bytecode.Address) error {
	if err := e.assertAccess(x); err != nil {
		return err
	}
	switch uop {
	case op.Negate:
		e.emitResult(op.Mul, dst, bytecode.Int(-1), x)
	case op.Not:
		out := e.beginOutput(dst)
		defer out.release()
		src, release := e.load(x)
		defer release()
		e.emit(op.Sub, src, bytecode.Int(1), out.Address())
		e.emit(op.Mul, out.Address(), bytecode.Int(-1), out.Address())
		out.commit()
	default:
		return errors.UnsupportedNode("unary operator " + uop.String())
	}
	return nil
}

// Binary emits a math or logic operation of a and b into dst. Min and max
// are built on CompareDispatch.
func (e *Emitter) Binary(bop op.BinaryOpType, a, b bytecode.Operand, dst bytecode.Address) error {
	switch bop {
	case op.Min:
		return e.CompareDispatch(a, b, a, b, a, dst)
	case op.Max:
		return e.CompareDispatch(a, b, b, a, a, dst)
	}
	code, ok := binaryCodes[bop]
	if !ok {
		return errors.UnsupportedNode("binary operator " + bop.String())
	}
	if err := e.assertAccess(a, b); err != nil {
		return err
	}
	e.emitResult(code, dst, a, b)
	return nil
}

// Compare emits a comparison of a and b into dst, which receives 1 or 0.
func (e *Emitter) Compare(cop op.CompareOpType, a, b bytecode.Operand, dst bytecode.Address) error {
	code, ok := compareCodes[cop]
	if !ok {
		return errors.UnsupportedNode("comparison operator " + cop.String())
	}
	if err := e.assertAccess(a, b); err != nil {
		return err
	}
	e.emitResult(code, dst, a, b)
	return nil
}

// Jump emits an unconditional jump.
func (e *Emitter) Jump(label string) {
	e.emit(op.Jump, bytecode.Label(label))
}

// JumpIfZero emits a jump taken when pred is 0.
func (e *Emitter) JumpIfZero(pred bytecode.Operand, label string) error {
	return e.jumpIf(op.JumpIf0, pred, label)
}

// JumpIfNotZero emits a jump taken when pred is not 0.
func (e *Emitter) JumpIfNotZero(pred bytecode.Operand, label string) error {
	return e.jumpIf(op.JumpIfNe0, pred, label)
}

func (e *Emitter) jumpIf(code op.Code, pred bytecode.Operand, label string) error {
	if err := e.assertAccess(pred); err != nil {
		return err
	}
	src, release := e.load(pred)
	defer release()
	e.emit(code, src, bytecode.Label(label))
	return nil
}

// Label places a label marker.
func (e *Emitter) Label(name string) {
	e.instructions = append(e.instructions, bytecode.LabelMarker(name))
}

// Clamp stores x limited to [low, high] into dst.
func (e *Emitter) Clamp(x, low, high bytecode.Operand, dst bytecode.Address) error {
	return e.dispatch(
		x, low, low,
		x, high, high,
		x, dst,
	)
}

// CompareDispatch copies onLess into dst when a < b, onGreater when
// a > b, and onEqual otherwise.
func (e *Emitter) CompareDispatch(a, b, onLess, onGreater, onEqual bytecode.Operand, dst bytecode.Address) error {
	return e.dispatch(
		a, b, onLess,
		a, b, onGreater,
		onEqual, dst,
	)
}

// dispatch emits
//
//	if lessA < lessB { dst = onLess }
//	else if gtrA > gtrB { dst = onGreater }
//	else { dst = otherwise }
//
// over one temporary predicate.
func (e *Emitter) dispatch(
	lessA, lessB, onLess bytecode.Operand,
	gtrA, gtrB, onGreater bytecode.Operand,
	otherwise bytecode.Operand, dst bytecode.Address,
) error {
	if err := e.assertAccess(lessA, lessB, onLess, gtrA, gtrB, onGreater, otherwise); err != nil {
		return err
	}
	pred := e.table.AcquireTemp()
	defer pred.Release()
	e.table.SetType(pred.Address(), types.Bool)

	if err := e.Compare(op.LessThan, lessA, lessB, pred.Address()); err != nil {
		return err
	}
	if err := e.IfBegin(pred.Address(), true); err != nil {
		return err
	}
	if err := e.Copy(onLess, dst); err != nil {
		return err
	}
	e.ElseBegin()
	if err := e.Compare(op.GreaterThan, gtrA, gtrB, pred.Address()); err != nil {
		return err
	}
	if err := e.IfBegin(pred.Address(), true); err != nil {
		return err
	}
	if err := e.Copy(onGreater, dst); err != nil {
		return err
	}
	e.ElseBegin()
	if err := e.Copy(otherwise, dst); err != nil {
		return err
	}
	e.IfEnd()
	e.IfEnd()
	return nil
}

// IfBegin opens an if statement. Everything emitted until ElseBegin, or
// IfEnd when there is no else, is skipped when pred is 0. It pushes the
// wrapper scope that owns the shared labels and the scope of the if body.
func (e *Emitter) IfBegin(pred bytecode.Operand, hasElse bool) error {
	if err := e.assertAccess(pred); err != nil {
		return err
	}
	wrapper := e.pushScope(symbol.ScopeIfElse)
	target := labelName(labelIfEnd, wrapper.LabelID())
	if hasElse {
		target = labelName(labelIfElse, wrapper.LabelID())
	}
	if err := e.JumpIfZero(pred, target); err != nil {
		return err
	}
	e.pushScope(symbol.ScopeIf)
	return nil
}

// ElseBegin closes the if body and opens the else body.
func (e *Emitter) ElseBegin() {
	e.popScope()
	id := e.table.Current().LabelID()
	e.Jump(labelName(labelIfEnd, id))
	e.Label(labelName(labelIfElse, id))
	e.pushScope(symbol.ScopeElse)
}

// IfEnd closes the if or else body and the wrapper scope.
func (e *Emitter) IfEnd() {
	e.popScope()
	e.Label(labelName(labelIfEnd, e.table.Current().LabelID()))
	e.popScope()
}

// WhileBegin opens a loop scope and places its start label. The loop
// condition is emitted next, followed by WhileTest.
func (e *Emitter) WhileBegin() {
	loop := e.pushScope(symbol.ScopeWhile)
	e.Label(labelName(labelWhileStart, loop.LabelID()))
}

// WhileTest exits the innermost loop when pred is 0.
func (e *Emitter) WhileTest(pred bytecode.Operand) error {
	loop, ok := e.table.FindScopeOf(symbol.ScopeWhile)
	if !ok {
		return errors.NoEnclosingLoop()
	}
	return e.JumpIfZero(pred, labelName(labelWhileEnd, loop.LabelID()))
}

// WhileEnd jumps back to the start of the loop and closes it.
func (e *Emitter) WhileEnd() {
	id := e.table.Current().LabelID()
	e.Jump(labelName(labelWhileStart, id))
	e.Label(labelName(labelWhileEnd, id))
	e.popScope()
}

// Break jumps to the end of the innermost loop.
func (e *Emitter) Break() error {
	loop, ok := e.table.FindScopeOf(symbol.ScopeWhile)
	if !ok {
		return errors.NoEnclosingLoop()
	}
	e.Jump(labelName(labelWhileEnd, loop.LabelID()))
	return nil
}

// ArrayCreate reserves size + 1 heap cells for arr and stores the size.
func (e *Emitter) ArrayCreate(size bytecode.Operand, arr bytecode.Address) error {
	if !arr.IsArray() {
		return errors.NotAnArray(arr.String())
	}
	if err := e.assertAccess(size); err != nil {
		return err
	}
	heap := e.table.HeapAddress()
	src, release := e.load(size)
	defer release()
	e.emit(op.ValCopy, heap, arr)
	e.emit(op.Add, heap, src, heap)
	e.emit(op.Add, heap, bytecode.Int(1), heap)
	e.emit(op.ArSetSz, arr, src)
	return nil
}

func (e *Emitter) assertArray(arr bytecode.Address) error {
	if !arr.IsArray() {
		return errors.NotAnArray(arr.String())
	}
	typ, err := e.table.Type(arr)
	if err != nil {
		return err
	}
	if !typ.IsArray() {
		return errors.NotAnArray(typ.Name())
	}
	return nil
}

// ArrayGet stores arr[idx] into dst.
func (e *Emitter) ArrayGet(arr bytecode.Address, idx bytecode.Operand, dst bytecode.Address) error {
	if err := e.assertArray(arr); err != nil {
		return err
	}
	if err := e.assertAccess(idx); err != nil {
		return err
	}
	e.emitResult(op.ArGetNdx, dst, arr, idx)
	return nil
}

// ArraySet stores value into arr[idx].
func (e *Emitter) ArraySet(arr bytecode.Address, idx, value bytecode.Operand) error {
	if err := e.assertArray(arr); err != nil {
		return err
	}
	if err := e.assertAccess(idx, value); err != nil {
		return err
	}
	index, releaseIndex := e.load(idx)
	defer releaseIndex()
	src, releaseValue := e.load(value)
	defer releaseValue()
	e.emit(op.ArSetNdx, arr, index, src)
	return nil
}

// ArrayGetSize stores the size of arr into dst.
func (e *Emitter) ArrayGetSize(arr, dst bytecode.Address) error {
	if err := e.assertArray(arr); err != nil {
		return err
	}
	e.emitResult(op.ArGetSz, dst, arr)
	return nil
}

// ArraySetSize overwrites the stored size of arr.
func (e *Emitter) ArraySetSize(arr bytecode.Address, size bytecode.Operand) error {
	if err := e.assertArray(arr); err != nil {
		return err
	}
	if err := e.assertAccess(size); err != nil {
		return err
	}
	src, release := e.load(size)
	defer release()
	e.emit(op.ArSetSz, arr, src)
	return nil
}

// ArrayCopy copies the size and every element of src into the storage of
// dst.
func (e *Emitter) ArrayCopy(src, dst bytecode.Address) error {
	if err := e.assertArray(src); err != nil {
		return err
	}
	if err := e.assertArray(dst); err != nil {
		return err
	}
	e.emit(op.ArCopy, src, dst)
	return nil
}

// ReadChar stores the next input character into dst.
func (e *Emitter) ReadChar(dst bytecode.Address) {
	e.emitResult(op.InChar, dst)
}

// Random stores a random integer into dst.
func (e *Emitter) Random(dst bytecode.Address) {
	e.emitResult(op.Random, dst)
}

// Print writes src, a value of type typ. Arrays print each element in
// order; characters use OUT_CHAR and numbers and booleans use OUT_NUM.
func (e *Emitter) Print(typ types.Type, src bytecode.Operand) error {
	if err := e.assertAccess(src); err != nil {
		return err
	}
	if typ.IsArray() {
		arr, ok := src.(bytecode.Address)
		if !ok || !arr.IsArray() {
			return errors.NotAnArray(src.String())
		}
		it, err := e.ArrayIterateBegin(arr, "")
		if err != nil {
			return err
		}
		defer it.Release()
		if err := e.Print(typ.Elem(), it.Item()); err != nil {
			return err
		}
		e.ArrayIterateEnd(it)
		return nil
	}
	var code op.Code
	switch {
	case types.Char.Accepts(typ, false):
		code = op.OutChar
	case types.Numeric.Accepts(typ, true):
		code = op.OutNum
	default:
		return errors.TypeMismatch(types.Numeric.Name(), typ.Name(), true)
	}
	value, release := e.load(src)
	defer release()
	e.emit(code, value)
	return nil
}

// PrintNewline writes a newline character.
func (e *Emitter) PrintNewline() {
	e.emit(op.OutChar, bytecode.Char('\n'))
}

// Iteration is an array loop opened by ArrayIterateBegin.
type Iteration struct {
	arr   bytecode.Address
	size  *symbol.Temp
	index *symbol.Temp
	item  bytecode.Address
}

// Item returns the address that holds the current element.
func (it *Iteration) Item() bytecode.Address {
	return it.item
}

// Index returns the hidden counter.
func (it *Iteration) Index() bytecode.Address {
	return it.index.Address()
}

// Release gives back the cached size and the counter. ArrayIterateEnd
// calls it; callers defer it to cover error paths.
func (it *Iteration) Release() {
	it.size.Release()
	it.index.Release()
}

// ArrayIterateBegin opens a loop over the elements of arr. The size is
// read once before the loop. When name is not empty the current element
// is bound to a new symbol of that name inside the loop scope; otherwise
// it lives in a hidden scalar. The loop body follows, then
// ArrayIterateEnd.
func (e *Emitter) ArrayIterateBegin(arr bytecode.Address, name string) (*Iteration, error) {
	if err := e.assertArray(arr); err != nil {
		return nil, err
	}
	arrType, _ := e.table.Type(arr)
	it := &Iteration{arr: arr, size: e.table.AcquireTemp(), index: e.table.AcquireTemp()}
	e.table.SetType(it.size.Address(), types.Integer)
	e.table.SetType(it.index.Address(), types.Integer)
	if err := e.ArrayGetSize(arr, it.size.Address()); err != nil {
		it.Release()
		return nil, err
	}
	if err := e.Copy(bytecode.Int(0), it.index.Address()); err != nil {
		it.Release()
		return nil, err
	}

	e.WhileBegin()
	pred := e.table.AcquireTemp()
	defer pred.Release()
	e.table.SetType(pred.Address(), types.Bool)
	if err := e.Compare(op.LessThan, it.index.Address(), it.size.Address(), pred.Address()); err != nil {
		it.Release()
		return nil, err
	}
	if err := e.WhileTest(pred.Address()); err != nil {
		it.Release()
		return nil, err
	}
	if name != "" {
		it.item = e.table.CreateSymbol(name, arrType.Elem())
	} else {
		it.item = e.table.AcquireScalar()
		e.table.SetType(it.item, arrType.Elem())
	}
	if err := e.ArrayGet(arr, it.index.Address(), it.item); err != nil {
		it.Release()
		return nil, err
	}
	return it, nil
}

// ArrayIterateEnd advances the counter and closes the loop.
func (e *Emitter) ArrayIterateEnd(it *Iteration) {
	e.emit(op.Add, it.index.Address(), bytecode.Int(1), it.index.Address())
	e.WhileEnd()
	it.Release()
}
