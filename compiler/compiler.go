// Package compiler lowers an abstract syntax tree into the textual
// instruction stream executed by the vm package.
//
// # Lowering
//
// Every node is lowered by one exhaustive type switch. Lowering an
// expression returns the address holding its result, with the result type
// already recorded in the symbol table; lowering a statement returns the
// zero address. All static type checking happens here, so the VM never
// checks types.
//
// # Scopes and labels
//
// Each control-flow construct pushes scopes onto the symbol table and every
// push takes the next label id. An if/else uses three scopes: a wrapper
// that owns the shared labels if_else_<id> and if_end_<id>, plus one scope
// for each body, so names declared in one branch never leak into the other
// or past the construct. A while loop uses one scope and the labels
// while_start_<id> and while_end_<id>; break jumps to the end label of the
// innermost loop scope.
//
// # Arrays
//
// Arrays live on a bump-allocated heap whose pointer is slot s0. An array
// slot holds the heap address of its size cell and the elements follow it.
// The instruction set cannot write through a computed address, so results
// destined for an array element are produced in a temporary and stored with
// AR_SET_NDX (see Emitter).
package compiler

import (
	"fmt"

	"github.com/psyk-lang/psyk/ast"
	"github.com/psyk-lang/psyk/bytecode"
	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
	"github.com/psyk-lang/psyk/symbol"
	"github.com/psyk-lang/psyk/types"
	"github.com/rs/zerolog"
)

// Compiler lowers programs. A Compiler may be reused; each call to Compile
// starts from a fresh symbol table.
type Compiler struct {
	logger   zerolog.Logger
	heapBase int64

	// Per-compilation state
	table   *symbol.Table
	emitter *Emitter
}

// Compile lowers program into an instruction stream. Compilation stops at
// the first error and no program is returned.
func Compile(program *ast.Program, opts ...Option) (*bytecode.Program, error) {
	return New(opts...).Compile(program)
}

// New creates a Compiler configured by opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger:   zerolog.Nop(),
		heapBase: DefaultHeapBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile lowers program into an instruction stream.
func (c *Compiler) Compile(program *ast.Program) (*bytecode.Program, error) {
	if program == nil {
		return nil, errors.UnsupportedNode("nil program")
	}
	c.table = symbol.NewTable()
	c.emitter = NewEmitter(c.table, c.heapBase, c.logger)
	if _, err := c.lower(program); err != nil {
		return nil, err
	}
	compiled := c.emitter.Program()
	c.logger.Debug().
		Int("instructions", compiled.InstructionCount()).
		Int("slots", c.table.SlotCount()).
		Msg("compiled program")
	return compiled, nil
}

// lower the given node and all its children.
func (c *Compiler) lower(node ast.Node) (bytecode.Address, error) {
	switch node := node.(type) {
	case *ast.Program:
		return bytecode.Address{}, c.lowerNodes(node.Body)
	case *ast.Block:
		return bytecode.Address{}, c.lowerNodes(node.Body)
	case *ast.Int:
		return c.lowerLiteral(bytecode.Int(node.Value), types.Integer)
	case *ast.Float:
		return c.lowerLiteral(bytecode.Float(node.Value), types.Float)
	case *ast.Bool:
		return c.lowerLiteral(bytecode.Bool(node.Value), types.Bool)
	case *ast.Char:
		return c.lowerLiteral(bytecode.Char(node.Value), types.Char)
	case *ast.Ident:
		return c.lowerIdent(node)
	case *ast.Index:
		return c.lowerIndex(node)
	case *ast.Var:
		return bytecode.Address{}, c.lowerVar(node)
	case *ast.ArrayVar:
		return bytecode.Address{}, c.lowerArrayVar(node)
	case *ast.Assign:
		return c.lowerAssign(node)
	case *ast.Unary:
		return c.lowerUnary(node)
	case *ast.Binary:
		return c.lowerBinary(node)
	case *ast.Compare:
		return c.lowerCompare(node)
	case *ast.Nary:
		return c.lowerNary(node)
	case *ast.If:
		return bytecode.Address{}, c.lowerIf(node)
	case *ast.While:
		return bytecode.Address{}, c.lowerWhile(node)
	case *ast.Break:
		return bytecode.Address{}, c.emitter.Break()
	case *ast.ForEach:
		return bytecode.Address{}, c.lowerForEach(node)
	case *ast.Len:
		return c.lowerLen(node)
	case *ast.Print:
		return bytecode.Address{}, c.lowerPrint(node)
	case *ast.Random:
		dst := c.acquire(types.Integer)
		c.emitter.Random(dst)
		return dst, nil
	case *ast.ReadChar:
		dst := c.acquire(types.Char)
		c.emitter.ReadChar(dst)
		return dst, nil
	}
	return bytecode.Address{}, errors.UnsupportedNode(fmt.Sprintf("%T", node))
}

func (c *Compiler) lowerNodes(nodes []ast.Node) error {
	for _, n := range nodes {
		if _, err := c.lower(n); err != nil {
			return err
		}
	}
	return nil
}

// lowerExpr lowers an expression and returns its address and type.
func (c *Compiler) lowerExpr(expr ast.Expr) (bytecode.Address, types.Type, error) {
	if expr == nil {
		return bytecode.Address{}, types.Null, errors.UnsupportedNode("missing expression")
	}
	addr, err := c.lower(expr)
	if err != nil {
		return bytecode.Address{}, types.Null, err
	}
	if addr.IsZero() {
		return bytecode.Address{}, types.Null, errors.UnsupportedNode(fmt.Sprintf("%T without a value", expr))
	}
	typ, err := c.table.Type(addr)
	if err != nil {
		return bytecode.Address{}, types.Null, err
	}
	return addr, typ, nil
}

// acquire returns a scalar held by the current scope, typed typ.
func (c *Compiler) acquire(typ types.Type) bytecode.Address {
	addr := c.table.AcquireScalar()
	c.table.SetType(addr, typ)
	return addr
}

func (c *Compiler) lowerLiteral(value bytecode.Literal, typ types.Type) (bytecode.Address, error) {
	dst := c.acquire(typ)
	if err := c.emitter.Copy(value, dst); err != nil {
		return bytecode.Address{}, err
	}
	return dst, nil
}

func (c *Compiler) lowerIdent(node *ast.Ident) (bytecode.Address, error) {
	addr, err := c.table.RetrieveAddress(node.Name)
	if err != nil {
		return bytecode.Address{}, err
	}
	if _, err := c.table.Type(addr); err != nil {
		return bytecode.Address{}, errors.NoValue(node.Name)
	}
	return addr, nil
}

// lowerIndex returns the element address of node. The index is kept in a
// scalar held by the current scope, since the element address outlives
// this call.
func (c *Compiler) lowerIndex(node *ast.Index) (bytecode.Address, error) {
	if node.Array == nil {
		return bytecode.Address{}, errors.UnsupportedNode("index without an array")
	}
	base, err := c.lowerIdent(node.Array)
	if err != nil {
		return bytecode.Address{}, err
	}
	baseType, err := c.table.Type(base)
	if err != nil {
		return bytecode.Address{}, err
	}
	if !base.IsArray() || !baseType.IsArray() {
		return bytecode.Address{}, errors.NotAnArray(baseType.Name())
	}
	idx, idxType, err := c.lowerExpr(node.Index)
	if err != nil {
		return bytecode.Address{}, err
	}
	if err := types.AssertAssignable(types.Integer, idxType, false); err != nil {
		return bytecode.Address{}, err
	}
	if idx.IsElement() {
		scalar := c.acquire(types.Integer)
		if err := c.emitter.Copy(idx, scalar); err != nil {
			return bytecode.Address{}, err
		}
		idx = scalar
	}
	return base.Element(idx), nil
}

func (c *Compiler) lowerVar(node *ast.Var) error {
	if node.Type.IsNull() {
		return errors.TypeMismatch(types.Any.Name(), node.Type.Name(), false)
	}
	addr := c.table.CreateSymbol(node.Name, node.Type)
	if node.Value == nil {
		return nil
	}
	value, valueType, err := c.lowerExpr(node.Value)
	if err != nil {
		return err
	}
	if err := types.AssertAssignable(node.Type, valueType, false); err != nil {
		return err
	}
	return c.emitter.Copy(value, addr)
}

func (c *Compiler) lowerArrayVar(node *ast.ArrayVar) error {
	if !node.Type.IsArray() {
		return errors.InvalidArrayInitializer("%s is declared with non-array type %s", node.Name, node.Type)
	}
	if lit, ok := node.Size.(*ast.Int); ok {
		if lit.Value < 0 {
			return errors.InvalidArrayInitializer("%s has negative size %d", node.Name, lit.Value)
		}
		if int(lit.Value) < len(node.Items) {
			return errors.InvalidArrayInitializer("%s has size %d but %d initializers",
				node.Name, lit.Value, len(node.Items))
		}
	}
	arr := c.table.CreateSymbol(node.Name, node.Type)
	size, sizeType, err := c.lowerExpr(node.Size)
	if err != nil {
		return err
	}
	if err := types.AssertAssignable(types.Integer, sizeType, false); err != nil {
		return err
	}
	if err := c.emitter.ArrayCreate(size, arr); err != nil {
		return err
	}
	elem := node.Type.Elem()
	for i, item := range node.Items {
		value, valueType, err := c.lowerExpr(item)
		if err != nil {
			return err
		}
		if !elem.Accepts(valueType, false) {
			return errors.InvalidArrayInitializer("%s initializer %d: %s is not assignable to %s",
				node.Name, i, valueType, elem)
		}
		if err := c.emitter.ArraySet(arr, bytecode.Int(int64(i)), value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) lowerAssign(node *ast.Assign) (bytecode.Address, error) {
	switch target := node.Target.(type) {
	case *ast.Ident:
		if !c.table.DoesSymbolExist(target.Name) {
			// The first assignment to a name declares it.
			value, valueType, err := c.lowerExpr(node.Value)
			if err != nil {
				return bytecode.Address{}, err
			}
			addr := c.table.CreateSymbol(target.Name, valueType)
			if err := c.emitter.Copy(value, addr); err != nil {
				return bytecode.Address{}, err
			}
			return addr, nil
		}
		addr, err := c.table.RetrieveAddress(target.Name)
		if err != nil {
			return bytecode.Address{}, err
		}
		return c.assignTo(addr, node.Value)
	case *ast.Index:
		elem, err := c.lowerIndex(target)
		if err != nil {
			return bytecode.Address{}, err
		}
		return c.assignTo(elem, node.Value)
	}
	return bytecode.Address{}, errors.UnsupportedNode(fmt.Sprintf("assignment to %T", node.Target))
}

func (c *Compiler) assignTo(target bytecode.Address, valueExpr ast.Expr) (bytecode.Address, error) {
	targetType, err := c.table.Type(target)
	if err != nil {
		return bytecode.Address{}, err
	}
	value, valueType, err := c.lowerExpr(valueExpr)
	if err != nil {
		return bytecode.Address{}, err
	}
	if err := types.AssertAssignable(targetType, valueType, false); err != nil {
		return bytecode.Address{}, err
	}
	if err := c.emitter.Copy(value, target); err != nil {
		return bytecode.Address{}, err
	}
	return target, nil
}

func (c *Compiler) lowerUnary(node *ast.Unary) (bytecode.Address, error) {
	x, typ, err := c.lowerExpr(node.Operand)
	if err != nil {
		return bytecode.Address{}, err
	}
	required := types.Numeric
	if node.Op == op.Not {
		required = types.Bool
	}
	if err := types.AssertAssignable(required, typ, false); err != nil {
		return bytecode.Address{}, err
	}
	dst := c.acquire(typ)
	if err := c.emitter.Unary(node.Op, x, dst); err != nil {
		return bytecode.Address{}, err
	}
	return dst, nil
}

// binaryResultType checks the operand types of bop and returns the result
// type.
func binaryResultType(bop op.BinaryOpType, lhs, rhs types.Type) (types.Type, error) {
	if bop.IsLogic() {
		if err := types.AssertAssignable(types.Bool, lhs, false); err != nil {
			return types.Null, err
		}
		if err := types.AssertAssignable(types.Bool, rhs, false); err != nil {
			return types.Null, err
		}
		return types.Bool, nil
	}
	if bop == op.IntDivide {
		for _, t := range []types.Type{lhs, rhs} {
			if !t.Equal(types.Integer) {
				return types.Null, errors.TypeMismatch(types.Integer.Name(), t.Name(), false)
			}
		}
	}
	return types.PromoteBinaryResult(lhs, rhs)
}

func (c *Compiler) lowerBinary(node *ast.Binary) (bytecode.Address, error) {
	x, xType, err := c.lowerExpr(node.Left)
	if err != nil {
		return bytecode.Address{}, err
	}
	y, yType, err := c.lowerExpr(node.Right)
	if err != nil {
		return bytecode.Address{}, err
	}
	result, err := binaryResultType(node.Op, xType, yType)
	if err != nil {
		return bytecode.Address{}, err
	}
	dst := c.acquire(result)
	if err := c.emitter.Binary(node.Op, x, y, dst); err != nil {
		return bytecode.Address{}, err
	}
	return dst, nil
}

func (c *Compiler) lowerCompare(node *ast.Compare) (bytecode.Address, error) {
	x, xType, err := c.lowerExpr(node.Left)
	if err != nil {
		return bytecode.Address{}, err
	}
	y, yType, err := c.lowerExpr(node.Right)
	if err != nil {
		return bytecode.Address{}, err
	}
	if node.Op.IsEquality() {
		bothNumeric := types.Numeric.Accepts(xType, false) && types.Numeric.Accepts(yType, false)
		if !xType.Equal(yType) && !bothNumeric {
			return bytecode.Address{}, errors.TypeMismatch(xType.Name(), yType.Name(), false)
		}
	} else {
		for _, t := range []types.Type{xType, yType} {
			if err := types.AssertAssignable(types.Numeric, t, false); err != nil {
				return bytecode.Address{}, err
			}
		}
	}
	dst := c.acquire(types.Bool)
	if err := c.emitter.Compare(node.Op, x, y, dst); err != nil {
		return bytecode.Address{}, err
	}
	return dst, nil
}

// lowerNary folds the arguments left to right into one accumulator.
func (c *Compiler) lowerNary(node *ast.Nary) (bytecode.Address, error) {
	if len(node.Args) == 0 {
		return bytecode.Address{}, errors.UnsupportedNode(node.Op.String() + " without operands")
	}
	first, accType, err := c.lowerExpr(node.Args[0])
	if err != nil {
		return bytecode.Address{}, err
	}
	acc := c.acquire(accType)
	if err := c.emitter.Copy(first, acc); err != nil {
		return bytecode.Address{}, err
	}
	for _, arg := range node.Args[1:] {
		y, yType, err := c.lowerExpr(arg)
		if err != nil {
			return bytecode.Address{}, err
		}
		result, err := binaryResultType(node.Op, accType, yType)
		if err != nil {
			return bytecode.Address{}, err
		}
		if err := c.emitter.Binary(node.Op, acc, y, acc); err != nil {
			return bytecode.Address{}, err
		}
		accType = result
		c.table.SetType(acc, accType)
	}
	return acc, nil
}

func (c *Compiler) lowerCondition(expr ast.Expr) (bytecode.Address, error) {
	cond, typ, err := c.lowerExpr(expr)
	if err != nil {
		return bytecode.Address{}, err
	}
	if err := types.AssertAssignable(types.Bool, typ, false); err != nil {
		return bytecode.Address{}, err
	}
	return cond, nil
}

func (c *Compiler) lowerIf(node *ast.If) error {
	cond, err := c.lowerCondition(node.Cond)
	if err != nil {
		return err
	}
	hasElse := node.Alternative != nil
	if err := c.emitter.IfBegin(cond, hasElse); err != nil {
		return err
	}
	if node.Consequence != nil {
		if _, err := c.lower(node.Consequence); err != nil {
			return err
		}
	}
	if hasElse {
		c.emitter.ElseBegin()
		if _, err := c.lower(node.Alternative); err != nil {
			return err
		}
	}
	c.emitter.IfEnd()
	return nil
}

func (c *Compiler) lowerWhile(node *ast.While) error {
	c.emitter.WhileBegin()
	cond, err := c.lowerCondition(node.Cond)
	if err != nil {
		return err
	}
	if err := c.emitter.WhileTest(cond); err != nil {
		return err
	}
	if node.Body != nil {
		if _, err := c.lower(node.Body); err != nil {
			return err
		}
	}
	c.emitter.WhileEnd()
	return nil
}

func (c *Compiler) lowerForEach(node *ast.ForEach) error {
	arr, typ, err := c.lowerExpr(node.Iterable)
	if err != nil {
		return err
	}
	if !arr.IsArray() || !typ.IsArray() {
		return errors.NotAnArray(typ.Name())
	}
	if node.Name == "" {
		return errors.UnsupportedNode("for-each without a loop variable")
	}
	it, err := c.emitter.ArrayIterateBegin(arr, node.Name)
	if err != nil {
		return err
	}
	defer it.Release()
	if node.Body != nil {
		if _, err := c.lower(node.Body); err != nil {
			return err
		}
	}
	c.emitter.ArrayIterateEnd(it)
	return nil
}

func (c *Compiler) lowerLen(node *ast.Len) (bytecode.Address, error) {
	arr, typ, err := c.lowerExpr(node.Operand)
	if err != nil {
		return bytecode.Address{}, err
	}
	if !arr.IsArray() || !typ.IsArray() {
		return bytecode.Address{}, errors.NotAnArray(typ.Name())
	}
	dst := c.acquire(types.Integer)
	if err := c.emitter.ArrayGetSize(arr, dst); err != nil {
		return bytecode.Address{}, err
	}
	return dst, nil
}

func (c *Compiler) lowerPrint(node *ast.Print) error {
	for _, arg := range node.Args {
		value, typ, err := c.lowerExpr(arg)
		if err != nil {
			return err
		}
		if err := c.emitter.Print(typ, value); err != nil {
			return err
		}
	}
	if node.Newline {
		c.emitter.PrintNewline()
	}
	return nil
}
