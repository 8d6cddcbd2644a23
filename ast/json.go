package ast

import (
	"encoding/json"
	"fmt"

	"github.com/psyk-lang/psyk/bytecode"
	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
	"github.com/psyk-lang/psyk/types"
)

// rawNode is the tagged JSON form of every node kind. Only the fields the
// kind uses are read.
type rawNode struct {
	Kind     string          `json:"kind"`
	Name     string          `json:"name,omitempty"`
	Type     string          `json:"type,omitempty"`
	Op       string          `json:"op,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Newline  bool            `json:"newline,omitempty"`
	Target   *rawNode        `json:"target,omitempty"`
	Index    *rawNode        `json:"index,omitempty"`
	Size     *rawNode        `json:"size,omitempty"`
	Cond     *rawNode        `json:"cond,omitempty"`
	Operand  *rawNode        `json:"operand,omitempty"`
	Left     *rawNode        `json:"left,omitempty"`
	Right    *rawNode        `json:"right,omitempty"`
	Iterable *rawNode        `json:"iterable,omitempty"`
	Items    []*rawNode      `json:"items,omitempty"`
	Args     []*rawNode      `json:"args,omitempty"`
	Body     []*rawNode      `json:"body,omitempty"`
	Then     []*rawNode      `json:"then,omitempty"`
	Else     []*rawNode      `json:"else,omitempty"`
}

// Decode reads a program from its tagged JSON form, for example:
//
//	{"kind": "program", "body": [
//	  {"kind": "var", "name": "x", "type": "Int", "value": {"kind": "int", "value": 5}},
//	  {"kind": "print", "newline": true, "args": [{"kind": "ident", "name": "x"}]}
//	]}
//
// A bare JSON array is accepted as the body of a program.
func Decode(data []byte) (*Program, error) {
	var root rawNode
	if err := json.Unmarshal(data, &root); err != nil {
		var body []*rawNode
		if arrErr := json.Unmarshal(data, &body); arrErr != nil {
			return nil, fmt.Errorf("decode program: %w", err)
		}
		root = rawNode{Kind: "program", Body: body}
	}
	if root.Kind != "program" {
		return nil, fmt.Errorf("decode program: root kind is %q, expected \"program\"", root.Kind)
	}
	body, err := decodeNodes(root.Body, "body")
	if err != nil {
		return nil, err
	}
	return &Program{Body: body}, nil
}

func decodeNodes(raws []*rawNode, path string) ([]Node, error) {
	nodes := make([]Node, 0, len(raws))
	for i, raw := range raws {
		n, err := decodeNode(raw, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeBlock(raws []*rawNode, path string) (*Block, error) {
	body, err := decodeNodes(raws, path)
	if err != nil {
		return nil, err
	}
	return &Block{Body: body}, nil
}

func decodeExprs(raws []*rawNode, path string) ([]Expr, error) {
	exprs := make([]Expr, 0, len(raws))
	for i, raw := range raws {
		e, err := decodeExpr(raw, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func decodeExpr(raw *rawNode, path string) (Expr, error) {
	n, err := decodeNode(raw, path)
	if err != nil {
		return nil, err
	}
	e, ok := n.(Expr)
	if !ok {
		return nil, fmt.Errorf("%s: %s is a statement, expected an expression", path, raw.Kind)
	}
	return e, nil
}

// decodeValueExpr decodes the "value" field of a var or assign node, which
// holds a nested node.
func decodeValueExpr(raw json.RawMessage, path string) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var inner rawNode
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decodeExpr(&inner, path)
}

func decodeNode(raw *rawNode, path string) (Node, error) {
	if raw == nil {
		return nil, fmt.Errorf("%s: missing node", path)
	}
	switch raw.Kind {
	case "int":
		var v int64
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return nil, fmt.Errorf("%s: invalid int literal: %w", path, err)
		}
		return &Int{Value: v}, nil
	case "float":
		var v float64
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return nil, fmt.Errorf("%s: invalid float literal: %w", path, err)
		}
		return &Float{Value: v}, nil
	case "bool":
		var v bool
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return nil, fmt.Errorf("%s: invalid bool literal: %w", path, err)
		}
		return &Bool{Value: v}, nil
	case "char":
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return nil, fmt.Errorf("%s: invalid char literal: %w", path, err)
		}
		r, err := bytecode.ParseChar(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Char{Value: r}, nil
	case "ident":
		if raw.Name == "" {
			return nil, fmt.Errorf("%s: ident without a name", path)
		}
		return &Ident{Name: raw.Name}, nil
	case "index":
		if raw.Name == "" {
			return nil, fmt.Errorf("%s: index without an array name", path)
		}
		idx, err := decodeExpr(raw.Index, path+".index")
		if err != nil {
			return nil, err
		}
		return &Index{Array: &Ident{Name: raw.Name}, Index: idx}, nil
	case "assign":
		target, err := decodeExpr(raw.Target, path+".target")
		if err != nil {
			return nil, err
		}
		assignable, ok := target.(Assignable)
		if !ok {
			return nil, fmt.Errorf("%s: cannot assign to %s", path, raw.Target.Kind)
		}
		value, err := decodeValueExpr(raw.Value, path+".value")
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, fmt.Errorf("%s: assign without a value", path)
		}
		return &Assign{Target: assignable, Value: value}, nil
	case "unary":
		uop, ok := op.ParseUnaryOp(raw.Op)
		if !ok {
			return nil, fmt.Errorf("%s: unknown unary operator %q", path, raw.Op)
		}
		x, err := decodeExpr(raw.Operand, path+".operand")
		if err != nil {
			return nil, err
		}
		return &Unary{Op: uop, Operand: x}, nil
	case "binary":
		bop, ok := op.ParseBinaryOp(raw.Op)
		if !ok {
			return nil, fmt.Errorf("%s: unknown binary operator %q", path, raw.Op)
		}
		left, err := decodeExpr(raw.Left, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(raw.Right, path+".right")
		if err != nil {
			return nil, err
		}
		return &Binary{Op: bop, Left: left, Right: right}, nil
	case "compare":
		cop, ok := op.ParseCompareOp(raw.Op)
		if !ok {
			return nil, fmt.Errorf("%s: unknown comparison operator %q", path, raw.Op)
		}
		left, err := decodeExpr(raw.Left, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(raw.Right, path+".right")
		if err != nil {
			return nil, err
		}
		return &Compare{Op: cop, Left: left, Right: right}, nil
	case "nary":
		bop, ok := op.ParseBinaryOp(raw.Op)
		if !ok {
			return nil, fmt.Errorf("%s: unknown operator %q", path, raw.Op)
		}
		args, err := decodeExprs(raw.Args, path+".args")
		if err != nil {
			return nil, err
		}
		return &Nary{Op: bop, Args: args}, nil
	case "len":
		x, err := decodeExpr(raw.Operand, path+".operand")
		if err != nil {
			return nil, err
		}
		return &Len{Operand: x}, nil
	case "random":
		return &Random{}, nil
	case "read_char":
		return &ReadChar{}, nil
	case "var":
		typ, err := decodeType(raw.Type, path)
		if err != nil {
			return nil, err
		}
		value, err := decodeValueExpr(raw.Value, path+".value")
		if err != nil {
			return nil, err
		}
		return &Var{Name: raw.Name, Type: typ, Value: value}, nil
	case "array_var":
		typ, err := decodeType(raw.Type, path)
		if err != nil {
			return nil, err
		}
		if !typ.IsArray() {
			typ = types.ArrayOf(typ)
		}
		size, err := decodeExpr(raw.Size, path+".size")
		if err != nil {
			return nil, err
		}
		items, err := decodeExprs(raw.Items, path+".items")
		if err != nil {
			return nil, err
		}
		return &ArrayVar{Name: raw.Name, Type: typ, Size: size, Items: items}, nil
	case "if":
		cond, err := decodeExpr(raw.Cond, path+".cond")
		if err != nil {
			return nil, err
		}
		then, err := decodeBlock(raw.Then, path+".then")
		if err != nil {
			return nil, err
		}
		stmt := &If{Cond: cond, Consequence: then}
		if raw.Else != nil {
			if stmt.Alternative, err = decodeBlock(raw.Else, path+".else"); err != nil {
				return nil, err
			}
		}
		return stmt, nil
	case "while":
		cond, err := decodeExpr(raw.Cond, path+".cond")
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(raw.Body, path+".body")
		if err != nil {
			return nil, err
		}
		return &While{Cond: cond, Body: body}, nil
	case "break":
		return &Break{}, nil
	case "for_each":
		iterable, err := decodeExpr(raw.Iterable, path+".iterable")
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(raw.Body, path+".body")
		if err != nil {
			return nil, err
		}
		return &ForEach{Name: raw.Name, Iterable: iterable, Body: body}, nil
	case "print", "println":
		args, err := decodeExprs(raw.Args, path+".args")
		if err != nil {
			return nil, err
		}
		return &Print{Args: args, Newline: raw.Newline || raw.Kind == "println"}, nil
	case "block":
		return decodeBlock(raw.Body, path+".body")
	}
	return nil, fmt.Errorf("%s: %w", path, errors.UnsupportedNode(raw.Kind))
}

func decodeType(name, path string) (types.Type, error) {
	typ, err := types.Parse(name)
	if err != nil {
		return types.Null, fmt.Errorf("%s: %w", path, err)
	}
	return typ, nil
}
