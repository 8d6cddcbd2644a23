package ast

import (
	"testing"

	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
	"github.com/psyk-lang/psyk/types"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	program := &Program{
		Body: []Node{
			&Var{Name: "x", Type: types.Integer, Value: &Int{Value: 5}},
			&ArrayVar{
				Name:  "glyphs",
				Type:  types.ArrayOf(types.Char),
				Size:  &Int{Value: 3},
				Items: []Expr{&Char{Value: 'a'}, &Char{Value: '\n'}},
			},
			&While{
				Cond: &Compare{Op: op.LessThan, Left: &Ident{Name: "x"}, Right: &Int{Value: 10}},
				Body: &Block{Body: []Node{
					&Assign{
						Target: &Ident{Name: "x"},
						Value:  &Binary{Op: op.Plus, Left: &Ident{Name: "x"}, Right: &Int{Value: 1}},
					},
					&Break{},
				}},
			},
			&Print{Args: []Expr{&Unary{Op: op.Not, Operand: &Bool{Value: true}}}, Newline: true},
		},
	}
	expected := "var x Int = 5\n" +
		"var glyphs Array[Char][3] = ['a', '%n']\n" +
		"while (x < 10) { x = (x + 1); break }\n" +
		"println((not true))"
	require.Equal(t, expected, program.String())
}

func TestExpressionStrings(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{&Float{Value: 2.5}, "2.5"},
		{&Float{Value: 5}, "5.0"},
		{&Index{Array: &Ident{Name: "xs"}, Index: &Int{Value: 2}}, "xs[2]"},
		{&Unary{Op: op.Negate, Operand: &Ident{Name: "y"}}, "(-y)"},
		{&Nary{Op: op.Max, Args: []Expr{&Int{Value: 1}, &Int{Value: 2}, &Int{Value: 3}}}, "max(1, 2, 3)"},
		{&Len{Operand: &Ident{Name: "xs"}}, "len(xs)"},
		{&Random{}, "random()"},
		{&ReadChar{}, "read()"},
		{&If{Cond: &Bool{Value: false}, Consequence: &Block{}}, "if false {}"},
		{&ForEach{Name: "c", Iterable: &Ident{Name: "xs"}, Body: &Block{}}, "for c in xs {}"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.node.String())
		})
	}
}

func TestInspectOrder(t *testing.T) {
	program := &Program{Body: []Node{
		&Var{Name: "x", Type: types.Integer, Value: &Binary{
			Op: op.Plus, Left: &Int{Value: 1}, Right: &Int{Value: 2},
		}},
		&If{
			Cond:        &Ident{Name: "x"},
			Consequence: &Block{Body: []Node{&Print{Args: []Expr{&Ident{Name: "x"}}}}},
		},
	}}

	var visited []string
	Inspect(program, func(n Node) bool {
		switch node := n.(type) {
		case *Program:
			visited = append(visited, "Program")
		case *Var:
			visited = append(visited, "Var")
		case *Binary:
			visited = append(visited, "Binary:"+node.Op.String())
		case *Int:
			visited = append(visited, "Int")
		case *If:
			visited = append(visited, "If")
		case *Block:
			visited = append(visited, "Block")
		case *Print:
			visited = append(visited, "Print")
		case *Ident:
			visited = append(visited, "Ident:"+node.Name)
		}
		return true
	})
	require.Equal(t, []string{
		"Program", "Var", "Binary:+", "Int", "Int",
		"If", "Ident:x", "Block", "Print", "Ident:x",
	}, visited)
}

func TestInspectSkipsChildren(t *testing.T) {
	program := &Program{Body: []Node{
		&While{Cond: &Bool{Value: true}, Body: &Block{Body: []Node{&Break{}}}},
	}}
	count := 0
	Inspect(program, func(n Node) bool {
		count++
		_, isWhile := n.(*While)
		return !isWhile
	})
	require.Equal(t, 2, count)
}

func TestPreorderStopsEarly(t *testing.T) {
	program := &Program{Body: []Node{
		&Print{Args: []Expr{&Int{Value: 1}, &Int{Value: 2}, &Int{Value: 3}}},
	}}
	var ints []int64
	for n := range Preorder(program) {
		if i, ok := n.(*Int); ok {
			ints = append(ints, i.Value)
			if len(ints) == 2 {
				break
			}
		}
	}
	require.Equal(t, []int64{1, 2}, ints)
}

func TestDecode(t *testing.T) {
	src := `{"kind": "program", "body": [
		{"kind": "var", "name": "x", "type": "Int", "value": {"kind": "int", "value": 5}},
		{"kind": "array_var", "name": "g", "type": "Char", "size": {"kind": "int", "value": 3},
		 "items": [{"kind": "char", "value": "b"}, {"kind": "char", "value": "'%n'"}]},
		{"kind": "if", "cond": {"kind": "compare", "op": "<", "left": {"kind": "ident", "name": "x"},
		 "right": {"kind": "float", "value": 2.5}},
		 "then": [{"kind": "break"}], "else": []},
		{"kind": "assign", "target": {"kind": "index", "name": "g", "index": {"kind": "int", "value": 0}},
		 "value": {"kind": "read_char"}},
		{"kind": "println", "args": [{"kind": "nary", "op": "min", "args": [
			{"kind": "ident", "name": "x"}, {"kind": "random"}, {"kind": "bool", "value": true}]}]}
	]}`
	program, err := Decode([]byte(src))
	require.NoError(t, err)
	require.Len(t, program.Body, 5)

	v, ok := program.Body[0].(*Var)
	require.True(t, ok)
	require.Equal(t, "x", v.Name)
	require.True(t, v.Type.Equal(types.Integer))
	require.Equal(t, &Int{Value: 5}, v.Value)

	arr, ok := program.Body[1].(*ArrayVar)
	require.True(t, ok)
	require.True(t, arr.Type.Equal(types.ArrayOf(types.Char)))
	require.Equal(t, []Expr{&Char{Value: 'b'}, &Char{Value: '\n'}}, arr.Items)

	cond, ok := program.Body[2].(*If)
	require.True(t, ok)
	require.NotNil(t, cond.Alternative)
	require.Empty(t, cond.Alternative.Body)
	require.Equal(t, "if (x < 2.5) { break } else {}", cond.String())

	assign, ok := program.Body[3].(*Assign)
	require.True(t, ok)
	require.Equal(t, "g[0] = read()", assign.String())

	p, ok := program.Body[4].(*Print)
	require.True(t, ok)
	require.True(t, p.Newline)
	require.Equal(t, "println(min(x, random(), true))", p.String())
}

func TestDecodeBareArray(t *testing.T) {
	program, err := Decode([]byte(`[{"kind": "print", "args": [{"kind": "int", "value": 1}]}]`))
	require.NoError(t, err)
	require.Equal(t, "print(1)", program.String())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains string
	}{
		{"not json", `{`, "decode program"},
		{"wrong root", `{"kind": "block"}`, "root kind"},
		{"bad type", `[{"kind": "var", "name": "x", "type": "Str"}]`, "unknown type name"},
		{"bad op", `[{"kind": "binary", "op": "**", "left": {"kind": "int", "value": 1}, "right": {"kind": "int", "value": 1}}]`, "unknown binary operator"},
		{"statement as expr", `[{"kind": "print", "args": [{"kind": "break"}]}]`, "body[0].args[0]: break is a statement"},
		{"assign to literal", `[{"kind": "assign", "target": {"kind": "int", "value": 1}, "value": {"kind": "int", "value": 2}}]`, "cannot assign"},
		{"missing operand", `[{"kind": "len"}]`, "body[0].operand: missing node"},
		{"int literal", `[{"kind": "int", "value": "one"}]`, "invalid int literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode([]byte(`[{"kind": "lambda"}]`))
	require.ErrorIs(t, err, errors.ErrUnsupportedNode)
	require.Equal(t, errors.E2006, errors.CodeOf(err))
}
