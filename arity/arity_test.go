package arity

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/parser"
	"github.com/deepnoodle-ai/varmask/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tree, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	return tree
}

func functions(tree *ast.Tree) []ast.NodeID {
	var out []ast.NodeID
	for id := range ast.Preorder(tree, tree.Root) {
		if tree.Kind(id).IsFunction() {
			out = append(out, id)
		}
	}
	return out
}

func TestLength(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"function f() {}", 0},
		{"function f(a, b, c) {}", 3},
		{"function f(a, b = 1, c) {}", 1},
		{"function f(a, ...rest) {}", 1},
		{"function f({a}, [b]) {}", 2},
		{"(a, b) => a", 2},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree := parse(t, tt.src)
			assert.Equal(t, tt.want, Length(tree, functions(tree)[0]))
		})
	}
}

func TestDefineLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "declaration",
			input: "x(); function f() {}",
			want: "x();\n" +
				"Object.defineProperty(f, \"length\", { value: 2, configurable: true });\n" +
				"function f() {}\n",
		},
		{
			name:  "nested declaration",
			input: "function outer() { if (a) { function f() {} } }",
			want: "function outer() {\n  if (a) {\n" +
				"    Object.defineProperty(f, \"length\", { value: 2, configurable: true });\n" +
				"    function f() {}\n  }\n}\n",
		},
		{
			name:  "expression",
			input: "var f = function () {};",
			want: "var f = Object.defineProperties(function() {}, " +
				"{ length: { value: 2, configurable: true }, name: { value: \"f\", configurable: true } });\n",
		},
		{
			name:  "named expression",
			input: "var f = function g() {};",
			want:  "var f = Object.defineProperty(function g() {}, \"length\", { value: 2, configurable: true });\n",
		},
		{
			name:  "assigned arrow",
			input: "h = () => 1;",
			want: "h = Object.defineProperties(() => 1, " +
				"{ length: { value: 2, configurable: true }, name: { value: \"h\", configurable: true } });\n",
		},
		{
			name:  "property value",
			input: "o = { \"run\": function () {} };",
			want: "o = { \"run\": Object.defineProperties(function() {}, " +
				"{ length: { value: 2, configurable: true }, name: { value: \"run\", configurable: true } }) };\n",
		},
		{
			name:  "arrow argument",
			input: "g(() => 1);",
			want:  "g(Object.defineProperty(() => 1, \"length\", { value: 2, configurable: true }));\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.input)
			fns := functions(tree)
			fixer := NewDefineLength()
			fixer.SetLength(tree, fns[len(fns)-1], 2)
			assert.Equal(t, tt.want, printer.Print(tree))
			assert.Empty(t, fixer.Unpatched())
		})
	}
}

func TestDefineLengthMethods(t *testing.T) {
	tree := parse(t, "o = { m() {} }; class A { n() {} }")
	before := printer.Print(tree)
	fixer := NewDefineLength()
	fns := functions(tree)
	require.Len(t, fns, 2)
	for _, fn := range fns {
		fixer.SetLength(tree, fn, 1)
	}
	assert.Equal(t, before, printer.Print(tree))
	assert.Equal(t, []Patch{{Func: fns[0], Length: 1}, {Func: fns[1], Length: 1}}, fixer.Unpatched())
}

func TestCanSetLength(t *testing.T) {
	tests := []struct {
		src  string
		n    int
		want bool
	}{
		{"function f() {}", 1, true},
		{"var f = function () {};", 1, true},
		{"g(() => 1);", 1, true},
		{"o = { m() {} };", 1, false},
		{"o = { m() {} };", 0, true},
		{"class A { n() {} }", 2, false},
		{"o = { m: function () {} };", 1, true},
	}
	fixer := NewDefineLength()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree := parse(t, tt.src)
			fn := functions(tree)[0]
			assert.Equal(t, tt.want, fixer.CanSetLength(tree, fn, tt.n))
			assert.Equal(t, tt.want, CanSetLength(fixer, tree, fn, tt.n))
		})
	}
	tree := parse(t, "o = { m() {} };")
	assert.True(t, CanSetLength(Noop, tree, functions(tree)[0], 1))
}

func TestInferredName(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"var f = function () {};", "f"},
		{"let f = (a) => a;", "f"},
		{"f = function () {};", "f"},
		{"f += function () {};", ""},
		{"o.f = function () {};", ""},
		{"var f = function g() {};", ""},
		{"o = { k: () => 1 };", "k"},
		{"o = { 'k': () => 1 };", "k"},
		{"o = { [k]: () => 1 };", ""},
		{"o = { 1: () => 1 };", ""},
		{"function f(cb = function () {}) {}", "cb"},
		{"g(function () {});", ""},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree := parse(t, tt.src)
			fns := functions(tree)
			assert.Equal(t, tt.want, InferredName(tree, fns[len(fns)-1]))
		})
	}
}

func TestDefineLengthZero(t *testing.T) {
	tree := parse(t, "var f = function () {};")
	before := printer.Print(tree)
	NewDefineLength().SetLength(tree, functions(tree)[0], 0)
	assert.Equal(t, before, printer.Print(tree))
}

func TestNoop(t *testing.T) {
	tree := parse(t, "function f() {}")
	Noop.SetLength(tree, functions(tree)[0], 3)
	assert.Equal(t, "function f() {}\n", printer.Print(tree))
}
