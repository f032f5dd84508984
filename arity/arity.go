// Package arity computes and restores the declared parameter count of
// JavaScript functions.
//
// A function's length property counts its parameters up to the first rest
// parameter or parameter with a default value. Rewriting a parameter list
// changes that count, and a Fixer puts it back.
package arity

import (
	"strings"

	"github.com/deepnoodle-ai/varmask/ast"
)

// Length returns the value of fn.length for the function's current
// parameter list.
func Length(tree *ast.Tree, fn ast.NodeID) int {
	n := 0
	for _, param := range tree.Node(fn).List {
		switch tree.Kind(param) {
		case ast.Rest, ast.AssignPattern:
			return n
		}
		n++
	}
	return n
}

// Fixer makes the observable length of fn equal to n.
type Fixer interface {
	SetLength(tree *ast.Tree, fn ast.NodeID, n int)
}

// FixerFunc adapts a function to a Fixer.
type FixerFunc func(tree *ast.Tree, fn ast.NodeID, n int)

// SetLength implements Fixer.
func (f FixerFunc) SetLength(tree *ast.Tree, fn ast.NodeID, n int) {
	f(tree, fn, n)
}

// Checker is implemented by fixers that can only patch some functions.
// CanSetLength must be asked before the function is changed.
type Checker interface {
	CanSetLength(tree *ast.Tree, fn ast.NodeID, n int) bool
}

// CanSetLength reports whether fixer can give fn the length n. Fixers that
// do not implement Checker are trusted to handle every function.
func CanSetLength(fixer Fixer, tree *ast.Tree, fn ast.NodeID, n int) bool {
	c, ok := fixer.(Checker)
	return !ok || c.CanSetLength(tree, fn, n)
}

// Noop leaves every function as it is.
var Noop Fixer = FixerFunc(func(*ast.Tree, ast.NodeID, int) {})

// Patch records a function whose length could not be restored.
type Patch struct {
	Func   ast.NodeID
	Length int
}

// DefineLength restores lengths with Object.defineProperty.
//
// A function declaration gets a statement in front of it in the enclosing
// statement list, which is valid because declarations are hoisted. A
// function or arrow expression is wrapped in the defineProperty call, which
// returns its first argument. Wrapping takes the expression out of the
// position that named it (var f = function () {}), so the inferred name is
// defined along with the length. Methods have no position for either form:
// CanSetLength reports false for them and SetLength records them in
// Unpatched. A length of zero needs no patch.
type DefineLength struct {
	unpatched []Patch
}

var _ Checker = (*DefineLength)(nil)

// NewDefineLength returns a DefineLength fixer.
func NewDefineLength() *DefineLength {
	return &DefineLength{}
}

// CanSetLength implements Checker.
func (d *DefineLength) CanSetLength(tree *ast.Tree, fn ast.NodeID, n int) bool {
	if n == 0 {
		return true
	}
	node := tree.Node(fn)
	parent := tree.Parent(fn)
	switch {
	case node.Kind == ast.FuncDecl:
		return node.X != ast.NoNode && tree.IndexInList(fn) >= 0
	case isMethodValue(tree, parent):
		return false
	case node.Kind == ast.FuncExpr || node.Kind == ast.Arrow:
		return parent != ast.NoNode
	}
	return false
}

// SetLength implements Fixer.
func (d *DefineLength) SetLength(tree *ast.Tree, fn ast.NodeID, n int) {
	if n == 0 {
		return
	}
	if !d.CanSetLength(tree, fn, n) {
		d.unpatched = append(d.unpatched, Patch{Func: fn, Length: n})
		return
	}
	node := tree.Node(fn)
	if node.Kind == ast.FuncDecl {
		name := tree.Node(node.X).Text
		call := defineLength(tree, tree.Ident(name), n)
		tree.InsertList(tree.Parent(fn), tree.IndexInList(fn), tree.ExprStmt(call))
		return
	}
	name := InferredName(tree, fn)
	hole := tree.Empty()
	tree.Replace(fn, hole)
	if name == "" {
		tree.Replace(hole, defineLength(tree, fn, n))
		return
	}
	tree.Replace(hole, defineLengthAndName(tree, fn, n, name))
}

// Unpatched returns the functions SetLength could not patch, in call order.
func (d *DefineLength) Unpatched() []Patch {
	return d.unpatched
}

func isMethodValue(tree *ast.Tree, parent ast.NodeID) bool {
	switch tree.Kind(parent) {
	case ast.Method:
		return true
	case ast.Property:
		return tree.Node(parent).Text != "init"
	}
	return false
}

// InferredName returns the name JavaScript gives an anonymous function or
// arrow from the position it is written in: the variable it initialises,
// the identifier it is assigned to, the default of a named binding, or the
// key of the property it is the value of. Computed keys, numeric keys and
// keys with escapes return "".
func InferredName(tree *ast.Tree, fn ast.NodeID) string {
	node := tree.Node(fn)
	if node.Kind == ast.FuncExpr && node.X != ast.NoNode {
		return ""
	}
	parent := tree.Node(tree.Parent(fn))
	switch parent.Kind {
	case ast.Declarator, ast.AssignPattern:
		if parent.Y == fn && tree.Kind(parent.X) == ast.Ident {
			return tree.Node(parent.X).Text
		}
	case ast.Assign:
		if parent.Text == "=" && parent.Y == fn && tree.Kind(parent.X) == ast.Ident {
			return tree.Node(parent.X).Text
		}
	case ast.Property:
		if parent.Text != "init" || parent.Y != fn || parent.Flags.Has(ast.FlagComputed) {
			return ""
		}
		key := tree.Node(parent.X)
		switch key.Kind {
		case ast.Ident:
			return key.Text
		case ast.String:
			text := key.Text
			if len(text) >= 2 && !strings.ContainsRune(text, '\\') {
				return text[1 : len(text)-1]
			}
		}
	}
	return ""
}

// defineLength builds Object.defineProperty(target, "length", {value: n, configurable: true}).
func defineLength(tree *ast.Tree, target ast.NodeID, n int) ast.NodeID {
	desc := tree.Object(
		tree.Property(tree.Ident("value"), tree.Number(n)),
		tree.Property(tree.Ident("configurable"), tree.Literal("true")),
	)
	callee := tree.Member(tree.Ident("Object"), "defineProperty", false)
	return tree.Call(callee, target, tree.StringLit("length"), desc)
}

// defineLengthAndName builds Object.defineProperties(target, {length: ..., name: ...}).
func defineLengthAndName(tree *ast.Tree, target ast.NodeID, n int, name string) ast.NodeID {
	desc := tree.Object(
		tree.Property(tree.Ident("length"), tree.Object(
			tree.Property(tree.Ident("value"), tree.Number(n)),
			tree.Property(tree.Ident("configurable"), tree.Literal("true")),
		)),
		tree.Property(tree.Ident("name"), tree.Object(
			tree.Property(tree.Ident("value"), tree.StringLit(name)),
			tree.Property(tree.Ident("configurable"), tree.Literal("true")),
		)),
	)
	callee := tree.Member(tree.Ident("Object"), "defineProperties", false)
	return tree.Call(callee, target, desc)
}
