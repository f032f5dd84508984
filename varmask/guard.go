package varmask

import (
	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/scope"
)

// Reason explains why a function or binding was left alone.
type Reason string

const (
	ReasonAccessor     Reason = "accessor"
	ReasonAsync        Reason = "async or generator"
	ReasonParams       Reason = "non-plain parameter"
	ReasonStrict       Reason = "strict mode"
	ReasonUnsafe       Reason = "marked unsafe"
	ReasonArity        Reason = "length cannot be restored"
	ReasonEval         Reason = "direct eval"
	ReasonArguments    Reason = "uses arguments"
	ReasonPolicy       Reason = "policy"
	ReasonNoBindings   Reason = "no qualifying bindings"
	ReasonParamPinned  Reason = "parameter cannot be relocated"
	ReasonPattern      Reason = "destructured"
	ReasonMultiDecl    Reason = "multiple declarators"
	ReasonFuncDecl     Reason = "function or class declaration"
	ReasonDelete       Reason = "operand of delete"
	ReasonShadowedDecl Reason = "declaration assigns a shadowing binding"
)

// rejectReason returns the first structural reason the function must not be
// transformed, or "" when it is eligible. The probability policy is
// consulted separately.
func rejectReason(tree *ast.Tree, table *scope.Table, fn ast.NodeID) Reason {
	n := tree.Node(fn)
	switch {
	case isAccessor(tree, fn):
		return ReasonAccessor
	case n.Flags.Has(ast.FlagAsync) || n.Flags.Has(ast.FlagGenerator):
		return ReasonAsync
	}
	for _, param := range n.List {
		if tree.Kind(param) != ast.Ident {
			return ReasonParams
		}
	}
	switch {
	case isStrict(tree, fn):
		return ReasonStrict
	case n.Flags.Has(ast.FlagUnsafe):
		return ReasonUnsafe
	case containsDirectEval(tree, table, fn):
		return ReasonEval
	case usesArguments(tree, table, fn):
		return ReasonArguments
	}
	return ""
}

func isAccessor(tree *ast.Tree, fn ast.NodeID) bool {
	parent := tree.Parent(fn)
	switch tree.Kind(parent) {
	case ast.Property, ast.Method:
		text := tree.Node(parent).Text
		return text == "get" || text == "set"
	}
	return false
}

// isStrict reports whether the function body runs in strict mode: it has a
// "use strict" directive, it is nested in a function or program that has
// one, or it is part of a class.
func isStrict(tree *ast.Tree, fn ast.NodeID) bool {
	for id := fn; id != ast.NoNode; id = tree.Parent(id) {
		n := tree.Node(id)
		switch {
		case n.Kind.IsClass():
			return true
		case n.Kind.IsFunction():
			if !n.Flags.Has(ast.FlagExprBody) && hasUseStrict(tree, n.Y) {
				return true
			}
		case n.Kind == ast.Program:
			return hasUseStrict(tree, id)
		}
	}
	return false
}

func hasUseStrict(tree *ast.Tree, body ast.NodeID) bool {
	if body == ast.NoNode {
		return false
	}
	for _, stmt := range tree.Node(body).List {
		s := tree.Node(stmt)
		if !s.Flags.Has(ast.FlagDirective) {
			return false
		}
		if text := tree.Node(s.X).Text; text == `"use strict"` || text == `'use strict'` {
			return true
		}
	}
	return false
}

// containsDirectEval reports whether a call to the global eval appears
// anywhere in the function, nested functions included: eval code can read
// every enclosing local by name.
func containsDirectEval(tree *ast.Tree, table *scope.Table, fn ast.NodeID) bool {
	found := false
	ast.Inspect(tree, fn, func(id ast.NodeID) bool {
		if found {
			return false
		}
		n := tree.Node(id)
		if n.Kind == ast.Call && tree.Kind(n.X) == ast.Ident {
			callee := tree.Node(n.X)
			if callee.Text == "eval" && table.Resolve(n.X) == nil {
				found = true
			}
		}
		return !found
	})
	return found
}

// usesArguments reports whether the function body refers to its own
// arguments object. Arrow functions share the object of their enclosing
// function, so their bodies are searched too.
func usesArguments(tree *ast.Tree, table *scope.Table, fn ast.NodeID) bool {
	found := false
	ast.Inspect(tree, fn, func(id ast.NodeID) bool {
		if found {
			return false
		}
		n := tree.Node(id)
		if id != fn && (n.Kind == ast.FuncDecl || n.Kind == ast.FuncExpr) {
			return false
		}
		if n.Kind == ast.Ident && n.Text == "arguments" && table.Resolve(id) == nil {
			found = true
		}
		return !found
	})
	return found
}

// functionName resolves the name a function is known by: its own name, the
// variable it initializes, the target it is assigned to, or its property
// key. Anonymous functions resolve to "".
func functionName(tree *ast.Tree, fn ast.NodeID) string {
	n := tree.Node(fn)
	if n.X != ast.NoNode && n.Kind != ast.Arrow {
		return tree.Node(n.X).Text
	}
	pid := tree.Parent(fn)
	if pid == ast.NoNode {
		return ""
	}
	parent := tree.Node(pid)
	switch parent.Kind {
	case ast.Declarator:
		if parent.Y == fn && tree.Kind(parent.X) == ast.Ident {
			return tree.Node(parent.X).Text
		}
	case ast.Assign:
		if parent.Y != fn {
			return ""
		}
		switch tree.Kind(parent.X) {
		case ast.Ident:
			return tree.Node(parent.X).Text
		case ast.Member:
			return tree.Node(tree.Node(parent.X).Y).Text
		}
	case ast.Property, ast.Method:
		if parent.Flags.Has(ast.FlagComputed) {
			return ""
		}
		return keyName(tree.Node(parent.X))
	}
	return ""
}

func keyName(key *ast.Node) string {
	switch key.Kind {
	case ast.Ident, ast.Number:
		return key.Text
	case ast.String:
		if len(key.Text) >= 2 {
			return key.Text[1 : len(key.Text)-1]
		}
	}
	return ""
}
