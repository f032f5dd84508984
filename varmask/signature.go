package varmask

import (
	"github.com/deepnoodle-ai/varmask/arity"
	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/scope"
)

// rewriteSignature replaces the parameter list of fn with ...stack and
// registers the stack as the only parameter of the function scope.
//
// When the stack holds slots beyond the parameters, extra call arguments
// would otherwise show through as the initial values of those slots, so
// the body starts by truncating the array to the parameter count.
func rewriteSignature(tree *ast.Tree, table *scope.Table, fn ast.NodeID, stack string, params, slots int) {
	fs, _ := table.ScopeOf(fn)
	ident := tree.Ident(stack)
	tree.SetList(fn, []ast.NodeID{tree.Rest(ident)})
	table.Declare(fs, stack, scope.Param, ident)

	n := tree.Node(fn)
	if slots <= params || n.Flags.Has(ast.FlagExprBody) {
		return
	}
	length := tree.Member(tree.Ident(stack), "length", false)
	prologue := tree.ExprStmt(tree.Assign(length, tree.Number(params)))
	tree.InsertList(n.Y, directiveCount(tree, n.Y), prologue)
}

func directiveCount(tree *ast.Tree, body ast.NodeID) int {
	count := 0
	for _, stmt := range tree.Node(body).List {
		if !tree.Node(stmt).Flags.Has(ast.FlagDirective) {
			break
		}
		count++
	}
	return count
}

// restoreArity asks the fixer to report the captured length again.
func restoreArity(tree *ast.Tree, fixer arity.Fixer, fn ast.NodeID, length int) {
	if fixer == nil {
		return
	}
	fixer.SetLength(tree, fn, length)
}
