package syntax

import (
	"github.com/deepnoodle-ai/varmask/ast"
)

// TreeValidator checks the structural invariants that passes rely on after
// splicing nodes into a tree.
type TreeValidator struct {
	// Forbidden lists identifier names that must not appear anywhere in
	// the reachable tree, such as names a pass promised to remove.
	Forbidden map[string]bool
}

// NewTreeValidator returns a validator that rejects the given names.
func NewTreeValidator(forbidden ...string) *TreeValidator {
	v := &TreeValidator{Forbidden: map[string]bool{}}
	for _, name := range forbidden {
		v.Forbidden[name] = true
	}
	return v
}

// Validate walks every node reachable from the root.
func (v *TreeValidator) Validate(tree *ast.Tree) []ValidationError {
	var errors []ValidationError
	if tree.Root == ast.NoNode {
		return nil
	}
	if tree.Parent(tree.Root) != ast.NoNode {
		errors = append(errors, *v.fail(tree, tree.Root, "root has a parent"))
	}
	for id := range ast.Preorder(tree, tree.Root) {
		if err := v.checkNode(tree, id); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

func (v *TreeValidator) checkNode(tree *ast.Tree, id ast.NodeID) *ValidationError {
	n := tree.Node(id)
	for _, child := range tree.Children(id) {
		if tree.Parent(child) != id {
			return v.fail(tree, child, "child of "+n.Kind.String()+" has a stale parent link")
		}
	}

	switch n.Kind {
	case ast.Ident:
		if n.Text == "" {
			return v.fail(tree, id, "identifier without a name")
		}
		if v.Forbidden[n.Text] {
			return v.fail(tree, id, "identifier "+n.Text+" must not appear")
		}

	case ast.FuncDecl:
		if n.X == ast.NoNode {
			return v.fail(tree, id, "function declaration without a name")
		}

	case ast.Rest:
		p := tree.Parent(id)
		if p != ast.NoNode && tree.Kind(p).IsFunction() {
			list := tree.Node(p).List
			if list[len(list)-1] != id {
				return v.fail(tree, id, "rest parameter must be last")
			}
		}

	case ast.ExprStmt, ast.Throw:
		if n.X == ast.NoNode {
			return v.fail(tree, id, n.Kind.String()+" without an expression")
		}

	case ast.Assign:
		if !assignable(tree, n.X, n.Text == "=") {
			return v.fail(tree, id, "invalid assignment target")
		}

	case ast.Update:
		if !assignable(tree, n.X, false) {
			return v.fail(tree, id, "invalid update target")
		}

	case ast.ForIn, ast.ForOf:
		if tree.Kind(n.X) != ast.VarDecl && !assignable(tree, n.X, true) {
			return v.fail(tree, id, "invalid loop target")
		}
	}
	return nil
}

// assignable reports whether a node may appear on the left of an
// assignment. Patterns are only allowed for plain assignment.
func assignable(tree *ast.Tree, id ast.NodeID, patterns bool) bool {
	switch tree.Kind(id) {
	case ast.Ident, ast.Member, ast.Index:
		return !tree.Node(id).Flags.Has(ast.FlagOptional)
	case ast.ObjectPattern, ast.ArrayPattern:
		return patterns
	}
	return false
}

func (v *TreeValidator) fail(tree *ast.Tree, id ast.NodeID, msg string) *ValidationError {
	return &ValidationError{Message: msg, Node: id, Position: tree.Node(id).Pos}
}
