package varmask

import (
	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/scope"
)

// rewriter replaces the occurrences of relocated bindings with accesses to
// the stack array of one function.
type rewriter struct {
	tree  *ast.Tree
	fn    ast.NodeID
	stack string
	// skipped counts occurrences whose container was already detached.
	skipped int
}

// slot builds the template stack[index] that every rewrite clones.
func (r *rewriter) slot(index int) ast.NodeID {
	return r.tree.Index(r.tree.Ident(r.stack), r.tree.Number(index))
}

// rewrite moves every occurrence of b to the slot with the given index.
func (r *rewriter) rewrite(b *scope.Binding, index int) {
	template := r.slot(index)
	for _, id := range b.Refs {
		if !r.tree.Attached(id) {
			r.skipped++
			continue
		}
		r.rewriteRead(id, template)
	}
	for _, id := range b.Decls {
		if r.tree.Parent(id) == r.fn {
			// Parameters are replaced with the signature.
			continue
		}
		if !r.tree.Attached(id) {
			r.skipped++
			continue
		}
		r.rewriteDecl(id, template)
	}
	for _, id := range b.Writes {
		if !r.tree.Attached(id) {
			r.skipped++
			continue
		}
		r.replace(id, r.tree.Clone(template))
	}
}

// rewriteRead replaces a read. A bare call through the name becomes a call
// through Function.prototype.call with an undefined receiver, which is what
// the original call passed; calling stack[i]() directly would pass the
// array.
func (r *rewriter) rewriteRead(id, template ast.NodeID) {
	t := r.tree
	parent := t.Parent(id)
	call := t.Node(parent)
	if call.Kind != ast.Call || call.X != id {
		r.replace(id, t.Clone(template))
		return
	}
	callee := t.Member(t.Clone(template), "call", call.Flags.Has(ast.FlagOptional))
	args := append([]ast.NodeID{t.Undefined()}, call.List...)
	repl := t.Call(callee, args...)
	t.Node(repl).Pos = call.Pos
	t.Replace(parent, repl)
}

// rewriteDecl turns the declaration that introduces id into an assignment
// to the slot.
func (r *rewriter) rewriteDecl(id, template ast.NodeID) {
	t := r.tree
	declarator := t.Parent(id)
	decl := t.Parent(declarator)
	init := t.Node(declarator).Y
	holder := t.Node(t.Parent(decl))

	switch {
	case (holder.Kind == ast.ForIn || holder.Kind == ast.ForOf) && holder.X == decl:
		// The loop assigns the target on every iteration.
		t.Replace(decl, t.Clone(template))

	case holder.Kind == ast.For && holder.X == decl:
		if init == ast.NoNode {
			t.Replace(decl, ast.NoNode)
			return
		}
		t.Replace(decl, t.Assign(t.Clone(template), r.detach(init)))

	case init != ast.NoNode:
		stmt := t.ExprStmt(t.Assign(t.Clone(template), r.detach(init)))
		t.Node(stmt).Pos = t.Node(decl).Pos
		t.Replace(decl, stmt)

	case t.Node(decl).Text == "var":
		// var x; does not reset x, whether x is a parameter or a variable
		// already assigned on an earlier loop iteration.
		t.Replace(decl, t.Empty())

	default:
		t.Replace(decl, t.ExprStmt(t.Assign(t.Clone(template), t.Undefined())))
	}
}

// detach unlinks a node from its parent so it can be adopted elsewhere.
func (r *rewriter) detach(id ast.NodeID) ast.NodeID {
	hole := r.tree.Empty()
	r.tree.Replace(id, hole)
	return id
}

// replace substitutes an identifier occurrence. A shorthand property whose
// value is replaced keeps its key and prints in the long form.
func (r *rewriter) replace(id, repl ast.NodeID) {
	t := r.tree
	t.Node(repl).Pos = t.Node(id).Pos
	if p := t.Node(t.Parent(id)); p.Kind == ast.Property && p.Y == id {
		p.Flags &^= ast.FlagShorthand
	}
	t.Replace(id, repl)
}
