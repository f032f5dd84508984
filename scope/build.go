package scope

import (
	"github.com/deepnoodle-ai/varmask/ast"
)

type role int

const (
	roleRef role = iota
	roleWrite
)

// occurrence is an identifier seen during the declaration pass. It is
// resolved once all declarations, including hoisted ones, are known.
type occurrence struct {
	ident ast.NodeID
	scope *Scope
	role  role
}

type builder struct {
	tree  *ast.Tree
	table *Table
	occs  []occurrence
}

// Build constructs the symbol table for the tree in one traversal followed
// by a resolution pass over the collected identifier occurrences.
func Build(tree *ast.Tree) *Table {
	t := &Table{
		tree:     tree,
		scopes:   map[ast.NodeID]*Scope{},
		resolved: map[ast.NodeID]*Binding{},
		globals:  map[string][]ast.NodeID{},
		names:    map[string]int{},
	}
	t.Root = newScope(Global, nil, tree.Root)
	if tree.Root == ast.NoNode {
		return t
	}
	t.scopes[tree.Root] = t.Root

	b := &builder{tree: tree, table: t}
	for _, stmt := range tree.Node(tree.Root).List {
		b.visit(stmt, t.Root)
	}
	b.resolve()
	return t
}

func (b *builder) resolve() {
	t := b.table
	for _, occ := range b.occs {
		name := b.tree.Node(occ.ident).Text
		binding, ok := occ.scope.Lookup(name)
		if !ok {
			t.globals[name] = append(t.globals[name], occ.ident)
			t.names[name]++
			continue
		}
		t.resolved[occ.ident] = binding
		if occ.role == roleWrite {
			binding.Writes = append(binding.Writes, occ.ident)
		} else {
			binding.Refs = append(binding.Refs, occ.ident)
		}
	}
}

func (b *builder) newScope(kind Kind, parent *Scope, node ast.NodeID) *Scope {
	s := newScope(kind, parent, node)
	b.table.scopes[node] = s
	return s
}

func (b *builder) ref(ident ast.NodeID, s *Scope) {
	b.occs = append(b.occs, occurrence{ident: ident, scope: s, role: roleRef})
}

func (b *builder) write(ident ast.NodeID, s *Scope) {
	b.occs = append(b.occs, occurrence{ident: ident, scope: s, role: roleWrite})
}

func (b *builder) visitAll(ids []ast.NodeID, s *Scope) {
	for _, id := range ids {
		b.visit(id, s)
	}
}

func (b *builder) visit(id ast.NodeID, s *Scope) {
	if id == ast.NoNode {
		return
	}
	n := b.tree.Node(id)
	switch n.Kind {
	case ast.Ident:
		b.ref(id, s)

	case ast.FuncDecl:
		if n.X != ast.NoNode {
			b.table.Declare(s, b.tree.Node(n.X).Text, FuncDecl, n.X)
		}
		b.function(id, s)

	case ast.FuncExpr:
		outer := s
		if n.X != ast.NoNode {
			outer = newScope(FunctionName, s, id)
			b.table.Declare(outer, b.tree.Node(n.X).Text, FuncName, n.X)
		}
		b.function(id, outer)

	case ast.Arrow:
		b.function(id, s)

	case ast.ClassDecl:
		if n.X != ast.NoNode {
			b.table.Declare(s, b.tree.Node(n.X).Text, ClassDecl, n.X)
		}
		b.class(n, b.newScope(Class, s, id))

	case ast.ClassExpr:
		cs := b.newScope(Class, s, id)
		if n.X != ast.NoNode {
			b.table.Declare(cs, b.tree.Node(n.X).Text, ClassDecl, n.X)
		}
		b.class(n, cs)

	case ast.VarDecl:
		b.varDecl(n, s)

	case ast.Block:
		b.visitAll(n.List, b.newScope(Block, s, id))

	case ast.For, ast.ForIn, ast.ForOf:
		ls := s
		if b.tree.Kind(n.X) == ast.VarDecl && b.tree.Node(n.X).Text != "var" {
			ls = b.newScope(Block, s, id)
		}
		if n.Kind != ast.For && b.tree.Kind(n.X) != ast.VarDecl {
			b.assignTarget(n.X, ls)
		} else {
			b.visit(n.X, ls)
		}
		b.visit(n.Y, ls)
		b.visit(n.Z, ls)
		b.visit(n.W, ls)

	case ast.Catch:
		cs := b.newScope(Catch, s, id)
		if n.X != ast.NoNode {
			b.bindingPattern(n.X, cs, CatchParam, cs)
		}
		b.visit(n.W, cs)

	case ast.Switch:
		b.visit(n.X, s)
		b.visitAll(n.List, b.newScope(Block, s, id))

	case ast.Assign:
		if n.Text == "=" {
			b.assignTarget(n.X, s)
		} else {
			b.simpleTarget(n.X, s)
		}
		b.visit(n.Y, s)

	case ast.Update:
		b.simpleTarget(n.X, s)

	case ast.Member:
		// The property name is not a variable.
		b.visit(n.X, s)

	case ast.Property, ast.Method:
		if n.Flags.Has(ast.FlagComputed) {
			b.visit(n.X, s)
		}
		b.visit(n.Y, s)

	default:
		for _, child := range b.tree.Children(id) {
			b.visit(child, s)
		}
	}
}

// function declares the parameters of a function in a new function scope
// and visits its body in that same scope.
func (b *builder) function(id ast.NodeID, s *Scope) {
	n := b.tree.Node(id)
	fs := b.newScope(Function, s, id)
	for _, param := range n.List {
		b.bindingPattern(param, fs, Param, fs)
	}
	if b.tree.Kind(n.Y) == ast.Block && !n.Flags.Has(ast.FlagExprBody) {
		b.table.scopes[n.Y] = fs
		b.visitAll(b.tree.Node(n.Y).List, fs)
		return
	}
	b.visit(n.Y, fs)
}

func (b *builder) class(n *ast.Node, cs *Scope) {
	// The superclass is evaluated outside the class body.
	b.visit(n.Y, cs.Parent)
	b.visitAll(n.List, cs)
}

func (b *builder) varDecl(n *ast.Node, s *Scope) {
	target, kind := s, Var
	switch n.Text {
	case "var":
		target = s.Function()
	case "let":
		kind = Let
	case "const":
		kind = Const
	}
	for _, d := range n.List {
		decl := b.tree.Node(d)
		b.bindingPattern(decl.X, target, kind, s)
		b.visit(decl.Y, s)
	}
}

// bindingPattern declares every identifier in a binding target. Default
// values and computed keys inside the pattern are visited as expressions
// in exprScope.
func (b *builder) bindingPattern(id ast.NodeID, declScope *Scope, kind BindingKind, exprScope *Scope) {
	if id == ast.NoNode {
		return
	}
	n := b.tree.Node(id)
	switch n.Kind {
	case ast.Ident:
		b.table.Declare(declScope, n.Text, kind, id)
	case ast.ArrayPattern:
		for _, el := range n.List {
			b.bindingPattern(el, declScope, kind, exprScope)
		}
	case ast.ObjectPattern:
		for _, prop := range n.List {
			pn := b.tree.Node(prop)
			if pn.Kind == ast.Rest {
				b.bindingPattern(pn.X, declScope, kind, exprScope)
				continue
			}
			if pn.Flags.Has(ast.FlagComputed) {
				b.visit(pn.X, exprScope)
			}
			b.bindingPattern(pn.Y, declScope, kind, exprScope)
		}
	case ast.AssignPattern:
		b.bindingPattern(n.X, declScope, kind, exprScope)
		b.visit(n.Y, exprScope)
	case ast.Rest:
		b.bindingPattern(n.X, declScope, kind, exprScope)
	default:
		b.visit(id, exprScope)
	}
}

// assignTarget records the identifiers written by a destructuring or plain
// assignment target. Member targets are ordinary expressions.
func (b *builder) assignTarget(id ast.NodeID, s *Scope) {
	if id == ast.NoNode {
		return
	}
	n := b.tree.Node(id)
	switch n.Kind {
	case ast.Ident:
		b.write(id, s)
	case ast.ArrayPattern:
		for _, el := range n.List {
			b.assignTarget(el, s)
		}
	case ast.ObjectPattern:
		for _, prop := range n.List {
			pn := b.tree.Node(prop)
			if pn.Kind == ast.Rest {
				b.assignTarget(pn.X, s)
				continue
			}
			if pn.Flags.Has(ast.FlagComputed) {
				b.visit(pn.X, s)
			}
			b.assignTarget(pn.Y, s)
		}
	case ast.AssignPattern:
		b.assignTarget(n.X, s)
		b.visit(n.Y, s)
	case ast.Rest:
		b.assignTarget(n.X, s)
	default:
		b.visit(id, s)
	}
}

// simpleTarget records the target of an update or compound assignment,
// which both reads and writes it. The occurrence is recorded as a write.
func (b *builder) simpleTarget(id ast.NodeID, s *Scope) {
	if b.tree.Kind(id) == ast.Ident {
		b.write(id, s)
		return
	}
	b.visit(id, s)
}
