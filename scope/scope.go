// Package scope builds a symbol table for a JavaScript syntax tree.
//
// A Table records every scope in the tree, the bindings declared in each
// scope, and for every identifier occurrence the binding it resolves to.
// Occurrences are split into declaration sites, writes (assignment, update
// and loop targets) and plain references.
//
// Function bodies share the scope of their function, var declarations
// hoist to the nearest function scope, and let, const and class
// declarations are scoped to the enclosing block.
package scope

import (
	"fmt"
	"sort"

	"github.com/deepnoodle-ai/varmask/ast"
)

// Kind identifies what introduced a scope.
type Kind int

const (
	Global Kind = iota
	Function
	Block
	Catch
	Class
	// FunctionName holds the name of a named function expression, which is
	// visible only inside the function.
	FunctionName
)

func (k Kind) String() string {
	switch k {
	case Global:
		return "global"
	case Function:
		return "function"
	case Block:
		return "block"
	case Catch:
		return "catch"
	case Class:
		return "class"
	case FunctionName:
		return "function-name"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// BindingKind identifies how a binding was declared.
type BindingKind int

const (
	Param BindingKind = iota
	Var
	Let
	Const
	FuncDecl
	ClassDecl
	CatchParam
	FuncName
)

var bindingKindNames = [...]string{
	Param:      "param",
	Var:        "var",
	Let:        "let",
	Const:      "const",
	FuncDecl:   "function",
	ClassDecl:  "class",
	CatchParam: "catch",
	FuncName:   "function-name",
}

func (k BindingKind) String() string {
	if int(k) < len(bindingKindNames) {
		return bindingKindNames[k]
	}
	return fmt.Sprintf("BindingKind(%d)", int(k))
}

// Binding is a name declared in a scope together with all of its
// occurrences. Each slice holds Ident node IDs in source order.
type Binding struct {
	Name  string
	Kind  BindingKind
	Scope *Scope
	// Decls are the identifiers that declare the binding: parameters,
	// declarator targets, function and class names.
	Decls []ast.NodeID
	// Refs are identifiers that read the binding.
	Refs []ast.NodeID
	// Writes are identifiers that are assigned without declaring: the
	// targets of assignments, updates and for-in/for-of heads.
	Writes []ast.NodeID
}

// Scope is a region of the tree in which names are declared.
type Scope struct {
	id       string
	Kind     Kind
	Parent   *Scope
	Children []*Scope
	// Node is the node that introduced the scope, or the Program node for
	// the global scope.
	Node     ast.NodeID
	Bindings map[string]*Binding
}

func newScope(kind Kind, parent *Scope, node ast.NodeID) *Scope {
	s := &Scope{
		Kind:     kind,
		Parent:   parent,
		Node:     node,
		Bindings: map[string]*Binding{},
	}
	if parent == nil {
		s.id = "0"
	} else {
		s.id = fmt.Sprintf("%s.%d", parent.id, len(parent.Children))
		parent.Children = append(parent.Children, s)
	}
	return s
}

// ID returns a path-like identifier such as "0.2.1", unique within a table.
func (s *Scope) ID() string {
	return s.id
}

// Own returns the binding declared directly in this scope.
func (s *Scope) Own(name string) (*Binding, bool) {
	b, ok := s.Bindings[name]
	return b, ok
}

// Lookup resolves a name in this scope or the nearest enclosing scope that
// declares it.
func (s *Scope) Lookup(name string) (*Binding, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.Bindings[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// Function returns the nearest function scope, or the global scope.
func (s *Scope) Function() *Scope {
	cur := s
	for cur.Kind != Function && cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Names returns the names declared in this scope, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.Bindings))
	for name := range s.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table is the symbol table of one tree.
type Table struct {
	tree *ast.Tree
	// Root is the global scope.
	Root *Scope
	// scopes maps scope-introducing nodes to their scope. Functions map to
	// their function scope.
	scopes   map[ast.NodeID]*Scope
	resolved map[ast.NodeID]*Binding
	globals  map[string][]ast.NodeID
	// names counts every declared or referenced name, including bindings
	// that have since been removed.
	names map[string]int
}

// Tree returns the tree the table was built from.
func (t *Table) Tree() *ast.Tree {
	return t.tree
}

// Resolve returns the binding an identifier occurrence refers to, or nil
// when the identifier is not a variable reference or refers to an
// undeclared global.
func (t *Table) Resolve(ident ast.NodeID) *Binding {
	return t.resolved[ident]
}

// ScopeOf returns the scope introduced by a function, block, loop, catch,
// switch or class node.
func (t *Table) ScopeOf(node ast.NodeID) (*Scope, bool) {
	s, ok := t.scopes[node]
	return s, ok
}

// ScopeAt returns the innermost scope that contains the node.
func (t *Table) ScopeAt(node ast.NodeID) *Scope {
	for id := node; id != ast.NoNode; id = t.tree.Parent(id) {
		if s, ok := t.scopes[id]; ok {
			return s
		}
	}
	return t.Root
}

// IsGlobal reports whether the identifier refers to an undeclared global.
func (t *Table) IsGlobal(ident ast.NodeID) bool {
	n := t.tree.Node(ident)
	for _, id := range t.globals[n.Text] {
		if id == ident {
			return true
		}
	}
	return false
}

// Globals returns the names referenced but never declared, sorted.
func (t *Table) Globals() []string {
	names := make([]string, 0, len(t.globals))
	for name := range t.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Used reports whether the name is declared anywhere in the tree or
// referenced as a global. Names of removed bindings remain used.
func (t *Table) Used(name string) bool {
	return t.names[name] > 0
}

// Declare adds a binding for a new declaration site to a scope. If the
// scope already declares the name, the site is added to that binding.
func (t *Table) Declare(s *Scope, name string, kind BindingKind, ident ast.NodeID) *Binding {
	b, ok := s.Bindings[name]
	if !ok {
		b = &Binding{Name: name, Kind: kind, Scope: s}
		s.Bindings[name] = b
	}
	if ident != ast.NoNode {
		b.Decls = append(b.Decls, ident)
		t.resolved[ident] = b
	}
	t.names[name]++
	return b
}

// Remove deletes a binding from its scope. Its occurrences no longer
// resolve.
func (t *Table) Remove(b *Binding) {
	if cur, ok := b.Scope.Bindings[b.Name]; ok && cur == b {
		delete(b.Scope.Bindings, b.Name)
	}
	for _, list := range [][]ast.NodeID{b.Decls, b.Refs, b.Writes} {
		for _, id := range list {
			if t.resolved[id] == b {
				delete(t.resolved, id)
			}
		}
	}
}

// Occurrences returns every identifier of the binding in source order.
func (b *Binding) Occurrences() []ast.NodeID {
	all := make([]ast.NodeID, 0, len(b.Decls)+len(b.Refs)+len(b.Writes))
	all = append(all, b.Decls...)
	all = append(all, b.Refs...)
	all = append(all, b.Writes...)
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}
