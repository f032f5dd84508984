package ast

import (
	"fmt"
	"iter"
	"strings"
)

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(t *Tree, id NodeID) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(t, id); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the children of the node.
func Walk(v Visitor, t *Tree, id NodeID) {
	if id == NoNode {
		return
	}
	if v = v.Visit(t, id); v == nil {
		return
	}
	for _, child := range t.Children(id) {
		Walk(v, t, child)
	}
}

// Inspect traverses an AST in depth-first order. It calls f(id) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// children of the node.
func Inspect(t *Tree, id NodeID, f func(NodeID) bool) {
	Walk(inspector(f), t, id)
}

type inspector func(NodeID) bool

func (f inspector) Visit(_ *Tree, id NodeID) Visitor {
	if f(id) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the subtree rooted at
// id in depth-first preorder.
func Preorder(t *Tree, root NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		var visit func(NodeID) bool
		visit = func(id NodeID) bool {
			if !yield(id) {
				return false
			}
			for _, child := range t.Children(id) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		if root != NoNode {
			visit(root)
		}
	}
}

// Postorder returns an iterator over all the nodes of the subtree rooted at
// id, yielding each node after its children.
func Postorder(t *Tree, root NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		var visit func(NodeID) bool
		visit = func(id NodeID) bool {
			for _, child := range t.Children(id) {
				if !visit(child) {
					return false
				}
			}
			return yield(id)
		}
		if root != NoNode {
			visit(root)
		}
	}
}

// Dump returns an indented outline of the subtree rooted at id, one node
// per line. It is meant for tests and debugging.
func Dump(t *Tree, id NodeID) string {
	var b strings.Builder
	var dump func(NodeID, int)
	dump = func(id NodeID, depth int) {
		n := t.Node(id)
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Kind.String())
		if n.Text != "" {
			fmt.Fprintf(&b, " %s", n.Text)
		}
		if n.Flags != 0 {
			fmt.Fprintf(&b, " [%s]", n.Flags)
		}
		b.WriteByte('\n')
		for _, child := range t.Children(id) {
			dump(child, depth+1)
		}
	}
	if id != NoNode {
		dump(id, 0)
	}
	return b.String()
}
