// Package ast defines the abstract syntax tree used to represent JavaScript
// programs.
//
// Nodes live in an arena owned by a Tree and are addressed by NodeID. Every
// node records its parent, so replacing a node only overwrites one child slot
// of the parent. A node that has been replaced is detached: its Parent is
// cleared and it is no longer reachable from the root.
package ast

import (
	"fmt"

	"github.com/deepnoodle-ai/varmask/internal/token"
)

// NodeID addresses a node within a Tree.
type NodeID uint32

// NoNode is the zero NodeID. It is used for absent children, such as a
// missing initializer or an anonymous function name.
const NoNode NodeID = 0

// Flags carry boolean node attributes.
type Flags uint32

const (
	FlagAsync     Flags = 1 << iota // async function
	FlagGenerator                   // generator function
	FlagExprBody                    // arrow function with an expression body
	FlagComputed                    // computed property key: [expr]
	FlagShorthand                   // shorthand property: {a}
	FlagStatic                      // static class member
	FlagPrefix                      // prefix update: ++x
	FlagOptional                    // optional chain link: a?.b, f?.()
	FlagUnsafe                      // function must not be transformed
	FlagDirective                   // expression statement in a directive prologue
	FlagDelegate                    // yield*
)

// Has reports whether all of the given flags are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

var flagNames = []string{
	"async", "generator", "exprbody", "computed", "shorthand", "static",
	"prefix", "optional", "unsafe", "directive", "delegate",
}

func (f Flags) String() string {
	s := ""
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			if s != "" {
				s += ","
			}
			s += name
		}
	}
	return s
}

// Node is one element of the syntax tree. The meaning of the role children
// X, Y, Z and W and of List depends on Kind and is documented on each Kind
// constant.
type Node struct {
	Kind   Kind
	Flags  Flags
	Parent NodeID
	Pos    token.Position
	Text   string // identifier name, literal source, operator or keyword
	X      NodeID
	Y      NodeID
	Z      NodeID
	W      NodeID
	List   []NodeID
}

// Tree is an arena of nodes. Nodes[0] is reserved so that NoNode never
// refers to a real node.
type Tree struct {
	Nodes []*Node
	Root  NodeID
	File  string
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{Nodes: []*Node{{Kind: Invalid}}}
}

// Len returns the number of nodes allocated in the arena, including
// detached nodes.
func (t *Tree) Len() int {
	return len(t.Nodes) - 1
}

// Node returns the node with the given ID. The returned pointer stays valid
// for the lifetime of the tree.
func (t *Tree) Node(id NodeID) *Node {
	return t.Nodes[id]
}

// Kind returns the kind of the given node, or Invalid for NoNode.
func (t *Tree) Kind(id NodeID) Kind {
	if id == NoNode {
		return Invalid
	}
	return t.Nodes[id].Kind
}

// Parent returns the parent of the given node.
func (t *Tree) Parent(id NodeID) NodeID {
	if id == NoNode {
		return NoNode
	}
	return t.Nodes[id].Parent
}

// Add appends a node to the arena and adopts its children.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.Nodes))
	node := n
	t.Nodes = append(t.Nodes, &node)
	for _, child := range t.Children(id) {
		t.Nodes[child].Parent = id
	}
	return id
}

// SetRoot makes the given node the root of the tree.
func (t *Tree) SetRoot(id NodeID) {
	t.Root = id
	t.Nodes[id].Parent = NoNode
}

// Replace puts newID in the parent slot currently occupied by old. The old
// node is detached. Replace reports false if old is not attached to a
// parent and is not the root.
func (t *Tree) Replace(old, newID NodeID) bool {
	if old == NoNode || old == newID {
		return false
	}
	if old == t.Root {
		t.Root = newID
		t.Nodes[old].Parent = NoNode
		if newID != NoNode {
			t.Nodes[newID].Parent = NoNode
		}
		return true
	}
	parent := t.Nodes[old].Parent
	if parent == NoNode {
		return false
	}
	p := t.Nodes[parent]
	found := false
	switch old {
	case p.X:
		p.X = newID
		found = true
	case p.Y:
		p.Y = newID
		found = true
	case p.Z:
		p.Z = newID
		found = true
	case p.W:
		p.W = newID
		found = true
	default:
		for i, child := range p.List {
			if child == old {
				p.List[i] = newID
				found = true
				break
			}
		}
	}
	if !found {
		return false
	}
	t.Nodes[old].Parent = NoNode
	if newID != NoNode {
		t.Nodes[newID].Parent = parent
	}
	return true
}

// SetList replaces the list children of a node. Previous list children that
// are not part of the new list are detached.
func (t *Tree) SetList(id NodeID, list []NodeID) {
	n := t.Nodes[id]
	for _, old := range n.List {
		if old != NoNode {
			t.Nodes[old].Parent = NoNode
		}
	}
	n.List = list
	for _, child := range list {
		if child != NoNode {
			t.Nodes[child].Parent = id
		}
	}
}

// InsertList inserts nodes into the list of id at the given index.
func (t *Tree) InsertList(id NodeID, index int, nodes ...NodeID) {
	n := t.Nodes[id]
	if index < 0 || index > len(n.List) {
		panic(fmt.Sprintf("ast: list index %d out of range [0, %d]", index, len(n.List)))
	}
	list := make([]NodeID, 0, len(n.List)+len(nodes))
	list = append(list, n.List[:index]...)
	list = append(list, nodes...)
	list = append(list, n.List[index:]...)
	n.List = list
	for _, child := range nodes {
		t.Nodes[child].Parent = id
	}
}

// IndexInList returns the position of child within the list of its parent,
// or -1 if the child is held in a role slot or is detached.
func (t *Tree) IndexInList(child NodeID) int {
	parent := t.Parent(child)
	if parent == NoNode {
		return -1
	}
	for i, id := range t.Nodes[parent].List {
		if id == child {
			return i
		}
	}
	return -1
}

// Attached reports whether the node is reachable from the root of the tree.
func (t *Tree) Attached(id NodeID) bool {
	for id != NoNode {
		if id == t.Root {
			return true
		}
		parent := t.Nodes[id].Parent
		if parent == NoNode || !t.holds(parent, id) {
			return false
		}
		id = parent
	}
	return false
}

func (t *Tree) holds(parent, child NodeID) bool {
	for _, c := range t.Children(parent) {
		if c == child {
			return true
		}
	}
	return false
}

// Clone makes a deep copy of the subtree rooted at id. The copy is detached.
func (t *Tree) Clone(id NodeID) NodeID {
	if id == NoNode {
		return NoNode
	}
	src := *t.Nodes[id]
	n := src
	n.Parent = NoNode
	n.X = t.Clone(src.X)
	n.Y = t.Clone(src.Y)
	n.Z = t.Clone(src.Z)
	n.W = t.Clone(src.W)
	if src.List != nil {
		n.List = make([]NodeID, len(src.List))
		for i, child := range src.List {
			n.List[i] = t.Clone(child)
		}
	}
	return t.Add(n)
}

// Children returns the non-empty children of a node in source order.
func (t *Tree) Children(id NodeID) []NodeID {
	if id == NoNode {
		return nil
	}
	n := t.Nodes[id]
	var out []NodeID
	add := func(ids ...NodeID) {
		for _, c := range ids {
			if c != NoNode {
				out = append(out, c)
			}
		}
	}
	switch n.Kind {
	case FuncDecl, FuncExpr, Arrow:
		add(n.X)
		add(n.List...)
		add(n.Y)
	case DoWhile:
		add(n.W, n.X)
	default:
		add(n.X, n.Y, n.Z, n.W)
		add(n.List...)
	}
	return out
}

// Enclosing returns the nearest ancestor of id (excluding id itself) for
// which match returns true, or NoNode.
func (t *Tree) Enclosing(id NodeID, match func(*Node) bool) NodeID {
	for p := t.Parent(id); p != NoNode; p = t.Nodes[p].Parent {
		if match(t.Nodes[p]) {
			return p
		}
	}
	return NoNode
}

// EnclosingFunction returns the nearest function that contains id.
func (t *Tree) EnclosingFunction(id NodeID) NodeID {
	return t.Enclosing(id, func(n *Node) bool { return n.Kind.IsFunction() })
}
