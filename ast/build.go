package ast

import "strconv"

// Builders for the node shapes that transforms splice into a tree. Each
// returns a detached node.

func (t *Tree) Ident(name string) NodeID {
	return t.Add(Node{Kind: Ident, Text: name})
}

func (t *Tree) Number(v int) NodeID {
	return t.Add(Node{Kind: Number, Text: strconv.Itoa(v)})
}

// StringLit builds a double-quoted string literal.
func (t *Tree) StringLit(s string) NodeID {
	return t.Add(Node{Kind: String, Text: strconv.Quote(s)})
}

// Undefined builds void 0, which cannot be shadowed the way the
// identifier undefined can.
func (t *Tree) Undefined() NodeID {
	return t.Unary("void", t.Number(0))
}

func (t *Tree) Unary(op string, x NodeID) NodeID {
	return t.Add(Node{Kind: Unary, Text: op, X: x})
}

// Index builds obj[prop].
func (t *Tree) Index(obj, prop NodeID) NodeID {
	return t.Add(Node{Kind: Index, X: obj, Y: prop})
}

// Member builds obj.name, or obj?.name when optional is set.
func (t *Tree) Member(obj NodeID, name string, optional bool) NodeID {
	n := Node{Kind: Member, X: obj, Y: t.Ident(name)}
	if optional {
		n.Flags |= FlagOptional
	}
	return t.Add(n)
}

func (t *Tree) Call(callee NodeID, args ...NodeID) NodeID {
	return t.Add(Node{Kind: Call, X: callee, List: args})
}

// Assign builds target = value.
func (t *Tree) Assign(target, value NodeID) NodeID {
	return t.Add(Node{Kind: Assign, Text: "=", X: target, Y: value})
}

func (t *Tree) ExprStmt(x NodeID) NodeID {
	return t.Add(Node{Kind: ExprStmt, X: x})
}

func (t *Tree) Empty() NodeID {
	return t.Add(Node{Kind: Empty})
}

// Rest builds ...target for parameter lists and patterns.
func (t *Tree) Rest(target NodeID) NodeID {
	return t.Add(Node{Kind: Rest, X: target})
}

func (t *Tree) Object(props ...NodeID) NodeID {
	return t.Add(Node{Kind: Object, List: props})
}

// Property builds a plain key: value member of an object literal.
func (t *Tree) Property(key, value NodeID) NodeID {
	return t.Add(Node{Kind: Property, Text: "init", X: key, Y: value})
}

func (t *Tree) Literal(text string) NodeID {
	return t.Add(Node{Kind: Literal, Text: text})
}
