package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildVar builds the program: var x = a + 1;
func buildVar(t *Tree) (prog, decl, declarator, sum NodeID) {
	sum = t.Add(Node{Kind: Binary, Text: "+", X: t.Ident("a"), Y: t.Number(1)})
	declarator = t.Add(Node{Kind: Declarator, X: t.Ident("x"), Y: sum})
	decl = t.Add(Node{Kind: VarDecl, Text: "var", List: []NodeID{declarator}})
	prog = t.Add(Node{Kind: Program, List: []NodeID{decl}})
	t.SetRoot(prog)
	return
}

func TestNewTree(t *testing.T) {
	tree := NewTree()
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, Invalid, tree.Kind(NoNode))
	assert.Equal(t, NoNode, tree.Parent(NoNode))
}

func TestAddSetsParents(t *testing.T) {
	tree := NewTree()
	prog, decl, declarator, sum := buildVar(tree)
	assert.Equal(t, prog, tree.Parent(decl))
	assert.Equal(t, decl, tree.Parent(declarator))
	assert.Equal(t, declarator, tree.Parent(sum))
	assert.Equal(t, NoNode, tree.Parent(prog))
	assert.Equal(t, 7, tree.Len())
}

func TestReplaceRoleChild(t *testing.T) {
	tree := NewTree()
	_, _, declarator, sum := buildVar(tree)

	repl := tree.Number(42)
	require.True(t, tree.Replace(sum, repl))
	assert.Equal(t, repl, tree.Node(declarator).Y)
	assert.Equal(t, declarator, tree.Parent(repl))
	assert.Equal(t, NoNode, tree.Parent(sum))
	assert.True(t, tree.Attached(repl))
	assert.False(t, tree.Attached(sum))

	// The detached subtree is unreachable too.
	a := tree.Node(sum).X
	assert.False(t, tree.Attached(a))

	// Replacing a detached node fails quietly.
	assert.False(t, tree.Replace(sum, tree.Number(1)))
}

func TestReplaceListChild(t *testing.T) {
	tree := NewTree()
	prog, decl, _, _ := buildVar(tree)

	stmt := tree.ExprStmt(tree.Ident("y"))
	require.True(t, tree.Replace(decl, stmt))
	assert.Equal(t, []NodeID{stmt}, tree.Node(prog).List)
	assert.Equal(t, 0, tree.IndexInList(stmt))
	assert.Equal(t, -1, tree.IndexInList(decl))
}

func TestReplaceRoot(t *testing.T) {
	tree := NewTree()
	prog, _, _, _ := buildVar(tree)
	other := tree.Add(Node{Kind: Program})
	require.True(t, tree.Replace(prog, other))
	assert.Equal(t, other, tree.Root)
	assert.False(t, tree.Attached(prog))
	assert.True(t, tree.Attached(other))
}

func TestCloneIsDeepAndDetached(t *testing.T) {
	tree := NewTree()
	_, _, _, sum := buildVar(tree)

	c := tree.Clone(sum)
	require.NotEqual(t, sum, c)
	assert.Equal(t, NoNode, tree.Parent(c))
	assert.Equal(t, Dump(tree, sum), Dump(tree, c))

	orig := tree.Node(sum)
	copied := tree.Node(c)
	assert.NotEqual(t, orig.X, copied.X)
	assert.Equal(t, c, tree.Parent(copied.X))

	// Mutating the copy leaves the original intact.
	tree.Node(copied.X).Text = "b"
	assert.Equal(t, "a", tree.Node(orig.X).Text)
	assert.Equal(t, NoNode, tree.Clone(NoNode))
}

func TestInsertAndSetList(t *testing.T) {
	tree := NewTree()
	prog, decl, _, _ := buildVar(tree)

	first := tree.Empty()
	last := tree.Empty()
	tree.InsertList(prog, 0, first)
	tree.InsertList(prog, 2, last)
	assert.Equal(t, []NodeID{first, decl, last}, tree.Node(prog).List)
	assert.Equal(t, prog, tree.Parent(first))

	assert.Panics(t, func() { tree.InsertList(prog, 9, tree.Empty()) })

	only := tree.Empty()
	tree.SetList(prog, []NodeID{only})
	assert.Equal(t, []NodeID{only}, tree.Node(prog).List)
	assert.False(t, tree.Attached(decl))
	assert.True(t, tree.Attached(only))
}

func TestEnclosingFunction(t *testing.T) {
	tree := NewTree()
	ret := tree.Add(Node{Kind: Return, X: tree.Ident("x")})
	body := tree.Add(Node{Kind: Block, List: []NodeID{ret}})
	fn := tree.Add(Node{Kind: FuncDecl, X: tree.Ident("f"), List: []NodeID{tree.Ident("x")}, Y: body})
	prog := tree.Add(Node{Kind: Program, List: []NodeID{fn}})
	tree.SetRoot(prog)

	x := tree.Node(ret).X
	assert.Equal(t, fn, tree.EnclosingFunction(x))
	assert.Equal(t, NoNode, tree.EnclosingFunction(fn))
	assert.Equal(t, body, tree.Enclosing(x, func(n *Node) bool { return n.Kind == Block }))
}

func TestFunctionChildOrder(t *testing.T) {
	tree := NewTree()
	name := tree.Ident("f")
	param := tree.Ident("p")
	body := tree.Add(Node{Kind: Block})
	fn := tree.Add(Node{Kind: FuncExpr, X: name, List: []NodeID{param}, Y: body})
	assert.Equal(t, []NodeID{name, param, body}, tree.Children(fn))

	test := tree.Ident("t")
	loop := tree.Add(Node{Kind: DoWhile, X: test, W: body})
	assert.Equal(t, []NodeID{body, test}, tree.Children(loop))
}

func TestFlags(t *testing.T) {
	f := FlagAsync | FlagOptional
	assert.True(t, f.Has(FlagAsync))
	assert.False(t, f.Has(FlagGenerator))
	assert.False(t, f.Has(FlagAsync|FlagGenerator))
	assert.Equal(t, "async,optional", f.String())
}

func TestKinds(t *testing.T) {
	assert.Equal(t, "FuncDecl", FuncDecl.String())
	assert.True(t, Arrow.IsFunction())
	assert.False(t, Method.IsFunction())
	assert.True(t, ClassExpr.IsClass())
	assert.True(t, ForOf.IsLoop())
	assert.True(t, Return.IsStatement())
	assert.False(t, Call.IsStatement())
}

func TestBuilders(t *testing.T) {
	tree := NewTree()
	call := tree.Call(tree.Member(tree.Index(tree.Ident("s"), tree.Number(0)), "call", true), tree.Undefined())
	assert.Equal(t, `Call
  Member [optional]
    Index
      Ident s
      Number 0
    Ident call
  Unary void
    Number 0
`, Dump(tree, call))

	lit := tree.StringLit("length")
	assert.Equal(t, `"length"`, tree.Node(lit).Text)
	prop := tree.Property(lit, tree.Literal("true"))
	assert.Equal(t, "init", tree.Node(prop).Text)
}
