// Package printer renders an ast.Tree back to JavaScript source.
//
// Output is normalized: statements end in semicolons, blocks are indented
// with two spaces, and parentheses are emitted only where operator
// precedence or statement-start ambiguity requires them.
package printer

import (
	"bytes"
	"io"
	"strings"

	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/parser"
)

// primary is the binding strength of literals, identifiers and other
// expressions that never need parentheses.
const primary = parser.MEMBER + 1

// Print renders the whole tree.
func Print(tree *ast.Tree) string {
	return Node(tree, tree.Root)
}

// Node renders the subtree rooted at id. Statements are rendered as
// statements and expressions as expressions.
func Node(tree *ast.Tree, id ast.NodeID) string {
	p := &printer{tree: tree}
	if tree.Kind(id).IsStatement() || tree.Kind(id) == ast.Program {
		p.stmt(id)
	} else {
		p.expr(id, parser.LOWEST)
	}
	return p.buf.String()
}

// Fprint writes the rendered tree to w.
func Fprint(w io.Writer, tree *ast.Tree) error {
	_, err := io.WriteString(w, Print(tree))
	return err
}

type printer struct {
	tree   *ast.Tree
	buf    bytes.Buffer
	indent int
}

func (p *printer) write(s ...string) {
	for _, str := range s {
		p.buf.WriteString(str)
	}
}

func (p *printer) writeIndent() {
	p.buf.WriteString(strings.Repeat("  ", p.indent))
}

func (p *printer) node(id ast.NodeID) *ast.Node {
	return p.tree.Node(id)
}

// Statements

func (p *printer) stmt(id ast.NodeID) {
	n := p.node(id)
	switch n.Kind {
	case ast.Program:
		for _, s := range n.List {
			p.writeIndent()
			p.stmt(s)
			p.write("\n")
		}
	case ast.VarDecl:
		p.varDecl(id)
		p.write(";")
	case ast.FuncDecl:
		p.function(id)
	case ast.ClassDecl:
		p.class(id)
	case ast.ExprStmt:
		if p.needsStatementParens(n.X) {
			p.write("(")
			p.expr(n.X, parser.LOWEST)
			p.write(")")
		} else {
			p.expr(n.X, parser.LOWEST)
		}
		p.write(";")
	case ast.Block:
		p.block(n.List)
	case ast.Empty:
		p.write(";")
	case ast.Debugger:
		p.write("debugger;")
	case ast.Return:
		p.write("return")
		if n.X != ast.NoNode {
			p.write(" ")
			p.expr(n.X, parser.LOWEST)
		}
		p.write(";")
	case ast.If:
		p.write("if (")
		p.expr(n.X, parser.LOWEST)
		p.write(") ")
		if n.Z != ast.NoNode && p.tree.Kind(n.Y) != ast.Block {
			// Braces keep a nested if from capturing the else branch.
			p.block([]ast.NodeID{n.Y})
		} else {
			p.stmt(n.Y)
		}
		if n.Z != ast.NoNode {
			p.write(" else ")
			p.stmt(n.Z)
		}
	case ast.For:
		p.write("for (")
		if n.X != ast.NoNode {
			p.forHead(n.X)
		}
		p.write(";")
		if n.Y != ast.NoNode {
			p.write(" ")
			p.expr(n.Y, parser.LOWEST)
		}
		p.write(";")
		if n.Z != ast.NoNode {
			p.write(" ")
			p.expr(n.Z, parser.LOWEST)
		}
		p.write(") ")
		p.stmt(n.W)
	case ast.ForIn, ast.ForOf:
		p.write("for (")
		p.forHead(n.X)
		if n.Kind == ast.ForIn {
			p.write(" in ")
			p.expr(n.Y, parser.LOWEST)
		} else {
			p.write(" of ")
			p.expr(n.Y, parser.ASSIGN)
		}
		p.write(") ")
		p.stmt(n.W)
	case ast.While:
		p.write("while (")
		p.expr(n.X, parser.LOWEST)
		p.write(") ")
		p.stmt(n.W)
	case ast.DoWhile:
		p.write("do ")
		p.stmt(n.W)
		p.write(" while (")
		p.expr(n.X, parser.LOWEST)
		p.write(");")
	case ast.Break, ast.Continue:
		if n.Kind == ast.Break {
			p.write("break")
		} else {
			p.write("continue")
		}
		if n.Text != "" {
			p.write(" ", n.Text)
		}
		p.write(";")
	case ast.Labeled:
		p.write(n.Text, ": ")
		p.stmt(n.W)
	case ast.Throw:
		p.write("throw ")
		p.expr(n.X, parser.LOWEST)
		p.write(";")
	case ast.Try:
		p.write("try ")
		p.stmt(n.X)
		if n.Y != ast.NoNode {
			c := p.node(n.Y)
			p.write(" catch ")
			if c.X != ast.NoNode {
				p.write("(")
				p.pattern(c.X)
				p.write(") ")
			}
			p.stmt(c.W)
		}
		if n.Z != ast.NoNode {
			p.write(" finally ")
			p.stmt(n.Z)
		}
	case ast.Switch:
		p.write("switch (")
		p.expr(n.X, parser.LOWEST)
		p.write(") {\n")
		p.indent++
		for _, c := range n.List {
			cn := p.node(c)
			p.writeIndent()
			if cn.X == ast.NoNode {
				p.write("default:\n")
			} else {
				p.write("case ")
				p.expr(cn.X, parser.LOWEST)
				p.write(":\n")
			}
			p.indent++
			for _, s := range cn.List {
				p.writeIndent()
				p.stmt(s)
				p.write("\n")
			}
			p.indent--
		}
		p.indent--
		p.writeIndent()
		p.write("}")
	default:
		// An expression in statement position.
		p.expr(id, parser.LOWEST)
		p.write(";")
	}
}

func (p *printer) block(stmts []ast.NodeID) {
	if len(stmts) == 0 {
		p.write("{}")
		return
	}
	p.write("{\n")
	p.indent++
	for _, s := range stmts {
		p.writeIndent()
		p.stmt(s)
		p.write("\n")
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *printer) varDecl(id ast.NodeID) {
	n := p.node(id)
	p.write(n.Text, " ")
	for i, d := range n.List {
		if i > 0 {
			p.write(", ")
		}
		dn := p.node(d)
		p.pattern(dn.X)
		if dn.Y != ast.NoNode {
			p.write(" = ")
			p.expr(dn.Y, parser.ASSIGN)
		}
	}
}

// forHead prints the initializer or loop target of a for statement. An
// expression containing the in operator is parenthesized so that it is not
// read as a for-in head.
func (p *printer) forHead(id ast.NodeID) {
	if p.tree.Kind(id) == ast.VarDecl {
		p.varDecl(id)
		return
	}
	if p.containsIn(id) {
		p.write("(")
		p.expr(id, parser.LOWEST)
		p.write(")")
		return
	}
	p.expr(id, parser.LOWEST)
}

func (p *printer) containsIn(id ast.NodeID) bool {
	found := false
	ast.Inspect(p.tree, id, func(c ast.NodeID) bool {
		n := p.node(c)
		if n.Kind.IsFunction() || n.Kind.IsClass() {
			return false
		}
		if n.Kind == ast.Binary && n.Text == "in" {
			found = true
		}
		return !found
	})
	return found
}

// needsStatementParens reports whether an expression statement would be
// misread as a declaration or block because of its first token.
func (p *printer) needsStatementParens(id ast.NodeID) bool {
	switch p.tree.Kind(p.leftmost(id)) {
	case ast.FuncExpr, ast.ClassExpr, ast.Object, ast.ObjectPattern:
		return true
	}
	return false
}

// leftmost returns the node whose text begins the printed expression.
func (p *printer) leftmost(id ast.NodeID) ast.NodeID {
	for {
		n := p.node(id)
		switch {
		case n.Kind == ast.Member || n.Kind == ast.Index || n.Kind == ast.Call ||
			n.Kind == ast.Binary || n.Kind == ast.Assign || n.Kind == ast.Cond:
			if p.precedence(n.X) < p.childMin(id) {
				return id
			}
			id = n.X
		case n.Kind == ast.Update && !n.Flags.Has(ast.FlagPrefix):
			id = n.X
		case n.Kind == ast.Sequence && len(n.List) > 0:
			id = n.List[0]
		default:
			return id
		}
	}
}

// childMin returns the minimum precedence of the leftmost child of id, that
// is, the threshold below which the child is parenthesized.
func (p *printer) childMin(id ast.NodeID) int {
	n := p.node(id)
	switch n.Kind {
	case ast.Member, ast.Index, ast.Call:
		return parser.CALL
	case ast.Binary:
		return p.binaryOperandMin(n, true)
	case ast.Assign:
		return parser.POSTFIX
	case ast.Cond:
		return parser.LOGICAL_OR
	}
	return parser.LOWEST
}

// Expressions

// precedence returns the binding strength of the expression at id.
func (p *printer) precedence(id ast.NodeID) int {
	n := p.node(id)
	switch n.Kind {
	case ast.Sequence:
		return parser.COMMA
	case ast.Assign, ast.Arrow, ast.Yield:
		return parser.ASSIGN
	case ast.Cond:
		return parser.CONDITIONAL
	case ast.Binary:
		return parser.Precedence(n.Text)
	case ast.Unary, ast.Await:
		return parser.PREFIX
	case ast.Update:
		if n.Flags.Has(ast.FlagPrefix) {
			return parser.PREFIX
		}
		return parser.POSTFIX
	case ast.Call, ast.New:
		return parser.CALL
	case ast.Member, ast.Index:
		return parser.MEMBER
	}
	return primary
}

// binaryOperandMin returns the minimum precedence for the left or right
// operand of a binary expression.
func (p *printer) binaryOperandMin(n *ast.Node, left bool) int {
	prec := parser.Precedence(n.Text)
	if n.Text == "**" {
		// Right-associative, and a unary operand on the left is a syntax error.
		if left {
			return parser.POSTFIX
		}
		return prec
	}
	if left {
		return prec
	}
	return prec + 1
}

func (p *printer) expr(id ast.NodeID, min int) {
	if p.precedence(id) < min {
		p.write("(")
		p.exprInner(id)
		p.write(")")
		return
	}
	p.exprInner(id)
}

func (p *printer) exprInner(id ast.NodeID) {
	n := p.node(id)
	switch n.Kind {
	case ast.Ident, ast.Number, ast.String, ast.Literal:
		p.write(n.Text)
	case ast.This:
		p.write("this")
	case ast.Super:
		p.write("super")
	case ast.Array, ast.ArrayPattern:
		p.write("[")
		for i, el := range n.List {
			if i > 0 {
				p.write(", ")
			}
			if el != ast.NoNode {
				p.element(el)
			}
		}
		if len(n.List) > 0 && n.List[len(n.List)-1] == ast.NoNode {
			// A trailing hole needs its own comma.
			p.write(",")
		}
		p.write("]")
	case ast.Object, ast.ObjectPattern:
		if len(n.List) == 0 {
			p.write("{}")
			return
		}
		p.write("{")
		for i, prop := range n.List {
			if i > 0 {
				p.write(",")
			}
			p.write(" ")
			p.property(prop)
		}
		p.write(" }")
	case ast.FuncExpr:
		p.function(id)
	case ast.Arrow:
		p.arrow(id)
	case ast.ClassExpr:
		p.class(id)
	case ast.Member:
		p.memberObject(n.X)
		if n.Flags.Has(ast.FlagOptional) {
			p.write("?.")
		} else {
			p.write(".")
		}
		p.write(p.node(n.Y).Text)
	case ast.Index:
		p.memberObject(n.X)
		if n.Flags.Has(ast.FlagOptional) {
			p.write("?.")
		}
		p.write("[")
		p.expr(n.Y, parser.LOWEST)
		p.write("]")
	case ast.Call:
		p.expr(n.X, parser.CALL)
		if n.Flags.Has(ast.FlagOptional) {
			p.write("?.")
		}
		p.arguments(n.List)
	case ast.New:
		p.write("new ")
		if p.callInChain(n.X) {
			p.write("(")
			p.exprInner(n.X)
			p.write(")")
		} else {
			p.expr(n.X, parser.MEMBER)
		}
		p.arguments(n.List)
	case ast.Unary:
		p.write(n.Text)
		x := p.node(n.X)
		switch {
		case len(n.Text) > 1:
			p.write(" ")
		case (n.Text == "-" || n.Text == "+") &&
			((x.Kind == ast.Unary && x.Text == n.Text) ||
				(x.Kind == ast.Update && x.Flags.Has(ast.FlagPrefix) && x.Text[0] == n.Text[0])):
			p.write(" ")
		}
		p.expr(n.X, parser.PREFIX)
	case ast.Update:
		if n.Flags.Has(ast.FlagPrefix) {
			p.write(n.Text)
			p.expr(n.X, parser.POSTFIX)
		} else {
			p.expr(n.X, parser.POSTFIX)
			p.write(n.Text)
		}
	case ast.Await:
		p.write("await ")
		p.expr(n.X, parser.PREFIX)
	case ast.Yield:
		p.write("yield")
		if n.Flags.Has(ast.FlagDelegate) {
			p.write("*")
		}
		if n.X != ast.NoNode {
			p.write(" ")
			p.expr(n.X, parser.ASSIGN)
		}
	case ast.Binary:
		p.binaryOperand(n, n.X, true)
		p.write(" ", n.Text, " ")
		p.binaryOperand(n, n.Y, false)
	case ast.Assign:
		p.pattern(n.X)
		p.write(" ", n.Text, " ")
		p.expr(n.Y, parser.ASSIGN)
	case ast.Cond:
		p.expr(n.X, parser.LOGICAL_OR)
		p.write(" ? ")
		p.expr(n.Y, parser.ASSIGN)
		p.write(" : ")
		p.expr(n.Z, parser.ASSIGN)
	case ast.Sequence:
		for i, item := range n.List {
			if i > 0 {
				p.write(", ")
			}
			p.expr(item, parser.ASSIGN)
		}
	case ast.Spread, ast.Rest:
		p.write("...")
		p.element(n.X)
	case ast.AssignPattern:
		p.pattern(n.X)
		p.write(" = ")
		p.expr(n.Y, parser.ASSIGN)
	default:
		p.write("/* ", n.Kind.String(), " */")
	}
}

func (p *printer) binaryOperand(parent *ast.Node, id ast.NodeID, left bool) {
	child := p.node(id)
	// ?? cannot be mixed with && or || without parentheses.
	if child.Kind == ast.Binary && isLogical(parent.Text) && isLogical(child.Text) &&
		(parent.Text == "??") != (child.Text == "??") {
		p.write("(")
		p.exprInner(id)
		p.write(")")
		return
	}
	p.expr(id, p.binaryOperandMin(parent, left))
}

func isLogical(op string) bool {
	return op == "&&" || op == "||" || op == "??"
}

// memberObject prints the object of a member access. Integer literals are
// parenthesized so that the dot is not read as a decimal point.
func (p *printer) memberObject(id ast.NodeID) {
	if p.tree.Kind(id) == ast.Number {
		p.write("(", p.node(id).Text, ")")
		return
	}
	p.expr(id, parser.CALL)
}

// callInChain reports whether a call appears in the member chain of a new
// expression's callee, where it would otherwise take the argument list.
func (p *printer) callInChain(id ast.NodeID) bool {
	for {
		n := p.node(id)
		switch n.Kind {
		case ast.Call:
			return true
		case ast.Member, ast.Index:
			id = n.X
		default:
			return false
		}
	}
}

func (p *printer) arguments(args []ast.NodeID) {
	p.write("(")
	for i, arg := range args {
		if i > 0 {
			p.write(", ")
		}
		p.element(arg)
	}
	p.write(")")
}

// element prints an array element, argument or spread operand.
func (p *printer) element(id ast.NodeID) {
	switch p.tree.Kind(id) {
	case ast.Spread, ast.Rest:
		p.exprInner(id)
	default:
		p.expr(id, parser.ASSIGN)
	}
}

// pattern prints a binding or assignment target.
func (p *printer) pattern(id ast.NodeID) {
	p.expr(id, parser.POSTFIX)
}

func (p *printer) propertyKey(n *ast.Node) {
	if n.Flags.Has(ast.FlagComputed) {
		p.write("[")
		p.expr(n.X, parser.ASSIGN)
		p.write("]")
		return
	}
	p.write(p.node(n.X).Text)
}

func (p *printer) property(id ast.NodeID) {
	n := p.node(id)
	switch n.Kind {
	case ast.Spread, ast.Rest:
		p.exprInner(id)
		return
	}
	switch n.Text {
	case "get", "set", "method":
		p.method(n, n.Text)
		return
	}
	if p.isShorthand(n) {
		p.expr(n.Y, parser.ASSIGN)
		return
	}
	p.propertyKey(n)
	p.write(": ")
	p.expr(n.Y, parser.ASSIGN)
}

// isShorthand reports whether a property can still be printed in the
// shorthand form: its value is the identifier named by the key, optionally
// with a default.
func (p *printer) isShorthand(n *ast.Node) bool {
	if !n.Flags.Has(ast.FlagShorthand) || n.Flags.Has(ast.FlagComputed) {
		return false
	}
	key := p.node(n.X)
	value := p.node(n.Y)
	if value.Kind == ast.AssignPattern {
		value = p.node(value.X)
	}
	return key.Kind == ast.Ident && value.Kind == ast.Ident && value.Text == key.Text
}

// method prints an object or class method with key and function value.
func (p *printer) method(n *ast.Node, kind string) {
	fn := p.node(n.Y)
	switch kind {
	case "get", "set":
		p.write(kind, " ")
	}
	if fn.Flags.Has(ast.FlagAsync) {
		p.write("async ")
	}
	if fn.Flags.Has(ast.FlagGenerator) {
		p.write("*")
	}
	p.propertyKey(n)
	p.params(fn.List)
	p.write(" ")
	p.stmt(fn.Y)
}

func (p *printer) params(params []ast.NodeID) {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.element(param)
	}
	p.write(")")
}

func (p *printer) function(id ast.NodeID) {
	n := p.node(id)
	if n.Flags.Has(ast.FlagAsync) {
		p.write("async ")
	}
	p.write("function")
	if n.Flags.Has(ast.FlagGenerator) {
		p.write("*")
	}
	if n.X != ast.NoNode {
		p.write(" ", p.node(n.X).Text)
	}
	p.params(n.List)
	p.write(" ")
	p.stmt(n.Y)
}

func (p *printer) arrow(id ast.NodeID) {
	n := p.node(id)
	if n.Flags.Has(ast.FlagAsync) {
		p.write("async ")
	}
	p.params(n.List)
	p.write(" => ")
	if !n.Flags.Has(ast.FlagExprBody) {
		p.stmt(n.Y)
		return
	}
	switch p.tree.Kind(p.leftmost(n.Y)) {
	case ast.Object, ast.ObjectPattern:
		p.write("(")
		p.expr(n.Y, parser.LOWEST)
		p.write(")")
	default:
		p.expr(n.Y, parser.ASSIGN)
	}
}

func (p *printer) class(id ast.NodeID) {
	n := p.node(id)
	p.write("class")
	if n.X != ast.NoNode {
		p.write(" ", p.node(n.X).Text)
	}
	if n.Y != ast.NoNode {
		p.write(" extends ")
		p.expr(n.Y, parser.CALL)
	}
	if len(n.List) == 0 {
		p.write(" {}")
		return
	}
	p.write(" {\n")
	p.indent++
	for _, m := range n.List {
		mn := p.node(m)
		p.writeIndent()
		if mn.Flags.Has(ast.FlagStatic) {
			p.write("static ")
		}
		if mn.Text == "field" {
			p.propertyKey(mn)
			if mn.Y != ast.NoNode {
				p.write(" = ")
				p.expr(mn.Y, parser.ASSIGN)
			}
			p.write(";\n")
			continue
		}
		p.method(mn, mn.Text)
		p.write("\n")
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}
