package parser

import (
	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/internal/token"
)

// Literal parsing methods for the Parser.
// This file contains methods that parse compound literals:
// - Array and object literals
// - Function declarations, expressions and parameter lists
// - Class declarations and expressions

func (p *Parser) parseArrayLiteral() (ast.NodeID, bool) {
	open := p.curToken
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var elements []ast.NodeID
	for !p.peekTokenIs(token.RBRACKET) {
		if p.peekTokenIs(token.COMMA) {
			// Elision: [a, , b]
			p.nextToken()
			elements = append(elements, ast.NoNode)
			continue
		}
		p.nextToken()
		spread := p.curToken
		if spread.Type == token.SPREAD {
			p.nextToken()
		}
		el, ok := p.parseAssignExpr()
		if !ok {
			return ast.NoNode, false
		}
		if spread.Type == token.SPREAD {
			el = p.add(spread, ast.Node{Kind: ast.Spread, X: el})
		}
		elements = append(elements, el)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek("array literal", token.RBRACKET) {
		return ast.NoNode, false
	}
	return p.add(open, ast.Node{Kind: ast.Array, List: elements}), true
}

func (p *Parser) parseObjectLiteral() (ast.NodeID, bool) {
	open := p.curToken
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var props []ast.NodeID
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		prop, ok := p.parseProperty()
		if !ok {
			return ast.NoNode, false
		}
		props = append(props, prop)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek("object literal", token.RBRACE) {
		return ast.NoNode, false
	}
	return p.add(open, ast.Node{Kind: ast.Object, List: props}), true
}

// memberPrefix holds the modifiers that may precede a method name in an
// object literal or class body.
type memberPrefix struct {
	static    bool
	async     bool
	generator bool
	accessor  string // "get", "set" or ""
}

// isPropertyNameStart reports whether the token can begin a property name.
func isPropertyNameStart(t token.Token) bool {
	switch t.Type {
	case token.STRING, token.NUMBER, token.LBRACKET:
		return true
	}
	return isWord(t)
}

// parseModifiers consumes modifier words such as "async", "get" and "*",
// leaving curToken on the first token of the property name. A modifier
// word that is itself the property name (as in "get() {}") is left alone.
func (p *Parser) parseModifiers(allowStatic bool) memberPrefix {
	var m memberPrefix
	if allowStatic && p.curToken.Type == token.IDENT && p.curToken.Literal == "static" &&
		(isPropertyNameStart(p.peekToken) || p.peekTokenIs(token.ASTERISK)) {
		m.static = true
		p.nextToken()
	}
	if p.curToken.Type == token.IDENT && p.curToken.Literal == "async" && !p.peekToken.NewlineBefore &&
		(isPropertyNameStart(p.peekToken) || p.peekTokenIs(token.ASTERISK)) {
		m.async = true
		p.nextToken()
	}
	if p.curTokenIs(token.ASTERISK) {
		m.generator = true
		p.nextToken()
	}
	if !m.async && !m.generator && p.curToken.Type == token.IDENT &&
		(p.curToken.Literal == "get" || p.curToken.Literal == "set") && isPropertyNameStart(p.peekToken) {
		m.accessor = p.curToken.Literal
		p.nextToken()
	}
	return m
}

// parsePropertyKey parses a property name with curToken on its first token.
func (p *Parser) parsePropertyKey() (key ast.NodeID, computed bool, ok bool) {
	switch p.curToken.Type {
	case token.STRING:
		key, ok = p.parseString()
	case token.NUMBER:
		key, ok = p.parseNumber()
	case token.LBRACKET:
		p.nextToken()
		key, ok = p.withIn(p.parseAssignExpr)
		if ok && !p.expectPeek("computed property name", token.RBRACKET) {
			ok = false
		}
		computed = true
	default:
		if !isWord(p.curToken) {
			p.setCodedError(p.curToken, errors.E1006, "unexpected %s (expected property name)",
				tokenDescription(p.curToken))
			return ast.NoNode, false, false
		}
		key, ok = p.newIdent(p.curToken), true
	}
	return key, computed, ok
}

func (p *Parser) parseProperty() (ast.NodeID, bool) {
	start := p.curToken
	if p.curTokenIs(token.SPREAD) {
		p.nextToken()
		x, ok := p.parseAssignExpr()
		if !ok {
			return ast.NoNode, false
		}
		return p.add(start, ast.Node{Kind: ast.Spread, X: x}), true
	}
	mods := p.parseModifiers(false)
	keyTok := p.curToken
	key, computed, ok := p.parsePropertyKey()
	if !ok {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Property, Text: "init", X: key}
	if computed {
		n.Flags |= ast.FlagComputed
	}
	plainName := !computed && keyTok.Type == token.IDENT
	isMethod := mods.async || mods.generator || mods.accessor != ""

	switch {
	case p.peekTokenIs(token.LPAREN):
		fn, ok := p.parseMethodFunction(start, mods)
		if !ok {
			return ast.NoNode, false
		}
		n.Y = fn
		n.Text = "method"
		if mods.accessor != "" {
			n.Text = mods.accessor
		}
	case isMethod:
		p.peekError("method definition", token.LPAREN, p.peekToken)
		return ast.NoNode, false
	case p.peekTokenIs(token.COLON):
		p.nextToken()
		p.nextToken()
		value, ok := p.parseAssignExpr()
		if !ok {
			return ast.NoNode, false
		}
		n.Y = value
	case plainName && p.peekTokenIs(token.ASSIGN):
		// Shorthand with a default, valid only once converted to a pattern:
		// ({a = 1} = obj)
		p.nextToken()
		p.nextToken()
		def, ok := p.parseAssignExpr()
		if !ok {
			return ast.NoNode, false
		}
		n.Y = p.add(keyTok, ast.Node{Kind: ast.AssignPattern, X: p.newIdent(keyTok), Y: def})
		n.Flags |= ast.FlagShorthand
	case plainName:
		n.Y = p.newIdent(keyTok)
		n.Flags |= ast.FlagShorthand
	default:
		p.peekError("object literal", token.COLON, p.peekToken)
		return ast.NoNode, false
	}
	return p.add(start, n), true
}

// parseMethodFunction parses the parameter list and body of a method with
// curToken on the last token of the method name.
func (p *Parser) parseMethodFunction(start token.Token, mods memberPrefix) (ast.NodeID, bool) {
	fn := ast.Node{Kind: ast.FuncExpr}
	if mods.async {
		fn.Flags |= ast.FlagAsync
	}
	if mods.generator {
		fn.Flags |= ast.FlagGenerator
	}
	if !p.expectPeek("method definition", token.LPAREN) {
		return ast.NoNode, false
	}
	params, ok := p.parseParams()
	if !ok {
		return ast.NoNode, false
	}
	fn.List = params
	if !p.expectPeek("method body", token.LBRACE) {
		return ast.NoNode, false
	}
	body, ok := p.parseFunctionBody()
	if !ok {
		return ast.NoNode, false
	}
	fn.Y = body
	return p.add(start, fn), true
}

// parseFunction parses a function declaration or expression with curToken
// on the "function" keyword.
func (p *Parser) parseFunction(kind ast.Kind, start token.Token, async bool) (ast.NodeID, bool) {
	n := ast.Node{Kind: kind}
	if async {
		n.Flags |= ast.FlagAsync
	}
	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken()
		n.Flags |= ast.FlagGenerator
	}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		n.X = p.newIdent(p.curToken)
	} else if kind == ast.FuncDecl {
		p.peekError("function declaration", token.IDENT, p.peekToken)
		return ast.NoNode, false
	}
	if !p.expectPeek("function", token.LPAREN) {
		return ast.NoNode, false
	}
	params, ok := p.parseParams()
	if !ok {
		return ast.NoNode, false
	}
	n.List = params
	if !p.expectPeek("function body", token.LBRACE) {
		return ast.NoNode, false
	}
	body, ok := p.parseFunctionBody()
	if !ok {
		return ast.NoNode, false
	}
	n.Y = body
	return p.add(start, n), true
}

func (p *Parser) parseFuncExpr() (ast.NodeID, bool) {
	return p.parseFunction(ast.FuncExpr, p.curToken, false)
}

// parseParams parses a parameter list with curToken on "(", leaving
// curToken on ")".
func (p *Parser) parseParams() ([]ast.NodeID, bool) {
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var params []ast.NodeID
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		if p.curTokenIs(token.SPREAD) {
			tok := p.curToken
			p.nextToken()
			target, ok := p.parseBindingTarget()
			if !ok {
				return nil, false
			}
			params = append(params, p.add(tok, ast.Node{Kind: ast.Rest, X: target}))
			if !p.peekTokenIs(token.RPAREN) {
				p.peekError("rest parameter", token.RPAREN, p.peekToken)
				return nil, false
			}
			break
		}
		param, ok := p.parseBindingElement()
		if !ok {
			return nil, false
		}
		params = append(params, param)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek("parameter list", token.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseBindingElement parses a binding target with an optional default.
func (p *Parser) parseBindingElement() (ast.NodeID, bool) {
	tok := p.curToken
	target, ok := p.parseBindingTarget()
	if !ok {
		return ast.NoNode, false
	}
	if !p.peekTokenIs(token.ASSIGN) {
		return target, true
	}
	p.nextToken()
	p.nextToken()
	def, ok := p.parseAssignExpr()
	if !ok {
		return ast.NoNode, false
	}
	return p.add(tok, ast.Node{Kind: ast.AssignPattern, X: target, Y: def}), true
}

// parseBindingTarget parses an identifier or a destructuring pattern in a
// declaration or parameter position.
func (p *Parser) parseBindingTarget() (ast.NodeID, bool) {
	switch p.curToken.Type {
	case token.IDENT:
		return p.newIdent(p.curToken), true
	case token.LBRACKET, token.LBRACE:
		var (
			lit ast.NodeID
			ok  bool
		)
		if p.curTokenIs(token.LBRACKET) {
			lit, ok = p.parseArrayLiteral()
		} else {
			lit, ok = p.parseObjectLiteral()
		}
		if !ok || !p.toPattern(lit, true) {
			return ast.NoNode, false
		}
		return lit, true
	}
	p.setCodedError(p.curToken, errors.E1006, "unexpected %s (expected binding name or pattern)",
		tokenDescription(p.curToken))
	return ast.NoNode, false
}

// parseFunctionBody parses a block body with curToken on "{", leaving
// curToken on "}". Leading string statements are marked as directives.
func (p *Parser) parseFunctionBody() (ast.NodeID, bool) {
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	body, ok := p.parseBlock()
	if !ok {
		return ast.NoNode, false
	}
	markDirectives(p.tree, body)
	return body, true
}

// markDirectives flags the directive prologue of a program or function body.
func markDirectives(tree *ast.Tree, body ast.NodeID) {
	for _, stmt := range tree.Node(body).List {
		n := tree.Node(stmt)
		if n.Kind != ast.ExprStmt || tree.Kind(n.X) != ast.String {
			return
		}
		n.Flags |= ast.FlagDirective
	}
}

func (p *Parser) parseClassExpr() (ast.NodeID, bool) {
	return p.parseClass(ast.ClassExpr)
}

// parseClass parses a class with curToken on the "class" keyword, leaving
// curToken on the closing brace.
func (p *Parser) parseClass(kind ast.Kind) (ast.NodeID, bool) {
	start := p.curToken
	n := ast.Node{Kind: kind}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		n.X = p.newIdent(p.curToken)
	} else if kind == ast.ClassDecl {
		p.peekError("class declaration", token.IDENT, p.peekToken)
		return ast.NoNode, false
	}
	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken()
		p.nextToken()
		super, ok := p.parseNode(POSTFIX)
		if !ok {
			return ast.NoNode, false
		}
		n.Y = super
	}
	if !p.expectPeek("class body", token.LBRACE) {
		return ast.NoNode, false
	}
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		if p.curTokenIs(token.SEMICOLON) {
			continue
		}
		member, ok := p.parseClassMember()
		if !ok {
			return ast.NoNode, false
		}
		n.List = append(n.List, member)
	}
	if !p.expectPeek("class body", token.RBRACE) {
		return ast.NoNode, false
	}
	return p.add(start, n), true
}

func (p *Parser) parseClassMember() (ast.NodeID, bool) {
	start := p.curToken
	mods := p.parseModifiers(true)
	keyTok := p.curToken
	key, computed, ok := p.parsePropertyKey()
	if !ok {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Method, Text: "method", X: key}
	if computed {
		n.Flags |= ast.FlagComputed
	}
	if mods.static {
		n.Flags |= ast.FlagStatic
	}
	if p.peekTokenIs(token.LPAREN) {
		fn, ok := p.parseMethodFunction(start, mods)
		if !ok {
			return ast.NoNode, false
		}
		n.Y = fn
		switch {
		case mods.accessor != "":
			n.Text = mods.accessor
		case !computed && !mods.static && keyTok.Type == token.IDENT && keyTok.Literal == "constructor":
			n.Text = "constructor"
		}
		return p.add(start, n), true
	}
	if mods.async || mods.generator || mods.accessor != "" {
		p.peekError("method definition", token.LPAREN, p.peekToken)
		return ast.NoNode, false
	}
	// Field definition
	n.Text = "field"
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value, ok := p.parseAssignExpr()
		if !ok {
			return ast.NoNode, false
		}
		n.Y = value
	}
	if !p.consumeSemicolon("class field") {
		return ast.NoNode, false
	}
	return p.add(start, n), true
}
