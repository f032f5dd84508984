package parser

import (
	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/internal/token"
)

// Expression parsing methods for the Parser.
// This file contains methods that parse expression constructs:
// - Identifiers, literals and prefix/infix operators
// - Grouped expressions and arrow functions
// - Assignment, conditional and sequence expressions
// - Member access, indexing, calls and optional chains
// - new, yield and await

func (p *Parser) parseIdent() (ast.NodeID, bool) {
	tok := p.curToken
	if tok.Literal == "async" && !p.peekToken.NewlineBefore {
		switch {
		case p.peekTokenIs(token.FUNCTION):
			p.nextToken()
			return p.parseFunction(ast.FuncExpr, tok, true)
		case p.peekTokenIs(token.IDENT):
			// async x => body
			p.nextToken()
			param := p.newIdent(p.curToken)
			if !p.expectPeek("async arrow function", token.ARROW) {
				return ast.NoNode, false
			}
			return p.parseArrowBody(tok, []ast.NodeID{param}, true)
		}
	}
	ident := p.newIdent(tok)
	// Check for single-param arrow function: x => expr
	if p.peekTokenIs(token.ARROW) && !p.peekToken.NewlineBefore {
		p.nextToken() // move to '=>'
		return p.parseArrowBody(tok, []ast.NodeID{ident}, false)
	}
	return ident, true
}

func (p *Parser) parseNumber() (ast.NodeID, bool) {
	return p.add(p.curToken, ast.Node{Kind: ast.Number, Text: p.curToken.Literal}), true
}

func (p *Parser) parseString() (ast.NodeID, bool) {
	return p.add(p.curToken, ast.Node{Kind: ast.String, Text: p.curToken.Literal}), true
}

func (p *Parser) parseLiteral() (ast.NodeID, bool) {
	return p.add(p.curToken, ast.Node{Kind: ast.Literal, Text: p.curToken.Literal}), true
}

func (p *Parser) parseThis() (ast.NodeID, bool) {
	return p.add(p.curToken, ast.Node{Kind: ast.This}), true
}

func (p *Parser) parseSuper() (ast.NodeID, bool) {
	return p.add(p.curToken, ast.Node{Kind: ast.Super}), true
}

func (p *Parser) parseRegexp() (ast.NodeID, bool) {
	p.setCodedError(p.curToken, errors.E1007, "regular expression literals are not supported")
	return ast.NoNode, false
}

func (p *Parser) parsePrefixExpr() (ast.NodeID, bool) {
	tok := p.curToken
	if err := p.nextToken(); err != nil {
		return ast.NoNode, false
	}
	operand, ok := p.parseNode(PREFIX)
	if !ok {
		return ast.NoNode, false
	}
	return p.add(tok, ast.Node{Kind: ast.Unary, Text: tok.Literal, X: operand}), true
}

func (p *Parser) parsePrefixUpdate() (ast.NodeID, bool) {
	tok := p.curToken
	if err := p.nextToken(); err != nil {
		return ast.NoNode, false
	}
	operand, ok := p.parseNode(PREFIX)
	if !ok {
		return ast.NoNode, false
	}
	if !p.isSimpleTarget(operand) {
		p.setCodedError(tok, errors.E1005, "invalid update target")
		return ast.NoNode, false
	}
	return p.add(tok, ast.Node{Kind: ast.Update, Text: tok.Literal, Flags: ast.FlagPrefix, X: operand}), true
}

func (p *Parser) parsePostfix(left ast.NodeID) (ast.NodeID, bool) {
	tok := p.curToken
	if !p.isSimpleTarget(left) {
		p.setCodedError(tok, errors.E1005, "invalid update target")
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Update, Text: tok.Literal, X: left}
	n.Pos = p.tree.Node(left).Pos
	return p.tree.Add(n), true
}

func (p *Parser) parseInfixExpr(left ast.NodeID) (ast.NodeID, bool) {
	tok := p.curToken
	precedence := p.currentPrecedence()
	// Exponentiation is right-associative: 2**3**2 = 2**(3**2)
	if p.curTokenIs(token.POW) {
		precedence--
	}
	if err := p.nextToken(); err != nil {
		return ast.NoNode, false
	}
	right, ok := p.parseNode(precedence)
	if !ok {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Binary, Text: tok.Literal, X: left, Y: right}
	n.Pos = p.tree.Node(left).Pos
	return p.tree.Add(n), true
}

func (p *Parser) parseAssign(left ast.NodeID) (ast.NodeID, bool) {
	tok := p.curToken
	if tok.Type == token.ASSIGN {
		if !p.toPattern(left, false) {
			return ast.NoNode, false
		}
	} else if !p.isSimpleTarget(left) {
		p.setCodedError(tok, errors.E1005, "invalid assignment target")
		return ast.NoNode, false
	}
	if err := p.nextToken(); err != nil {
		return ast.NoNode, false
	}
	// Assignment is right-associative: a = b = c
	right, ok := p.parseNode(ASSIGN - 1)
	if !ok {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Assign, Text: tok.Literal, X: left, Y: right}
	n.Pos = p.tree.Node(left).Pos
	return p.tree.Add(n), true
}

func (p *Parser) parseConditional(test ast.NodeID) (ast.NodeID, bool) {
	if err := p.nextToken(); err != nil {
		return ast.NoNode, false
	}
	cons, ok := p.withIn(p.parseAssignExpr)
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("conditional expression", token.COLON) {
		return ast.NoNode, false
	}
	p.nextToken()
	alt, ok := p.parseAssignExpr()
	if !ok {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Cond, X: test, Y: cons, Z: alt}
	n.Pos = p.tree.Node(test).Pos
	return p.tree.Add(n), true
}

func (p *Parser) parseSequence(first ast.NodeID) (ast.NodeID, bool) {
	items := []ast.NodeID{first}
	for {
		if err := p.nextToken(); err != nil {
			return ast.NoNode, false
		}
		item, ok := p.parseAssignExpr()
		if !ok {
			return ast.NoNode, false
		}
		items = append(items, item)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	n := ast.Node{Kind: ast.Sequence, List: items}
	n.Pos = p.tree.Node(first).Pos
	return p.tree.Add(n), true
}

func (p *Parser) parseGroupedExpr() (ast.NodeID, bool) {
	open := p.curToken
	return p.withIn(func() (ast.NodeID, bool) {
		// Empty params arrow function: () => ...
		if p.peekTokenIs(token.RPAREN) {
			p.nextToken()
			if !p.expectPeek("arrow function", token.ARROW) {
				return ast.NoNode, false
			}
			return p.parseArrowBody(open, nil, false)
		}
		var items []ast.NodeID
		arrowOnly := false
		for {
			p.nextToken()
			if p.curTokenIs(token.SPREAD) {
				rest, ok := p.parseRestElement()
				if !ok {
					return ast.NoNode, false
				}
				items = append(items, rest)
				arrowOnly = true
				break
			}
			item, ok := p.parseAssignExpr()
			if !ok {
				return ast.NoNode, false
			}
			items = append(items, item)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken() // move to ','
			if p.peekTokenIs(token.RPAREN) {
				// Trailing comma is only valid in arrow parameters.
				arrowOnly = true
				break
			}
		}
		if !p.expectPeek("grouped expression", token.RPAREN) {
			return ast.NoNode, false
		}
		if p.peekTokenIs(token.ARROW) && !p.peekToken.NewlineBefore {
			p.nextToken()
			if !p.toParams(items) {
				return ast.NoNode, false
			}
			return p.parseArrowBody(open, items, false)
		}
		if arrowOnly {
			p.peekError("arrow function parameters", token.ARROW, p.peekToken)
			return ast.NoNode, false
		}
		if len(items) == 1 {
			return items[0], true
		}
		return p.add(open, ast.Node{Kind: ast.Sequence, List: items}), true
	})
}

// parseRestElement parses "...target" with curToken on the ellipsis.
func (p *Parser) parseRestElement() (ast.NodeID, bool) {
	tok := p.curToken
	p.nextToken()
	target, ok := p.parseAssignExpr()
	if !ok {
		return ast.NoNode, false
	}
	return p.add(tok, ast.Node{Kind: ast.Rest, X: target}), true
}

// parseArrowBody parses the body of an arrow function with curToken on "=>".
func (p *Parser) parseArrowBody(start token.Token, params []ast.NodeID, async bool) (ast.NodeID, bool) {
	n := ast.Node{Kind: ast.Arrow, List: params}
	if async {
		n.Flags |= ast.FlagAsync
	}
	if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		body, ok := p.parseFunctionBody()
		if !ok {
			return ast.NoNode, false
		}
		n.Y = body
		return p.add(start, n), true
	}
	p.nextToken()
	body, ok := p.parseAssignExpr()
	if !ok {
		return ast.NoNode, false
	}
	n.Y = body
	n.Flags |= ast.FlagExprBody
	return p.add(start, n), true
}

func (p *Parser) parseMember(obj ast.NodeID) (ast.NodeID, bool) {
	if !isWord(p.peekToken) {
		p.peekError("property access", token.IDENT, p.peekToken)
		return ast.NoNode, false
	}
	p.nextToken()
	prop := p.newIdent(p.curToken)
	n := ast.Node{Kind: ast.Member, X: obj, Y: prop}
	n.Pos = p.tree.Node(obj).Pos
	return p.tree.Add(n), true
}

func (p *Parser) parseIndex(obj ast.NodeID) (ast.NodeID, bool) {
	p.nextToken()
	prop, ok := p.withIn(p.parseExpression)
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("index expression", token.RBRACKET) {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Index, X: obj, Y: prop}
	n.Pos = p.tree.Node(obj).Pos
	return p.tree.Add(n), true
}

func (p *Parser) parseOptionalChain(obj ast.NodeID) (ast.NodeID, bool) {
	var (
		id ast.NodeID
		ok bool
	)
	switch {
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		id, ok = p.parseCall(obj)
	case p.peekTokenIs(token.LBRACKET):
		p.nextToken()
		id, ok = p.parseIndex(obj)
	default:
		id, ok = p.parseMember(obj)
	}
	if !ok {
		return ast.NoNode, false
	}
	p.tree.Node(id).Flags |= ast.FlagOptional
	return id, true
}

func (p *Parser) parseCall(callee ast.NodeID) (ast.NodeID, bool) {
	args, ok := p.parseArguments()
	if !ok {
		return ast.NoNode, false
	}
	c := p.tree.Node(callee)
	// async (a, b) => body
	if c.Kind == ast.Ident && c.Text == "async" && p.peekTokenIs(token.ARROW) && !p.peekToken.NewlineBefore {
		p.nextToken()
		if !p.toParams(args) {
			return ast.NoNode, false
		}
		return p.parseArrowBody(token.Token{StartPosition: c.Pos}, args, true)
	}
	n := ast.Node{Kind: ast.Call, X: callee, List: args}
	n.Pos = c.Pos
	return p.tree.Add(n), true
}

// parseArguments parses a parenthesized argument list with curToken on
// "(", leaving curToken on ")".
func (p *Parser) parseArguments() ([]ast.NodeID, bool) {
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var args []ast.NodeID
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		spread := p.curToken
		if spread.Type == token.SPREAD {
			p.nextToken()
		}
		arg, ok := p.parseAssignExpr()
		if !ok {
			return nil, false
		}
		if spread.Type == token.SPREAD {
			arg = p.add(spread, ast.Node{Kind: ast.Spread, X: arg})
		}
		args = append(args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek("call arguments", token.RPAREN) {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseNew() (ast.NodeID, bool) {
	tok := p.curToken
	p.nextToken()
	// The constructor is a member expression; a following argument list
	// belongs to the new expression rather than to a call.
	callee, ok := p.parseNode(CALL)
	if !ok {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.New, X: callee}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		args, ok := p.parseArguments()
		if !ok {
			return ast.NoNode, false
		}
		n.List = args
	}
	return p.add(tok, n), true
}

func (p *Parser) parseYield() (ast.NodeID, bool) {
	tok := p.curToken
	n := ast.Node{Kind: ast.Yield}
	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken()
		n.Flags |= ast.FlagDelegate
	}
	if p.peekToken.NewlineBefore && !n.Flags.Has(ast.FlagDelegate) {
		return p.add(tok, n), true
	}
	switch p.peekToken.Type {
	case token.RPAREN, token.RBRACKET, token.RBRACE, token.COMMA,
		token.SEMICOLON, token.COLON, token.EOF:
		if !n.Flags.Has(ast.FlagDelegate) {
			return p.add(tok, n), true
		}
	}
	p.nextToken()
	arg, ok := p.parseAssignExpr()
	if !ok {
		return ast.NoNode, false
	}
	n.X = arg
	return p.add(tok, n), true
}

func (p *Parser) parseAwait() (ast.NodeID, bool) {
	tok := p.curToken
	p.nextToken()
	arg, ok := p.parseNode(PREFIX)
	if !ok {
		return ast.NoNode, false
	}
	return p.add(tok, ast.Node{Kind: ast.Await, X: arg}), true
}

// isSimpleTarget reports whether the node may be the operand of an update
// or compound assignment.
func (p *Parser) isSimpleTarget(id ast.NodeID) bool {
	n := p.tree.Node(id)
	switch n.Kind {
	case ast.Ident:
		return true
	case ast.Member, ast.Index:
		return !n.Flags.Has(ast.FlagOptional)
	}
	return false
}

// toPattern converts an expression that appeared on the left of "=" (or in
// a parameter list) into a destructuring target, rewriting node kinds in
// place. When binding is set, only identifiers may appear as leaves.
func (p *Parser) toPattern(id ast.NodeID, binding bool) bool {
	n := p.tree.Node(id)
	switch n.Kind {
	case ast.Ident:
		return true
	case ast.Member, ast.Index:
		if !binding && !n.Flags.Has(ast.FlagOptional) {
			return true
		}
	case ast.AssignPattern:
		return p.toPattern(n.X, binding)
	case ast.Assign:
		if n.Text == "=" {
			n.Kind = ast.AssignPattern
			n.Text = ""
			return p.toPattern(n.X, binding)
		}
	case ast.Rest:
		return p.toPattern(n.X, binding)
	case ast.Array:
		n.Kind = ast.ArrayPattern
		for i, el := range n.List {
			if el == ast.NoNode {
				continue
			}
			if p.tree.Kind(el) == ast.Spread {
				if i != len(n.List)-1 {
					p.setPatternError(el, "rest element must be last")
					return false
				}
				p.tree.Node(el).Kind = ast.Rest
			}
			if !p.toPattern(el, binding) {
				return false
			}
		}
		return true
	case ast.Object:
		n.Kind = ast.ObjectPattern
		for i, prop := range n.List {
			pn := p.tree.Node(prop)
			if pn.Kind == ast.Spread {
				if i != len(n.List)-1 {
					p.setPatternError(prop, "rest element must be last")
					return false
				}
				pn.Kind = ast.Rest
				if !p.toPattern(pn.X, binding) {
					return false
				}
				continue
			}
			if pn.Text != "init" {
				p.setPatternError(prop, "invalid destructuring target")
				return false
			}
			if !p.toPattern(pn.Y, binding) {
				return false
			}
		}
		return true
	}
	p.setPatternError(id, "invalid destructuring target")
	return false
}

// toParams converts parsed arrow function items into parameters.
func (p *Parser) toParams(items []ast.NodeID) bool {
	for i, item := range items {
		if p.tree.Kind(item) == ast.Rest && i != len(items)-1 {
			p.setPatternError(item, "rest parameter must be last")
			return false
		}
		if p.tree.Kind(item) == ast.Spread {
			p.tree.Node(item).Kind = ast.Rest
		}
		if !p.toPattern(item, true) {
			return false
		}
	}
	return true
}

func (p *Parser) setPatternError(id ast.NodeID, msg string) {
	pos := p.tree.Node(id).Pos
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Code:          errors.E1005,
		Message:       msg,
		File:          p.l.Filename(),
		StartPosition: pos,
		EndPosition:   pos,
		SourceCode:    p.l.GetLineText(token.Token{StartPosition: pos}),
	}))
}
