package parser

import (
	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/internal/token"
)

// Statement parsing methods for the Parser.
// Each method is entered with curToken on the first token of the statement
// and leaves curToken on its last token, including any semicolon.

func (p *Parser) parseStatement() (ast.NodeID, bool) {
	if !p.enter() {
		return ast.NoNode, false
	}
	defer p.leave()

	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.SEMICOLON:
		return p.add(p.curToken, ast.Node{Kind: ast.Empty}), true
	case token.VAR, token.LET, token.CONST:
		decl, ok := p.parseVarDecl()
		if !ok || !p.consumeSemicolon("variable declaration") {
			return ast.NoNode, false
		}
		return decl, true
	case token.FUNCTION:
		return p.parseFunction(ast.FuncDecl, p.curToken, false)
	case token.CLASS:
		return p.parseClass(ast.ClassDecl)
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		return p.parseJump(ast.Break)
	case token.CONTINUE:
		return p.parseJump(ast.Continue)
	case token.THROW:
		return p.parseThrow()
	case token.TRY:
		return p.parseTry()
	case token.SWITCH:
		return p.parseSwitch()
	case token.DEBUGGER:
		stmt := p.add(p.curToken, ast.Node{Kind: ast.Debugger})
		if !p.consumeSemicolon("debugger statement") {
			return ast.NoNode, false
		}
		return stmt, true
	case token.IDENT:
		if p.curToken.Literal == "async" && p.peekTokenIs(token.FUNCTION) && !p.peekToken.NewlineBefore {
			start := p.curToken
			p.nextToken()
			return p.parseFunction(ast.FuncDecl, start, true)
		}
		if p.peekTokenIs(token.COLON) {
			return p.parseLabeled()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() (ast.NodeID, bool) {
	tok := p.curToken
	expr, ok := p.parseExpression()
	if !ok {
		return ast.NoNode, false
	}
	if !p.consumeSemicolon("expression") {
		return ast.NoNode, false
	}
	return p.add(tok, ast.Node{Kind: ast.ExprStmt, X: expr}), true
}

// parseBlock parses statements between braces with curToken on "{",
// leaving curToken on "}".
func (p *Parser) parseBlock() (ast.NodeID, bool) {
	open := p.curToken
	stmts, ok := p.parseStatementsUntil(token.RBRACE)
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("block", token.RBRACE) {
		return ast.NoNode, false
	}
	return p.add(open, ast.Node{Kind: ast.Block, List: stmts}), true
}

// parseStatementsUntil parses statements until the next token is one of
// the given terminators or end of file.
func (p *Parser) parseStatementsUntil(terminators ...token.Type) ([]ast.NodeID, bool) {
	var stmts []ast.NodeID
	for {
		for _, t := range terminators {
			if p.peekTokenIs(t) {
				return stmts, true
			}
		}
		if p.peekTokenIs(token.EOF) {
			return stmts, true
		}
		if p.cancelled() {
			return nil, false
		}
		p.nextToken()
		stmt, ok := p.parseStatement()
		if !ok {
			return nil, false
		}
		stmts = append(stmts, stmt)
	}
}

// parseVarDecl parses a var, let or const declaration without its
// terminating semicolon.
func (p *Parser) parseVarDecl() (ast.NodeID, bool) {
	start := p.curToken
	n := ast.Node{Kind: ast.VarDecl, Text: start.Literal}
	for {
		p.nextToken()
		declTok := p.curToken
		target, ok := p.parseBindingTarget()
		if !ok {
			return ast.NoNode, false
		}
		decl := ast.Node{Kind: ast.Declarator, X: target}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			init, ok := p.parseAssignExpr()
			if !ok {
				return ast.NoNode, false
			}
			decl.Y = init
		}
		n.List = append(n.List, p.add(declTok, decl))
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return p.add(start, n), true
}

// parseCondition parses "( expr )" following a keyword such as if or while.
func (p *Parser) parseCondition(context string) (ast.NodeID, bool) {
	if !p.expectPeek(context, token.LPAREN) {
		return ast.NoNode, false
	}
	p.nextToken()
	cond, ok := p.withIn(p.parseExpression)
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek(context, token.RPAREN) {
		return ast.NoNode, false
	}
	return cond, true
}

// parseBody parses the statement that follows a loop or if header.
func (p *Parser) parseBody() (ast.NodeID, bool) {
	p.nextToken()
	return p.parseStatement()
}

func (p *Parser) parseIf() (ast.NodeID, bool) {
	start := p.curToken
	cond, ok := p.parseCondition("if statement")
	if !ok {
		return ast.NoNode, false
	}
	cons, ok := p.parseBody()
	if !ok {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.If, X: cond, Y: cons}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		alt, ok := p.parseBody()
		if !ok {
			return ast.NoNode, false
		}
		n.Z = alt
	}
	return p.add(start, n), true
}

func (p *Parser) parseWhile() (ast.NodeID, bool) {
	start := p.curToken
	cond, ok := p.parseCondition("while statement")
	if !ok {
		return ast.NoNode, false
	}
	body, ok := p.parseBody()
	if !ok {
		return ast.NoNode, false
	}
	return p.add(start, ast.Node{Kind: ast.While, X: cond, W: body}), true
}

func (p *Parser) parseDoWhile() (ast.NodeID, bool) {
	start := p.curToken
	body, ok := p.parseBody()
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("do statement", token.WHILE) {
		return ast.NoNode, false
	}
	cond, ok := p.parseCondition("do statement")
	if !ok {
		return ast.NoNode, false
	}
	// The semicolon after do-while is always optional.
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return p.add(start, ast.Node{Kind: ast.DoWhile, X: cond, W: body}), true
}

// parseFor parses the three forms of the for statement. The head is parsed
// with the "in" operator disabled until it is known which form applies.
func (p *Parser) parseFor() (ast.NodeID, bool) {
	start := p.curToken
	if !p.expectPeek("for statement", token.LPAREN) {
		return ast.NoNode, false
	}
	var (
		init ast.NodeID
		ok   bool
	)
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		saved := p.noIn
		p.noIn = true
		switch p.curToken.Type {
		case token.VAR, token.LET, token.CONST:
			init, ok = p.parseVarDecl()
		default:
			init, ok = p.parseExpression()
		}
		p.noIn = saved
		if !ok {
			return ast.NoNode, false
		}
		if p.peekTokenIs(token.IN) || p.peekIsWord("of") {
			return p.parseForInOf(start, init)
		}
	}
	if !p.expectPeek("for statement", token.SEMICOLON) {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.For, X: init}
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		if n.Y, ok = p.withIn(p.parseExpression); !ok {
			return ast.NoNode, false
		}
	}
	if !p.expectPeek("for statement", token.SEMICOLON) {
		return ast.NoNode, false
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		if n.Z, ok = p.withIn(p.parseExpression); !ok {
			return ast.NoNode, false
		}
	}
	if !p.expectPeek("for statement", token.RPAREN) {
		return ast.NoNode, false
	}
	if n.W, ok = p.parseBody(); !ok {
		return ast.NoNode, false
	}
	return p.add(start, n), true
}

func (p *Parser) parseForInOf(start token.Token, target ast.NodeID) (ast.NodeID, bool) {
	kind := ast.ForIn
	if p.peekIsWord("of") {
		kind = ast.ForOf
	}
	if p.tree.Kind(target) == ast.VarDecl {
		decls := p.tree.Node(target).List
		if len(decls) != 1 || p.tree.Node(decls[0]).Y != ast.NoNode {
			p.setCodedError(p.peekToken, errors.E1005,
				"for-%s loop variable declaration must have a single binding without initializer",
				p.peekToken.Literal)
			return ast.NoNode, false
		}
	} else if !p.toPattern(target, false) {
		return ast.NoNode, false
	}
	p.nextToken()
	p.nextToken()
	var (
		right ast.NodeID
		ok    bool
	)
	if kind == ast.ForOf {
		right, ok = p.withIn(p.parseAssignExpr)
	} else {
		right, ok = p.withIn(p.parseExpression)
	}
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("for statement", token.RPAREN) {
		return ast.NoNode, false
	}
	body, ok := p.parseBody()
	if !ok {
		return ast.NoNode, false
	}
	return p.add(start, ast.Node{Kind: kind, X: target, Y: right, W: body}), true
}

func (p *Parser) parseReturn() (ast.NodeID, bool) {
	start := p.curToken
	n := ast.Node{Kind: ast.Return}
	if !p.atStatementEnd() {
		p.nextToken()
		value, ok := p.parseExpression()
		if !ok {
			return ast.NoNode, false
		}
		n.X = value
	}
	if !p.consumeSemicolon("return statement") {
		return ast.NoNode, false
	}
	return p.add(start, n), true
}

// atStatementEnd reports whether the statement may end before the next
// token, either explicitly or by semicolon insertion.
func (p *Parser) atStatementEnd() bool {
	switch p.peekToken.Type {
	case token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	return p.peekToken.NewlineBefore
}

// parseJump parses break and continue with an optional label.
func (p *Parser) parseJump(kind ast.Kind) (ast.NodeID, bool) {
	start := p.curToken
	n := ast.Node{Kind: kind}
	if p.peekTokenIs(token.IDENT) && !p.peekToken.NewlineBefore {
		p.nextToken()
		n.Text = p.curToken.Literal
	}
	if !p.consumeSemicolon(start.Literal + " statement") {
		return ast.NoNode, false
	}
	return p.add(start, n), true
}

func (p *Parser) parseThrow() (ast.NodeID, bool) {
	start := p.curToken
	if p.peekToken.NewlineBefore {
		p.setCodedError(p.peekToken, errors.E1001, "line break is not allowed after throw")
		return ast.NoNode, false
	}
	p.nextToken()
	value, ok := p.parseExpression()
	if !ok {
		return ast.NoNode, false
	}
	if !p.consumeSemicolon("throw statement") {
		return ast.NoNode, false
	}
	return p.add(start, ast.Node{Kind: ast.Throw, X: value}), true
}

func (p *Parser) parseTry() (ast.NodeID, bool) {
	start := p.curToken
	if !p.expectPeek("try statement", token.LBRACE) {
		return ast.NoNode, false
	}
	block, ok := p.parseBlock()
	if !ok {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Try, X: block}
	if p.peekTokenIs(token.CATCH) {
		p.nextToken()
		catchTok := p.curToken
		c := ast.Node{Kind: ast.Catch}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			param, ok := p.parseBindingTarget()
			if !ok {
				return ast.NoNode, false
			}
			c.X = param
			if !p.expectPeek("catch clause", token.RPAREN) {
				return ast.NoNode, false
			}
		}
		if !p.expectPeek("catch clause", token.LBRACE) {
			return ast.NoNode, false
		}
		if c.W, ok = p.parseBlock(); !ok {
			return ast.NoNode, false
		}
		n.Y = p.add(catchTok, c)
	}
	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek("finally clause", token.LBRACE) {
			return ast.NoNode, false
		}
		if n.Z, ok = p.parseBlock(); !ok {
			return ast.NoNode, false
		}
	}
	if n.Y == ast.NoNode && n.Z == ast.NoNode {
		p.setCodedError(p.peekToken, errors.E1001, "try statement requires catch or finally")
		return ast.NoNode, false
	}
	return p.add(start, n), true
}

func (p *Parser) parseSwitch() (ast.NodeID, bool) {
	start := p.curToken
	disc, ok := p.parseCondition("switch statement")
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("switch statement", token.LBRACE) {
		return ast.NoNode, false
	}
	n := ast.Node{Kind: ast.Switch, X: disc}
	seenDefault := false
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		caseTok := p.curToken
		c := ast.Node{Kind: ast.Case}
		switch caseTok.Type {
		case token.CASE:
			p.nextToken()
			if c.X, ok = p.withIn(p.parseExpression); !ok {
				return ast.NoNode, false
			}
		case token.DEFAULT:
			if seenDefault {
				p.setCodedError(caseTok, errors.E1001, "switch statement has multiple default clauses")
				return ast.NoNode, false
			}
			seenDefault = true
		default:
			p.setCodedError(caseTok, errors.E1001, "unexpected %s in switch statement (expected case or default)",
				tokenDescription(caseTok))
			return ast.NoNode, false
		}
		if !p.expectPeek("case clause", token.COLON) {
			return ast.NoNode, false
		}
		if c.List, ok = p.parseStatementsUntil(token.CASE, token.DEFAULT, token.RBRACE); !ok {
			return ast.NoNode, false
		}
		n.List = append(n.List, p.add(caseTok, c))
	}
	if !p.expectPeek("switch statement", token.RBRACE) {
		return ast.NoNode, false
	}
	return p.add(start, n), true
}

func (p *Parser) parseLabeled() (ast.NodeID, bool) {
	start := p.curToken
	p.nextToken() // ":"
	body, ok := p.parseBody()
	if !ok {
		return ast.NoNode, false
	}
	return p.add(start, ast.Node{Kind: ast.Labeled, Text: start.Literal, W: body}), true
}
