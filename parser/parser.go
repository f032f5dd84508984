// Package parser is used to generate the abstract syntax tree (AST) for a
// JavaScript program.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling parser.Parse() to produce the AST.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/internal/lexer"
	"github.com/deepnoodle-ai/varmask/internal/token"
)

type (
	prefixParseFn func() (ast.NodeID, bool)
	infixParseFn  func(ast.NodeID) (ast.NodeID, bool)
)

// Parse the provided input as JavaScript source code and return the AST.
// This is shorthand way to create a Lexer and Parser and then call Parse on
// that.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Tree, error) {
	var probe Parser
	for _, opt := range options {
		opt(&probe)
	}
	l := lexer.New(input, lexer.WithFile(probe.filename))
	p := New(l, options...)
	return p.Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in errors and node positions.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// MaxErrors is the maximum number of errors to collect before stopping.
const MaxErrors = 10

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// l is our lexer
	l *lexer.Lexer

	// tree receives the parsed nodes
	tree *ast.Tree

	// prevToken holds the previous token, which we already processed.
	prevToken token.Token

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []ParserError

	// stmtErrorCount tracks error count at start of current statement.
	// Used by inner methods to detect if an error was added during this statement.
	stmtErrorCount int

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn

	// noIn disables the "in" operator while parsing the head of a for
	// statement, so that "for (x in y)" is not read as a comparison.
	noIn bool

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:              l,
		tree:           ast.NewTree(),
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" {
		l.SetFilename(p.filename)
	}
	p.tree.File = p.filename

	// Prime the token pump
	p.nextToken() // makes curToken=<empty>, peekToken=token[0]
	p.nextToken() // makes curToken=token[0], peekToken=token[1]

	// Register prefix-functions
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.NUMBER, p.parseNumber)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.TRUE, p.parseLiteral)
	p.registerPrefix(token.FALSE, p.parseLiteral)
	p.registerPrefix(token.NULL, p.parseLiteral)
	p.registerPrefix(token.THIS, p.parseThis)
	p.registerPrefix(token.SUPER, p.parseSuper)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(token.FUNCTION, p.parseFuncExpr)
	p.registerPrefix(token.CLASS, p.parseClassExpr)
	p.registerPrefix(token.NEW, p.parseNew)
	p.registerPrefix(token.YIELD, p.parseYield)
	p.registerPrefix(token.AWAIT, p.parseAwait)
	for _, t := range []token.Type{token.BANG, token.MINUS, token.PLUS, token.TILDE,
		token.TYPEOF, token.VOID, token.DELETE} {
		p.registerPrefix(t, p.parsePrefixExpr)
	}
	p.registerPrefix(token.PLUS_PLUS, p.parsePrefixUpdate)
	p.registerPrefix(token.MINUS_MINUS, p.parsePrefixUpdate)
	p.registerPrefix(token.SLASH, p.parseRegexp)
	p.registerPrefix(token.SLASH_EQUALS, p.parseRegexp)
	p.registerPrefix(token.ILLEGAL, p.illegalToken)
	p.registerPrefix(token.EOF, p.illegalToken)

	// Register infix functions
	for t, prec := range precedences {
		switch {
		case prec == ASSIGN:
			p.registerInfix(t, p.parseAssign)
		case prec >= LOGICAL_OR && prec <= EXPONENT:
			p.registerInfix(t, p.parseInfixExpr)
		}
	}
	p.registerInfix(token.COMMA, p.parseSequence)
	p.registerInfix(token.QUESTION, p.parseConditional)
	p.registerInfix(token.PLUS_PLUS, p.parsePostfix)
	p.registerInfix(token.MINUS_MINUS, p.parsePostfix)
	p.registerInfix(token.PERIOD, p.parseMember)
	p.registerInfix(token.QUESTION_DOT, p.parseOptionalChain)
	p.registerInfix(token.LBRACKET, p.parseIndex)
	p.registerInfix(token.LPAREN, p.parseCall)
	return p
}

// advanceToken moves to the next token from the lexer without error checking.
// Used internally by synchronize() during error recovery.
func (p *Parser) advanceToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, _ = p.l.Next()
}

// nextToken moves to the next token from the lexer, updating all of
// prevToken, curToken, and peekToken.
func (p *Parser) nextToken() error {
	var err error
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, err = p.l.Next()
	if err == nil {
		return nil
	}
	// The lexer encountered an error. We consider all lexer errors
	// "syntax errors" and parsing will now be considered broken.
	p.addError(NewSyntaxError(ErrorOpts{
		Code:          lexerErrorCode(err),
		Cause:         err,
		File:          p.l.Filename(),
		StartPosition: p.peekToken.StartPosition,
		EndPosition:   p.peekToken.EndPosition,
		SourceCode:    p.l.GetLineText(p.peekToken),
	}))
	return err
}

func lexerErrorCode(err error) errors.ErrorCode {
	switch err.Error() {
	case "unterminated string literal":
		return errors.E1002
	case "template literals are not supported":
		return errors.E1007
	}
	if strings.HasPrefix(err.Error(), "invalid numeric literal") {
		return errors.E1008
	}
	return errors.E1003
}

// Parse the program that is provided via the lexer.
// Returns the AST and any errors encountered. If there are errors, the tree
// may be partial (containing only successfully parsed statements).
func (p *Parser) Parse(ctx context.Context) (*ast.Tree, error) {
	p.ctx = ctx
	// It's possible for errors to already exist because we read tokens from
	// the lexer in the constructor.
	if p.hasErrors() {
		return nil, NewErrors(p.errors)
	}
	var statements []ast.NodeID
	for !p.curTokenIs(token.EOF) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if p.tooManyErrors() {
			break
		}
		p.stmtErrorCount = len(p.errors)
		stmt, ok := p.parseStatement()
		if ok && !p.hadNewError() {
			statements = append(statements, stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}
	prog := p.tree.Add(ast.Node{Kind: ast.Program, List: statements})
	p.tree.SetRoot(prog)
	markDirectives(p.tree, prog)
	if p.hasErrors() {
		return p.tree, NewErrors(p.errors)
	}
	return p.tree, nil
}

// registerPrefix registers a function for handling a prefix-based statement.
func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers a function for handling an infix-based statement.
func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// addError appends an error to the errors slice.
func (p *Parser) addError(err ParserError) {
	p.errors = append(p.errors, err)
}

// hasErrors returns true if any errors have been recorded.
func (p *Parser) hasErrors() bool {
	return len(p.errors) > 0
}

// tooManyErrors returns true if error limit has been reached.
func (p *Parser) tooManyErrors() bool {
	return len(p.errors) >= MaxErrors
}

// hadNewError returns true if an error was added during the current statement.
func (p *Parser) hadNewError() bool {
	return len(p.errors) > p.stmtErrorCount
}

// synchronize skips tokens until a statement boundary is reached, leaving
// curToken on the last token of the broken statement. This is used for
// error recovery to continue parsing after an error.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) || p.curTokenIs(token.RBRACE) {
			return
		}
		if p.peekToken.NewlineBefore || p.peekTokenIs(token.EOF) {
			return
		}
		switch p.peekToken.Type {
		case token.VAR, token.LET, token.CONST, token.RETURN, token.IF, token.FOR,
			token.WHILE, token.FUNCTION, token.CLASS, token.SWITCH, token.TRY, token.THROW:
			return
		}
		prevPos := p.curToken.StartPosition
		p.advanceToken()
		// Safety: if we didn't advance (lexer stuck), bail out
		if p.curToken.StartPosition == prevPos {
			return
		}
	}
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Code:          errors.E1001,
		Message:       fmt.Sprintf("invalid syntax (unexpected %q)", t.Literal),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

// peekError raises an error if the next token is not the expected type.
func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	p.addError(NewParserError(ErrorOpts{
		ErrType: "parse error",
		Code:    errors.E1001,
		Message: fmt.Sprintf("unexpected %s while parsing %s (expected %s)",
			tokenDescription(got), context, tokenTypeDescription(expected)),
		File:          p.l.Filename(),
		StartPosition: got.StartPosition,
		EndPosition:   got.EndPosition,
		SourceCode:    p.l.GetLineText(got),
	}))
}

// cancelled checks if the parsing context has been cancelled.
// Returns true if cancelled, in which case parsing should stop.
func (p *Parser) cancelled() bool {
	if p.ctx == nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		p.addError(NewParserError(ErrorOpts{
			ErrType: "context error",
			Message: p.ctx.Err().Error(),
		}))
		return true
	default:
		return false
	}
}

// enter tracks recursion depth. It reports false, with an error recorded,
// once the maximum depth is exceeded. Every successful enter must be paired
// with a leave.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.depth--
		p.setCodedError(p.curToken, errors.E1009, "maximum nesting depth exceeded")
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) parseNode(precedence int) (ast.NodeID, bool) {
	if p.hadNewError() {
		return ast.NoNode, false
	}
	if !p.enter() {
		return ast.NoNode, false
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return ast.NoNode, false
	}
	left, ok := prefix()
	if !ok || p.hadNewError() {
		return ast.NoNode, false
	}
	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left, true
		}
		if err := p.nextToken(); err != nil {
			return ast.NoNode, false
		}
		left, ok = infix(left)
		if !ok || p.hadNewError() {
			return ast.NoNode, false
		}
	}
	return left, true
}

// parseExpression parses a full expression, including comma sequences.
func (p *Parser) parseExpression() (ast.NodeID, bool) {
	return p.parseNode(LOWEST)
}

// parseAssignExpr parses an expression that stops at a top-level comma, as
// used for arguments, elements, initializers and property values.
func (p *Parser) parseAssignExpr() (ast.NodeID, bool) {
	return p.parseNode(COMMA)
}

// withIn parses with the "in" operator enabled, as required inside
// brackets, parentheses and function bodies.
func (p *Parser) withIn(fn func() (ast.NodeID, bool)) (ast.NodeID, bool) {
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()
	return fn()
}

func (p *Parser) illegalToken() (ast.NodeID, bool) {
	if p.curTokenIs(token.EOF) {
		p.setCodedError(p.curToken, errors.E1004, "unexpected end of file")
		return ast.NoNode, false
	}
	p.setTokenError(p.curToken, "illegal token %s", p.curToken.Literal)
	return ast.NoNode, false
}

func (p *Parser) setTokenError(t token.Token, msg string, args ...interface{}) {
	p.setCodedError(t, errors.E1003, msg, args...)
}

func (p *Parser) setCodedError(t token.Token, code errors.ErrorCode, msg string, args ...interface{}) {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Code:          code,
		Message:       fmt.Sprintf(msg, args...),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

// add stores a node in the tree, positioned at the given token.
func (p *Parser) add(tok token.Token, n ast.Node) ast.NodeID {
	n.Pos = tok.StartPosition
	return p.tree.Add(n)
}

// newIdent creates a new Ident node from a token.
func (p *Parser) newIdent(tok token.Token) ast.NodeID {
	return p.add(tok, ast.Node{Kind: ast.Ident, Text: tok.Literal})
}

// curTokenIs returns true if the current token has the given type.
func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

// peekTokenIs returns true if the next token has the given type.
func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// peekIsWord reports whether the next token is an identifier with the
// given spelling. Contextual keywords such as "of" are lexed as identifiers.
func (p *Parser) peekIsWord(word string) bool {
	return p.peekToken.Type == token.IDENT && p.peekToken.Literal == word
}

// expectPeek validates if the next token is of the given type, and advances if
// it is. If it's a different type, then an error is stored.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(context, t, p.peekToken)
	return false
}

// peekPrecedence returns the precedence of the next token.
func (p *Parser) peekPrecedence() int {
	switch p.peekToken.Type {
	case token.IN:
		if p.noIn {
			return LOWEST
		}
	case token.PLUS_PLUS, token.MINUS_MINUS:
		// Postfix operators must be on the same line as their operand.
		if p.peekToken.NewlineBefore {
			return LOWEST
		}
	}
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

// currentPrecedence returns the precedence of the current token.
func (p *Parser) currentPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// consumeSemicolon ends a statement: either an explicit semicolon, or an
// automatically inserted one before "}", end of file or a line break.
func (p *Parser) consumeSemicolon(context string) bool {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return true
	}
	if p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) || p.peekToken.NewlineBefore {
		return true
	}
	p.setCodedError(p.peekToken, errors.E1001, "unexpected token %q following %s",
		p.peekToken.Literal, context)
	return false
}

// isWord reports whether the token is spelled like an identifier. Reserved
// words are valid property names.
func isWord(t token.Token) bool {
	return t.Type == token.IDENT || token.IsKeyword(t.Literal)
}
