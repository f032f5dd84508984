// Package lexer converts JavaScript source text into a stream of tokens.
//
// The lexer covers the subset of the language accepted by the parser. Line
// terminators are not emitted as tokens; instead every token records whether a
// newline preceded it, which is all automatic semicolon insertion needs.
// Template literals and regular expression literals are rejected.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deepnoodle-ai/varmask/internal/token"
)

// Lexer holds our object-state.
type Lexer struct {
	input     string
	position  int // byte offset of the next unread character
	line      int
	lineStart int
	file      string
}

// State is a snapshot of the lexer position, used for bounded lookahead.
type State struct {
	position  int
	line      int
	lineStart int
}

// Option is a configuration function for a Lexer.
type Option func(*Lexer)

// WithFile sets the file name for the Lexer.
func WithFile(file string) Option {
	return func(l *Lexer) {
		l.file = file
	}
}

// New creates a Lexer instance for the given input.
func New(input string, options ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range options {
		opt(l)
	}
	// A leading hashbang line is treated as a comment.
	if strings.HasPrefix(input, "#!") {
		for l.position < len(l.input) && l.input[l.position] != '\n' {
			l.position++
		}
	}
	return l
}

// SetFilename sets the file name used in token positions.
func (l *Lexer) SetFilename(file string) {
	l.file = file
}

// Filename returns the file name used in token positions.
func (l *Lexer) Filename() string {
	return l.file
}

// Position returns the current position of the lexer.
func (l *Lexer) Position() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.position - l.lineStart,
		File:      l.file,
	}
}

// SaveState captures the lexer position so it can be restored later.
func (l *Lexer) SaveState() State {
	return State{position: l.position, line: l.line, lineStart: l.lineStart}
}

// RestoreState rewinds the lexer to a previously saved state.
func (l *Lexer) RestoreState(s State) {
	l.position = s.position
	l.line = s.line
	l.lineStart = s.lineStart
}

// GetLineText returns the full line of source text containing the token.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start > len(l.input) {
		return ""
	}
	// An EOF token sitting on an empty trailing line reports the previous
	// line, which is the more useful context.
	if tok.Type == token.EOF && start == len(l.input) && start > 0 {
		end := start - 1
		if end > 0 && l.input[end-1] == '\r' {
			end--
		}
		begin := strings.LastIndexByte(l.input[:end], '\n') + 1
		return l.input[begin:end]
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return strings.TrimSuffix(l.input[start:], "\r")
	}
	return strings.TrimSuffix(l.input[start:start+end], "\r")
}

// Next returns the next token from the input. At the end of the input an EOF
// token is returned, repeatedly if called again.
func (l *Lexer) Next() (token.Token, error) {
	newline, err := l.skipWhitespaceAndComments()
	if err != nil {
		pos := l.Position()
		return token.Token{Type: token.ILLEGAL, StartPosition: pos, EndPosition: pos}, err
	}
	start := l.Position()
	if l.position >= len(l.input) {
		return token.Token{
			Type:          token.EOF,
			StartPosition: start,
			EndPosition:   start,
			NewlineBefore: newline,
		}, nil
	}
	tok, err := l.scan(start)
	tok.StartPosition = start
	tok.EndPosition = l.Position()
	tok.NewlineBefore = newline
	return tok, err
}

func (l *Lexer) peekByte(offset int) byte {
	if l.position+offset < len(l.input) {
		return l.input[l.position+offset]
	}
	return 0
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.position
}

// skipWhitespaceAndComments advances past insignificant input and reports
// whether a line terminator was crossed.
func (l *Lexer) skipWhitespaceAndComments() (bool, error) {
	sawNewline := false
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch {
		case ch == '\n':
			l.position++
			l.newline()
			sawNewline = true
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f':
			l.position++
		case ch == '/' && l.peekByte(1) == '/':
			for l.position < len(l.input) && l.input[l.position] != '\n' {
				l.position++
			}
		case ch == '/' && l.peekByte(1) == '*':
			l.position += 2
			closed := false
			for l.position < len(l.input) {
				if l.input[l.position] == '*' && l.peekByte(1) == '/' {
					l.position += 2
					closed = true
					break
				}
				if l.input[l.position] == '\n' {
					l.position++
					l.newline()
					sawNewline = true
					continue
				}
				l.position++
			}
			if !closed {
				return sawNewline, fmt.Errorf("unterminated multiline comment")
			}
		case ch >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(l.input[l.position:])
			if r == '\u2028' || r == '\u2029' {
				l.position += size
				l.newline()
				sawNewline = true
			} else if unicode.IsSpace(r) || r == '\ufeff' {
				l.position += size
			} else {
				return sawNewline, nil
			}
		default:
			return sawNewline, nil
		}
	}
	return sawNewline, nil
}

// punctuators is ordered longest first so the scanner is greedy.
var punctuators = []struct {
	text string
	typ  token.Type
}{
	{">>>=", token.GT_GT_GT_EQUALS},
	{"...", token.SPREAD},
	{"===", token.EQ_STRICT},
	{"!==", token.NE_STRICT},
	{"**=", token.POW_EQUALS},
	{"<<=", token.LT_LT_EQUALS},
	{">>=", token.GT_GT_EQUALS},
	{">>>", token.GT_GT_GT},
	{"&&=", token.AND_EQUALS},
	{"||=", token.OR_EQUALS},
	{"??=", token.NULLISH_EQUALS},
	{"=>", token.ARROW},
	{"==", token.EQ},
	{"!=", token.NOT_EQ},
	{"<=", token.LT_EQUALS},
	{">=", token.GT_EQUALS},
	{"&&", token.AND},
	{"||", token.OR},
	{"??", token.NULLISH},
	{"?.", token.QUESTION_DOT},
	{"++", token.PLUS_PLUS},
	{"--", token.MINUS_MINUS},
	{"+=", token.PLUS_EQUALS},
	{"-=", token.MINUS_EQUALS},
	{"*=", token.ASTERISK_EQUALS},
	{"/=", token.SLASH_EQUALS},
	{"%=", token.MOD_EQUALS},
	{"&=", token.AMPERSAND_EQUALS},
	{"|=", token.BITOR_EQUALS},
	{"^=", token.CARET_EQUALS},
	{"**", token.POW},
	{"<<", token.LT_LT},
	{">>", token.GT_GT},
	{"{", token.LBRACE},
	{"}", token.RBRACE},
	{"(", token.LPAREN},
	{")", token.RPAREN},
	{"[", token.LBRACKET},
	{"]", token.RBRACKET},
	{";", token.SEMICOLON},
	{",", token.COMMA},
	{":", token.COLON},
	{".", token.PERIOD},
	{"?", token.QUESTION},
	{"!", token.BANG},
	{"~", token.TILDE},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.ASTERISK},
	{"/", token.SLASH},
	{"%", token.MOD},
	{"&", token.AMPERSAND},
	{"|", token.BITOR},
	{"^", token.CARET},
	{"<", token.LT},
	{">", token.GT},
	{"=", token.ASSIGN},
}

func (l *Lexer) scan(start token.Position) (token.Token, error) {
	ch := l.input[l.position]
	switch {
	case ch == '"' || ch == '\'':
		return l.readString(ch)
	case ch == '`':
		l.position++
		return token.Token{Type: token.ILLEGAL, Literal: "`"},
			fmt.Errorf("template literals are not supported")
	case isDigit(ch) || (ch == '.' && isDigit(l.peekByte(1))):
		return l.readNumber()
	case isIdentifierStart(ch):
		return l.readIdentifier()
	case ch >= utf8.RuneSelf:
		r, _ := utf8.DecodeRuneInString(l.input[l.position:])
		if unicode.IsLetter(r) {
			return l.readIdentifier()
		}
	}
	rest := l.input[l.position:]
	for _, p := range punctuators {
		if strings.HasPrefix(rest, p.text) {
			// "?." followed by a digit is a conditional with a decimal literal.
			if p.typ == token.QUESTION_DOT && isDigit(l.peekByte(2)) {
				continue
			}
			l.position += len(p.text)
			return token.Token{Type: p.typ, Literal: p.text}, nil
		}
	}
	r, size := utf8.DecodeRuneInString(rest)
	l.position += size
	return token.Token{Type: token.ILLEGAL, Literal: string(r)},
		fmt.Errorf("unexpected character: %q", r)
}

func (l *Lexer) readIdentifier() (token.Token, error) {
	begin := l.position
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch < utf8.RuneSelf {
			if !isIdentifierPart(ch) {
				break
			}
			l.position++
			continue
		}
		r, size := utf8.DecodeRuneInString(l.input[l.position:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.position += size
	}
	word := l.input[begin:l.position]
	return token.Token{Type: token.LookupIdentifier(word), Literal: word}, nil
}

func (l *Lexer) readNumber() (token.Token, error) {
	begin := l.position
	if l.input[l.position] == '0' {
		switch l.peekByte(1) {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			l.position += 2
			digits := l.position
			for l.position < len(l.input) && isHexDigit(l.input[l.position]) {
				l.position++
			}
			if l.position == digits || (l.position < len(l.input) && isIdentifierPart(l.input[l.position])) {
				l.skipIdentifierParts()
				return token.Token{Type: token.ILLEGAL, Literal: l.input[begin:l.position]},
					fmt.Errorf("invalid numeric literal: %s", l.input[begin:l.position])
			}
			return token.Token{Type: token.NUMBER, Literal: l.input[begin:l.position]}, nil
		}
	}
	for l.position < len(l.input) && isDigit(l.input[l.position]) {
		l.position++
	}
	if l.position < len(l.input) && l.input[l.position] == '.' {
		l.position++
		for l.position < len(l.input) && isDigit(l.input[l.position]) {
			l.position++
		}
	}
	if l.position < len(l.input) && (l.input[l.position] == 'e' || l.input[l.position] == 'E') {
		l.position++
		if l.position < len(l.input) && (l.input[l.position] == '+' || l.input[l.position] == '-') {
			l.position++
		}
		digits := l.position
		for l.position < len(l.input) && isDigit(l.input[l.position]) {
			l.position++
		}
		if l.position == digits {
			return token.Token{Type: token.ILLEGAL, Literal: l.input[begin:l.position]},
				fmt.Errorf("invalid numeric literal: %s", l.input[begin:l.position])
		}
	}
	if l.position < len(l.input) && isIdentifierStart(l.input[l.position]) {
		l.skipIdentifierParts()
		return token.Token{Type: token.ILLEGAL, Literal: l.input[begin:l.position]},
			fmt.Errorf("invalid numeric literal: %s", l.input[begin:l.position])
	}
	return token.Token{Type: token.NUMBER, Literal: l.input[begin:l.position]}, nil
}

func (l *Lexer) skipIdentifierParts() {
	for l.position < len(l.input) && isIdentifierPart(l.input[l.position]) {
		l.position++
	}
}

// readString reads a quoted string. The literal keeps the quotes and escape
// sequences exactly as written so the printer can reproduce the source.
func (l *Lexer) readString(quote byte) (token.Token, error) {
	begin := l.position
	l.position++ // opening quote
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch ch {
		case quote:
			l.position++
			return token.Token{Type: token.STRING, Literal: l.input[begin:l.position]}, nil
		case '\\':
			l.position++
			if l.position >= len(l.input) {
				break
			}
			if l.input[l.position] == '\r' && l.peekByte(1) == '\n' {
				l.position++
			}
			if l.input[l.position] == '\n' {
				l.position++
				l.newline()
				continue
			}
			l.position++
		case '\n':
			return token.Token{Type: token.ILLEGAL, Literal: l.input[begin:l.position]},
				fmt.Errorf("unterminated string literal")
		default:
			l.position++
		}
	}
	return token.Token{Type: token.ILLEGAL, Literal: l.input[begin:l.position]},
		fmt.Errorf("unterminated string literal")
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isIdentifierStart(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_' || ch == '$'
}

func isIdentifierPart(ch byte) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}
