// Package token defines language keywords and tokens used when lexing source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes.
// Note: This assumes the advance does not cross line boundaries.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position

	// NewlineBefore is set when at least one line terminator separates this
	// token from the previous one. The parser uses it for automatic
	// semicolon insertion and restricted productions.
	NewlineBefore bool
}

// Token types
const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	IDENT  Type = "IDENT"
	NUMBER Type = "NUMBER"
	STRING Type = "STRING"

	// Punctuators
	LBRACE    Type = "{"
	RBRACE    Type = "}"
	LPAREN    Type = "("
	RPAREN    Type = ")"
	LBRACKET  Type = "["
	RBRACKET  Type = "]"
	SEMICOLON Type = ";"
	COMMA     Type = ","
	COLON     Type = ":"
	PERIOD    Type = "."
	SPREAD    Type = "..."
	ARROW     Type = "=>"

	QUESTION     Type = "?"
	QUESTION_DOT Type = "?."
	NULLISH      Type = "??"
	AND          Type = "&&"
	OR           Type = "||"
	BANG         Type = "!"
	TILDE        Type = "~"

	PLUS        Type = "+"
	MINUS       Type = "-"
	ASTERISK    Type = "*"
	SLASH       Type = "/"
	MOD         Type = "%"
	POW         Type = "**"
	PLUS_PLUS   Type = "++"
	MINUS_MINUS Type = "--"

	AMPERSAND Type = "&"
	BITOR     Type = "|"
	CARET     Type = "^"
	LT_LT     Type = "<<"
	GT_GT     Type = ">>"
	GT_GT_GT  Type = ">>>"

	LT        Type = "<"
	GT        Type = ">"
	LT_EQUALS Type = "<="
	GT_EQUALS Type = ">="
	EQ        Type = "=="
	NOT_EQ    Type = "!="
	EQ_STRICT Type = "==="
	NE_STRICT Type = "!=="

	ASSIGN           Type = "="
	PLUS_EQUALS      Type = "+="
	MINUS_EQUALS     Type = "-="
	ASTERISK_EQUALS  Type = "*="
	SLASH_EQUALS     Type = "/="
	MOD_EQUALS       Type = "%="
	POW_EQUALS       Type = "**="
	LT_LT_EQUALS     Type = "<<="
	GT_GT_EQUALS     Type = ">>="
	GT_GT_GT_EQUALS  Type = ">>>="
	AMPERSAND_EQUALS Type = "&="
	BITOR_EQUALS     Type = "|="
	CARET_EQUALS     Type = "^="
	AND_EQUALS       Type = "&&="
	OR_EQUALS        Type = "||="
	NULLISH_EQUALS   Type = "??="

	// Keywords
	BREAK      Type = "BREAK"
	CASE       Type = "CASE"
	CATCH      Type = "CATCH"
	CLASS      Type = "CLASS"
	CONST      Type = "CONST"
	CONTINUE   Type = "CONTINUE"
	DEBUGGER   Type = "DEBUGGER"
	DEFAULT    Type = "DEFAULT"
	DELETE     Type = "DELETE"
	DO         Type = "DO"
	ELSE       Type = "ELSE"
	EXTENDS    Type = "EXTENDS"
	FALSE      Type = "FALSE"
	FINALLY    Type = "FINALLY"
	FOR        Type = "FOR"
	FUNCTION   Type = "FUNCTION"
	IF         Type = "IF"
	IN         Type = "IN"
	INSTANCEOF Type = "INSTANCEOF"
	LET        Type = "LET"
	NEW        Type = "NEW"
	NULL       Type = "NULL"
	RETURN     Type = "RETURN"
	SUPER      Type = "SUPER"
	SWITCH     Type = "SWITCH"
	THIS       Type = "THIS"
	THROW      Type = "THROW"
	TRUE       Type = "TRUE"
	TRY        Type = "TRY"
	TYPEOF     Type = "TYPEOF"
	VAR        Type = "VAR"
	VOID       Type = "VOID"
	WHILE      Type = "WHILE"
	YIELD      Type = "YIELD"
	AWAIT      Type = "AWAIT"
)

// Reserved keywords. Contextual words such as "of", "get", "set", "static"
// and "async" are lexed as identifiers and recognized by the parser.
var keywords = map[string]Type{
	"await":      AWAIT,
	"break":      BREAK,
	"case":       CASE,
	"catch":      CATCH,
	"class":      CLASS,
	"const":      CONST,
	"continue":   CONTINUE,
	"debugger":   DEBUGGER,
	"default":    DEFAULT,
	"delete":     DELETE,
	"do":         DO,
	"else":       ELSE,
	"extends":    EXTENDS,
	"false":      FALSE,
	"finally":    FINALLY,
	"for":        FOR,
	"function":   FUNCTION,
	"if":         IF,
	"in":         IN,
	"instanceof": INSTANCEOF,
	"let":        LET,
	"new":        NEW,
	"null":       NULL,
	"return":     RETURN,
	"super":      SUPER,
	"switch":     SWITCH,
	"this":       THIS,
	"throw":      THROW,
	"true":       TRUE,
	"try":        TRY,
	"typeof":     TYPEOF,
	"var":        VAR,
	"void":       VOID,
	"while":      WHILE,
	"yield":      YIELD,
}

// LookupIdentifier used to determinate whether identifier is keyword nor not
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether the given word is a reserved keyword.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// IsAssignment reports whether the token type is "=" or a compound
// assignment operator.
func IsAssignment(t Type) bool {
	switch t {
	case ASSIGN, PLUS_EQUALS, MINUS_EQUALS, ASTERISK_EQUALS, SLASH_EQUALS,
		MOD_EQUALS, POW_EQUALS, LT_LT_EQUALS, GT_GT_EQUALS, GT_GT_GT_EQUALS,
		AMPERSAND_EQUALS, BITOR_EQUALS, CARET_EQUALS, AND_EQUALS, OR_EQUALS,
		NULLISH_EQUALS:
		return true
	}
	return false
}
