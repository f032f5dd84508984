package lexer

import (
	"testing"

	"github.com/deepnoodle-ai/varmask/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	expectedType    token.Type
	expectedLiteral string
}

func checkTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		require.Nil(t, err)
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - Literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNull(t *testing.T) {
	checkTokens(t, "a = null;", []expectedToken{
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.NULL, "null"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	})
}

func TestNextToken1(t *testing.T) {
	checkTokens(t, "%=+(){},;?|| &&++--***=...&?.??=>>>=!==", []expectedToken{
		{token.MOD_EQUALS, "%="},
		{token.PLUS, "+"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.COMMA, ","},
		{token.SEMICOLON, ";"},
		{token.QUESTION, "?"},
		{token.OR, "||"},
		{token.AND, "&&"},
		{token.PLUS_PLUS, "++"},
		{token.MINUS_MINUS, "--"},
		{token.POW, "**"},
		{token.ASTERISK_EQUALS, "*="},
		{token.SPREAD, "..."},
		{token.AMPERSAND, "&"},
		{token.QUESTION_DOT, "?."},
		{token.NULLISH_EQUALS, "??="},
		{token.GT_GT_GT_EQUALS, ">>>="},
		{token.NE_STRICT, "!=="},
		{token.EOF, ""},
	})
}

func TestNextToken2(t *testing.T) {
	input := `var five = 5;
let ten = 10;
const add = (x, y) => x + y;
function sum(a, ...rest) { return a === rest[0]; }`
	checkTokens(t, input, []expectedToken{
		{token.VAR, "var"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "ten"},
		{token.ASSIGN, "="},
		{token.NUMBER, "10"},
		{token.SEMICOLON, ";"},
		{token.CONST, "const"},
		{token.IDENT, "add"},
		{token.ASSIGN, "="},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.ARROW, "=>"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.FUNCTION, "function"},
		{token.IDENT, "sum"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.SPREAD, "..."},
		{token.IDENT, "rest"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.EQ_STRICT, "==="},
		{token.IDENT, "rest"},
		{token.LBRACKET, "["},
		{token.NUMBER, "0"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	checkTokens(t, "0 12 3.5 .5 1e3 2E-4 0xff 0b101 0o17", []expectedToken{
		{token.NUMBER, "0"},
		{token.NUMBER, "12"},
		{token.NUMBER, "3.5"},
		{token.NUMBER, ".5"},
		{token.NUMBER, "1e3"},
		{token.NUMBER, "2E-4"},
		{token.NUMBER, "0xff"},
		{token.NUMBER, "0b101"},
		{token.NUMBER, "0o17"},
		{token.EOF, ""},
	})
}

func TestStrings(t *testing.T) {
	checkTokens(t, `"hello" 'it\'s' "a\"b" "tab\t"`, []expectedToken{
		{token.STRING, `"hello"`},
		{token.STRING, `'it\'s'`},
		{token.STRING, `"a\"b"`},
		{token.STRING, `"tab\t"`},
		{token.EOF, ""},
	})
}

func TestConditionalWithDecimal(t *testing.T) {
	checkTokens(t, "a?.5:1", []expectedToken{
		{token.IDENT, "a"},
		{token.QUESTION, "?"},
		{token.NUMBER, ".5"},
		{token.COLON, ":"},
		{token.NUMBER, "1"},
		{token.EOF, ""},
	})
}

func TestComments(t *testing.T) {
	input := `// leading comment
a /* inline */ + b
/* multi
   line */ c`
	l := New(input)

	tok, err := l.Next()
	require.Nil(t, err)
	assert.Equal(t, token.IDENT, tok.Type)
	assert.True(t, tok.NewlineBefore)

	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, token.PLUS, tok.Type)
	assert.False(t, tok.NewlineBefore)

	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, "b", tok.Literal)
	assert.False(t, tok.NewlineBefore)

	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, "c", tok.Literal)
	assert.True(t, tok.NewlineBefore)
	assert.Equal(t, 4, tok.StartPosition.LineNumber())
}

func TestNewlineBefore(t *testing.T) {
	l := New("return\nx\n++y")
	var newlines []bool
	for {
		tok, err := l.Next()
		require.Nil(t, err)
		if tok.Type == token.EOF {
			break
		}
		newlines = append(newlines, tok.NewlineBefore)
	}
	assert.Equal(t, []bool{false, true, true, false}, newlines)
}

func TestKeywordsAndContextualWords(t *testing.T) {
	checkTokens(t, "typeof void delete instanceof in of async get", []expectedToken{
		{token.TYPEOF, "typeof"},
		{token.VOID, "void"},
		{token.DELETE, "delete"},
		{token.INSTANCEOF, "instanceof"},
		{token.IN, "in"},
		{token.IDENT, "of"},
		{token.IDENT, "async"},
		{token.IDENT, "get"},
		{token.EOF, ""},
	})
}

func TestIdentifiers(t *testing.T) {
	checkTokens(t, "$x _y a1 café", []expectedToken{
		{token.IDENT, "$x"},
		{token.IDENT, "_y"},
		{token.IDENT, "a1"},
		{token.IDENT, "café"},
		{token.EOF, ""},
	})
}

func TestInvalids(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"`template`", "template literals are not supported"},
		{`"unterminated`, "unterminated string literal"},
		{"'broken\nline'", "unterminated string literal"},
		{"/* open", "unterminated multiline comment"},
		{"12abc", "invalid numeric literal: 12abc"},
		{"0x", "invalid numeric literal: 0x"},
		{"1e+", "invalid numeric literal: 1e+"},
		{"#", "unexpected character: '#'"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok, err := l.Next()
			require.NotNil(t, err)
			assert.Equal(t, tt.err, err.Error())
			assert.Equal(t, token.ILLEGAL, tok.Type)
		})
	}
}

func TestHashbang(t *testing.T) {
	checkTokens(t, "#!/usr/bin/env node\nx", []expectedToken{
		{token.IDENT, "x"},
		{token.EOF, ""},
	})
}

func TestTokenPositions(t *testing.T) {
	l := New("var a\n  = 1")
	tok, err := l.Next()
	require.Nil(t, err)
	assert.Equal(t, 0, tok.StartPosition.Column)
	assert.Equal(t, 3, tok.EndPosition.Column)

	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, "a", tok.Literal)
	assert.Equal(t, 4, tok.StartPosition.Column)

	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, token.ASSIGN, tok.Type)
	assert.Equal(t, 1, tok.StartPosition.Line)
	assert.Equal(t, 2, tok.StartPosition.Column)
	assert.Equal(t, 6, tok.StartPosition.LineStart)
}

func TestTokenLineText(t *testing.T) {
	input := "var x = 1;\nfunction f() {\n  return x;\n}\n"
	l := New(input)
	var lines []string
	for {
		tok, err := l.Next()
		require.Nil(t, err)
		if tok.Type == token.RETURN || tok.Type == token.FUNCTION || tok.Type == token.EOF {
			lines = append(lines, l.GetLineText(tok))
		}
		if tok.Type == token.EOF {
			break
		}
	}
	assert.Equal(t, []string{"function f() {", "  return x;", "}"}, lines)
}

func TestGetLineTextEdgeCases(t *testing.T) {
	l := New("a\r\nb")
	tok, err := l.Next()
	require.Nil(t, err)
	assert.Equal(t, "a", l.GetLineText(tok))

	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, "b", l.GetLineText(tok))

	empty := New("")
	tok, err = empty.Next()
	require.Nil(t, err)
	assert.Equal(t, token.EOF, tok.Type)
	assert.Equal(t, "", empty.GetLineText(tok))
}

func TestStateSaveRestore(t *testing.T) {
	l := New("(a, b) => a")
	tok, err := l.Next()
	require.Nil(t, err)
	assert.Equal(t, token.LPAREN, tok.Type)

	state := l.SaveState()
	for i := 0; i < 4; i++ {
		_, err := l.Next()
		require.Nil(t, err)
	}
	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, token.ARROW, tok.Type)

	l.RestoreState(state)
	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, "a", tok.Literal)
}

func TestFilenameOption(t *testing.T) {
	l := New("x", WithFile("input.js"))
	assert.Equal(t, "input.js", l.Filename())
	tok, err := l.Next()
	require.Nil(t, err)
	assert.Equal(t, "input.js", tok.StartPosition.File)

	l.SetFilename("other.js")
	assert.Equal(t, "other.js", l.Filename())
	assert.Equal(t, "other.js", l.Position().File)
}
