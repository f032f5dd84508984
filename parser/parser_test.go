package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/varmask/ast"
	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Core parser tests (parser.go)
// - Token position tracking
// - Context cancellation
// - Max depth limits
// - Multi-error reporting
// - Automatic semicolon insertion

func dump(t *testing.T, src string) string {
	t.Helper()
	tree, err := Parse(context.Background(), src)
	require.NoError(t, err)
	return ast.Dump(tree, tree.Root)
}

func TestTokenLineCol(t *testing.T) {
	code := `
let x = 5;
let y = 10;
	`
	tree, err := Parse(context.Background(), code)
	require.NoError(t, err)

	statements := tree.Node(tree.Root).List
	require.Len(t, statements, 2)

	start := tree.Node(statements[0]).Pos
	assert.Equal(t, 2, start.LineNumber())
	assert.Equal(t, 1, start.ColumnNumber())

	start = tree.Node(statements[1]).Pos
	assert.Equal(t, 3, start.LineNumber())
	assert.Equal(t, 1, start.ColumnNumber())
}

func TestFilenameInErrors(t *testing.T) {
	_, err := Parse(context.Background(), `let = 1;`, WithFilename("test.js"))
	require.Error(t, err)

	perrs, ok := err.(*Errors)
	require.True(t, ok)
	assert.Equal(t, "test.js", perrs.First().File())
}

func TestFilenameOnTree(t *testing.T) {
	tree, err := Parse(context.Background(), `x;`, WithFilename("input.js"))
	require.NoError(t, err)
	assert.Equal(t, "input.js", tree.File)
}

func TestMaxDepth(t *testing.T) {
	nested := func(open, inner, close string, n int) string {
		return strings.Repeat(open, n) + inner + strings.Repeat(close, n)
	}

	_, err := Parse(context.Background(), nested("(", "1", ")", 600))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth")

	_, err = Parse(context.Background(), nested("(", "1", ")", 600), WithMaxDepth(1000))
	assert.NoError(t, err)

	_, err = Parse(context.Background(), nested("[", "1", "]", 600))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth")

	_, err = Parse(context.Background(), nested("f(", "1", ")", 600))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth")

	_, err = Parse(context.Background(), nested("{", "", "}", 600))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth")

	_, err = Parse(context.Background(), `((((((1))))))`, WithMaxDepth(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth")
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, `let x = 1;`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMultipleErrors(t *testing.T) {
	_, err := Parse(context.Background(), "let = 1;\nlet = 2;\nlet ok = 3;")
	require.Error(t, err)

	perrs, ok := err.(*Errors)
	require.True(t, ok)
	assert.Equal(t, 2, perrs.Count())
	assert.Contains(t, err.Error(), "and 1 more errors")
	for _, e := range perrs.Errors() {
		assert.Equal(t, errors.E1006, e.Code())
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.ErrorCode
		msg   string
	}{
		{"regexp", `let re = /ab+c/;`, errors.E1007, "regular expression literals are not supported"},
		{"template", "let s = `hi`;", errors.E1007, "template literals are not supported"},
		{"unterminated string", `let s = "abc`, errors.E1002, "unterminated string literal"},
		{"bad hex literal", `let n = 0x;`, errors.E1008, "invalid numeric literal: 0x"},
		{"bad exponent", `let n = 1e+;`, errors.E1008, "invalid numeric literal: 1e+"},
		{"bad destructuring", `[a + 1] = x;`, errors.E1005, "invalid destructuring target"},
		{"bad update", `f()++;`, errors.E1005, "invalid update target"},
		{"missing paren", `if (x { }`, errors.E1001, "while parsing if statement"},
		{"unexpected eof", `let x = `, errors.E1004, "unexpected end of file"},
		{"try without handler", `try { }`, errors.E1001, "requires catch or finally"},
		{"rest not last", `function f(...a, b) {}`, errors.E1001, "rest parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			require.Error(t, err)
			perrs, ok := err.(*Errors)
			require.True(t, ok)
			assert.Equal(t, tt.code, perrs.First().Code())
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestFriendlyErrorMessage(t *testing.T) {
	_, err := Parse(context.Background(), "let x = 1;\nlet = 2;", WithFilename("bad.js"))
	require.Error(t, err)

	perrs, ok := err.(*Errors)
	require.True(t, ok)
	msg := perrs.FriendlyErrorMessage()
	assert.Contains(t, msg, "E1006")
	assert.Contains(t, msg, "bad.js:2")
	assert.Contains(t, msg, "let = 2;")
}

func TestAutomaticSemicolons(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "line breaks",
			input: "let a = 1\nlet b = 2",
			want: `Program
  VarDecl let
    Declarator
      Ident a
      Number 1
  VarDecl let
    Declarator
      Ident b
      Number 2
`,
		},
		{
			name:  "restricted return",
			input: "function f() { return\n1 }",
			want: `Program
  FuncDecl
    Ident f
    Block
      Return
      ExprStmt
        Number 1
`,
		},
		{
			name:  "postfix on next line",
			input: "a\n++b",
			want: `Program
  ExprStmt
    Ident a
  ExprStmt
    Update ++ [prefix]
      Ident b
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dump(t, tt.input))
		})
	}
}

func TestMissingSemicolon(t *testing.T) {
	_, err := Parse(context.Background(), `let a = 1 let b = 2`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "following variable declaration")
}

func TestDirectives(t *testing.T) {
	tree, err := Parse(context.Background(), `"use strict"; function f() { "use strict"; "other"; g(); "late"; }`)
	require.NoError(t, err)

	var directives []string
	for id := range ast.Preorder(tree, tree.Root) {
		n := tree.Node(id)
		if n.Kind == ast.ExprStmt && n.Flags.Has(ast.FlagDirective) {
			directives = append(directives, tree.Node(n.X).Text)
		}
	}
	assert.Equal(t, []string{`"use strict"`, `"use strict"`, `"other"`}, directives)
}

func TestHashbang(t *testing.T) {
	assert.Equal(t, "Program\n  ExprStmt\n    Ident x\n", dump(t, "#!/usr/bin/env node\nx"))
}
