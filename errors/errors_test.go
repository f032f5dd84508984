package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		name     string
		loc      SourceLocation
		expected string
	}{
		{"with filename", SourceLocation{Filename: "main.js", Line: 10, Column: 5}, "main.js:10:5"},
		{"without filename", SourceLocation{Line: 10, Column: 5}, "10:5"},
		{"zero location", SourceLocation{}, "0:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.String())
		})
	}
}

func TestSourceLocation_IsZero(t *testing.T) {
	assert.True(t, SourceLocation{}.IsZero())
	assert.True(t, SourceLocation{Filename: "a.js"}.IsZero())
	assert.False(t, SourceLocation{Line: 1}.IsZero())
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, "unexpected token", E1001.Description())
	assert.Equal(t, "parse", E1001.Category())
	assert.Equal(t, "transform", E2001.Category())
	assert.Equal(t, "config", E3002.Category())
	assert.Equal(t, "unknown", ErrorCode("X").Category())
	assert.Equal(t, "unknown error", ErrorCode("E9999").Description())
	assert.Equal(t, "E2001", E2001.String())
}

func TestFormatterPlain(t *testing.T) {
	f := NewFormatter(false)
	out := f.Format(&FormattedError{
		Kind:      "parse error",
		Message:   "unexpected token \")\"",
		Filename:  "input.js",
		Line:      3,
		Column:    7,
		EndColumn: 8,
		SourceLines: []SourceLineEntry{
			{Number: 3, Text: "var x = );", IsMain: true},
		},
		Hint: "did you mean '('?",
	})
	expected := strings.Join([]string{
		`parse error: unexpected token ")"`,
		"  --> input.js:3:7",
		"   |",
		" 3 | var x = );",
		"   |       ^",
		"   |",
		"   = hint: did you mean '('?",
		"",
	}, "\n")
	assert.Equal(t, expected, out)
}

func TestFormatterCode(t *testing.T) {
	out := NewFormatter(false).Format(&FormattedError{Code: E2001, Message: "boom", Note: "context"})
	assert.Equal(t, "error[E2001]: boom\n   = note: context\n", out)
}

func TestFormatterColor(t *testing.T) {
	out := NewFormatter(true).Format(&FormattedError{Message: "boom"})
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "boom")
}

func TestFormatMultiple(t *testing.T) {
	f := NewFormatter(false)
	assert.Equal(t, "", f.FormatMultiple(nil))

	out := f.FormatMultiple([]*FormattedError{{Message: "one"}, {Message: "two"}})
	assert.Contains(t, out, "error[1/2]: one")
	assert.Contains(t, out, "error[2/2]: two")
	assert.True(t, strings.HasSuffix(out, "found 2 errors\n"))
}

func TestSuggestSimilar(t *testing.T) {
	choices := []string{"define", "none"}
	s := SuggestSimilar("defin", choices)
	require.Len(t, s, 1)
	assert.Equal(t, "define", s[0].Value)
	assert.Equal(t, 1, s[0].Distance)

	assert.Empty(t, SuggestSimilar("zzzzzz", choices))
	assert.Empty(t, SuggestSimilar("", choices))
	assert.Empty(t, SuggestSimilar("define", choices))

	names := []string{"random", "uuid", "sequence", "randoms", "ransom"}
	s = SuggestSimilar("randon", names)
	assert.Equal(t, []Suggestion{{"random", 1}, {"randoms", 2}, {"ransom", 2}}, s)
}

func TestFormatSuggestions(t *testing.T) {
	assert.Equal(t, "", FormatSuggestions(nil))
	assert.Equal(t, "did you mean 'uuid'?", FormatSuggestions([]Suggestion{{"uuid", 1}}))
	assert.Equal(t, "did you mean one of: 'a', 'b'?", FormatSuggestions([]Suggestion{{"a", 1}, {"b", 1}}))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("", ""))
	assert.Equal(t, 3, editDistance("abc", ""))
	assert.Equal(t, 3, editDistance("kitten", "sitting"))
	assert.Equal(t, 1, editDistance("café", "cafe"))
}

func TestTransformError(t *testing.T) {
	cause := fmt.Errorf("exhausted")
	err := &TransformError{
		Code:       E2001,
		Pass:       "variable-masking",
		Message:    "cannot name stack for function f",
		Filename:   "a.js",
		Line:       2,
		Column:     1,
		SourceLine: "function f(a) {",
		Err:        cause,
	}
	assert.Equal(t, "transform error (variable-masking): cannot name stack for function f at a.js:2:1", err.Error())
	assert.True(t, stderrors.Is(err, cause))

	friendly := err.FriendlyErrorMessage()
	assert.Contains(t, friendly, "transform error[E2001]: cannot name stack for function f")
	assert.Contains(t, friendly, " 2 | function f(a) {")

	plain := TransformErrorf(E2003, "", "bad %s", "shape")
	assert.Equal(t, "transform error: bad shape", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestConfigError(t *testing.T) {
	err := UnknownChoice("arity", "defne", []string{"define", "none"})
	assert.Equal(t, `invalid arity "defne": unknown value`, err.Error())
	f := err.ToFormatted()
	assert.Equal(t, E3002, f.Code)
	assert.Equal(t, "did you mean 'define'?", f.Hint)

	err = UnknownChoice("names", "zzz", []string{"random", "uuid"})
	f = err.ToFormatted()
	assert.Empty(t, f.Hint)
	assert.Equal(t, "valid values: random, uuid", f.Note)
	assert.Contains(t, err.FriendlyErrorMessage(), "config error[E3002]")

	var fe FriendlyError = err
	assert.NotEmpty(t, fe.FriendlyErrorMessage())
}
