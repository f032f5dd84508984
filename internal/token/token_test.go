package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test looking up values succeeds, then fails
func TestLookup(t *testing.T) {
	for key, val := range keywords {

		// Obviously this will pass.
		if LookupIdentifier(key) != val {
			t.Errorf("Lookup of %s failed", key)
		}

		// Once the keywords are uppercase they'll no longer
		// match - so we find them as identifiers.
		if LookupIdentifier(strings.ToUpper(key)) != IDENT {
			t.Errorf("Lookup of %s failed", key)
		}
	}
}

func TestContextualWordsAreIdentifiers(t *testing.T) {
	for _, word := range []string{"of", "get", "set", "static", "async", "undefined", "arguments", "eval"} {
		assert.Equal(t, IDENT, LookupIdentifier(word), word)
		assert.False(t, IsKeyword(word), word)
	}
}

func TestPosition(t *testing.T) {
	tok := Token{
		Type:    IDENT,
		Literal: "foo",
		StartPosition: Position{
			Line:   2,
			Column: 0,
		},
	}
	// Switches to 1-indexed
	assert.Equal(t, 3, tok.StartPosition.LineNumber())
	assert.Equal(t, 1, tok.StartPosition.ColumnNumber())
	assert.True(t, tok.StartPosition.IsValid())
	assert.False(t, NoPos.IsValid())

	end := tok.StartPosition.Advance(3)
	assert.Equal(t, 3, end.Column)
	assert.Equal(t, 2, end.Line)
}

func TestIsAssignment(t *testing.T) {
	assert.True(t, IsAssignment(ASSIGN))
	assert.True(t, IsAssignment(PLUS_EQUALS))
	assert.True(t, IsAssignment(NULLISH_EQUALS))
	assert.False(t, IsAssignment(EQ))
	assert.False(t, IsAssignment(ARROW))
}
