package varmask

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSlotMap(t *testing.T) {
	m := NewSlotMap([]string{"a", "b"})
	i, ok := m.Index("b")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	assert.Equal(t, 2, m.Assign("c"))
	assert.Equal(t, 3, m.Assign("d"))
	assert.Equal(t, 2, m.Assign("c"), "indices never change")
	assert.Equal(t, 0, m.Assign("a"))
	assert.Equal(t, 4, m.Len())

	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, m.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	_, ok = m.Index("e")
	assert.False(t, ok)
}

func TestSlotMapDuplicateParams(t *testing.T) {
	// The second a receives the second argument.
	m := NewSlotMap([]string{"a", "a", "b"})
	i, _ := m.Index("a")
	assert.Equal(t, 1, i)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 3, m.Assign("x"))
	assert.Equal(t, []string{"a", "b", "x"}, m.Names())
}
