package varmask

import "sort"

// SlotMap assigns each relocated binding an index into the stack array.
// Parameters take the first indices in declaration order; other bindings
// are appended as they are discovered. An index never changes once
// assigned.
type SlotMap struct {
	index map[string]int
	next  int
}

// NewSlotMap seeds a map with the parameter names. A name repeated in the
// list takes its last position, matching which argument a duplicate
// parameter receives.
func NewSlotMap(params []string) *SlotMap {
	m := &SlotMap{index: make(map[string]int, len(params)), next: len(params)}
	for i, name := range params {
		m.index[name] = i
	}
	return m
}

// Index returns the slot of a name.
func (m *SlotMap) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// Assign returns the slot of a name, appending it if it has none.
func (m *SlotMap) Assign(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	i := m.next
	m.index[name] = i
	m.next++
	return i
}

// Len returns the length the stack array needs: one past the highest slot.
func (m *SlotMap) Len() int {
	return m.next
}

// Names returns the slotted names ordered by index.
func (m *SlotMap) Names() []string {
	names := make([]string, 0, len(m.index))
	for name := range m.index {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return m.index[names[i]] < m.index[names[j]]
	})
	return names
}
