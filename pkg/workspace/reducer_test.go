package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comp(id, title string) Component {
	return Component{
		ID:        id,
		Type:      TypeTask,
		Title:     title,
		Priority:  PriorityNormal,
		CreatedAt: "2026-08-01T00:00:00Z",
		UpdatedAt: "2026-08-01T00:00:00Z",
	}
}

func intPtr(i int) *int { return &i }

func ids(components []Component) []string {
	out := make([]string, len(components))
	for i, c := range components {
		out[i] = c.ID
	}
	return out
}

func TestApplyAdd(t *testing.T) {
	tests := []struct {
		name     string
		initial  []Component
		op       Operation
		expected []string
	}{
		{
			name:     "append when no index given",
			initial:  []Component{comp("a", "A"), comp("b", "B")},
			op:       Operation{Op: OpAdd, Component: ptr(comp("c", "C"))},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "insert at index",
			initial:  []Component{comp("a", "A"), comp("b", "B")},
			op:       Operation{Op: OpAdd, Component: ptr(comp("c", "C")), Index: intPtr(1)},
			expected: []string{"a", "c", "b"},
		},
		{
			name:     "index past end appends",
			initial:  []Component{comp("a", "A")},
			op:       Operation{Op: OpAdd, Component: ptr(comp("b", "B")), Index: intPtr(5)},
			expected: []string{"a", "b"},
		},
		{
			name:     "duplicate id replaces in place",
			initial:  []Component{comp("a", "A"), comp("b", "B"), comp("c", "C")},
			op:       Operation{Op: OpAdd, Component: ptr(comp("b", "B2")), Index: intPtr(0)},
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "add to empty sequence",
			initial:  nil,
			op:       Operation{Op: OpAdd, Component: ptr(comp("a", "A"))},
			expected: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Apply(tt.initial, []Operation{tt.op})
			assert.Equal(t, tt.expected, ids(result))
		})
	}
}

func TestApplyAddIdempotent(t *testing.T) {
	initial := []Component{comp("a", "A"), comp("b", "B")}
	op := Operation{Op: OpAdd, Component: ptr(comp("x", "X")), Index: intPtr(1)}

	once := Apply(initial, []Operation{op})
	twice := Apply(once, []Operation{op})

	require.Equal(t, []string{"a", "x", "b"}, ids(once))
	assert.Equal(t, ids(once), ids(twice), "re-applying the same add must not duplicate")

	count := 0
	for _, c := range twice {
		if c.ID == "x" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestApplyRemove(t *testing.T) {
	initial := []Component{comp("a", "A"), comp("b", "B")}

	result := Apply(initial, []Operation{{Op: OpRemove, ComponentID: "a"}})
	assert.Equal(t, []string{"b"}, ids(result))

	// Removing an unknown id is a harmless no-op.
	result = Apply(result, []Operation{{Op: OpRemove, ComponentID: "nope"}})
	assert.Equal(t, []string{"b"}, ids(result))
}

func TestApplyUpdate(t *testing.T) {
	initial := []Component{comp("a", "A"), comp("b", "B")}

	result := Apply(initial, []Operation{{
		Op:          OpUpdate,
		ComponentID: "b",
		Changes: map[string]interface{}{
			"title":     "B updated",
			"priority":  "urgent",
			"completed": true,
			"unknown":   "ignored",
		},
	}})

	require.Len(t, result, 2)
	assert.Equal(t, "B updated", result[1].Title)
	assert.Equal(t, PriorityUrgent, result[1].Priority)
	assert.True(t, result[1].Completed)

	// The other component is untouched, and so is the input slice.
	assert.Equal(t, "A", result[0].Title)
	assert.Equal(t, "B", initial[1].Title)
}

func TestApplyUpdateUnknownID(t *testing.T) {
	initial := []Component{comp("a", "A")}
	result := Apply(initial, []Operation{{
		Op:          OpUpdate,
		ComponentID: "missing",
		Changes:     map[string]interface{}{"title": "new"},
	}})
	assert.Equal(t, initial, result)
}

func TestApplyReorder(t *testing.T) {
	tests := []struct {
		name     string
		newIndex int
		expected []string
	}{
		{"move to front", 0, []string{"c", "a", "b"}},
		{"move to middle", 1, []string{"a", "c", "b"}},
		{"index clamped to tail", 10, []string{"a", "b", "c"}},
		{"negative index clamped to front", -1, []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := []Component{comp("a", "A"), comp("b", "B"), comp("c", "C")}
			result := Apply(initial, []Operation{{Op: OpReorder, ComponentID: "c", NewIndex: tt.newIndex}})
			assert.Equal(t, tt.expected, ids(result))
		})
	}

	t.Run("unknown id is a no-op", func(t *testing.T) {
		initial := []Component{comp("a", "A")}
		result := Apply(initial, []Operation{{Op: OpReorder, ComponentID: "zz", NewIndex: 0}})
		assert.Equal(t, []string{"a"}, ids(result))
	})
}

func TestApplyDeterministic(t *testing.T) {
	initial := []Component{comp("a", "A"), comp("b", "B"), comp("c", "C")}
	batch := []Operation{
		{Op: OpAdd, Component: ptr(comp("d", "D")), Index: intPtr(1)},
		{Op: OpRemove, ComponentID: "b"},
		{Op: OpUpdate, ComponentID: "c", Changes: map[string]interface{}{"completed": true}},
		{Op: OpReorder, ComponentID: "a", NewIndex: 2},
	}

	first := Apply(initial, batch)
	second := Apply(initial, batch)
	assert.Equal(t, first, second)

	// The original sequence is never mutated.
	assert.Equal(t, []string{"a", "b", "c"}, ids(initial))
}

func ptr(c Component) *Component { return &c }
