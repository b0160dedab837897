package workspace

// Op names for patch operations, matching the wire format.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpUpdate  = "update"
	OpReorder = "reorder"
)

// Operation is one add/remove/update/reorder instruction against the
// ordered component sequence. Which fields are meaningful depends on Op:
// add carries Component and an optional Index, remove and update carry
// ComponentID (update also Changes), reorder carries ComponentID and
// NewIndex.
type Operation struct {
	Op          string                 `json:"op"`
	Component   *Component             `json:"component,omitempty"`
	Index       *int                   `json:"index,omitempty"`
	ComponentID string                 `json:"componentId,omitempty"`
	Changes     map[string]interface{} `json:"changes,omitempty"`
	NewIndex    int                    `json:"newIndex,omitempty"`
}

// Apply runs a batch of operations against the sequence in array order
// and returns a new sequence. The input slice is never mutated, so a
// caller holding the previous snapshot keeps a consistent view.
//
// Stale operations (remove/update/reorder on an unknown id) are no-ops
// rather than errors: the stream is at-least-once and patches may be
// redelivered across reconnects.
func Apply(components []Component, operations []Operation) []Component {
	result := make([]Component, len(components))
	copy(result, components)

	for _, op := range operations {
		switch op.Op {
		case OpAdd:
			result = applyAdd(result, op)
		case OpRemove:
			result = applyRemove(result, op.ComponentID)
		case OpUpdate:
			result = applyUpdate(result, op.ComponentID, op.Changes)
		case OpReorder:
			result = applyReorder(result, op.ComponentID, op.NewIndex)
		}
	}

	return result
}

// applyAdd inserts a component, replacing any existing entry with the
// same id first. This makes add idempotent under redelivery and doubles
// as a move-or-insert: the second delivery lands at the index the
// operation names, not wherever the first copy sat.
func applyAdd(components []Component, op Operation) []Component {
	if op.Component == nil {
		return components
	}

	filtered := applyRemove(components, op.Component.ID)

	if op.Index != nil && *op.Index < len(filtered) && *op.Index >= 0 {
		idx := *op.Index
		out := make([]Component, 0, len(filtered)+1)
		out = append(out, filtered[:idx]...)
		out = append(out, *op.Component)
		out = append(out, filtered[idx:]...)
		return out
	}

	return append(filtered, *op.Component)
}

func applyRemove(components []Component, id string) []Component {
	out := components[:0:0]
	for _, c := range components {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func applyUpdate(components []Component, id string, changes map[string]interface{}) []Component {
	out := make([]Component, len(components))
	copy(out, components)
	for i := range out {
		if out[i].ID == id {
			out[i] = merge(out[i], changes)
			break
		}
	}
	return out
}

// applyReorder removes the component and reinserts it at newIndex,
// clamped to the post-removal length so an index past the tail lands
// at the tail instead of panicking.
func applyReorder(components []Component, id string, newIndex int) []Component {
	var target *Component
	filtered := components[:0:0]
	for _, c := range components {
		if c.ID == id {
			c := c
			target = &c
			continue
		}
		filtered = append(filtered, c)
	}
	if target == nil {
		return components
	}

	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(filtered) {
		newIndex = len(filtered)
	}

	out := make([]Component, 0, len(filtered)+1)
	out = append(out, filtered[:newIndex]...)
	out = append(out, *target)
	out = append(out, filtered[newIndex:]...)
	return out
}

// merge shallow-merges a changes map into a component. Unknown keys are
// ignored so new backend fields do not break older clients.
func merge(c Component, changes map[string]interface{}) Component {
	for key, value := range changes {
		switch key {
		case "type":
			if s, ok := value.(string); ok {
				c.Type = ComponentType(s)
			}
		case "title":
			if s, ok := value.(string); ok {
				c.Title = s
			}
		case "description":
			if s, ok := value.(string); ok {
				c.Description = s
			}
		case "priority":
			if s, ok := value.(string); ok {
				c.Priority = Priority(s)
			}
		case "date":
			if s, ok := value.(string); ok {
				c.Date = s
			}
		case "timeSlot":
			if s, ok := value.(string); ok {
				c.TimeSlot = s
			}
		case "completed":
			if b, ok := value.(bool); ok {
				c.Completed = b
			}
		case "createdAt":
			if s, ok := value.(string); ok {
				c.CreatedAt = s
			}
		case "updatedAt":
			if s, ok := value.(string); ok {
				c.UpdatedAt = s
			}
		}
	}
	return c
}
