package workspace

// ComponentType identifies the kind of workspace component.
type ComponentType string

const (
	TypeTimeline ComponentType = "timeline"
	TypeTask     ComponentType = "task"
	TypeNote     ComponentType = "note"
)

// Priority is the server-assigned urgency of a component.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Component is one entry in the server-ordered workspace sequence. The
// position in the sequence is display order dictated by the authority,
// not creation order. Components are only ever modified by applying
// patch operations; consumers treat them as read-only.
type Component struct {
	ID          string        `json:"id"`
	Type        ComponentType `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Priority    Priority      `json:"priority"`
	Date        string        `json:"date,omitempty"`
	TimeSlot    string        `json:"timeSlot,omitempty"`
	Completed   bool          `json:"completed"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}
