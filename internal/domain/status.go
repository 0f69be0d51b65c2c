package domain

// Status represents the lifecycle state of a goal or task.
type Status string

const (
	StatusTodo       Status = "todo"        // Created, awaiting work
	StatusInProgress Status = "in_progress" // Being worked on
	StatusOngoing    Status = "ongoing"     // Long-running, no fixed end
	StatusReview     Status = "review"      // Work complete, awaiting review
	StatusDone       Status = "done"        // Terminal
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusOngoing, StatusReview, StatusDone}
}

// transitions defines the allowed status transitions.
// Flow: todo → in_progress/ongoing → review → done, terminal once done.
var transitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress, StatusOngoing, StatusDone},
	StatusInProgress: {StatusOngoing, StatusReview, StatusTodo, StatusDone},
	StatusOngoing:    {StatusInProgress, StatusReview, StatusDone},
	StatusReview:     {StatusInProgress, StatusDone},
	StatusDone:       {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// IsPending returns true if work remains. A goal completes only once no
// sibling task is pending.
func (s Status) IsPending() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusOngoing
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusOngoing, StatusReview, StatusDone:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusOngoing:
		return "Ongoing"
	case StatusReview:
		return "Review"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Glyph returns a single-character marker used in task listings and briefs.
func (s Status) Glyph() string {
	switch s {
	case StatusTodo:
		return "[ ]"
	case StatusInProgress, StatusOngoing:
		return "[~]"
	case StatusReview:
		return "[?]"
	case StatusDone:
		return "[x]"
	default:
		return "[ ]"
	}
}

// Priority represents goal/task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}
