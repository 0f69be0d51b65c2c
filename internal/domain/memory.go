package domain

import "time"

// MemorySource tags who recorded an insight.
type MemorySource string

const (
	MemorySourceAgent MemorySource = "agent"
	MemorySourceUser  MemorySource = "user"
)

// Memory is a durable (goalID, key) → value fact recorded against a goal
// for reuse by later tasks. Unique per (goal, key): re-recording the same
// key upserts the value rather than duplicating.
// Fields are ordered to minimize memory padding.
type Memory struct {
	Created time.Time    `json:"created"`
	Updated time.Time    `json:"updated"`
	GoalID  string       `json:"goalId"`
	Key     string       `json:"key"`
	Value   string       `json:"value"`
	Source  MemorySource `json:"source"`
}
