package project

// EventKind identifies a task mutation for replication.
type EventKind string

const (
	EventTaskAdd    EventKind = "task-add"
	EventTaskUpdate EventKind = "task-update"
	EventTaskDelete EventKind = "task-delete"
)

// Event describes one task mutation. It is published on the engine's bus
// after every non-silent mutation and is the JSON body of task-event wire
// envelopes. Events carry no sequence numbers: cross-peer ordering is
// last-applied-wins at each peer independently.
type Event struct {
	Kind   EventKind `json:"kind"`
	Task   *Task     `json:"task,omitempty"`
	TaskID string    `json:"task_id,omitempty"`
}
