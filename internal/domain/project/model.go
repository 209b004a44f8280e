package project

// Partition says which collection a task lives in. Own tasks are persisted;
// shared tasks exist only for the lifetime of the shared session. The tag is
// assigned at creation time from the owning project's membership and never
// changes, so lookups are always single-partition.
type Partition string

const (
	PartitionOwn    Partition = "own"
	PartitionShared Partition = "shared"
)

// Project is a task list. Topic is set when the project hosts a live shared
// session; nil means private. Topic-holding and shared-membership are
// independent: a project with a topic is one we host, a project in the
// shared partition is one we joined.
type Project struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Topic *string `json:"topic"`
}

// Task is a single todo item. The id is globally unique and preserved
// across replication: a task created to satisfy a remote event reuses the
// remote-supplied id.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	ProjectID string    `json:"project_id"`
	Partition Partition `json:"-"`
}

// TaskPatch is a partial update merged over an existing task. Nil fields
// are left untouched.
type TaskPatch struct {
	Text      *string
	Completed *bool
}

func (p TaskPatch) apply(task Task) Task {
	if p.Text != nil {
		task.Text = *p.Text
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	return task
}
