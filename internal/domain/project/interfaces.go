package project

import "context"

// StoredState is the durable snapshot of the own partition.
type StoredState struct {
	Projects []Project
	Tasks    []Task
}

// Store provides persistence for own projects and tasks. Every save is a
// full-collection overwrite; shared-partition data never reaches the store.
type Store interface {
	Load(ctx context.Context) (StoredState, error)
	SaveProjects(ctx context.Context, projects []Project) error
	SaveTasks(ctx context.Context, tasks []Task) error
}
