package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ganot/swarmdo/internal/events"
)

// Service is the replication engine. It owns two task/project partitions
// behind one read view: the own partition is persisted through the store,
// the shared partition lives only for the current session. Every local
// mutation updates memory first, persists if it touched the own partition,
// and publishes exactly one event on the bus. Remote mutations come in
// through Apply, which runs the same handlers in silent mode so they are
// never re-broadcast.
type Service struct {
	store  Store
	logger *slog.Logger
	bus    *events.Bus[Event]

	mu          sync.Mutex
	own         []Project
	shared      []Project
	ownTasks    []Task
	sharedTasks []Task
	currentID   string
}

// Load reads persisted state and builds the engine. No mutation can race
// the load: the engine does not exist until Load returns. The first stored
// project, if any, becomes the current selection.
func Load(ctx context.Context, store Store, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored state: %w", err)
	}

	s := &Service{
		store:  store,
		logger: logger,
		bus:    events.NewBus[Event](),
	}
	s.own = append(s.own, state.Projects...)
	for _, task := range state.Tasks {
		task.Partition = PartitionOwn
		s.ownTasks = append(s.ownTasks, task)
	}
	if len(s.own) > 0 {
		s.currentID = s.own[0].ID
	}
	return s, nil
}

// Events is the engine's replication bus. Subscribers see one event per
// non-silent mutation, in mutation order.
func (s *Service) Events() *events.Bus[Event] {
	return s.bus
}

// AddTaskRequest defines task creation inputs. ID is optional; supplying
// one preserves the identity of a remotely created task.
type AddTaskRequest struct {
	ProjectID string
	Text      string
	ID        string
}

// AddTask creates a task in the partition of its project and publishes a
// task-add event.
func (s *Service) AddTask(ctx context.Context, req AddTaskRequest) (*Task, error) {
	return s.addTask(ctx, req, true)
}

// EditTask replaces a task's text.
func (s *Service) EditTask(ctx context.Context, taskID, text string) (*Task, error) {
	return s.updateTask(ctx, taskID, func(Task) TaskPatch {
		return TaskPatch{Text: &text}
	}, true)
}

// ToggleTask flips a task's completed flag.
func (s *Service) ToggleTask(ctx context.Context, taskID string) (*Task, error) {
	return s.updateTask(ctx, taskID, func(task Task) TaskPatch {
		completed := !task.Completed
		return TaskPatch{Completed: &completed}
	}, true)
}

// UpdateTask merges a patch over a task and publishes a task-update event.
func (s *Service) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*Task, error) {
	return s.updateTask(ctx, taskID, func(Task) TaskPatch { return patch }, true)
}

// RemoveTask deletes a task and publishes a task-delete event.
func (s *Service) RemoveTask(ctx context.Context, taskID string) error {
	return s.removeTask(ctx, taskID, true)
}

// Apply merges an event received from a peer into local state without
// re-publishing it. Events referencing unknown projects or tasks are
// dropped: the shared project they belong to is not known locally.
func (s *Service) Apply(ctx context.Context, event Event) error {
	switch event.Kind {
	case EventTaskAdd:
		if event.Task == nil {
			return fmt.Errorf("%w: task-add event without task", ErrInvalidInput)
		}
		_, err := s.addTask(ctx, AddTaskRequest{
			ProjectID: event.Task.ProjectID,
			Text:      event.Task.Text,
			ID:        event.Task.ID,
		}, false)
		return s.dropUnknown(err, "task-add", event.Task.ID)
	case EventTaskUpdate:
		if event.Task == nil {
			return fmt.Errorf("%w: task-update event without task", ErrInvalidInput)
		}
		_, err := s.updateTask(ctx, event.Task.ID, func(Task) TaskPatch {
			return TaskPatch{Text: &event.Task.Text, Completed: &event.Task.Completed}
		}, false)
		return s.dropUnknown(err, "task-update", event.Task.ID)
	case EventTaskDelete:
		if event.TaskID == "" {
			return fmt.Errorf("%w: task-delete event without task id", ErrInvalidInput)
		}
		err := s.removeTask(ctx, event.TaskID, false)
		return s.dropUnknown(err, "task-delete", event.TaskID)
	default:
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidInput, event.Kind)
	}
}

// AddProject creates an own project, inserts it at the head of the list
// (most recently created first) and makes it the current selection.
func (s *Service) AddProject(ctx context.Context, name string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	proj := Project{ID: uuid.NewString(), Name: name}

	s.mu.Lock()
	s.own = append([]Project{proj}, s.own...)
	s.currentID = proj.ID
	save := snapshotProjects(s.own)
	s.mu.Unlock()

	s.saveProjects(ctx, save)
	return &proj, nil
}

// AddSharedProject registers a project received from a remote host, with
// its initial task snapshot. Nothing here is ever persisted.
func (s *Service) AddSharedProject(proj Project, tasks []Task) error {
	if proj.ID == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shared = append(s.shared, proj)
	for _, task := range tasks {
		task.Partition = PartitionShared
		s.sharedTasks = append(s.sharedTasks, task)
	}
	return nil
}

// SetProjectTopic marks an own project as hosting a shared session.
func (s *Service) SetProjectTopic(ctx context.Context, projectID, topic string) error {
	s.mu.Lock()
	found := false
	for i := range s.own {
		if s.own[i].ID == projectID {
			s.own[i].Topic = &topic
			found = true
			break
		}
	}
	var save []Project
	if found {
		save = snapshotProjects(s.own)
	}
	s.mu.Unlock()

	if !found {
		return ErrProjectNotFound
	}
	s.saveProjects(ctx, save)
	return nil
}

// RemoveProject deletes a project and its tasks from whichever partition
// holds it. Own removals are persisted; shared removals only forget
// session state.
func (s *Service) RemoveProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	var saveProjects []Project
	var saveTasks []Task
	switch {
	case containsProject(s.own, projectID):
		s.own = withoutProject(s.own, projectID)
		s.ownTasks = withoutProjectTasks(s.ownTasks, projectID)
		saveProjects = snapshotProjects(s.own)
		saveTasks = snapshotTasks(s.ownTasks)
	case containsProject(s.shared, projectID):
		s.shared = withoutProject(s.shared, projectID)
		s.sharedTasks = withoutProjectTasks(s.sharedTasks, projectID)
	default:
		s.mu.Unlock()
		return ErrProjectNotFound
	}
	if s.currentID == projectID {
		s.currentID = ""
		if len(s.own) > 0 {
			s.currentID = s.own[0].ID
		}
	}
	s.mu.Unlock()

	if saveProjects != nil {
		s.saveProjects(ctx, saveProjects)
		s.saveTasks(ctx, saveTasks)
	}
	return nil
}

// SetCurrentProject selects a project from either partition. An empty id
// clears the selection.
func (s *Service) SetCurrentProject(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if projectID != "" && !containsProject(s.own, projectID) && !containsProject(s.shared, projectID) {
		return ErrProjectNotFound
	}
	s.currentID = projectID
	return nil
}

// Projects returns the own partition, most recently created first.
func (s *Service) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotProjects(s.own)
}

// SharedProjects returns the shared partition in join order.
func (s *Service) SharedProjects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotProjects(s.shared)
}

// CurrentProject resolves the selection against the union of both
// partitions.
func (s *Service) CurrentProject() (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findProject(s.currentID)
}

// IsSharedActive reports whether the current selection is a shared project.
func (s *Service) IsSharedActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return containsProject(s.shared, s.currentID)
}

// Tasks returns the tasks of the current project, in insertion order.
func (s *Service) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasksFor(s.currentID)
}

// TasksFor returns the tasks of the given project from its partition.
func (s *Service) TasksFor(projectID string) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasksFor(projectID)
}

func (s *Service) tasksFor(projectID string) []Task {
	if projectID == "" {
		return nil
	}
	source := s.ownTasks
	if containsProject(s.shared, projectID) {
		source = s.sharedTasks
	}
	var out []Task
	for _, task := range source {
		if task.ProjectID == projectID {
			out = append(out, task)
		}
	}
	return out
}

func (s *Service) addTask(ctx context.Context, req AddTaskRequest, emit bool) (*Task, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	partition := PartitionOwn
	switch {
	case containsProject(s.shared, req.ProjectID):
		partition = PartitionShared
	case containsProject(s.own, req.ProjectID):
	default:
		s.mu.Unlock()
		return nil, ErrProjectNotFound
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	task := Task{
		ID:        id,
		Text:      req.Text,
		ProjectID: req.ProjectID,
		Partition: partition,
	}

	var save []Task
	if partition == PartitionShared {
		s.sharedTasks = append(s.sharedTasks, task)
	} else {
		s.ownTasks = append(s.ownTasks, task)
		save = snapshotTasks(s.ownTasks)
	}
	s.mu.Unlock()

	if save != nil {
		s.saveTasks(ctx, save)
	}
	if emit {
		s.bus.Publish(Event{Kind: EventTaskAdd, Task: &task})
	}
	return &task, nil
}

func (s *Service) updateTask(ctx context.Context, taskID string, updater func(Task) TaskPatch, emit bool) (*Task, error) {
	s.mu.Lock()
	var updated *Task
	var save []Task
	if i := indexOfTask(s.ownTasks, taskID); i >= 0 {
		s.ownTasks[i] = updater(s.ownTasks[i]).apply(s.ownTasks[i])
		task := s.ownTasks[i]
		updated = &task
		save = snapshotTasks(s.ownTasks)
	} else if i := indexOfTask(s.sharedTasks, taskID); i >= 0 {
		s.sharedTasks[i] = updater(s.sharedTasks[i]).apply(s.sharedTasks[i])
		task := s.sharedTasks[i]
		updated = &task
	}
	s.mu.Unlock()

	if updated == nil {
		return nil, ErrTaskNotFound
	}
	if save != nil {
		s.saveTasks(ctx, save)
	}
	if emit {
		s.bus.Publish(Event{Kind: EventTaskUpdate, Task: updated})
	}
	return updated, nil
}

func (s *Service) removeTask(ctx context.Context, taskID string, emit bool) error {
	s.mu.Lock()
	removed := false
	var save []Task
	if i := indexOfTask(s.ownTasks, taskID); i >= 0 {
		s.ownTasks = append(s.ownTasks[:i], s.ownTasks[i+1:]...)
		removed = true
		save = snapshotTasks(s.ownTasks)
	} else if i := indexOfTask(s.sharedTasks, taskID); i >= 0 {
		s.sharedTasks = append(s.sharedTasks[:i], s.sharedTasks[i+1:]...)
		removed = true
	}
	s.mu.Unlock()

	if !removed {
		return ErrTaskNotFound
	}
	if save != nil {
		s.saveTasks(ctx, save)
	}
	if emit {
		s.bus.Publish(Event{Kind: EventTaskDelete, TaskID: taskID})
	}
	return nil
}

func (s *Service) findProject(id string) (Project, bool) {
	for _, proj := range s.own {
		if proj.ID == id {
			return proj, true
		}
	}
	for _, proj := range s.shared {
		if proj.ID == id {
			return proj, true
		}
	}
	return Project{}, false
}

// Persistence failures never block a mutation: memory is authoritative and
// the error is only logged.
func (s *Service) saveProjects(ctx context.Context, projects []Project) {
	if err := s.store.SaveProjects(ctx, projects); err != nil {
		s.logger.Error("persisting projects failed", "error", err)
	}
}

func (s *Service) saveTasks(ctx context.Context, tasks []Task) {
	if err := s.store.SaveTasks(ctx, tasks); err != nil {
		s.logger.Error("persisting tasks failed", "error", err)
	}
}

func (s *Service) dropUnknown(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrTaskNotFound) {
		s.logger.Debug("dropping remote event for unknown target", "kind", kind, "id", id)
		return nil
	}
	return err
}

func containsProject(projects []Project, id string) bool {
	if id == "" {
		return false
	}
	for _, proj := range projects {
		if proj.ID == id {
			return true
		}
	}
	return false
}

func withoutProject(projects []Project, id string) []Project {
	out := projects[:0]
	for _, proj := range projects {
		if proj.ID != id {
			out = append(out, proj)
		}
	}
	return out
}

func withoutProjectTasks(tasks []Task, projectID string) []Task {
	out := tasks[:0]
	for _, task := range tasks {
		if task.ProjectID != projectID {
			out = append(out, task)
		}
	}
	return out
}

func indexOfTask(tasks []Task, id string) int {
	for i, task := range tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

func snapshotProjects(projects []Project) []Project {
	out := make([]Project, len(projects))
	copy(out, projects)
	return out
}

func snapshotTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
