// Package store persists the own-partition state through a key-value
// backend. Values are JSON-encoded full collections, overwritten on every
// save; absent or corrupt values read back as empty collections.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ganot/swarmdo/internal/domain/project"
)

// ErrNotFound is returned by a KV when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// KV is the consumed persistence contract.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

const (
	keyProjects = "projects"
	keyTasks    = "tasks"
)

// Store implements project.Store over a KV backend.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// New creates a store over the given backend.
func New(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{kv: kv, logger: logger}
}

// Load reads both collections. A missing or undecodable value yields an
// empty collection rather than an error, so a fresh or damaged store still
// starts.
func (s *Store) Load(ctx context.Context) (project.StoredState, error) {
	var state project.StoredState
	if err := s.getParsed(ctx, keyProjects, &state.Projects); err != nil {
		return project.StoredState{}, err
	}
	if err := s.getParsed(ctx, keyTasks, &state.Tasks); err != nil {
		return project.StoredState{}, err
	}
	return state, nil
}

// SaveProjects overwrites the stored project collection.
func (s *Store) SaveProjects(ctx context.Context, projects []project.Project) error {
	return s.set(ctx, keyProjects, projects)
}

// SaveTasks overwrites the stored task collection.
func (s *Store) SaveTasks(ctx context.Context, tasks []project.Task) error {
	return s.set(ctx, keyTasks, tasks)
}

func (s *Store) getParsed(ctx context.Context, key string, out any) error {
	value, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %q: %w", key, err)
	}
	if err := json.Unmarshal(value, out); err != nil {
		s.logger.Warn("discarding corrupt stored value", "key", key, "error", err)
	}
	return nil
}

func (s *Store) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}
