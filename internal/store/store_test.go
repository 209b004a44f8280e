package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/swarmdo/internal/domain/project"
	"github.com/ganot/swarmdo/internal/store"
)

func TestStore_LoadEmpty(t *testing.T) {
	st := store.New(store.NewMemoryKV(), nil)

	state, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, state.Projects)
	require.Empty(t, state.Tasks)
}

func TestStore_SaveAndReload(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	st := store.New(kv, nil)

	topic := "aabb"
	projects := []project.Project{
		{ID: "p1", Name: "first", Topic: &topic},
		{ID: "p2", Name: "second"},
	}
	tasks := []project.Task{
		{ID: "t1", Text: "milk", Completed: true, ProjectID: "p1"},
		{ID: "t2", Text: "eggs", ProjectID: "p2"},
	}
	require.NoError(t, st.SaveProjects(ctx, projects))
	require.NoError(t, st.SaveTasks(ctx, tasks))

	state, err := store.New(kv, nil).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, projects, state.Projects)
	require.Len(t, state.Tasks, 2)
	require.Equal(t, "t1", state.Tasks[0].ID)
	require.True(t, state.Tasks[0].Completed)
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	st := store.New(kv, nil)

	require.NoError(t, st.SaveProjects(ctx, []project.Project{{ID: "p1", Name: "old"}}))
	require.NoError(t, st.SaveProjects(ctx, []project.Project{{ID: "p2", Name: "new"}}))

	state, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Projects, 1)
	require.Equal(t, "p2", state.Projects[0].ID)
}

func TestStore_CorruptValueReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "projects", []byte("{not json")))
	require.NoError(t, kv.Set(ctx, "tasks", []byte("also not json")))

	state, err := store.New(kv, nil).Load(ctx)
	require.NoError(t, err)
	require.Empty(t, state.Projects)
	require.Empty(t, state.Tasks)
}

func TestStore_PartitionTagNotSerialized(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	st := store.New(kv, nil)

	require.NoError(t, st.SaveTasks(ctx, []project.Task{
		{ID: "t1", Text: "x", ProjectID: "p1", Partition: project.PartitionOwn},
	}))

	raw, err := kv.Get(ctx, "tasks")
	require.NoError(t, err)
	require.NotContains(t, string(raw), "own")
}
