package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	now := time.Now().UTC().Truncate(time.Millisecond)
	task := &domain.ScheduledTask{
		ID:          "merge-batches",
		Name:        "Merge Batches",
		Interval:    24 * time.Hour,
		LastRun:     now.Add(-30 * time.Minute),
		NextRun:     now.Add(15 * time.Minute),
		LastSuccess: now.Add(-30 * time.Minute),
		Enabled:     true,
	}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	retrieved, err := schedulerStore.GetTask(ctx, "merge-batches")
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, task.Name, retrieved.Name)
	assert.Equal(t, task.Interval, retrieved.Interval)
	assert.True(t, retrieved.Enabled)
	assert.True(t, task.LastRun.Equal(retrieved.LastRun))
	assert.True(t, task.NextRun.Equal(retrieved.NextRun))
	assert.True(t, task.LastSuccess.Equal(retrieved.LastSuccess))
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	store := setupTestStore(t)

	task, err := store.SchedulerStore().GetTask(context.Background(), "non-existent")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	task := &domain.ScheduledTask{ID: "merge-batches", Name: "Merge Batches", Interval: time.Hour, Enabled: true}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	task.Interval = 2 * time.Hour
	task.LastError = "batch 20240101 interrupted"
	task.Enabled = false
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	retrieved, err := schedulerStore.GetTask(ctx, "merge-batches")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, retrieved.Interval)
	assert.Equal(t, "batch 20240101 interrupted", retrieved.LastError)
	assert.False(t, retrieved.Enabled)
	assert.True(t, retrieved.LastRun.IsZero())
}

func TestSchedulerStore_SaveTask_Invalid(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SchedulerStore().SaveTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SchedulerStore().SaveTask(ctx, &domain.ScheduledTask{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SchedulerStore().RecordResult(ctx, nil), domain.ErrInvalidInput)
}

func TestSchedulerStore_ListTasks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	empty, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, id := range []string{"task-2", "task-1", "task-3"} {
		require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{ID: id, Name: id, Interval: time.Hour}))
	}

	tasks, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "task-1", tasks[0].ID)
	assert.Equal(t, "task-3", tasks[2].ID)
}

func TestSchedulerStore_DeleteTask_RemovesHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{ID: "gone", Name: "Gone", Interval: time.Hour}))
	now := time.Now().UTC()
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{TaskID: "gone", StartedAt: now, EndedAt: now, Success: true}))

	require.NoError(t, schedulerStore.DeleteTask(ctx, "gone"))

	task, err := schedulerStore.GetTask(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, task)
	history, err := schedulerStore.GetTaskHistory(ctx, "gone", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSchedulerStore_RecordResultAndHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
		TaskID: "merge-batches", StartedAt: now.Add(-5 * time.Minute), EndedAt: now,
		Success: true, ItemsProcessed: 120,
	}))
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
		TaskID: "merge-batches", StartedAt: now, EndedAt: now.Add(time.Minute),
		Error: "reference data unavailable",
	}))

	history, err := schedulerStore.GetTaskHistory(ctx, "merge-batches", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[0].Success)
	assert.Equal(t, "reference data unavailable", history[0].Error)
	assert.True(t, history[1].Success)
	assert.Equal(t, 120, history[1].ItemsProcessed)
	assert.True(t, now.Equal(history[1].EndedAt))

	limited, err := schedulerStore.GetTaskHistory(ctx, "merge-batches", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	for i := range 10 {
		require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
			TaskID:         "merge-batches",
			StartedAt:      now.Add(time.Duration(i) * time.Minute),
			EndedAt:        now.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Success:        true,
			ItemsProcessed: i + 1,
		}))
	}
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{TaskID: "other", StartedAt: now, EndedAt: now}))

	require.NoError(t, schedulerStore.PruneHistory(ctx, 3))

	history, err := schedulerStore.GetTaskHistory(ctx, "merge-batches", 100)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 10, history[0].ItemsProcessed)
	assert.Equal(t, 8, history[2].ItemsProcessed)

	other, err := schedulerStore.GetTaskHistory(ctx, "other", 100)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestFormatNullableTime(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))

	ts := time.Date(2024, 1, 2, 3, 4, 5, 6, time.FixedZone("X", 3600))
	assert.Equal(t, "2024-01-02T02:04:05.000000006Z", formatNullableTime(ts))
}
