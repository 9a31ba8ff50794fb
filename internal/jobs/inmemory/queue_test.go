package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/jobs"
)

func TestQueueProcessesJobs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, 2, store)
	defer q.Close()

	var mu sync.Mutex
	processed := make(map[string]bool)
	done := make(chan struct{}, 2)

	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		processed[job.GetID()] = true
		mu.Unlock()
		done <- struct{}{}
		return nil
	}
	require.NoError(t, q.Start(ctx, handler))

	job1 := &jobs.ComputeUserJob{UserID: "user_1"}
	job2 := &jobs.ComputeUserJob{UserID: "user_2"}
	require.NoError(t, q.PublishComputeUser(ctx, job1))
	require.NoError(t, q.PublishComputeUser(ctx, job2))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, processed[job1.JobID])
	assert.True(t, processed[job2.JobID])
}

func TestQueueRetriesFailedJob(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, 1, store)
	defer q.Close()

	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("transient failure")
		}
		close(done)
		return nil
	}
	require.NoError(t, q.Start(ctx, handler))

	job := &jobs.ComputeUserJob{UserID: "user_1", MaxRetries: 2}
	require.NoError(t, q.PublishComputeUser(ctx, job))

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for retry")
	}

	mu.Lock()
	assert.Equal(t, 2, attempts)
	mu.Unlock()
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue(1, 1, nil)
	require.NoError(t, q.Close())

	err := q.PublishComputeUser(context.Background(), &jobs.ComputeUserJob{UserID: "user_1"})
	assert.Error(t, err)
}

func TestStoreFiltersByUserAndStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.SaveJob(ctx, &jobs.ComputeUserJob{JobID: "a", UserID: "user_1", Status: jobs.JobStatusPending}))
	require.NoError(t, store.SaveJob(ctx, &jobs.ComputeUserJob{JobID: "b", UserID: "user_1", Status: jobs.JobStatusCompleted}))
	require.NoError(t, store.SaveJob(ctx, &jobs.ComputeUserJob{JobID: "c", UserID: "user_2", Status: jobs.JobStatusPending}))

	byUser, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "user_1"})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	pending, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "user_1", Status: jobs.JobStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].JobID)

	require.NoError(t, store.UpdateJobStatus(ctx, "a", jobs.JobStatusFailed, "boom"))
	got, err := store.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
}
