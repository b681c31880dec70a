package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))

	select {
	case job := <-done:
		assert.Equal(t, "job-1", job.ID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func TestQueueRetriesFailedJob(t *testing.T) {
	var mu sync.Mutex
	attempts := make([]int, 0, 2)
	done := make(chan struct{})

	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		attempts = append(attempts, job.Attempt)
		mu.Unlock()
		if job.Attempt == 0 {
			return errors.New("transient failure")
		}
		close(done)
		return nil
	}, QueueConfig{RetryDelay: time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retry")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1}, attempts)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})

	err := q.Enqueue(Job{ID: "job-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}

func TestQueueEnqueueWhenFull(t *testing.T) {
	picked := make(chan struct{})
	release := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if job.ID == "job-1" {
			close(picked)
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	q.Start(context.Background())
	defer func() {
		close(release)
		q.Stop()
	}()

	// job-1 occupies the only worker, job-2 fills the buffer; the
	// next submission must be refused instead of blocking.
	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	select {
	case <-picked:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the first job")
	}
	require.NoError(t, q.Enqueue(Job{ID: "job-2"}))

	err := q.Enqueue(Job{ID: "job-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
}
