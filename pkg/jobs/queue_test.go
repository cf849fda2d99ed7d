package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "run-1"}))
	select {
	case id := <-done:
		assert.Equal(t, "run-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var attempts int32
	gaveUp := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("transient")
	}, QueueConfig{Workers: 1, MaxRetries: 1, RetryDelay: 10 * time.Millisecond, OnGiveUp: func(j Job, err error) { gaveUp <- j }})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "run-2"}))
	select {
	case job := <-gaveUp:
		assert.Equal(t, 2, job.Attempt)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("job never gave up")
	}
}

func TestQueueDoesNotRetryPermanentErrors(t *testing.T) {
	var attempts int32
	gaveUp := make(chan error, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return Permanent{Err: errors.New("capacity exceeded")}
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 10 * time.Millisecond, OnGiveUp: func(j Job, err error) { gaveUp <- err }})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "run-3"}))
	select {
	case err := <-gaveUp:
		assert.EqualError(t, err, "capacity exceeded")
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("job never gave up")
	}
}

func TestEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "x"}))
}

func TestEnqueueFailsFastWhenFull(t *testing.T) {
	release := make(chan struct{})
	picked := make(chan struct{}, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		picked <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	require.NoError(t, q.Enqueue(Job{ID: "busy"}))
	<-picked
	require.NoError(t, q.Enqueue(Job{ID: "buffered"}))
	assert.Equal(t, 1, q.Pending())

	err := q.Enqueue(Job{ID: "overflow"})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestPanicIsPermanentFailure(t *testing.T) {
	gaveUp := make(chan error, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		panic("index out of range")
	}, QueueConfig{Workers: 1, MaxRetries: 3, OnGiveUp: func(j Job, err error) { gaveUp <- err }})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "run-4"}))
	select {
	case err := <-gaveUp:
		var permanent Permanent
		assert.True(t, errors.As(err, &permanent))
		assert.Contains(t, err.Error(), "run-4 panicked")
	case <-time.After(2 * time.Second):
		t.Fatal("panic was not reported")
	}
}
