package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForTerminal(t *testing.T, q *Queue, jobID string) *Result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if res, ok := q.Lookup(jobID); ok {
			if res.Status == StatusCompleted || res.Status == StatusFailed {
				return res
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return nil
}

func TestQueueRunsJobToCompletion(t *testing.T) {
	q := NewQueue("test", func(_ context.Context, job Job) (interface{}, error) {
		return job.Payload, nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "echo", Payload: "hello"}))

	res := waitForTerminal(t, q, "job-1")
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "hello", res.Data)
	assert.NotNil(t, res.StartedAt)
	assert.NotNil(t, res.FinishedAt)
}

func TestQueueRecordsFailure(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) (interface{}, error) {
		return nil, errors.New("boom")
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "explode"}))

	res := waitForTerminal(t, q, "job-1")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "boom", res.Error)
	assert.Nil(t, res.Data)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) (interface{}, error) {
		return nil, nil
	}, QueueConfig{})

	err := q.Enqueue(Job{ID: "job-1"})
	require.Error(t, err)
}

func TestQueueLookupUnknownJob(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) (interface{}, error) {
		return nil, nil
	}, QueueConfig{})
	q.Start(context.Background())
	defer q.Stop()

	_, ok := q.Lookup("missing")
	assert.False(t, ok)
}
