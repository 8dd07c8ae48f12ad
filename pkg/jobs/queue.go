package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status describes the lifecycle of a queued run.
type Status string

const (
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Job represents a queued background task, typically a timetable
// generation run that is too slow to hold an HTTP request open for.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Result is the terminal state of a job, retained for polling clients.
type Result struct {
	JobID      string      `json:"jobId"`
	Status     Status      `json:"status"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	EnqueuedAt time.Time   `json:"enqueuedAt"`
	StartedAt  *time.Time  `json:"startedAt,omitempty"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

// Handler processes a job and returns the value exposed to pollers.
type Handler func(context.Context, Job) (interface{}, error)

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	ResultTTL  time.Duration
	Logger     *zap.Logger
}

// Queue is a lightweight in-memory job dispatcher backed by goroutines.
// Each job's outcome is kept for ResultTTL so clients can poll by job ID.
type Queue struct {
	name    string
	handler Handler

	workers    int
	bufferSize int
	resultTTL  time.Duration
	logger     *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool

	resultsMu sync.RWMutex
	results   map[string]*Result
	expiry    map[string]time.Time
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		resultTTL:  cfg.ResultTTL,
		logger:     cfg.Logger,
		jobs:       make(chan Job, cfg.BufferSize),
		results:    make(map[string]*Result),
		expiry:     make(map[string]time.Time),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a job onto the queue and records it as queued.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	q.setResult(&Result{
		JobID:      job.ID,
		Status:     StatusQueued,
		EnqueuedAt: job.Enqueued,
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

// Lookup returns the recorded outcome for a job ID, if still retained.
func (q *Queue) Lookup(jobID string) (*Result, bool) {
	q.resultsMu.RLock()
	defer q.resultsMu.RUnlock()

	res, ok := q.results[jobID]
	if !ok {
		return nil, false
	}
	if exp, hasExp := q.expiry[jobID]; hasExp && time.Now().After(exp) {
		return nil, false
	}

	copied := *res
	return &copied, true
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.run(job)
		}
	}
}

func (q *Queue) run(job Job) {
	started := time.Now().UTC()
	q.setResult(&Result{
		JobID:      job.ID,
		Status:     StatusRunning,
		EnqueuedAt: job.Enqueued,
		StartedAt:  &started,
	})

	data, err := q.handler(q.ctx, job)
	finished := time.Now().UTC()

	result := &Result{
		JobID:      job.ID,
		Status:     StatusCompleted,
		Data:       data,
		EnqueuedAt: job.Enqueued,
		StartedAt:  &started,
		FinishedAt: &finished,
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		result.Data = nil
		q.logger.Sugar().Errorw("job failed", "queue", q.name, "job_id", job.ID, "type", job.Type, "error", err)
	}

	q.setResult(result)
	q.sweepExpired()
}

func (q *Queue) setResult(res *Result) {
	q.resultsMu.Lock()
	defer q.resultsMu.Unlock()
	q.results[res.JobID] = res
	q.expiry[res.JobID] = time.Now().Add(q.resultTTL)
}

func (q *Queue) sweepExpired() {
	now := time.Now()
	q.resultsMu.Lock()
	defer q.resultsMu.Unlock()
	for id, exp := range q.expiry {
		if now.After(exp) {
			delete(q.results, id)
			delete(q.expiry, id)
		}
	}
}
