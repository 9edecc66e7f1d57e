package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job represents a queued unit of work bound to an ordering key.
type Job struct {
	ID       string
	Key      int64
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Queue dispatches jobs to a fixed set of lanes. Jobs sharing a key always land on the same
// lane and are processed in enqueue order; different keys run concurrently. Failed jobs are
// logged and never replayed.
type Queue struct {
	name    string
	handler Handler

	workers int
	logger  *zap.Logger

	lanes   []chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	lanes := make([]chan Job, cfg.Workers)
	for i := range lanes {
		lanes[i] = make(chan Job, cfg.BufferSize)
	}

	return &Queue{
		name:    name,
		handler: handler,
		workers: cfg.Workers,
		logger:  cfg.Logger,
		lanes:   lanes,
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
		go q.worker(i)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Run starts the queue and blocks until ctx is cancelled, then drains workers.
func (q *Queue) Run(ctx context.Context) error {
	q.Start(ctx)
	<-ctx.Done()
	q.Stop()
	return nil
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

// Enqueue pushes a job onto the lane owned by its key.
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

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.lanes[q.lane(job.Key)] <- job:
		return nil
	}
}

func (q *Queue) lane(key int64) int {
	return int(uint64(key) % uint64(q.workers))
}

func (q *Queue) worker(lane int) {
	defer q.wg.Done()
	jobs := q.lanes[lane]
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-jobs:
			if err := q.handler(q.ctx, job); err != nil {
				q.logger.Sugar().Errorw("job failed", "queue", q.name, "lane", lane, "job_id", job.ID, "type", job.Type, "key", job.Key, "error", err)
			}
		}
	}
}
