// Package dispatch schedules queued jobs onto a bounded pool of workers,
// decoupling job creation from job execution.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Enqueue errors surfaced to the job-creation caller. In both cases the job
// record stays pending and can be re-enqueued later.
var (
	ErrQueueFull = errors.New("dispatch: queue is full")
	ErrStopped   = errors.New("dispatch: dispatcher is stopped")
)

// Runner executes the pipeline for one job id. Delivery is at-least-once: the
// runner's claim gate makes duplicate deliveries no-ops.
type Runner interface {
	Run(ctx context.Context, jobID uuid.UUID) error
}

// Dispatcher owns a buffered queue of job ids and a fixed number of worker
// goroutines draining it. It is an explicit, injectable component; tests swap
// in a synchronous runner.
type Dispatcher struct {
	runner  Runner
	logger  *zap.Logger
	queue   chan uuid.UUID
	workers int
	wg      sync.WaitGroup
	cancel  context.CancelFunc

	mu      sync.Mutex
	stopped bool
}

// New creates a Dispatcher with the given worker count and queue capacity.
// Call Start before Enqueue.
func New(runner Runner, workers, capacity int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Dispatcher{
		runner:  runner,
		logger:  logger,
		queue:   make(chan uuid.UUID, capacity),
		workers: workers,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx, i+1)
	}
}

// Enqueue schedules a pending job for execution. It never blocks: when the
// queue is full it returns ErrQueueFull and the job simply stays pending.
func (d *Dispatcher) Enqueue(jobID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	select {
	case d.queue <- jobID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop rejects new work, lets queued and in-flight jobs finish, and waits for
// the workers to exit. ctx bounds the wait; on expiry in-flight jobs are
// abandoned mid-stage and their records stay processing.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if d.cancel != nil {
			d.cancel()
		}
		return ctx.Err()
	}
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	defer d.wg.Done()
	logger := d.logger.With(zap.Int("worker", id))
	for jobID := range d.queue {
		if err := d.runner.Run(ctx, jobID); err != nil {
			// Store errors and the like; the job stays in its last
			// durably-written state and can be retried externally.
			logger.Error("job run aborted",
				zap.String("job_id", jobID.String()),
				zap.Error(err))
		}
	}
	logger.Info("worker exiting")
}
