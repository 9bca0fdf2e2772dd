// Package worker drains the change-event queue and recomputes room
// leaderboards.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ringsidehq/ringside/internal/adapters/mq/queue"
	"github.com/ringsidehq/ringside/pkg/logger"
	"github.com/ringsidehq/ringside/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
)

// Event is what workers read off the queue.
type Event = queue.Event

// Rebuilder recomputes the leaderboard for one room from scratch.
type Rebuilder interface {
	Rebuild(ctx context.Context, roomID string) error
}

// Queue defines how workers receive change events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes change events until stopped.
type Worker struct {
	queue     Queue
	rebuilder Rebuilder
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, rebuilder Rebuilder, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		rebuilder: rebuilder,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing change event", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent recomputes the leaderboard for the event's room.
func (w *Worker) processEvent(ctx context.Context, event Event) error {
	if event.RoomID == "" {
		// Users and room-less templates carry no room scope; nothing to
		// recompute.
		w.logger.Debug(ctx, "change without room scope, skipping",
			logger.String("collection", event.Collection),
			logger.String("id", event.ID),
		)
		return nil
	}

	start := time.Now()
	if err := w.rebuilder.Rebuild(ctx, event.RoomID); err != nil {
		metrics.RecordLeaderboardRebuildError()
		w.logger.Error(ctx, "leaderboard rebuild failed",
			logger.String("roomID", event.RoomID),
			logger.Error(err),
		)
		return fmt.Errorf("rebuild room %s: %w", event.RoomID, err)
	}
	metrics.RecordLeaderboardRebuild(float64(time.Since(start).Milliseconds()))
	return nil
}

// Pool manages multiple workers draining the same queue.
type Pool struct {
	workers []*Worker

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a worker pool.
func NewPool(workerCount int, q Queue, rebuilder Rebuilder) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*Worker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewWorker(q, rebuilder, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop stops all workers, waiting briefly for each to finish.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		select {
		case <-w.done:
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}
