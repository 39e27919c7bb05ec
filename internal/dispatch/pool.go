package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pool runs tasks on a fixed number of goroutines bound to a lifetime
// context. Handler errors are logged and never stop the pool.
type Pool struct {
	ctx     context.Context
	tasks   chan Task
	handler Handler
	logger  zerolog.Logger
	group   errgroup.Group

	mu     sync.RWMutex
	closed bool
}

func NewPool(ctx context.Context, workers, queueSize int, handler Handler, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		ctx:     ctx,
		tasks:   make(chan Task, queueSize),
		handler: handler,
		logger:  logger,
	}
	for i := 0; i < workers; i++ {
		p.group.Go(p.work)
	}
	return p
}

func (p *Pool) work() error {
	for task := range p.tasks {
		p.run(task)
	}
	return nil
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("job_id", task.JobID).Interface("panic", r).Msg("dispatch: task panicked")
		}
	}()
	if err := p.handler(p.ctx, task); err != nil {
		p.logger.Error().Err(err).Str("job_id", task.JobID).Msg("dispatch: task failed")
	}
}

// Dispatch enqueues task or fails immediately when the queue is full.
func (p *Pool) Dispatch(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("%w: job %s", ErrQueueFull, task.JobID)
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	return p.group.Wait()
}

var _ Dispatcher = (*Pool)(nil)
