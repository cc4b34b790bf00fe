package queue

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("pool is closed")

// Task is a unit of work for the Pool. Started, when set, is called
// synchronously the moment the task is given a slot, so Started calls happen
// in submission order.
type Task struct {
	Started func()
	Run     func()
}

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	Limit   int
	Running int
	Queued  int
}

// Pool runs submitted tasks on at most limit goroutines, starting them in
// submission order. Changing the limit only affects tasks not yet started.
type Pool struct {
	mu      sync.Mutex
	idle    *sync.Cond
	limit   int
	running int
	pending []Task
	closed  bool
	logger  *slog.Logger
}

// NewPool creates a pool. limit is raised to 1 if lower.
func NewPool(limit int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{limit: max(limit, 1), logger: logger}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Submit queues task for execution.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.pending = append(p.pending, task)
	p.scheduleLocked()
	return nil
}

// SetLimit changes the number of concurrently running tasks. Running tasks
// are never interrupted.
func (p *Pool) SetLimit(limit int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	limit = max(limit, 1)
	if limit == p.limit {
		return
	}
	p.logger.Debug("pool limit changed", "from", p.limit, "to", limit)
	p.limit = limit
	p.scheduleLocked()
}

// Stats returns the current limit and task counts.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{Limit: p.limit, Running: p.running, Queued: len(p.pending)}
}

// Close rejects further submissions. Already queued tasks still run.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Wait blocks until no task is running or queued.
func (p *Pool) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.running > 0 || len(p.pending) > 0 {
		p.idle.Wait()
	}
}

func (p *Pool) scheduleLocked() {
	for p.running < p.limit && len(p.pending) > 0 {
		task := p.pending[0]
		p.pending[0] = Task{}
		p.pending = p.pending[1:]
		p.running++
		if task.Started != nil {
			task.Started()
		}
		go p.run(task.Run)
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		p.mu.Lock()
		p.running--
		p.scheduleLocked()
		if p.running == 0 && len(p.pending) == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pool task panicked", "panic", fmt.Sprint(r))
		}
	}()
	if task != nil {
		task()
	}
}
