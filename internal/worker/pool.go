// Package worker runs source downloads on a bounded set of goroutines.
package worker

import (
	"context"
	"sync"
)

// Task is one unit of work; it should return promptly once ctx is done
type Task[R any] func(ctx context.Context) R

type indexedTask[R any] struct {
	index int
	run   Task[R]
}

// Pool runs tasks on a fixed number of workers and returns their results
// in submission order, whatever order they complete in.
type Pool[R any] struct {
	workers int
	queue   chan indexedTask[R]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once

	mu      sync.Mutex
	results []R
}

// NewPool creates a pool bound to ctx; workers <= 0 means one
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[R]{
		workers: workers,
		queue:   make(chan indexedTask[R], workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool[R]) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.queue:
			if !ok {
				return
			}
			r := t.run(p.ctx)

			p.mu.Lock()
			p.results[t.index] = r
			p.mu.Unlock()
		}
	}
}

// Submit queues task, blocking while the queue is full.
// It returns false once the pool has been cancelled.
func (p *Pool[R]) Submit(task Task[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}

	var zero R
	p.mu.Lock()
	index := len(p.results)
	p.results = append(p.results, zero)
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- indexedTask[R]{index: index, run: task}:
		return true
	}
}

// Wait stops accepting tasks, waits for the workers and returns one result
// per submitted task. Tasks that never ran hold the zero value.
func (p *Pool[R]) Wait() []R {
	p.once.Do(func() { close(p.queue) })
	p.wg.Wait()
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]R, len(p.results))
	copy(out, p.results)
	return out
}

// Shutdown cancels the pool without draining queued tasks
func (p *Pool[R]) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
