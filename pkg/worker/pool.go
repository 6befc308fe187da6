package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Handler processes one task and produces one result.
type Handler[T any, R any] func(ctx context.Context, task T) R

// Pool is a generic worker pool running a fixed handler over submitted tasks.
type Pool[T any, R any] struct {
	workerCount int
	poolName    string // For logging
	handler     Handler[T, R]

	taskChan   chan T
	resultChan chan R
}

// NewPool creates a new generic worker pool.
func NewPool[T any, R any](workerCount int, poolName string, bufferSize int, handler Handler[T, R]) *Pool[T, R] {
	return &Pool[T, R]{
		workerCount: workerCount,
		poolName:    poolName,
		handler:     handler,
		taskChan:    make(chan T, bufferSize),
		resultChan:  make(chan R, bufferSize),
	}
}

// Start begins the worker pool (call once at startup).
func (p *Pool[T, R]) Start(ctx context.Context) {
	slog.Info("Starting workers", "component", p.poolName, "count", p.workerCount)

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, i, &wg)
	}

	// Close the result channel once all workers have stopped
	go func() {
		wg.Wait()
		close(p.resultChan)
		slog.Info("All workers stopped", "component", p.poolName)
	}()
}

// Submit queues one task, blocking when the pool is saturated.
func (p *Pool[T, R]) Submit(ctx context.Context, task T) bool {
	select {
	case <-ctx.Done():
		return false
	case p.taskChan <- task:
		return true
	}
}

// Results returns the channel for receiving results.
func (p *Pool[T, R]) Results() <-chan R {
	return p.resultChan
}

// worker processes tasks continuously.
func (p *Pool[T, R]) worker(ctx context.Context, id int, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Worker stopping", "component", p.poolName, "worker", id)
			return

		case task, ok := <-p.taskChan:
			if !ok {
				return
			}
			p.resultChan <- p.handler(ctx, task)
		}
	}
}
