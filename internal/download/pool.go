package download

import (
	"context"
	"sync"
)

// PoolState describes where a pool is in its one-way lifecycle
type PoolState int

const (
	// PoolIdle means Start has not been called yet
	PoolIdle PoolState = iota
	// PoolDispatching means workers are admitting queued items
	PoolDispatching
	// PoolDraining means Stop was requested; in-flight executors finish
	// naturally and remaining items are skipped
	PoolDraining
	// PoolDone means all admitted executors have finished
	PoolDone
)

// Pool runs executors over a fixed batch of URLs with at most `workers`
// running simultaneously. A pool is one-shot: after it drains (or is
// stopped) it cannot be started again; the session constructs a fresh pool
// per batch with the worker limit current at that moment.
type Pool struct {
	workers int

	mu      sync.Mutex
	state   PoolState
	stopped bool

	wg   sync.WaitGroup
	done chan struct{}
}

// NewPool creates an idle pool with the given worker limit
func NewPool(workers int) *Pool {
	return &Pool{
		workers: workers,
		done:    make(chan struct{}),
	}
}

// Start launches one executor per URL, capping concurrently running
// executors at the worker limit. It returns immediately after dispatching;
// use Wait or Done to observe the drain.
func (p *Pool) Start(ctx context.Context, urls []string, exec *Executor) error {
	p.mu.Lock()
	if p.state != PoolIdle {
		p.mu.Unlock()
		return ErrPoolUsed
	}
	if len(urls) == 0 {
		p.mu.Unlock()
		return ErrEmptyBatch
	}
	if p.workers < 1 {
		p.mu.Unlock()
		return ErrInvalidWorkers
	}
	p.state = PoolDispatching
	p.mu.Unlock()

	jobs := make(chan string, len(urls))
	for _, url := range urls {
		jobs <- url
	}
	close(jobs)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for url := range jobs {
				// A polite stop: items that have not started stay
				// queued, in-flight downloads run to completion.
				if p.isStopped() {
					continue
				}
				exec.Run(ctx, url)
			}
		}()
	}

	go func() {
		p.wg.Wait()
		p.mu.Lock()
		p.state = PoolDone
		p.mu.Unlock()
		close(p.done)
	}()

	return nil
}

// Stop prevents items that have not yet started from being admitted.
// In-flight executors are not interrupted; the underlying download call is
// not interruptible, which is a deliberate, user-visible limitation.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == PoolDispatching {
		p.state = PoolDraining
	}
	p.stopped = true
}

// Wait blocks until every admitted executor has finished
func (p *Pool) Wait() {
	<-p.done
}

// Done returns a channel closed when the pool has drained
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// State returns the pool's current lifecycle state
func (p *Pool) State() PoolState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pool) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}
