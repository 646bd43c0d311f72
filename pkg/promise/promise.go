// Package promise provides the one-shot future settled by fibers. A promise
// is resolved or rejected exactly once; subscribers registered before
// settlement are invoked on the settler's goroutine, subscribers registered
// after are invoked immediately.
package promise

import "sync"

type Promise[T any] struct {
	mu          sync.Mutex
	settled     bool
	value       T
	err         error
	done        chan struct{}
	subscribers []func(T, error)
}

func New[T any]() *Promise[T] {
	return &Promise[T]{
		done: make(chan struct{}),
	}
}

// Resolved returns a promise already resolved with v.
func Resolved[T any](v T) *Promise[T] {
	p := New[T]()
	p.Resolve(v)
	return p
}

// Rejected returns a promise already rejected with err.
func Rejected[T any](err error) *Promise[T] {
	p := New[T]()
	p.Reject(err)
	return p
}

func (p *Promise[T]) Resolve(v T) {
	p.settle(v, nil)
}

func (p *Promise[T]) Reject(err error) {
	var zero T
	p.settle(zero, err)
}

func (p *Promise[T]) settle(v T, err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		panic("promise: settled more than once")
	}

	p.settled = true
	p.value = v
	p.err = err
	subscribers := p.subscribers
	p.subscribers = nil
	close(p.done)
	p.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(v, err)
	}
}

// Subscribe registers fn to be invoked with the promise's value and error
// once it settles. If the promise is already settled, fn is invoked
// immediately on the calling goroutine.
func (p *Promise[T]) Subscribe(fn func(T, error)) {
	p.mu.Lock()
	if !p.settled {
		p.subscribers = append(p.subscribers, fn)
		p.mu.Unlock()
		return
	}

	v, err := p.value, p.err
	p.mu.Unlock()
	fn(v, err)
}

// Await blocks the calling goroutine until the promise settles. It is the
// bridge by which non-fiber code observes a fiber's result; fiber code
// should use fpromise.Wait instead.
func (p *Promise[T]) Await() (T, error) {
	<-p.done
	return p.value, p.err
}

func (p *Promise[T]) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.settled
}
