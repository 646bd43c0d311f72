package fpromise

import (
	"errors"
	"time"

	"github.com/sage/fpromise/pkg/promise"
)

// Awaitable is anything Wait can suspend on. Two shapes exist: Thunk, the
// callback style, and *promise.Promise, the future style. The shape is
// resolved once at the Wait call boundary.
type Awaitable[T any] interface {
	// Subscribe arranges for fn to be invoked exactly once with the
	// operation's result or error.
	Subscribe(fn func(T, error))
}

// Thunk adapts a callback-style asynchronous operation: invoking the thunk
// starts the operation and hands it the completion callback.
type Thunk[T any] func(fn func(T, error))

func (t Thunk[T]) Subscribe(fn func(T, error)) {
	t(fn)
}

// Run spawns a fiber that invokes fn and returns a promise for its result.
// The promise resolves with fn's value or rejects with its error (or with a
// StatusFiberPanic error if fn panics). A nil fn rejects the promise with
// StatusInvalidArgument. Run never blocks its caller; the fiber always starts
// asynchronously, on a future loop tick, with the context that was current
// when Run was called. No part of fn runs before Run returns, even when Run
// is called from inside a fiber.
func Run[T any](fn func() (T, error)) *promise.Promise[T] {
	return run("run", fn)
}

func run[T any](kind string, fn func() (T, error)) *promise.Promise[T] {
	e := eng()
	p := promise.New[T]()

	if fn == nil {
		p.Reject(NewError(StatusInvalidArgument, errors.New("fn must be non nil")))
		return p
	}

	cx := e.loadCx()
	e.loop.Post(func() {
		e.spawn(kind, cx, func() {
			v, err := invoke(fn)
			if err != nil {
				p.Reject(err)
			} else {
				p.Resolve(v)
			}
		})
	})

	return p
}

// Wait suspends the calling fiber until a completes, then returns its result
// or re-raises its error at the call site. Delivery is deferred by at least
// one loop tick even if the awaitable completes synchronously, so the fiber
// has always suspended before it is resumed. The context cell is saved
// before yielding and restored after, symmetric with the save/restore done
// around the resume itself.
//
// Calling Wait outside a fiber fails with StatusNoFiberContext. Wait may be
// called reentrantly from a callback running inside another Wait's pending
// operation; the same suspend/resume protocol applies.
func Wait[T any](a Awaitable[T]) (T, error) {
	var zero T

	e := eng()
	r := e.current.Load()
	if r == nil {
		return zero, NewError(StatusNoFiberContext, errors.New("wait requires a fiber"))
	}

	cx := e.loadCx()
	a.Subscribe(func(v T, err error) {
		e.loop.Post(func() {
			e.resume(r, v, err, cx)
		})
	})

	v, err := r.fib.Yield()
	e.storeCx(cx)

	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// CanWait reports whether the caller is executing inside a fiber.
func CanWait() bool {
	return eng().current.Load() != nil
}

// Sleep suspends the calling fiber for at least d.
func Sleep(d time.Duration) error {
	_, err := Wait[struct{}](Thunk[struct{}](func(cb func(struct{}, error)) {
		eng().loop.After(d, func() {
			cb(struct{}{}, nil)
		})
	}))
	return err
}

// Map dispatches fn over every element of items in parallel via Run, then
// waits for all results. Results are returned in input order regardless of
// completion order; the first error (in input order) is returned. Map itself
// applies no concurrency bound; gate fn through a Funnel to add one.
func Map[S, T any](items []S, fn func(S) (T, error)) ([]T, error) {
	if fn == nil {
		return nil, NewError(StatusInvalidArgument, errors.New("fn must be non nil"))
	}
	if !CanWait() {
		return nil, NewError(StatusNoFiberContext, errors.New("map requires a fiber"))
	}

	promises := make([]*promise.Promise[T], len(items))
	for i := range items {
		item := items[i]
		promises[i] = Run(func() (T, error) {
			return fn(item)
		})
	}

	results := make([]T, len(items))
	for i, p := range promises {
		v, err := Wait[T](p)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}

	return results, nil
}
