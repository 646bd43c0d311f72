// Package fiber implements the stackful suspension primitive. A fiber is a
// goroutine that runs only while it holds the baton: Resume and Throw hand
// the baton to the fiber and block until it yields or finishes, Yield hands
// the baton back to whichever call resumed the fiber. At any instant exactly
// one side of the handoff is running.
package fiber

import (
	"fmt"
	"sync/atomic"
)

var ids atomic.Uint64

type packet struct {
	value any
	err   error
}

type Fiber struct {
	id  uint64
	in  chan packet
	out chan struct{}

	// written by the fiber goroutine before its final handoff, read by the
	// resumer after the handoff; the out channel orders the accesses
	completed bool
}

// New creates a fiber that invokes body the first time it is resumed. The
// value passed to the first Resume is delivered as body's argument.
func New(body func(any)) *Fiber {
	f := &Fiber{
		id:  ids.Add(1),
		in:  make(chan packet),
		out: make(chan struct{}),
	}

	go func() {
		p := <-f.in
		if p.err != nil {
			panic(fmt.Sprintf("fiber %d: throw before first resume", f.id))
		}

		body(p.value)

		f.completed = true
		f.out <- struct{}{}
	}()

	return f
}

func (f *Fiber) Id() uint64 {
	return f.id
}

// Completed reports whether the fiber's body has returned. Only meaningful
// to the holder of the baton.
func (f *Fiber) Completed() bool {
	return f.completed
}

// Resume transfers control into the fiber, delivering v as the result of the
// fiber's last suspension point (or as body's argument on first resume), and
// returns once the fiber suspends again or finishes. Reports whether the
// fiber finished.
func (f *Fiber) Resume(v any) bool {
	return f.transfer(packet{value: v})
}

// Throw transfers control into the fiber, injecting err to be raised at the
// fiber's last suspension point. Reports whether the fiber finished.
func (f *Fiber) Throw(err error) bool {
	return f.transfer(packet{err: err})
}

func (f *Fiber) transfer(p packet) bool {
	if f.completed {
		panic(fmt.Sprintf("fiber %d: resumed after completion", f.id))
	}

	f.in <- p
	<-f.out
	return f.completed
}

// Yield suspends the fiber and transfers control back to whichever call
// resumed it. It returns the value or error later supplied via Resume or
// Throw. Must be called from inside the fiber.
func (f *Fiber) Yield() (any, error) {
	f.out <- struct{}{}
	p := <-f.in
	return p.value, p.err
}
