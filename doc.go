// Package fpromise provides synchronous-looking control flow over
// asynchronous operations. User code runs inside cooperatively scheduled
// fibers: Run spawns a fiber and returns a promise for its result, Wait
// suspends the calling fiber until an asynchronous operation or promise
// completes and resumes it with the result or error. All fibers multiplex
// over one event loop goroutine, so at most one fiber executes at any
// instant and no locking is needed in fiber code.
//
// On top of Run and Wait the package offers a set of fiber-safe concurrency
// utilities: Funnel (bounded-concurrency gate), Handshake (single-slot
// notification), Queue (bounded or unbounded FIFO channel), ambient context
// propagation (Context, WithContext) and EventHandler for bridging plain
// callbacks into fiber code.
package fpromise
