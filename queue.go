package fpromise

import (
	"errors"
	"slices"
)

// step is what a pending read resolves to: an item, or ok=false for
// end-of-stream.
type step[T any] struct {
	value T
	ok    bool
}

// Queue is a FIFO channel for fiber-to-fiber data transfer with an optional
// capacity. At most one read may be pending at a time; writers blocked by a
// full queue are released in FIFO order as capacity frees.
type Queue[T any] struct {
	items   []T
	max     int
	ended   bool
	reader  func(step[T], error)
	writers []func(error)
}

// NewQueue creates a queue holding at most max items; max <= 0 means
// unbounded.
func NewQueue[T any](max int) *Queue[T] {
	return &Queue[T]{max: max}
}

// Read returns the next item in FIFO order, suspending the calling fiber if
// the queue is empty. ok is false once the stream has ended and the backlog
// is drained; subsequent reads keep returning ok=false. A read while another
// is pending fails with StatusAlreadyWaiting.
func (q *Queue[T]) Read() (T, bool, error) {
	r, err := Wait[step[T]](Thunk[step[T]](func(cb func(step[T], error)) {
		if q.reader != nil {
			cb(step[T]{}, NewError(StatusAlreadyWaiting, errors.New("queue has a pending reader")))
			return
		}

		if len(q.items) > 0 {
			v := q.items[0]
			q.items = q.items[1:]
			cb(step[T]{value: v, ok: true}, nil)
			q.releaseWriter()
			return
		}

		if q.ended {
			cb(step[T]{}, nil)
			return
		}

		q.reader = cb
	}))

	if err != nil {
		var zero T
		return zero, false, err
	}
	return r.value, r.ok, nil
}

// Write appends v, suspending the calling fiber while the queue is full. On
// release the put is re-attempted: another writer may have taken the freed
// slot first.
func (q *Queue[T]) Write(v T) error {
	for !q.Put(v) {
		if !CanWait() {
			return NewError(StatusNoFiberContext, errors.New("write on a full queue requires a fiber"))
		}

		_, err := Wait[struct{}](Thunk[struct{}](func(cb func(struct{}, error)) {
			q.writers = append(q.writers, func(err error) {
				cb(struct{}{}, err)
			})
		}))
		if err != nil {
			return err
		}
	}

	return nil
}

// Put appends v without blocking. If a read is pending the item is handed to
// it directly (delivered on a future tick). Put reports false when the queue
// is full.
func (q *Queue[T]) Put(v T) bool {
	if q.reader != nil {
		r := q.reader
		q.reader = nil
		r(step[T]{value: v, ok: true}, nil)
		q.releaseWriter()
		return true
	}

	if q.max > 0 && len(q.items) >= q.max {
		return false
	}

	q.items = append(q.items, v)
	q.releaseWriter()
	return true
}

// End marks the end of the stream. It always succeeds, even over capacity:
// readers drain the backlog first and then observe end-of-stream. A pending
// read observes it immediately.
func (q *Queue[T]) End() {
	if q.ended {
		return
	}
	q.ended = true

	if q.reader != nil && len(q.items) == 0 {
		r := q.reader
		q.reader = nil
		r(step[T]{}, nil)
	}
}

// Peek returns the head item without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// Contents returns a snapshot of the queued items in insertion order.
func (q *Queue[T]) Contents() []T {
	return slices.Clone(q.items)
}

// Adjust replaces the backing sequence with fn(items). A transform that
// returns no sequence (nil) fails with StatusInvalidAdjustResult; return an
// empty non-nil slice to clear the queue.
func (q *Queue[T]) Adjust(fn func([]T) []T) error {
	if fn == nil {
		return NewError(StatusInvalidArgument, errors.New("fn must be non nil"))
	}

	items := fn(q.items)
	if items == nil {
		return NewError(StatusInvalidAdjustResult, errors.New("transform must return a sequence"))
	}

	q.items = items
	q.releaseWriter()
	return nil
}

// Length returns the number of queued, not yet delivered items.
func (q *Queue[T]) Length() int {
	return len(q.items)
}

func (q *Queue[T]) releaseWriter() {
	if len(q.writers) == 0 {
		return
	}
	if q.max > 0 && len(q.items) >= q.max {
		return
	}

	w := q.writers[0]
	q.writers = q.writers[1:]
	w(nil)
}
