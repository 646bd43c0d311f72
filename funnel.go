package fpromise

import (
	"errors"

	"github.com/sage/fpromise/internal/util"
)

// Funnel bounds how many fibers execute a section at once. Admission is
// granted up to the ceiling; fibers over the ceiling block on a FIFO queue
// of handshakes and the earliest blocked caller wakes first.
type Funnel struct {
	max    int
	active int
	queue  []*Handshake
	closed bool
}

// NewFunnel creates a funnel with the given concurrency ceiling. max < 0
// means unrestricted, max == 0 means the shared process-wide default
// ceiling (see SetDefaultFunnelMax), max > 0 is the ceiling itself.
func NewFunnel(max int) *Funnel {
	return &Funnel{max: max}
}

// SetDefaultFunnelMax reconfigures the ceiling used by funnels created with
// max == 0.
func SetDefaultFunnelMax(n int) {
	eng().funnel.Store(int64(n))
}

func (f *Funnel) ceiling() int {
	if f.max == 0 {
		return int(eng().funnel.Load())
	}
	return f.max
}

// Gate runs fn under f's admission control and returns fn's result. fn runs
// within the calling fiber; no new fiber is spawned. When the funnel is at
// its ceiling the caller blocks; on wake it re-attempts admission, because
// another unblocked fiber may have taken the freed slot in the meantime.
// Gate fails with StatusFunnelClosed once the funnel is closed.
func Gate[T any](f *Funnel, fn func() (T, error)) (T, error) {
	util.Assert(f != nil, "gate: funnel must be non nil")

	var zero T

	if fn == nil {
		return zero, NewError(StatusInvalidArgument, errors.New("fn must be non nil"))
	}
	if f.max < 0 {
		return fn()
	}
	if !CanWait() {
		return zero, NewError(StatusNoFiberContext, errors.New("gate requires a fiber"))
	}

	for {
		if f.closed {
			return zero, NewError(StatusFunnelClosed, nil)
		}
		if f.active < f.ceiling() {
			break
		}

		h := NewHandshake()
		f.queue = append(f.queue, h)
		if err := h.Wait(); err != nil {
			return zero, err
		}
	}

	f.active++
	defer f.exit()
	return fn()
}

func (f *Funnel) exit() {
	f.active--

	if f.closed || len(f.queue) == 0 {
		return
	}

	h := f.queue[0]
	f.queue = f.queue[1:]
	h.Notify()
}

// Close permanently closes the funnel: every queued waiter is released and
// observes StatusFunnelClosed; executions already admitted run to
// completion.
func (f *Funnel) Close() {
	if f.closed {
		return
	}

	f.closed = true
	queue := f.queue
	f.queue = nil

	for _, h := range queue {
		h.Notify()
	}
}

func (f *Funnel) Closed() bool {
	return f.closed
}
