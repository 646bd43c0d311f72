package fpromise

import "errors"

// Handshake is a single-slot notification primitive: at most one fiber waits
// on it at a time, and at most one notification is buffered. Notify before
// Wait is remembered; Notify after Wait delivers on a future tick. The
// waiter slot and the buffered flag are never both set.
type Handshake struct {
	waiter   func(struct{}, error)
	notified bool
}

func NewHandshake() *Handshake {
	return &Handshake{}
}

// Wait suspends the calling fiber until Notify is called, or returns
// immediately (after a tick) if a notification is buffered. A second Wait
// while one is outstanding fails with StatusAlreadyWaiting.
func (h *Handshake) Wait() error {
	_, err := Wait[struct{}](Thunk[struct{}](func(cb func(struct{}, error)) {
		if h.waiter != nil {
			cb(struct{}{}, NewError(StatusAlreadyWaiting, errors.New("handshake has a pending waiter")))
			return
		}

		if h.notified {
			h.notified = false
			cb(struct{}{}, nil)
			return
		}

		h.waiter = cb
	}))
	return err
}

// Notify wakes the pending waiter, or buffers a single notification if no
// waiter is registered. Repeated notifies without an intervening Wait
// collapse to one. Notify never blocks and never fails.
func (h *Handshake) Notify() {
	if h.waiter == nil {
		h.notified = true
		return
	}

	w := h.waiter
	h.waiter = nil
	w(struct{}{}, nil)
}
