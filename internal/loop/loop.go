// Package loop implements the single-threaded event loop that drives all
// fiber resumptions. Callbacks posted with Post run on one goroutine in FIFO
// order; timers fire by posting back onto the same queue.
package loop

import (
	"sync"
	"time"

	"github.com/sage/fpromise/internal/metrics"
)

type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
	metrics *metrics.Metrics
}

func New(metrics *metrics.Metrics) *Loop {
	return &Loop{
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		metrics: metrics,
	}
}

// Start runs the loop on its own goroutine.
func (l *Loop) Start() {
	go l.run()
}

// Stop drains nothing; callbacks already queued are dropped once the current
// batch finishes. Blocks until the loop goroutine exits.
func (l *Loop) Stop() {
	close(l.stop)
	<-l.stopped
}

// Post schedules f to run on a future tick. FIFO order is guaranteed among
// posted callbacks. Post never blocks and is safe for concurrent use.
func (l *Loop) Post(f func()) {
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After schedules f to run on the loop after d has elapsed.
func (l *Loop) After(d time.Duration, f func()) {
	l.metrics.TimersActive.Inc()
	time.AfterFunc(d, func() {
		l.metrics.TimersActive.Dec()
		l.Post(f)
	})
}

func (l *Loop) run() {
	defer close(l.stopped)

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			select {
			case <-l.wake:
				continue
			case <-l.stop:
				return
			}
		}

		for _, f := range batch {
			f()
		}

		select {
		case <-l.stop:
			return
		default:
		}
	}
}
