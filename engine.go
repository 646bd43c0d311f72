package fpromise

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sage/fpromise/internal/fiber"
	"github.com/sage/fpromise/internal/loop"
	"github.com/sage/fpromise/internal/metrics"
)

const defaultFunnelMax = 4

// runner pairs a fiber with the engine bookkeeping attached to it.
type runner struct {
	fib  *fiber.Fiber
	kind string
}

// engine is the process-wide wait/run engine: the event loop, the current
// fiber register, and the context cell. Exactly one engine exists; it is
// started lazily on first use and runs for the life of the process.
//
// The cooperative model is single threaded: at any instant at most one fiber
// executes, and it does so while the loop goroutine is blocked handing it
// the baton. Wait, Context, WithContext and the concurrency utilities must
// be called from fiber code; Run, EventHandler and promise Await are the
// entry points for everything else.
type engine struct {
	loop     *loop.Loop
	metrics  *metrics.Metrics
	current  atomic.Pointer[runner]
	cx       atomic.Pointer[cxCell]
	uncaught atomic.Pointer[func(error)]
	funnel   atomic.Int64
}

// cxCell boxes the context so the cell can hold any concrete context type.
type cxCell struct {
	cx context.Context
}

var (
	engineOnce sync.Once
	engineInst *engine
)

func eng() *engine {
	engineOnce.Do(func() {
		m := metrics.New(prometheus.DefaultRegisterer)

		e := &engine{
			loop:    loop.New(m),
			metrics: m,
		}
		e.cx.Store(&cxCell{cx: context.Background()})
		e.funnel.Store(defaultFunnelMax)

		h := func(err error) {
			slog.Error("uncaught fiber error", "err", err)
		}
		e.uncaught.Store(&h)

		e.loop.Start()
		engineInst = e
	})

	return engineInst
}

func (e *engine) loadCx() context.Context {
	return e.cx.Load().cx
}

func (e *engine) storeCx(cx context.Context) {
	e.cx.Store(&cxCell{cx: cx})
}

// spawn creates a fiber for body and resumes it for the first time with the
// context cell set to cx. Must run on the loop.
func (e *engine) spawn(kind string, cx context.Context, body func()) {
	f := fiber.New(func(any) {
		body()
	})

	slog.Debug("fiber:spawn", "id", f.Id(), "kind", kind)
	e.metrics.FibersTotal.WithLabelValues(kind).Inc()
	e.metrics.FibersInFlight.WithLabelValues(kind).Inc()

	e.resume(&runner{fib: f, kind: kind}, nil, nil, cx)
}

// resume transfers control into r's fiber, delivering v or injecting err,
// with the current fiber register and the context cell saved before the
// transfer and restored after — strictly symmetric, so fiber activity that
// interleaves between another fiber's suspend and resume cannot leak its
// context. Must run on the loop.
func (e *engine) resume(r *runner, v any, err error, cx context.Context) {
	prevRunner := e.current.Load()
	prevCx := e.loadCx()

	e.current.Store(r)
	e.storeCx(cx)
	e.metrics.ResumesTotal.Inc()

	var completed bool
	if err != nil {
		completed = r.fib.Throw(err)
	} else {
		completed = r.fib.Resume(v)
	}

	e.current.Store(prevRunner)
	e.storeCx(prevCx)

	if completed {
		slog.Debug("fiber:done", "id", r.fib.Id(), "kind", r.kind)
		e.metrics.FibersInFlight.WithLabelValues(r.kind).Dec()
	}
}

func (e *engine) reportUncaught(err error) {
	e.metrics.UncaughtTotal.Inc()
	(*e.uncaught.Load())(err)
}

// OnUncaught replaces the process-wide handler for errors escaping detached
// event-handler fibers. The default handler logs at error level.
func OnUncaught(fn func(error)) {
	if fn == nil {
		fn = func(err error) {
			slog.Error("uncaught fiber error", "err", err)
		}
	}
	eng().uncaught.Store(&fn)
}

// invoke runs fn, converting a panic into a StatusFiberPanic error carrying
// the recovered value and stack.
func invoke[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(StatusFiberPanic, &PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	return fn()
}
