package fpromise

import (
	"context"
	"errors"
)

// Context returns the ambient context of the running fiber. Outside any
// fiber it returns the process default, context.Background.
func Context() context.Context {
	return eng().loadCx()
}

// WithContext invokes fn with cx installed as the ambient context, restoring
// the previous context when fn returns — on the error path and the panic
// path too. The installed context survives suspension: if fn calls Wait, cx
// is saved across the suspend and restored on resume, and fiber activity
// that interleaves in between observes its own context, not cx.
func WithContext[T any](fn func() (T, error), cx context.Context) (T, error) {
	var zero T

	e := eng()
	if e.current.Load() == nil {
		return zero, NewError(StatusNoFiberContext, errors.New("withContext requires a fiber"))
	}
	if fn == nil {
		return zero, NewError(StatusInvalidArgument, errors.New("fn must be non nil"))
	}

	prev := e.loadCx()
	e.storeCx(cx)
	defer e.storeCx(prev)

	return fn()
}
