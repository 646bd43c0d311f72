package fpromise

import (
	"context"

	"github.com/sage/fpromise/internal/util"
)

// EventHandler adapts an ordinary callback entry point so that it may call
// Wait. Invoked from inside a fiber, the handler runs directly in that fiber
// and its error is returned to the caller. Invoked from outside, a detached
// fiber is spawned running the handler under a fresh context scope; the
// wrapped function returns nil immediately and any error the handler raises
// is surfaced through the process error hook (see OnUncaught), since no
// caller is listening anymore.
func EventHandler(h func(args ...any) error) func(args ...any) error {
	util.Assert(h != nil, "eventHandler: handler must be non nil")
	e := eng()

	return func(args ...any) error {
		if CanWait() {
			return h(args...)
		}

		p := run("handler", func() (any, error) {
			return WithContext(func() (any, error) {
				return nil, h(args...)
			}, context.Background())
		})

		p.Subscribe(func(_ any, err error) {
			if err != nil {
				e.reportUncaught(err)
			}
		})

		return nil
	}
}
