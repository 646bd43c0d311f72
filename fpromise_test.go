package fpromise_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sage/fpromise"
	"github.com/sage/fpromise/pkg/promise"
	"github.com/stretchr/testify/assert"
)

func TestRunResolves(t *testing.T) {
	p := fpromise.Run(func() (int, error) {
		return 42, nil
	})

	v, err := p.Await()
	assert.Nil(t, err)
	assert.Equal(t, 42, v)
}

func TestRunRejects(t *testing.T) {
	expected := errors.New("failure")

	p := fpromise.Run(func() (int, error) {
		return 0, expected
	})

	_, err := p.Await()
	assert.Equal(t, expected, err)
}

func TestRunNilFn(t *testing.T) {
	p := fpromise.Run[int](nil)

	_, err := p.Await()
	assert.ErrorIs(t, err, fpromise.ErrInvalidArgument)
}

func TestRunCapturesPanic(t *testing.T) {
	p := fpromise.Run(func() (int, error) {
		panic("boom")
	})

	_, err := p.Await()
	assert.ErrorIs(t, err, fpromise.ErrFiberPanic)

	var perr *fpromise.PanicError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "boom", perr.Value)
	assert.NotEmpty(t, perr.Stack)
}

func TestWaitOnResolvedPromise(t *testing.T) {
	p := fpromise.Run(func() (string, error) {
		return fpromise.Wait[string](promise.Resolved("value"))
	})

	v, err := p.Await()
	assert.Nil(t, err)
	assert.Equal(t, "value", v)
}

func TestWaitOnRejectedPromise(t *testing.T) {
	expected := errors.New("rejected")

	p := fpromise.Run(func() (string, error) {
		return fpromise.Wait[string](promise.Rejected[string](expected))
	})

	_, err := p.Await()
	assert.Equal(t, expected, err)
}

func TestWaitOnPendingPromise(t *testing.T) {
	inner := promise.New[int]()

	p := fpromise.Run(func() (int, error) {
		return fpromise.Wait[int](inner)
	})

	assert.True(t, p.Pending())
	inner.Resolve(7)

	v, err := p.Await()
	assert.Nil(t, err)
	assert.Equal(t, 7, v)
}

func TestWaitOnThunk(t *testing.T) {
	p := fpromise.Run(func() (int, error) {
		return fpromise.Wait[int](fpromise.Thunk[int](func(cb func(int, error)) {
			go func() {
				time.Sleep(10 * time.Millisecond)
				cb(9, nil)
			}()
		}))
	})

	v, err := p.Await()
	assert.Nil(t, err)
	assert.Equal(t, 9, v)
}

func TestWaitOnSynchronousThunk(t *testing.T) {
	// a callback fired before the fiber has even suspended must still be
	// delivered after the suspension
	p := fpromise.Run(func() (int, error) {
		return fpromise.Wait[int](fpromise.Thunk[int](func(cb func(int, error)) {
			cb(1, nil)
		}))
	})

	v, err := p.Await()
	assert.Nil(t, err)
	assert.Equal(t, 1, v)
}

func TestWaitReentrant(t *testing.T) {
	// the thunk body itself waits before registering its completion
	p := fpromise.Run(func() (string, error) {
		return fpromise.Wait[string](fpromise.Thunk[string](func(cb func(string, error)) {
			if err := fpromise.Sleep(5 * time.Millisecond); err != nil {
				cb("", err)
				return
			}
			cb("nested", nil)
		}))
	})

	v, err := p.Await()
	assert.Nil(t, err)
	assert.Equal(t, "nested", v)
}

func TestWaitOutsideFiber(t *testing.T) {
	_, err := fpromise.Wait[int](promise.Resolved(1))
	assert.ErrorIs(t, err, fpromise.ErrNoFiberContext)
}

func TestCanWait(t *testing.T) {
	assert.False(t, fpromise.CanWait())

	p := fpromise.Run(func() (bool, error) {
		return fpromise.CanWait(), nil
	})

	v, err := p.Await()
	assert.Nil(t, err)
	assert.True(t, v)
}

func TestSleep(t *testing.T) {
	start := time.Now()

	p := fpromise.Run(func() (any, error) {
		return nil, fpromise.Sleep(20 * time.Millisecond)
	})

	_, err := p.Await()
	assert.Nil(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestMapPreservesOrder(t *testing.T) {
	p := fpromise.Run(func() ([]int, error) {
		// earlier elements finish later, results must still arrive in
		// input order
		return fpromise.Map([]int{5, 4, 3, 2, 1}, func(v int) (int, error) {
			if err := fpromise.Sleep(time.Duration(v) * 10 * time.Millisecond); err != nil {
				return 0, err
			}
			return v * 2, nil
		})
	})

	v, err := p.Await()
	assert.Nil(t, err)
	assert.Equal(t, []int{10, 8, 6, 4, 2}, v)
}

func TestMapError(t *testing.T) {
	expected := errors.New("map failure")

	p := fpromise.Run(func() ([]int, error) {
		return fpromise.Map([]int{1, 2, 3}, func(v int) (int, error) {
			if v == 2 {
				return 0, expected
			}
			return v, nil
		})
	})

	_, err := p.Await()
	assert.Equal(t, expected, err)
}

func TestMapOutsideFiber(t *testing.T) {
	_, err := fpromise.Map([]int{1}, func(v int) (int, error) {
		return v, nil
	})
	assert.ErrorIs(t, err, fpromise.ErrNoFiberContext)
}
