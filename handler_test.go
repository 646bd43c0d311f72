package fpromise_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sage/fpromise"
	"github.com/stretchr/testify/assert"
)

func TestEventHandlerInsideFiber(t *testing.T) {
	var ran bool
	wrapped := fpromise.EventHandler(func(args ...any) error {
		// runs synchronously in the calling fiber, so it may wait
		if err := fpromise.Sleep(time.Millisecond); err != nil {
			return err
		}
		ran = true
		return nil
	})

	p := fpromise.Run(func() (any, error) {
		err := wrapped()
		assert.True(t, ran)
		return nil, err
	})

	_, err := p.Await()
	assert.Nil(t, err)
}

func TestEventHandlerInsideFiberReturnsError(t *testing.T) {
	expected := errors.New("handler failure")
	wrapped := fpromise.EventHandler(func(args ...any) error {
		return expected
	})

	p := fpromise.Run(func() (any, error) {
		return nil, wrapped()
	})

	_, err := p.Await()
	assert.Equal(t, expected, err)
}

func TestEventHandlerDetached(t *testing.T) {
	received := make(chan []any, 1)
	wrapped := fpromise.EventHandler(func(args ...any) error {
		if !fpromise.CanWait() {
			return errors.New("handler not running in a fiber")
		}
		received <- args
		return nil
	})

	// called from outside any fiber: returns immediately, handler runs in a
	// detached fiber
	assert.Nil(t, wrapped("a", 1))

	select {
	case args := <-received:
		assert.Equal(t, []any{"a", 1}, args)
	case <-time.After(time.Second):
		t.Fatal("handler did not run")
	}
}

func TestEventHandlerDetachedError(t *testing.T) {
	uncaught := make(chan error, 1)
	fpromise.OnUncaught(func(err error) {
		uncaught <- err
	})
	defer fpromise.OnUncaught(nil)

	expected := errors.New("detached failure")
	wrapped := fpromise.EventHandler(func(args ...any) error {
		return expected
	})

	assert.Nil(t, wrapped())

	select {
	case err := <-uncaught:
		assert.Equal(t, expected, err)
	case <-time.After(time.Second):
		t.Fatal("uncaught error was not surfaced")
	}
}

func TestEventHandlerNilHandler(t *testing.T) {
	assert.Panics(t, func() {
		fpromise.EventHandler(nil)
	})
}
