// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package try

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

func TestRecover(t *testing.T) {
	t.Run("will set a PanicError", func(t *testing.T) {
		t.Run("if the function panics with a non-error value", func(t *testing.T) {
			f := func() (err error) {
				defer Recover(&err)
				panic("hello world")
			}

			err := f()

			var perr PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, "hello world", perr.Value) {
				return
			}
			assert.Contains(t, string(perr.Stack), "TestRecover")
		})
	})

	t.Run("will keep the existing error", func(t *testing.T) {
		t.Run("if the function panics after setting an error", func(t *testing.T) {
			firstErr := errors.New("first")
			f := func() (err error) {
				defer Recover(&err)
				err = firstErr
				panic("hello world")
			}

			err := f()
			if !assert.ErrorIs(t, err, firstErr) {
				return
			}
			var perr PanicError
			assert.ErrorAs(t, err, &perr)
		})
	})

	t.Run("will preserve the panicked error", func(t *testing.T) {
		t.Run("if the function panics with an error value", func(t *testing.T) {
			panicErr := errors.New("failed")
			f := func() (err error) {
				defer Recover(&err)
				panic(panicErr)
			}

			err := f()
			if !assert.ErrorIs(t, err, panicErr) {
				return
			}
		})
	})
}

func TestClose(t *testing.T) {
	t.Run("will join the close error", func(t *testing.T) {
		t.Run("if there is already an error", func(t *testing.T) {
			firstErr := errors.New("first")
			closeErr := errors.New("close")

			err := firstErr
			Close(&err, closerFunc(func() error { return closeErr }))

			if !assert.ErrorIs(t, err, firstErr) {
				return
			}
			if !assert.ErrorIs(t, err, closeErr) {
				return
			}
		})
	})

	t.Run("will do nothing", func(t *testing.T) {
		t.Run("if the value is not an io.Closer", func(t *testing.T) {
			var err error
			Close(&err, "not a closer")
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}

func TestFields(t *testing.T) {
	t.Run("will include the panic stack", func(t *testing.T) {
		t.Run("if the error was caused by a panic", func(t *testing.T) {
			f := func() (err error) {
				defer Recover(&err)
				panic("hello world")
			}

			fields := Fields(f())
			if !assert.Len(t, fields, 2) {
				return
			}
			assert.Equal(t, "panic_stack", fields[1].Key)
		})
	})

	t.Run("will only include the error", func(t *testing.T) {
		t.Run("if the error was not caused by a panic", func(t *testing.T) {
			fields := Fields(errors.New("failed"))
			if !assert.Len(t, fields, 1) {
				return
			}
			assert.Equal(t, "error", fields[0].Key)
		})
	})
}
