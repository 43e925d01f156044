// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/z5labs/starter/internal/respond"
	"github.com/z5labs/starter/internal/try"
	"github.com/z5labs/starter/logger"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"
)

// RequestError is an expected, per request failure. Its message is
// safe to show to the client.
type RequestError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e RequestError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Errorf returns a RequestError with a formatted message.
func Errorf(status int, format string, args ...any) RequestError {
	return RequestError{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// HandlerFunc is an http.Handler which may fail. A returned error is
// answered by [WriteError].
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// ServeHTTP implements the http.Handler interface.
func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}
	WriteError(w, r, err)
}

// WriteError maps err to a response.
//
// A [RequestError] is answered with its own status and message and a
// body which exceeded the size limit with a 413. Anything else is logged
// at fatal severity and answered with a generic 500 so no detail leaks
// to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr   RequestError
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.As(err, &reqErr):
		respond.JSON(w, reqErr.Status, reqErr.Message)
	case errors.As(err, &maxBytes):
		respond.JSON(w, http.StatusRequestEntityTooLarge, "Request is too large")
	default:
		log := logger.WithoutExit(zap.L())
		if rc, ok := FromContext(r.Context()); ok {
			log = rc.Logger
		}
		log.Fatal("Unhandled exception", try.Fields(err)...)

		respond.JSON(w, http.StatusInternalServerError, "Unexpected error, please try again")
	}
}

// handleErrors is the terminal error handler. A panic in any handler
// it wraps is answered by [WriteError], unless a response was already
// started in which case it can only be logged.
func handleErrors(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var written bool
			ww := httpsnoop.Wrap(w, httpsnoop.Hooks{
				WriteHeader: func(f httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						written = true
						f(code)
					}
				},
				Write: func(f httpsnoop.WriteFunc) httpsnoop.WriteFunc {
					return func(b []byte) (int, error) {
						written = true
						return f(b)
					}
				},
				ReadFrom: func(f httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
					return func(src io.Reader) (int64, error) {
						written = true
						return f(src)
					}
				},
			})

			err := serve(next, ww, r)
			if err == nil {
				return
			}
			if errors.Is(err, http.ErrAbortHandler) {
				panic(http.ErrAbortHandler)
			}
			if written {
				log.Fatal("Unhandled exception after the response was sent", try.Fields(err)...)
				return
			}
			WriteError(ww, r, err)
		})
	}
}

func serve(h http.Handler, w http.ResponseWriter, r *http.Request) (err error) {
	defer try.Recover(&err)

	h.ServeHTTP(w, r)
	return nil
}
