// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package supervisor contains process level faults once the listener is bound.
//
// A shutdown signal triggers a graceful close. A fatal listener error, a
// failed guarded goroutine or a panic is treated as leaving the process in
// an untrustworthy state: it is logged at fatal severity and reported so
// the process can exit and be restarted.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/z5labs/starter/internal/try"
	"github.com/z5labs/starter/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownFunc gracefully releases everything the process owns.
type ShutdownFunc func(context.Context) error

// Option configures a [Supervisor].
type Option func(*Supervisor)

// Signals overrides the signals which trigger a graceful shutdown.
//
// Default: SIGINT, SIGQUIT and SIGTERM.
func Signals(sigs ...os.Signal) Option {
	return func(s *Supervisor) {
		s.signals = sigs
	}
}

// Supervisor watches for shutdown signals and fatal errors.
type Supervisor struct {
	log      *zap.Logger
	shutdown ShutdownFunc
	signals  []os.Signal

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	failOnce sync.Once
	failures chan error
}

// New returns a Supervisor which calls shutdown when the process is asked to stop.
func New(log *zap.Logger, shutdown ShutdownFunc, opts ...Option) *Supervisor {
	s := &Supervisor{
		log:      logger.WithoutExit(log),
		shutdown: shutdown,
		signals:  []os.Signal{os.Interrupt, syscall.SIGQUIT, syscall.SIGTERM},
		failures: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.group, s.ctx = errgroup.WithContext(s.ctx)
	return s
}

// ListenerFatalError is returned by [Supervisor.Watch] when the listener
// reported a socket level error.
type ListenerFatalError struct {
	Cause error
}

// Error implements the error interface.
func (e ListenerFatalError) Error() string {
	return fmt.Sprintf("listener failed: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ListenerFatalError) Unwrap() error {
	return e.Cause
}

// UnhandledError is returned by [Supervisor.Watch] when a guarded goroutine
// failed or panicked.
type UnhandledError struct {
	Cause error
}

// Error implements the error interface.
func (e UnhandledError) Error() string {
	return fmt.Sprintf("unhandled error: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e UnhandledError) Unwrap() error {
	return e.Cause
}

// ShutdownError is returned by [Supervisor.Watch] when the graceful
// shutdown triggered by a signal failed.
type ShutdownError struct {
	Cause error
}

// Error implements the error interface.
func (e ShutdownError) Error() string {
	return fmt.Sprintf("failed to shutdown: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ShutdownError) Unwrap() error {
	return e.Cause
}

// Go runs f in its own goroutine. If f returns an error or panics the
// process is considered compromised and [Supervisor.Watch] returns an
// [UnhandledError]. The context passed to f is cancelled when Watch is
// about to return and Watch waits for f to return.
func (s *Supervisor) Go(f func(context.Context) error) {
	s.group.Go(func() (err error) {
		defer func() {
			if err != nil {
				s.fail(err)
			}
		}()
		defer try.Recover(&err)

		return f(s.ctx)
	})
}

func (s *Supervisor) fail(err error) {
	s.failOnce.Do(func() {
		s.failures <- err
	})
}

// Watch blocks until one of the following happens:
//
//   - a shutdown signal is received or ctx is cancelled: shutdown is called
//     and its error, if any, is returned as a [ShutdownError]
//   - an error is received from fatal: it is logged and returned as a
//     [ListenerFatalError] without calling shutdown
//   - a guarded goroutine fails: it is logged, shutdown is called and an
//     [UnhandledError] is returned
//
// Every non-nil error means the process should exit with a restart code.
func (s *Supervisor) Watch(ctx context.Context, fatal <-chan error) error {
	defer func() {
		s.cancel()
		s.group.Wait()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, s.signals...)
	defer stop()

	shutdownCtx := context.WithoutCancel(ctx)

	select {
	case <-sigCtx.Done():
		s.log.Info("Shutting down")

		err := s.shutdown(shutdownCtx)
		if err != nil {
			s.log.Fatal("Error during shutdown", zap.Error(err))
			return ShutdownError{Cause: err}
		}
		return nil
	case err := <-fatal:
		s.log.Fatal("Listener failed", zap.Error(err))
		return ListenerFatalError{Cause: err}
	case err := <-s.failures:
		s.log.Fatal("Unhandled exception", try.Fields(err)...)

		serr := s.shutdown(shutdownCtx)
		if serr != nil {
			s.log.Fatal("Error during shutdown", zap.Error(serr))
		}
		return UnhandledError{Cause: errors.Join(err, serr)}
	}
}
