// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/z5labs/starter/health"
	"github.com/z5labs/starter/logger"
	"github.com/z5labs/starter/metrics"
	"github.com/z5labs/starter/mux"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// State is the lifecycle state of a [Listener].
type State int32

const (
	StateUnbound State = iota
	StateBound
	StateClosing
	StateClosed
)

// String implements the [fmt.Stringer] interface.
func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Closer is a downstream resource owned by the [Listener], e.g. a
// database handle, which must be released once the listener closes.
type Closer interface {
	Close(context.Context) error
}

// CloserFunc is a functional implementation of the Closer interface.
type CloserFunc func(context.Context) error

// Close implements the Closer interface.
func (f CloserFunc) Close(ctx context.Context) error {
	return f(ctx)
}

// ListenerOption configures optional [Listener] behaviour.
type ListenerOption func(*Listener)

// Route registers an application route, relative to the configured HTTP route.
func Route(method mux.Method, pattern string, h http.Handler) ListenerOption {
	return func(l *Listener) {
		l.router.Handle(method, pattern, h)
	}
}

// Owns hands ownership of the given resources to the [Listener]. They are
// closed concurrently once the listener has stopped accepting connections.
func Owns(cs ...Closer) ListenerOption {
	return func(l *Listener) {
		l.closers = append(l.closers, cs...)
	}
}

// Host sets the interface the listener binds to. By default every interface is used.
func Host(host string) ListenerOption {
	return func(l *Listener) {
		l.host = host
	}
}

// Readiness sets the readiness check used by [Bootstrap].
func Readiness(c health.Check) ListenerOption {
	return func(l *Listener) {
		l.readiness = c
	}
}

// APIDocs overrides the handler serving the development API docs.
func APIDocs(h http.Handler) ListenerOption {
	return func(l *Listener) {
		l.apiDocs = h
	}
}

// Listener owns the network listener, its socket tunables and the
// middleware stack in front of the application routes.
type Listener struct {
	cfg Config
	log *zap.Logger

	host      string
	router    *mux.Router
	readiness health.Check
	apiDocs   http.Handler
	metrics   *metrics.HTTP

	// not ready while the listener is closing
	closing health.Toggle

	mu                   sync.Mutex
	state                atomic.Int32
	configuration        []func(http.Handler) http.Handler
	configurationApplied bool
	routes               []func(http.Handler) http.Handler
	routesApplied        bool

	srv      *http.Server
	debugSrv *http.Server
	fatal    chan error
	closers  []Closer

	closeOnce sync.Once
	closeErr  error
}

// NewListener constructs the listener and sets its socket tunables. No
// middleware is attached and nothing is bound yet.
//
// Fatal entries written through log never terminate the process, whatever
// fatal hook log was built with.
func NewListener(cfg Config, log *zap.Logger, opts ...ListenerOption) *Listener {
	log = logger.WithoutExit(log)
	l := &Listener{
		cfg:    cfg,
		log:    log,
		router: mux.New(mux.Prefix(cfg.HTTPRoute)),
		fatal:  make(chan error, 2),
	}
	if cfg.MetricsRoute != "" {
		l.metrics = metrics.NewHTTP("")
	}
	for _, opt := range opts {
		opt(l)
	}

	l.srv = l.newServer()
	return l
}

// newServer is also used to replace a server which was closed before Listen
// succeeded, since a closed http.Server can not serve again.
func (l *Listener) newServer() *http.Server {
	return &http.Server{
		ReadHeaderTimeout: l.cfg.HeadersTimeout,
		ReadTimeout:       l.cfg.RequestTimeout,
		WriteTimeout:      l.cfg.SocketTimeout,
		IdleTimeout:       l.cfg.KeepAliveTimeout,
		ConnContext:       countRequests,
		ErrorLog:          zap.NewStdLog(l.log.Named("http")),
	}
}

// State returns the current lifecycle state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Fatal receives socket level errors which occur after the listener is bound.
// Any value received means the process must be restarted.
func (l *Listener) Fatal() <-chan error {
	return l.fatal
}

// StateError is returned when an operation is not valid in the current state.
type StateError struct {
	Op    string
	State State
}

// Error implements the error interface.
func (e StateError) Error() string {
	return fmt.Sprintf("can not %s a listener which is %s", e.Op, e.State)
}

func (l *Listener) handler() http.Handler {
	var h http.Handler = l.router
	for i := len(l.routes) - 1; i >= 0; i-- {
		h = l.routes[i](h)
	}
	for i := len(l.configuration) - 1; i >= 0; i-- {
		h = l.configuration[i](h)
	}
	h = otelhttp.NewHandler(h, "http.server")
	return limitRequestsPerConn(l.cfg.MaxRequestsPerSocket, limitHeaders(l.cfg.MaxHeadersCount, h))
}

// Listen binds the socket, starts serving and returns the bound port. A
// port of 0 binds a random free port.
//
// In development mode the profiler is bound as well. If that fails the
// application socket is closed again and the listener stays unbound.
//
// Serve errors after this returns are logged at fatal severity and sent
// on [Listener.Fatal].
func (l *Listener) Listen(ctx context.Context, port int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s := l.State(); s != StateUnbound {
		return 0, StateError{Op: "listen on", State: s}
	}
	l.srv.Handler = l.handler()
	l.srv.BaseContext = func(net.Listener) context.Context {
		return context.WithoutCancel(ctx)
	}

	var lc net.ListenConfig
	ls, err := lc.Listen(ctx, "tcp", net.JoinHostPort(l.host, strconv.Itoa(port)))
	if err != nil {
		l.log.Fatal("HTTP Server error", zap.Error(err))
		return 0, err
	}
	l.state.Store(int32(StateBound))

	go l.serve(l.srv, ls)

	if l.cfg.Environment.IsDevelopment() {
		err = l.listenDebug(ctx)
		if err != nil {
			l.srv.Close()
			l.srv = l.newServer()
			l.state.Store(int32(StateUnbound))
			return 0, err
		}
	}

	boundPort := ls.Addr().(*net.TCPAddr).Port
	if !l.cfg.Environment.IsTest() {
		l.log.Info(fmt.Sprintf(
			"Server is running in '%s' mode on: '%s:%d%s'",
			l.cfg.Environment,
			l.cfg.URL,
			boundPort,
			l.cfg.HTTPRoute,
		))
	}
	return boundPort, nil
}

func (l *Listener) serve(srv *http.Server, ls net.Listener) {
	err := srv.Serve(ls)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}

	l.log.Fatal("HTTP Server error", zap.Error(err))
	select {
	case l.fatal <- err:
	default:
	}
}

// CloseError is returned by [Listener.Close] when the server could not
// shut down cleanly or any owned resource failed to close.
type CloseError struct {
	Cause error
}

// Error implements the error interface.
func (e CloseError) Error() string {
	return fmt.Sprintf("failed to close listener: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e CloseError) Unwrap() error {
	return e.Cause
}

// Close stops accepting new connections, waits for in-flight requests to
// complete, bounded by the shutdown timeout, and then closes every owned
// resource concurrently. Every resource is closed even if others fail.
//
// Calling Close more than once returns the result of the first call.
func (l *Listener) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		l.closeErr = l.close(ctx)
	})
	return l.closeErr
}

func (l *Listener) close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closing.NotReady("Server is shutting down")
	l.state.Store(int32(StateClosing))

	shutdownCtx, cancelShutdown := l.withShutdownTimeout(ctx)
	defer cancelShutdown()

	shutdownErr := l.srv.Shutdown(shutdownCtx)
	if l.debugSrv != nil {
		shutdownErr = errors.Join(shutdownErr, l.debugSrv.Shutdown(shutdownCtx))
	}
	if shutdownErr != nil {
		l.log.Fatal("Error during server termination", zap.Error(shutdownErr))
	}

	// owned resources get their own budget, draining connections may have
	// used up all of the shutdown one
	closeCtx, cancelClose := l.withShutdownTimeout(context.WithoutCancel(ctx))
	defer cancelClose()

	p := pool.New().WithErrors()
	for _, c := range l.closers {
		p.Go(func() error {
			err := c.Close(closeCtx)
			if err != nil {
				l.log.Fatal("Error during server termination", zap.Error(err))
			}
			return err
		})
	}
	closeErr := p.Wait()

	l.state.Store(int32(StateClosed))

	err := errors.Join(shutdownErr, closeErr)
	if err != nil {
		return CloseError{Cause: err}
	}
	return nil
}

func (l *Listener) withShutdownTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.cfg.ShutdownTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.cfg.ShutdownTimeout)
}
