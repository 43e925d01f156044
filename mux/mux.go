// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package mux provides the application route multiplexer. Every route is
// mounted under a common prefix and unmatched requests fall through to
// JSON "404 Not Found" and "405 Method Not Allowed" responses.
package mux

import (
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/z5labs/starter/internal/respond"
)

// Method defines an HTTP method an application route can be registered for.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodHead    Method = http.MethodHead
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodOptions Method = http.MethodOptions
)

// Option defines a configuration option for [Router].
type Option func(*Router)

// Prefix mounts every route registered with [Router.Handle] under p.
func Prefix(p string) Option {
	return func(r *Router) {
		r.prefix = strings.TrimSuffix(p, "/")
	}
}

// NotFoundHandler will register the given [http.Handler] to handle
// any HTTP requests that do not match any other method-pattern combinations.
//
// Default: a 404 whose JSON body names the requested path.
func NotFoundHandler(h http.Handler) Option {
	return func(r *Router) {
		r.notFound = h
	}
}

// MethodNotAllowedHandler will register the given [http.Handler] to handle
// any HTTP requests whose method does not match the method registered to a pattern.
// The Allow header is always set before h is called.
//
// Default: a 405 whose JSON body names the rejected method.
func MethodNotAllowedHandler(h http.Handler) Option {
	return func(r *Router) {
		r.methodNotAllowed = h
	}
}

// Router wraps a [http.ServeMux] and overrides its default
// "404 Not Found" and "405 Method Not Allowed" behaviour.
type Router struct {
	mux    *http.ServeMux
	prefix string

	initFallbacksOnce sync.Once
	notFound          http.Handler
	methodNotAllowed  http.Handler

	mu          sync.Mutex
	pathMethods map[string][]Method
}

// New initializes a request multiplexer using the standard [http.ServeMux].
func New(opts ...Option) *Router {
	r := &Router{
		mux:              http.NewServeMux(),
		notFound:         http.HandlerFunc(NotFound),
		methodNotAllowed: http.HandlerFunc(MethodNotAllowed),
		pathMethods:      make(map[string][]Method),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NotFound responds with a 404 naming the requested path.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusNotFound, fmt.Sprintf("'%s' does not exist", r.URL.RequestURI()))
}

// MethodNotAllowed responds with a 405 naming the rejected method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusMethodNotAllowed, fmt.Sprintf("%s is not a support method", r.Method))
}

// Prefix returns the path every route is mounted under.
func (m *Router) Prefix() string {
	return m.prefix
}

// Handle will register the [http.Handler] for the given method and pattern,
// relative to the router prefix. Patterns follow [http.ServeMux] syntax and
// are registered both with and without a trailing slash.
func (m *Router) Handle(method Method, pattern string, h http.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pattern = m.prefix + "/" + strings.TrimPrefix(pattern, "/")
	m.register(method, pattern, h)

	// {$} is a special case where we only want to exact match the path pattern.
	if strings.HasSuffix(pattern, "{$}") {
		return
	}

	if strings.HasSuffix(pattern, "/") {
		withoutTrailingSlash := pattern[:len(pattern)-1]
		if len(withoutTrailingSlash) == 0 {
			return
		}
		m.register(method, withoutTrailingSlash, h)
		return
	}

	// "..." wildcard segments must end the pattern
	if strings.Contains(path.Base(pattern), "...") {
		return
	}
	m.register(method, pattern+"/", h)
}

func (m *Router) register(method Method, pattern string, h http.Handler) {
	m.pathMethods[pattern] = append(m.pathMethods[pattern], method)
	m.mux.Handle(fmt.Sprintf("%s %s", method, pattern), h)
}

// ServeHTTP implements the [http.Handler] interface.
func (m *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.initFallbacksOnce.Do(m.registerFallbackHandlers)

	m.mux.ServeHTTP(w, r)
}

func (m *Router) registerFallbackHandlers() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mux.Handle("/{path...}", m.notFound)

	// a GET route also answers HEAD requests
	supportedMethods := []Method{
		MethodGet,
		MethodHead,
		MethodPost,
		MethodPut,
		MethodPatch,
		MethodDelete,
		MethodOptions,
		http.MethodTrace,
	}
	for pattern, methods := range m.pathMethods {
		allowed := methods
		if slices.Contains(allowed, MethodGet) && !slices.Contains(allowed, MethodHead) {
			allowed = append(slices.Clone(allowed), MethodHead)
		}

		h := allowHeader(allowed, m.methodNotAllowed)
		for _, method := range diffSets(supportedMethods, allowed) {
			m.mux.Handle(fmt.Sprintf("%s %s", method, pattern), h)
		}
	}
}

func allowHeader(methods []Method, h http.Handler) http.Handler {
	ss := make([]string, len(methods))
	for i, method := range methods {
		ss[i] = string(method)
	}
	allow := strings.Join(ss, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		h.ServeHTTP(w, r)
	})
}

func diffSets[T comparable](xs, ys []T) []T {
	zs := make([]T, 0, len(xs))
	for _, x := range xs {
		if slices.Contains(ys, x) {
			continue
		}
		zs = append(zs, x)
	}
	return zs
}
