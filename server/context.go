// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"context"
	"net/http"

	"github.com/z5labs/starter/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestContext is the read-only, per request state made available to
// application route handlers.
type RequestContext struct {
	Logger    *zap.Logger
	RequestID string
}

type requestContextKey struct{}

// NewContext returns a copy of parent carrying rc.
func NewContext(parent context.Context, rc RequestContext) context.Context {
	return context.WithValue(parent, requestContextKey{}, rc)
}

// FromContext returns the RequestContext bound to ctx. The second
// return value reports whether one was found.
func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return rc, ok
}

// attachContext binds a fresh RequestContext to every request and caps
// how many body bytes a handler may read.
func attachContext(log *zap.Logger, maxBodyBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set(logger.RequestIDHeader, id)

			if maxBodyBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}

			ctx := NewContext(r.Context(), RequestContext{
				Logger:    log.With(zap.String("request_id", id)),
				RequestID: id,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
