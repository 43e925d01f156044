// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/z5labs/starter/httpvalidate"
)

type connRequestsKey struct{}

// countRequests gives every connection its own request counter.
func countRequests(ctx context.Context, _ net.Conn) context.Context {
	return context.WithValue(ctx, connRequestsKey{}, new(atomic.Int64))
}

// limitRequestsPerConn closes a connection once it has served limit requests.
// A limit of 0 means unlimited.
func limitRequestsPerConn(limit int, h http.Handler) http.Handler {
	if limit <= 0 {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, ok := r.Context().Value(connRequestsKey{}).(*atomic.Int64)
		if ok && n.Add(1) >= int64(limit) {
			w.Header().Set("Connection", "close")
		}
		h.ServeHTTP(w, r)
	})
}

// limitHeaders rejects requests carrying more than limit header fields.
// A limit of 0 means unlimited.
func limitHeaders(limit int, h http.Handler) http.Handler {
	if limit <= 0 {
		return h
	}
	return httpvalidate.Request(h, httpvalidate.MaxHeaders(limit))
}
