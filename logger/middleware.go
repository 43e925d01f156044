// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logger

import (
	"fmt"
	"net/http"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader is read from the response once the request has been
// handled so the log entry can be correlated with the request context.
const RequestIDHeader = "X-Request-Id"

var statusMessages = map[int]string{
	http.StatusMovedPermanently:      "Moved permanently",
	http.StatusTemporaryRedirect:     "Temporary redirect",
	http.StatusPermanentRedirect:     "Permanent redirect",
	http.StatusBadRequest:            "Bad request",
	http.StatusUnauthorized:          "Unauthorized",
	http.StatusForbidden:             "Forbidden",
	http.StatusNotFound:              "Not found",
	http.StatusMethodNotAllowed:      "Method not allowed",
	http.StatusRequestTimeout:        "Request timeout",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: "Request too large",
	http.StatusTooManyRequests:       "Too many requests",
}

// Middleware logs one entry per completed request.
//
// 304 responses are not logged, 4xx responses are logged at warn, 5xx
// responses at error and everything else at info.
func Middleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			lvl, ok := levelFor(m.Code)
			if !ok {
				return
			}

			ce := log.Check(lvl, messageFor(m.Code))
			if ce == nil {
				return
			}
			ce.Write(
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", m.Code),
				zap.Int64("bytes", m.Written),
				zap.Int64("responseTime(MS)", m.Duration.Milliseconds()),
				zap.String("request_id", w.Header().Get(RequestIDHeader)),
			)
		})
	}
}

func levelFor(code int) (zapcore.Level, bool) {
	switch {
	case code == http.StatusNotModified:
		return zapcore.InfoLevel, false
	case code >= 500:
		return zapcore.ErrorLevel, true
	case code >= 400:
		return zapcore.WarnLevel, true
	default:
		return zapcore.InfoLevel, true
	}
}

func messageFor(code int) string {
	if code >= 500 {
		return fmt.Sprintf("Request failed with status code: '%d'", code)
	}
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return "Request successful"
}
