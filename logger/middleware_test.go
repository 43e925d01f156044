// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware(t *testing.T) {
	testCases := []struct {
		Name    string
		Status  int
		Level   zapcore.Level
		Message string
	}{
		{Name: "success at info", Status: http.StatusOK, Level: zapcore.InfoLevel, Message: "Request successful"},
		{Name: "not found at warn", Status: http.StatusNotFound, Level: zapcore.WarnLevel, Message: "Not found"},
		{Name: "method not allowed at warn", Status: http.StatusMethodNotAllowed, Level: zapcore.WarnLevel, Message: "Method not allowed"},
		{Name: "server error at error", Status: http.StatusInternalServerError, Level: zapcore.ErrorLevel, Message: "Request failed with status code: '500'"},
		{Name: "redirect at info", Status: http.StatusPermanentRedirect, Level: zapcore.InfoLevel, Message: "Permanent redirect"},
	}

	for _, testCase := range testCases {
		t.Run("will log "+testCase.Name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			h := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set(RequestIDHeader, "abc")
				w.WriteHeader(testCase.Status)
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://localhost/api/v1/things", nil)
			h.ServeHTTP(w, r)

			entries := logs.All()
			if !assert.Len(t, entries, 1) {
				return
			}
			entry := entries[0]
			if !assert.Equal(t, testCase.Level, entry.Level) {
				return
			}
			if !assert.Equal(t, testCase.Message, entry.Message) {
				return
			}

			fields := entry.ContextMap()
			if !assert.Equal(t, "/api/v1/things", fields["path"]) {
				return
			}
			if !assert.Equal(t, "abc", fields["request_id"]) {
				return
			}
		})
	}

	t.Run("will not log", func(t *testing.T) {
		t.Run("if the response is 304 Not Modified", func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			h := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotModified)
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
			h.ServeHTTP(w, r)

			if !assert.Zero(t, logs.Len()) {
				return
			}
		})
	})
}
