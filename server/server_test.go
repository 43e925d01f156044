// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/z5labs/starter/health"
	"github.com/z5labs/starter/logger"
	"github.com/z5labs/starter/mode"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() Config {
	return Config{
		Environment:               mode.Test,
		URL:                       "http://localhost",
		HTTPRoute:                 "/api",
		HealthCheckRoute:          "/health",
		AllowedOrigins:            []string{"http://localhost:3000"},
		AllowedHosts:              []string{"localhost"},
		AllowedMethods:            []string{"OPTIONS", "HEAD", "GET", "POST", "PATCH", "DELETE"},
		MaxHeadersCount:           50,
		HeadersTimeout:            20 * time.Second,
		RequestTimeout:            20 * time.Second,
		SocketTimeout:             10 * time.Minute,
		KeepAliveTimeout:          10 * time.Second,
		MaxRequestsPerSocket:      100,
		ShutdownTimeout:           5 * time.Second,
		MaxBodyBytes:              1 << 20,
		CrossOriginEmbedderPolicy: "require-corp",
	}
}

func testLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.WithoutExit(zap.New(core)), logs
}

func ready(reason string) health.Check {
	return health.CheckFunc(func(_ context.Context) string {
		return reason
	})
}

func buildHandler(t *testing.T, cfg Config, opts ...ListenerOption) (http.Handler, *observer.ObservedLogs) {
	t.Helper()

	log, logs := testLogger()
	l, err := Build(cfg, log, opts...)
	if !assert.Nil(t, err) {
		t.FailNow()
	}
	return l.handler(), logs
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()

	var msg string
	err := json.NewDecoder(resp.Body).Decode(&msg)
	if !assert.Nil(t, err) {
		return ""
	}
	return msg
}

func serveRequest(h http.Handler, r *http.Request) *http.Response {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w.Result()
}
