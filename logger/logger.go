// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logger constructs the service wide zap logger.
package logger

import (
	"io"

	"github.com/z5labs/starter/mode"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger configured for the given mode.
//
// Production logs are JSON at info level. Every other mode gets colored
// console output at debug level.
//
// Fatal entries are written like any other entry but never terminate the
// process. Deciding when and how to exit is left to the caller.
func New(m mode.Mode, w io.Writer) *zap.Logger {
	var (
		enc   zapcore.Encoder
		level zapcore.Level
	)
	if m.IsProduction() {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
		level = zapcore.InfoLevel
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(
		core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.DPanicLevel),
		zap.WithFatalHook(continueOnFatal{}),
	)
}

// WithoutExit returns a copy of log whose Fatal entries do not terminate
// the process. Useful for loggers not built by [New], e.g. in tests.
func WithoutExit(log *zap.Logger) *zap.Logger {
	return log.WithOptions(zap.WithFatalHook(continueOnFatal{}))
}

type continueOnFatal struct{}

func (continueOnFatal) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}
