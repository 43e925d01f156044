// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"context"

	"go.uber.org/zap"
)

// Build constructs the listener and attaches its middleware in the fixed
// order: configuration middleware first, then route middleware. Nothing
// is bound yet.
func Build(cfg Config, log *zap.Logger, opts ...ListenerOption) (*Listener, error) {
	l := NewListener(cfg, log, opts...)

	err := AttachConfigurationMiddleware(l, cfg)
	if err != nil {
		return nil, err
	}
	err = AttachRouteMiddleware(l, cfg, l.readiness)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Bootstrap runs the whole sequence: it builds the listener with [Build]
// and binds it to the configured port. The bound port is returned.
func Bootstrap(ctx context.Context, cfg Config, log *zap.Logger, opts ...ListenerOption) (*Listener, int, error) {
	l, err := Build(cfg, log, opts...)
	if err != nil {
		return nil, 0, err
	}

	port, err := l.Listen(ctx, cfg.Port)
	if err != nil {
		return nil, 0, err
	}
	return l, port, nil
}
