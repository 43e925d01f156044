// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package appbuilder provides helpers for common [starter.AppBuilder] patterns.
package appbuilder

import (
	"context"

	"github.com/z5labs/starter"
	"github.com/z5labs/starter/internal/try"
)

// Recover will wrap the given [starter.AppBuilder] with panic recovery.
//
// A panic while building, e.g. registering the same route twice, is
// returned as an error so [starter.Run] reports it as an [starter.AppBuildError].
func Recover[T any](builder starter.AppBuilder[T]) starter.AppBuilder[T] {
	return starter.AppBuilderFunc[T](func(ctx context.Context, cfg T) (_ starter.App, err error) {
		defer try.Recover(&err)

		return builder.Build(ctx, cfg)
	})
}
