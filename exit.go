// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package starter

import "errors"

const (
	// ExitRestart tells the deployment orchestrator the process failed
	// for a transient or runtime reason and may be restarted.
	ExitRestart = 1

	// ExitNoRestart tells the deployment orchestrator the process failed
	// because of a configuration or programmer error. Restarting it
	// would only fail again.
	ExitNoRestart = 180
)

// ExitCode maps an error returned by [Run] to a process exit code.
//
// Errors which occur before the app starts running (reading, decoding or
// validating config and building the app) are considered deployment mistakes
// and map to [ExitNoRestart]. Every other non-nil error maps to [ExitRestart].
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var (
		readErr      ConfigReadError
		unmarshalErr ConfigUnmarshalError
		validateErr  ConfigValidateError
		buildErr     AppBuildError
	)
	switch {
	case errors.As(err, &readErr),
		errors.As(err, &unmarshalErr),
		errors.As(err, &validateErr),
		errors.As(err, &buildErr):
		return ExitNoRestart
	default:
		return ExitRestart
	}
}
