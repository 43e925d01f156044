// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command starter bootstraps the HTTP service and exits with a code
// telling the orchestrator whether a restart may help.
package main

import (
	"context"
	"os"

	"github.com/z5labs/starter"
)

func main() {
	err := newCommand(os.Environ, os.Stdout).ExecuteContext(context.Background())
	os.Exit(starter.ExitCode(err))
}
