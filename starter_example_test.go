// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package starter

import (
	"context"
	"fmt"

	"github.com/z5labs/starter/config"
)

type greetingConfig struct {
	Greeting string `config:"GREETING"`
}

func ExampleRun() {
	builder := AppBuilderFunc[greetingConfig](func(ctx context.Context, cfg greetingConfig) (App, error) {
		return AppFunc(func(ctx context.Context) error {
			fmt.Println(cfg.Greeting)
			return nil
		}), nil
	})

	err := Run(context.Background(), builder, config.Map{"GREETING": "hello world"})

	fmt.Println(ExitCode(err))
	// Output: hello world
	// 0
}

func ExampleExitCode() {
	err := Run(
		context.Background(),
		AppBuilderFunc[greetingConfig](func(context.Context, greetingConfig) (App, error) {
			return nil, fmt.Errorf("missing dependency")
		}),
	)

	fmt.Println(ExitCode(err))
	// Output: 180
}
