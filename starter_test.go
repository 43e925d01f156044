// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package starter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/z5labs/starter/config"

	"github.com/stretchr/testify/assert"
)

type failingSource struct {
	err error
}

func (src failingSource) Apply(config.Store) error {
	return src.err
}

type portConfig struct {
	Port int    `config:"PORT"`
	Name string `config:"NAME"`
}

func (cfg portConfig) Validate() error {
	if cfg.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func (cfg portConfig) Normalize() portConfig {
	cfg.Name = strings.ToLower(cfg.Name)
	return cfg
}

func TestRun(t *testing.T) {
	t.Run("will return a ConfigReadError", func(t *testing.T) {
		t.Run("if a config source fails to apply", func(t *testing.T) {
			srcErr := errors.New("failed to apply")
			builder := AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return nil, nil
			})

			err := Run(context.Background(), builder, failingSource{err: srcErr})

			var rerr ConfigReadError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}
			assert.ErrorIs(t, err, srcErr)
		})
	})

	t.Run("will return a ConfigUnmarshalError", func(t *testing.T) {
		t.Run("if a value can not be decoded into the config type", func(t *testing.T) {
			builder := AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return nil, nil
			})

			err := Run(context.Background(), builder, config.Map{"PORT": "not a number"})

			var uerr ConfigUnmarshalError
			assert.ErrorAs(t, err, &uerr)
		})
	})

	t.Run("will return a ConfigValidateError", func(t *testing.T) {
		t.Run("if the config fails to validate", func(t *testing.T) {
			var built bool
			builder := AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				built = true
				return nil, nil
			})

			err := Run(context.Background(), builder, config.Map{"PORT": 0})

			var verr ConfigValidateError
			if !assert.ErrorAs(t, err, &verr) {
				return
			}
			assert.False(t, built)
		})
	})

	t.Run("will return an AppBuildError", func(t *testing.T) {
		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			builder := AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return nil, buildErr
			})

			err := Run(context.Background(), builder, config.Map{"PORT": 8080})

			var berr AppBuildError
			if !assert.ErrorAs(t, err, &berr) {
				return
			}
			assert.ErrorIs(t, err, buildErr)
		})
	})

	t.Run("will return an AppRunError", func(t *testing.T) {
		t.Run("if the app fails", func(t *testing.T) {
			runErr := errors.New("failed to run")
			builder := AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return AppFunc(func(context.Context) error {
					return runErr
				}), nil
			})

			err := Run(context.Background(), builder, config.Map{"PORT": 8080})

			var aerr AppRunError
			if !assert.ErrorAs(t, err, &aerr) {
				return
			}
			assert.ErrorIs(t, err, runErr)
		})
	})

	t.Run("will build the app with the normalized config", func(t *testing.T) {
		t.Run("if later sources override earlier ones", func(t *testing.T) {
			var got portConfig
			builder := AppBuilderFunc[portConfig](func(_ context.Context, cfg portConfig) (App, error) {
				got = cfg
				return AppFunc(func(context.Context) error {
					return nil
				}), nil
			})

			err := Run(
				context.Background(),
				builder,
				config.Map{"PORT": 8080, "NAME": "Default"},
				config.Map{"PORT": 9090},
				nil,
			)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, portConfig{Port: 9090, Name: "default"}, got)
		})
	})
}

func TestExitCode(t *testing.T) {
	cause := errors.New("cause")

	testCases := []struct {
		Name string
		Err  error
		Code int
	}{
		{Name: "nil", Err: nil, Code: 0},
		{Name: "ConfigReadError", Err: ConfigReadError{Cause: cause}, Code: ExitNoRestart},
		{Name: "ConfigUnmarshalError", Err: ConfigUnmarshalError{Cause: cause}, Code: ExitNoRestart},
		{Name: "ConfigValidateError", Err: ConfigValidateError{Cause: cause}, Code: ExitNoRestart},
		{Name: "AppBuildError", Err: AppBuildError{Cause: cause}, Code: ExitNoRestart},
		{Name: "AppRunError", Err: AppRunError{Cause: cause}, Code: ExitRestart},
		{Name: "unclassified error", Err: cause, Code: ExitRestart},
	}

	for _, testCase := range testCases {
		t.Run("will return "+testCase.Name+" exit code", func(t *testing.T) {
			assert.Equal(t, testCase.Code, ExitCode(testCase.Err))
		})
	}

	t.Run("will classify a wrapped stage error", func(t *testing.T) {
		err := errors.Join(errors.New("other"), AppBuildError{Cause: cause})
		assert.Equal(t, ExitNoRestart, ExitCode(err))
	})
}
