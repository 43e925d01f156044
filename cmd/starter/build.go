// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/z5labs/starter"
	"github.com/z5labs/starter/app"
	"github.com/z5labs/starter/health"
	"github.com/z5labs/starter/httpclient"
	"github.com/z5labs/starter/logger"
	"github.com/z5labs/starter/server"
	"github.com/z5labs/starter/supervisor"
	"github.com/z5labs/starter/telemetry"

	"go.uber.org/zap"
)

func buildApp(out io.Writer) starter.AppBuilderFunc[server.Config] {
	return func(ctx context.Context, cfg server.Config) (starter.App, error) {
		log := logger.New(cfg.Environment, out)

		tinit, err := telemetry.Config{
			Common:    telemetry.Common{ServiceName: cfg.ServiceName},
			Exporter:  cfg.OTelExporter,
			Endpoint:  cfg.OTelEndpoint,
			ProjectID: cfg.OTelProject,
			Out:       out,
		}.Initializer()
		if err != nil {
			return nil, err
		}
		shutdownTracing, err := telemetry.Setup(ctx, tinit)
		if err != nil {
			return nil, err
		}

		ready, err := readinessProbes(cfg.ReadinessProbes, log)
		if err != nil {
			return nil, errors.Join(err, shutdownTracing(ctx))
		}

		l, err := server.Build(
			cfg,
			log,
			server.Readiness(ready),
			server.Owns(server.CloserFunc(shutdownTracing)),
		)
		if err != nil {
			return nil, errors.Join(err, shutdownTracing(ctx))
		}

		run := starter.AppFunc(func(ctx context.Context) error {
			_, err := l.Listen(ctx, cfg.Port)
			if err != nil {
				return errors.Join(err, l.Close(context.WithoutCancel(ctx)))
			}

			sup := supervisor.New(log, l.Close)
			return sup.Watch(ctx, l.Fatal())
		})

		return app.WithLifecycleHooks(app.Recover(run), app.Lifecycle{
			PostRun: app.LifecycleHookFunc(func(context.Context) error {
				// Sync fails on terminals and pipes.
				_ = log.Sync()
				return nil
			}),
		}), nil
	}
}

func readinessProbes(probes []string, log *zap.Logger) (health.Check, error) {
	checks := make([]health.Check, 0, len(probes))
	for _, probe := range probes {
		name, url, err := server.ParseProbe(probe)
		if err != nil {
			return nil, err
		}

		transport := httpclient.RoundTripperWith(
			http.DefaultTransport,
			httpclient.CircuitBreaker(
				httpclient.CircuitName(name),
				httpclient.CircuitLogger(log),
			),
		)
		client := httpclient.NewClient(
			httpclient.WithTransport(transport),
			httpclient.RetryRequests(
				httpclient.MaxAttempts(2),
				httpclient.RetryAttemptLogger(log),
			),
		)
		checks = append(checks, health.HTTPProbe(name, url, client))
	}
	return health.All(checks...), nil
}
