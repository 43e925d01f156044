// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package telemetry configures the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Exporter names where spans are sent.
type Exporter string

const (
	ExporterNone   Exporter = "none"
	ExporterStdout Exporter = "stdout"
	ExporterOTLP   Exporter = "otlp"
	ExporterGCP    Exporter = "gcp"
)

// Valid reports whether e is a known exporter. The empty string is treated as [ExporterNone].
func (e Exporter) Valid() bool {
	switch e {
	case "", ExporterNone, ExporterStdout, ExporterOTLP, ExporterGCP:
		return true
	default:
		return false
	}
}

// Common holds the settings shared by every exporter.
type Common struct {
	ServiceName string
}

// Initializer creates a tracer provider.
type Initializer interface {
	Init(context.Context) (trace.TracerProvider, error)
}

// Noop leaves the global tracer provider untouched.
var Noop Initializer = noopInitializer{}

type noopInitializer struct{}

func (noopInitializer) Init(_ context.Context) (trace.TracerProvider, error) {
	return otel.GetTracerProvider(), nil
}

// LocalConfig configures the stdout exporter.
type LocalConfig struct {
	Common

	Out io.Writer
}

// Local returns an Initializer which pretty prints spans to cfg.Out, or
// os.Stdout if it is nil.
func Local(cfg LocalConfig) Initializer {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return cfg
}

// Init implements the Initializer interface.
func (cfg LocalConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.Out),
	)
	if err != nil {
		return nil, err
	}

	res, err := serviceResource(ctx, cfg.Common)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

func serviceResource(ctx context.Context, c Common, opts ...resource.Option) (*resource.Resource, error) {
	opts = append(
		opts,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(c.ServiceName),
		),
	)
	return resource.New(ctx, opts...)
}

// Config selects and configures one of the exporters.
type Config struct {
	Common

	Exporter Exporter

	// Endpoint is the gRPC target of the OTLP collector.
	Endpoint string

	// ProjectID is the Google Cloud project spans are written to.
	ProjectID string

	// Out is where the stdout exporter writes.
	Out io.Writer
}

// UnknownExporterError is returned when the configured exporter is not supported.
type UnknownExporterError struct {
	Exporter Exporter
}

// Error implements the error interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown trace exporter: %s", e.Exporter)
}

// Initializer returns the Initializer for the configured exporter.
func (cfg Config) Initializer() (Initializer, error) {
	switch cfg.Exporter {
	case "", ExporterNone:
		return Noop, nil
	case ExporterStdout:
		return Local(LocalConfig{Common: cfg.Common, Out: cfg.Out}), nil
	case ExporterOTLP:
		return OTLP(OTLPConfig{Common: cfg.Common, Target: cfg.Endpoint}), nil
	case ExporterGCP:
		return GoogleCloud(GoogleCloudConfig{Common: cfg.Common, ProjectID: cfg.ProjectID}), nil
	default:
		return nil, UnknownExporterError{Exporter: cfg.Exporter}
	}
}

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(context.Context) error

// Setup initializes a tracer provider and installs it, along with the
// W3C trace context propagator, as the global default. The returned
// ShutdownFunc must be called to flush any buffered spans.
func Setup(ctx context.Context, init Initializer) (ShutdownFunc, error) {
	if init == nil {
		return nil, errors.New("telemetry: nil initializer")
	}

	tp, err := init.Init(ctx)
	if err != nil {
		return nil, err
	}
	if tp != otel.GetTracerProvider() {
		otel.SetTracerProvider(tp)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	stp, ok := tp.(interface{ Shutdown(context.Context) error })
	if !ok {
		return func(context.Context) error { return nil }, nil
	}
	return stp.Shutdown, nil
}
