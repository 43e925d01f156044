// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/z5labs/starter/config"
	"github.com/z5labs/starter/mode"
	"github.com/z5labs/starter/telemetry"

	"github.com/go-playground/validator/v10"
)

// Config holds everything needed to bootstrap the listener. It is read
// once at startup and never mutated afterwards.
type Config struct {
	Environment mode.Mode `config:"ENVIRONMENT" validate:"required,mode"`
	Port        int       `config:"SERVER_PORT" validate:"required,min=1,max=65535"`
	DebugPort   int       `config:"SERVER_DEBUG_PORT" validate:"required_if=Environment development,omitempty,min=1,max=65535"`
	URL         string    `config:"SERVER_URL" validate:"required"`

	HTTPRoute        string `config:"HTTP_ROUTE" validate:"required"`
	HealthCheckRoute string `config:"HEALTH_CHECK_ROUTE" validate:"required"`
	MetricsRoute     string `config:"METRICS_ROUTE"`

	AllowedOrigins []string `config:"ALLOWED_ORIGINS" validate:"required,min=1,dive,required"`
	AllowedHosts   []string `config:"ALLOWED_HOSTS" validate:"required,min=1,dive,required"`
	AllowedMethods []string `config:"ALLOWED_METHODS" validate:"required,min=1,dive,method"`

	MaxHeadersCount           int           `config:"SERVER_MAX_HEADERS_COUNT" validate:"min=1"`
	HeadersTimeout            time.Duration `config:"SERVER_HEADERS_TIMEOUT" validate:"min=0"`
	RequestTimeout            time.Duration `config:"SERVER_REQUEST_TIMEOUT" validate:"min=0"`
	SocketTimeout             time.Duration `config:"SERVER_SOCKET_TIMEOUT" validate:"min=0"`
	KeepAliveTimeout          time.Duration `config:"SERVER_KEEP_ALIVE_TIMEOUT" validate:"min=0"`
	MaxRequestsPerSocket      int           `config:"SERVER_MAX_REQUESTS_PER_SOCKET" validate:"min=0"`
	ShutdownTimeout           time.Duration `config:"SERVER_SHUTDOWN_TIMEOUT" validate:"min=0"`
	MaxBodyBytes              int64         `config:"SERVER_MAX_BODY_BYTES" validate:"min=1"`
	RateLimitRPS              float64       `config:"RATE_LIMIT_RPS" validate:"min=0"`
	RateLimitBurst            int           `config:"RATE_LIMIT_BURST" validate:"min=0"`
	CrossOriginEmbedderPolicy string        `config:"CROSS_ORIGIN_EMBEDDER_POLICY" validate:"omitempty,oneof=require-corp credentialless unsafe-none"`

	// ReadinessProbes maps a dependency name to the URL probed on every health check,
	// given as "name=url" pairs.
	ReadinessProbes []string `config:"READINESS_PROBES" validate:"dive,probe"`

	ServiceName  string             `config:"SERVICE_NAME"`
	OTelExporter telemetry.Exporter `config:"OTEL_EXPORTER" validate:"exporter"`
	OTelEndpoint string             `config:"OTEL_ENDPOINT" validate:"required_if=OTelExporter otlp"`
	OTelProject  string             `config:"OTEL_GCP_PROJECT" validate:"required_if=OTelExporter gcp"`
}

// Defaults returns a config source holding the default value of every
// optional key. It is meant to be the first source so anything after it
// overrides the defaults.
func Defaults() config.Source {
	return config.Map{
		"ALLOWED_METHODS":                "OPTIONS,HEAD,GET,POST,PATCH,DELETE",
		"SERVER_MAX_HEADERS_COUNT":       50,
		"SERVER_HEADERS_TIMEOUT":         "20s",
		"SERVER_REQUEST_TIMEOUT":         "20s",
		"SERVER_SOCKET_TIMEOUT":          "10m",
		"SERVER_KEEP_ALIVE_TIMEOUT":      "10s",
		"SERVER_MAX_REQUESTS_PER_SOCKET": 100,
		"SERVER_SHUTDOWN_TIMEOUT":        "30s",
		"SERVER_MAX_BODY_BYTES":          1 << 20,
		"CROSS_ORIGIN_EMBEDDER_POLICY":   "require-corp",
		"OTEL_EXPORTER":                  string(telemetry.ExporterNone),
		"SERVICE_NAME":                   "starter",
	}
}

// RequiredKeys are the config keys which must always be set.
var RequiredKeys = []string{
	"ENVIRONMENT",
	"SERVER_PORT",
	"SERVER_URL",
	"HTTP_ROUTE",
	"HEALTH_CHECK_ROUTE",
	"ALLOWED_ORIGINS",
	"ALLOWED_HOSTS",
}

// ConfigError enumerates every missing or invalid config key.
type ConfigError struct {
	Missing []string
	Invalid []string
}

// Error implements the error interface.
func (e ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required config: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("invalid config: %s", strings.Join(e.Invalid, ", ")))
	}
	return strings.Join(parts, "; ")
}

// LoadConfig reads the given sources, on top of [Defaults], and returns
// the validated config. The returned error is always a [ConfigError] when
// a key is missing or invalid.
func LoadConfig(srcs ...config.Source) (Config, error) {
	m, err := config.Read(append([]config.Source{Defaults()}, srcs...)...)
	if err != nil {
		return Config{}, err
	}

	missing := m.Missing(RequiredKeys...)

	var cfg Config
	err = m.Unmarshal(&cfg)
	if err != nil {
		return Config{}, ConfigError{
			Missing: missing,
			Invalid: []string{err.Error()},
		}
	}
	if cfg.Environment.IsDevelopment() {
		missing = append(missing, m.Missing("SERVER_DEBUG_PORT")...)
	}
	if len(missing) > 0 {
		return Config{}, ConfigError{Missing: missing}
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg.Normalize(), nil
}

// Normalize returns a copy of cfg with every route given a single leading
// slash, the URL's trailing colon trimmed and the allowed methods upper-cased.
func (cfg Config) Normalize() Config {
	cfg.HTTPRoute = route(cfg.HTTPRoute)
	cfg.HealthCheckRoute = route(cfg.HealthCheckRoute)
	if cfg.MetricsRoute != "" {
		cfg.MetricsRoute = route(cfg.MetricsRoute)
	}
	cfg.URL = strings.TrimSuffix(cfg.URL, ":")
	methods := make([]string, len(cfg.AllowedMethods))
	for i, method := range cfg.AllowedMethods {
		methods[i] = strings.ToUpper(method)
	}
	cfg.AllowedMethods = methods
	return cfg
}

func route(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "/")
	return "/" + s
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report the config key instead of the struct field name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("config"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		return mode.Mode(fl.Field().String()).Valid()
	})
	v.RegisterValidation("exporter", func(fl validator.FieldLevel) bool {
		return telemetry.Exporter(fl.Field().String()).Valid()
	})
	v.RegisterValidation("method", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case http.MethodOptions, http.MethodHead, http.MethodGet, http.MethodPost,
			http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodTrace, http.MethodConnect:
			return true
		default:
			return false
		}
	})
	v.RegisterValidation("probe", func(fl validator.FieldLevel) bool {
		_, _, err := ParseProbe(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate reports every missing or invalid field as a [ConfigError].
func (cfg Config) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var cerr ConfigError
	for _, ferr := range verrs {
		switch ferr.Tag() {
		case "required", "required_if":
			cerr.Missing = append(cerr.Missing, ferr.Field())
		default:
			cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("%s (%s)", strings.TrimPrefix(ferr.Namespace(), "Config."), ferr.Tag()))
		}
	}
	return cerr
}

// ParseProbe splits a "name=url" readiness probe.
func ParseProbe(s string) (name, url string, err error) {
	name, url, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if !ok || name == "" || url == "" {
		return "", "", fmt.Errorf("readiness probe must be of the form name=url: %q", s)
	}
	return name, url, nil
}
