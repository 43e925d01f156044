// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/z5labs/starter/health"
	"github.com/z5labs/starter/httpvalidate"
	"github.com/z5labs/starter/internal/respond"
	"github.com/z5labs/starter/logger"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/unrolled/secure"
	"golang.org/x/time/rate"
)

// AttachConfigurationMiddleware installs, in order, the method allow-list
// filter, the cross-origin policy, response compression and, in production
// only, strict security headers. A rate limit is appended when one is
// configured.
//
// Configuration middleware always runs before route middleware, whichever
// is attached first. Attaching it a second time is a no-op.
func AttachConfigurationMiddleware(l *Listener, cfg Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s := l.State(); s != StateUnbound {
		return StateError{Op: "attach configuration middleware to", State: s}
	}
	if l.configurationApplied {
		return nil
	}
	l.configurationApplied = true

	l.configuration = append(
		l.configuration,
		checkMethod(cfg.AllowedMethods),
		crossOrigin(cfg),
		compress,
	)
	if cfg.Environment.IsProduction() {
		l.configuration = append(l.configuration, securityHeaders(cfg))
	}
	if cfg.RateLimitRPS > 0 {
		l.configuration = append(l.configuration, rateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	return nil
}

func checkMethod(methods []string) func(http.Handler) http.Handler {
	v := httpvalidate.ForMethods(methods...)
	return func(h http.Handler) http.Handler {
		return httpvalidate.Request(h, v)
	}
}

func crossOrigin(cfg Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:       cfg.AllowedOrigins,
		AllowedMethods:       cfg.AllowedMethods,
		MaxAge:               86400,
		OptionsSuccessStatus: http.StatusOK,
	})
	return c.Handler
}

func compress(h http.Handler) http.Handler {
	return gzhttp.GzipHandler(h)
}

func securityHeaders(cfg Config) func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'self'; base-uri 'self'; font-src 'self' https: data:; form-action 'self'; frame-ancestors 'self'; img-src 'self' data:; object-src 'none'; script-src 'self'; script-src-attr 'none'; style-src 'self' https: 'unsafe-inline'; upgrade-insecure-requests",
		STSSeconds:            15552000,
		STSIncludeSubdomains:  true,
		ForceSTSHeader:        true,
		ReferrerPolicy:        "no-referrer",
	})

	coep := cfg.CrossOriginEmbedderPolicy
	if coep == "" {
		coep = "require-corp"
	}
	return func(h http.Handler) http.Handler {
		return s.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := w.Header()
			hdr.Set("Cross-Origin-Embedder-Policy", coep)
			hdr.Set("Cross-Origin-Opener-Policy", "same-origin")
			hdr.Set("Cross-Origin-Resource-Policy", "same-origin")
			hdr.Set("Origin-Agent-Cluster", "?1")
			hdr.Set("X-Download-Options", "noopen")
			hdr.Set("X-Permitted-Cross-Domain-Policies", "none")
			h.ServeHTTP(w, r)
		}))
	}
}

func rateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				respond.JSON(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}

// AttachRouteMiddleware installs, in order, the health check endpoint,
// request logging, the request context, the terminal error handler and
// finally the application routes with their catch-all 404.
//
// In development mode the API docs are served before the health check and
// when a metrics route is configured it is served right after it. Neither is
// logged. Attaching it a second time is a no-op.
func AttachRouteMiddleware(l *Listener, cfg Config, ready health.Check) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s := l.State(); s != StateUnbound {
		return StateError{Op: "attach route middleware to", State: s}
	}
	if l.routesApplied {
		return nil
	}
	l.routesApplied = true

	if cfg.Environment.IsDevelopment() {
		docs := l.apiDocs
		if docs == nil {
			docs = apiDocsHandler
		}
		l.routes = append(l.routes, serveAt(strings.TrimSuffix(cfg.HTTPRoute, "/")+"/api-docs", docs))
	}

	checks := []health.Check{&l.closing}
	if ready != nil {
		checks = append(checks, ready)
	}
	l.routes = append(l.routes, serveAt(cfg.HealthCheckRoute, healthCheck(cfg.AllowedHosts, health.All(checks...))))

	if l.metrics != nil {
		l.routes = append(
			l.routes,
			serveAt(cfg.MetricsRoute, l.metrics.Handler()),
			l.metrics.Middleware,
		)
	}

	l.routes = append(
		l.routes,
		logger.Middleware(l.log),
		attachContext(l.log, cfg.MaxBodyBytes),
		handleErrors(l.log),
	)
	return nil
}

// serveAt answers requests for exactly path with h and passes everything else through.
func serveAt(path string, h http.Handler) func(http.Handler) http.Handler {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if len(p) > 1 {
				p = strings.TrimSuffix(p, "/")
			}
			if p != path {
				next.ServeHTTP(w, r)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}

func healthCheck(allowedHosts []string, ready health.Check) http.Handler {
	return httpvalidate.Request(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := ready.Ready(r.Context())
			if reason != "" {
				respond.JSON(w, http.StatusGatewayTimeout, "Application is not available: "+reason)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}),
		httpvalidate.ForReadOnly("Health check must be a 'HEAD' or 'GET' request"),
		httpvalidate.ForHosts(allowedHosts, func(host string) string {
			return fmt.Sprintf("'%s' is forbidden to make a healthcheck", host)
		}),
	)
}

//go:embed api-docs/openapi.html
var openAPIDocs []byte

var apiDocsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(openAPIDocs)
})
