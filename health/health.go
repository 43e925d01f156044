// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health provides readiness checks for gating traffic.
//
// A readiness check reports an empty string when the service is ready
// and a human readable reason when it is not.
package health

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/z5labs/starter/internal/try"

	"github.com/sourcegraph/conc/pool"
)

// Check represents anything that can report whether it is ready to serve traffic.
type Check interface {
	Ready(context.Context) string
}

// CheckFunc is a functional implementation of the Check interface.
type CheckFunc func(context.Context) string

// Ready implements the Check interface.
func (f CheckFunc) Ready(ctx context.Context) string {
	return f(ctx)
}

// Toggle is a Check which is flipped between ready and not ready by hand.
// The zero value is ready.
type Toggle struct {
	mu     sync.Mutex
	reason string
}

// NotReady marks the Toggle as not ready for the given reason.
func (t *Toggle) NotReady(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reason = reason
}

// Reset marks the Toggle as ready.
func (t *Toggle) Reset() {
	t.NotReady("")
}

// Ready implements the Check interface.
func (t *Toggle) Ready(_ context.Context) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// AllCheck represents multiple Checks which must all be ready.
type AllCheck struct {
	checks []Check
}

// All returns a Check which is only ready when every one of the
// given checks is ready. The checks are evaluated concurrently and
// the reasons of every failing check are joined, in the order the
// checks were given.
func All(checks ...Check) AllCheck {
	return AllCheck{
		checks: checks,
	}
}

// Ready implements the Check interface.
func (c AllCheck) Ready(ctx context.Context) string {
	reasons := make([]string, len(c.checks))
	p := pool.New().WithContext(ctx)
	for i, check := range c.checks {
		p.Go(func(ctx context.Context) (err error) {
			defer try.Recover(&err)

			reasons[i] = check.Ready(ctx)
			return nil
		})
	}

	err := p.Wait()
	if err != nil {
		return err.Error()
	}

	var sb strings.Builder
	for _, reason := range reasons {
		if len(reason) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(reason)
	}
	return sb.String()
}

// Unavailable returns the reason reported when the named dependency cannot be reached.
func Unavailable(name string) string {
	return name + " is unavailable"
}

// HTTPProbe returns a Check which sends a GET request to url and reports
// the named dependency as unavailable if the request fails or the
// response status code is not a 2xx or 3xx.
func HTTPProbe(name, url string, client *http.Client) Check {
	if client == nil {
		client = http.DefaultClient
	}
	return CheckFunc(func(ctx context.Context) string {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Unavailable(name)
		}

		resp, err := client.Do(req)
		if err != nil {
			return Unavailable(name)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return Unavailable(name)
		}
		return ""
	})
}
