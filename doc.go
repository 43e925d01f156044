// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package starter brings an HTTP service from "unconfigured" to "accepting
// traffic" in a fixed, deterministic order and keeps the process contained
// once it is running.
//
// The sequence is:
//
//   - read and validate config (see [Run] and the config package)
//   - construct the logger
//   - construct the listener and its socket tunables
//   - attach configuration middleware (method filter, CORS, compression, security headers)
//   - attach route middleware (health check, request logging, request context, routes, catch-all)
//   - bind the socket
//   - hand the listener to the process supervisor
//
// Failures before the listener is bound are deployment mistakes and exit with
// [ExitNoRestart]. Failures after are runtime faults and exit with [ExitRestart].
package starter
