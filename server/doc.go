// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package server brings an HTTP listener from "unconfigured" to
// "accepting traffic".
//
// A [Listener] moves through the states unbound, bound, closing and
// closed. Middleware can only be attached while it is unbound, and the
// configuration middleware always wraps the route middleware so a
// request with a disallowed method never reaches a route handler.
package server
