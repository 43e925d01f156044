// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httpvalidate provides request validators which reject
// requests before they reach the wrapped http.Handler.
package httpvalidate

import (
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/z5labs/starter/internal/respond"
)

// Validator represents an http.Request validator.
type Validator interface {
	Validate(http.ResponseWriter, *http.Request) bool
}

// ValidatorFunc implements Validator for funcs.
type ValidatorFunc func(http.ResponseWriter, *http.Request) bool

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(w http.ResponseWriter, r *http.Request) bool {
	return f(w, r)
}

// Handler is an http.Handler which applies request validators
// before passing the request to a wrapped http.Handler.
type Handler struct {
	validators []Validator
	base       http.Handler
}

// Request allows you to wrap a given http.Handler with request validators.
func Request(h http.Handler, validators ...Validator) *Handler {
	return &Handler{
		validators: validators,
		base:       h,
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	for _, validator := range h.validators {
		valid := validator.Validate(w, req)
		if !valid {
			return
		}
	}
	h.base.ServeHTTP(w, req)
}

// ForMethods will validate the incoming requests' method is one of the given.
// Rejected requests receive a 405 and an Allow header listing exactly the given methods.
func ForMethods(methods ...string) Validator {
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		allowed = append(allowed, strings.ToUpper(method))
	}
	allow := strings.Join(allowed, ", ")

	return ValidatorFunc(func(w http.ResponseWriter, r *http.Request) bool {
		method := strings.ToUpper(r.Method)
		if slices.Contains(allowed, method) {
			return true
		}
		w.Header().Set("Allow", allow)
		respond.JSON(w, http.StatusMethodNotAllowed, fmt.Sprintf("%s is not a support method", method))
		return false
	})
}

// ForReadOnly will validate the incoming request is a HEAD or GET request.
// Any other method is answered with a 400 and the given message.
func ForReadOnly(message string) Validator {
	return ValidatorFunc(func(w http.ResponseWriter, r *http.Request) bool {
		if strings.EqualFold(r.Method, http.MethodHead) || strings.EqualFold(r.Method, http.MethodGet) {
			return true
		}
		respond.JSON(w, http.StatusBadRequest, message)
		return false
	})
}

// Hostname returns the request host without its port, lower cased.
func Hostname(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}

// ForHosts will validate the incoming requests' host is one of the given.
// Hosts are compared case-insensitively and without a port. Rejected
// requests receive a 403 whose body is produced by message.
func ForHosts(hosts []string, message func(host string) string) Validator {
	allowed := make(map[string]struct{}, len(hosts))
	for _, host := range hosts {
		allowed[strings.ToLower(host)] = struct{}{}
	}

	return ValidatorFunc(func(w http.ResponseWriter, r *http.Request) bool {
		host := Hostname(r)
		if _, ok := allowed[host]; ok {
			return true
		}
		respond.JSON(w, http.StatusForbidden, message(host))
		return false
	})
}

// MaxHeaders validates that the incoming HTTP request carries at most
// n header fields. Every value of a repeated header counts once.
func MaxHeaders(n int) Validator {
	return ValidatorFunc(func(w http.ResponseWriter, r *http.Request) bool {
		count := 0
		for _, vs := range r.Header {
			count += len(vs)
		}
		if count <= n {
			return true
		}
		respond.JSON(w, http.StatusRequestHeaderFieldsTooLarge, "Too many request headers")
		return false
	})
}
