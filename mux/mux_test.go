// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mux

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusCodeHandler int

func (h statusCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(int(h))
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()

	var msg string
	err := json.NewDecoder(resp.Body).Decode(&msg)
	if !assert.Nil(t, err) {
		return ""
	}
	return msg
}

func TestRouter_NotFound(t *testing.T) {
	testCases := []struct {
		Name            string
		RegisterPattern string
		RequestPath     string
		NotFound        bool
	}{
		{
			Name:        "should match not found if no other endpoints are registered and '/' is requested",
			RequestPath: "/",
			NotFound:    true,
		},
		{
			Name:        "should match not found if no other endpoints are registered and a sub path is requested",
			RequestPath: "/hello",
			NotFound:    true,
		},
		{
			Name:            "should match not found if other endpoints are registered and an unknown path is requested",
			RegisterPattern: "/hello",
			RequestPath:     "/bye",
			NotFound:        true,
		},
		{
			Name:            "should match not found if the path is outside of the prefix",
			RegisterPattern: "/hello",
			RequestPath:     "/hello",
			NotFound:        true,
		},
		{
			Name:            "should match not found if '/{$}' is registered and a sub-path is requested",
			RegisterPattern: "/{$}",
			RequestPath:     "/api/bye",
			NotFound:        true,
		},
		{
			Name:            "should not match not found if endpoint pattern is requested",
			RegisterPattern: "/hello",
			RequestPath:     "/api/hello",
			NotFound:        false,
		},
		{
			Name:            "should not match not found if endpoint pattern is requested with a trailing slash",
			RegisterPattern: "/hello",
			RequestPath:     "/api/hello/",
			NotFound:        false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			m := New(Prefix("/api"))
			if testCase.RegisterPattern != "" {
				m.Handle(MethodGet, testCase.RegisterPattern, statusCodeHandler(http.StatusOK))
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://example.com"+testCase.RequestPath, nil)

			m.ServeHTTP(w, r)

			resp := w.Result()
			if !testCase.NotFound {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				return
			}
			if !assert.Equal(t, http.StatusNotFound, resp.StatusCode) {
				return
			}
			assert.Equal(t, "'"+testCase.RequestPath+"' does not exist", decodeMessage(t, resp))
		})
	}

	t.Run("will embed the query in the not found message", func(t *testing.T) {
		m := New()

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "http://example.com/missing?page=2", nil)

		m.ServeHTTP(w, r)

		resp := w.Result()
		if !assert.Equal(t, http.StatusNotFound, resp.StatusCode) {
			return
		}
		assert.Equal(t, "'/missing?page=2' does not exist", decodeMessage(t, resp))
	})

	t.Run("will use the custom not found handler", func(t *testing.T) {
		m := New(NotFoundHandler(statusCodeHandler(http.StatusTeapot)))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "http://example.com/missing", nil)

		m.ServeHTTP(w, r)

		assert.Equal(t, http.StatusTeapot, w.Result().StatusCode)
	})
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	testCases := []struct {
		Name             string
		RegisterPatterns map[Method]string
		Method           string
		Allow            string
		MethodNotAllowed bool
	}{
		{
			Name:             "should return success response when correct method is used",
			RegisterPatterns: map[Method]string{MethodPost: "/echo"},
			Method:           http.MethodPost,
		},
		{
			Name:             "should return success response for HEAD when GET is registered",
			RegisterPatterns: map[Method]string{MethodGet: "/echo"},
			Method:           http.MethodHead,
		},
		{
			Name:             "should return method not allowed response when incorrect method is used",
			RegisterPatterns: map[Method]string{MethodPost: "/echo"},
			Method:           http.MethodDelete,
			Allow:            "POST",
			MethodNotAllowed: true,
		},
		{
			Name:             "should list GET and HEAD in the Allow header when GET is registered",
			RegisterPatterns: map[Method]string{MethodGet: "/echo"},
			Method:           http.MethodPatch,
			Allow:            "GET, HEAD",
			MethodNotAllowed: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			m := New(Prefix("/api/"))
			for method, pattern := range testCase.RegisterPatterns {
				m.Handle(method, pattern, statusCodeHandler(http.StatusOK))
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(testCase.Method, "http://example.com/api/echo", nil)

			m.ServeHTTP(w, r)

			resp := w.Result()
			if !testCase.MethodNotAllowed {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				return
			}
			if !assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode) {
				return
			}
			if !assert.Equal(t, testCase.Allow, resp.Header.Get("Allow")) {
				return
			}
			assert.Equal(t, testCase.Method+" is not a support method", decodeMessage(t, resp))
		})
	}
}

func TestPrefix(t *testing.T) {
	m := New(Prefix("/api/"))
	assert.Equal(t, "/api", m.Prefix())
}
