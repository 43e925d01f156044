// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	t.Run("will write a json body", func(t *testing.T) {
		t.Run("if the value is not nil", func(t *testing.T) {
			w := httptest.NewRecorder()

			JSON(w, http.StatusNotFound, "'/missing' does not exist")

			resp := w.Result()
			if !assert.Equal(t, http.StatusNotFound, resp.StatusCode) {
				return
			}
			if !assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type")) {
				return
			}

			var msg string
			err := json.NewDecoder(resp.Body).Decode(&msg)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, "'/missing' does not exist", msg)
		})
	})

	t.Run("will not write a body", func(t *testing.T) {
		t.Run("if the value is nil", func(t *testing.T) {
			w := httptest.NewRecorder()

			JSON(w, http.StatusNoContent, nil)

			if !assert.Equal(t, http.StatusNoContent, w.Code) {
				return
			}
			assert.Empty(t, w.Body.String())
		})
	})

	t.Run("will respond with a 500", func(t *testing.T) {
		t.Run("if the value can not be marshalled", func(t *testing.T) {
			w := httptest.NewRecorder()

			JSON(w, http.StatusOK, make(chan int))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
		})
	})
}
