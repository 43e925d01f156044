// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode_Valid(t *testing.T) {
	testCases := []struct {
		Name  string
		Mode  Mode
		Valid bool
	}{
		{Name: "development", Mode: Development, Valid: true},
		{Name: "production", Mode: Production, Valid: true},
		{Name: "test", Mode: Test, Valid: true},
		{Name: "empty", Mode: "", Valid: false},
		{Name: "wrong case", Mode: "Production", Valid: false},
		{Name: "unknown", Mode: "staging", Valid: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Valid, testCase.Mode.Valid())
		})
	}
}
