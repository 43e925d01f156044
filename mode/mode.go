// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package mode defines the runtime modes a service can be started in.
package mode

// Mode governs which optional behaviours are active. It is read once
// at startup and never changes.
type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
	Test        Mode = "test"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case Development, Production, Test:
		return true
	default:
		return false
	}
}

func (m Mode) IsDevelopment() bool { return m == Development }
func (m Mode) IsProduction() bool  { return m == Production }
func (m Mode) IsTest() bool        { return m == Test }

// String implements the [fmt.Stringer] interface.
func (m Mode) String() string {
	return string(m)
}
