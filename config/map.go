// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"strings"
)

// Key is the path to a config value. Flat sources, like environment
// variables, always produce a single element path.
type Key []string

// String returns the path joined by dots, e.g. "otel.exporter".
func (k Key) String() string {
	return strings.Join(k, ".")
}

// Map is an ordinary map[string]any but implements both the Source
// and Store interfaces.
type Map map[string]any

// Apply implements the Source interface. It recursively walks the underlying
// map to find key value pairs to set on the given store.
func (m Map) Apply(store Store) error {
	return walkMap(m, store, nil)
}

func walkMap(m map[string]any, store Store, path Key) error {
	for k, v := range m {
		// copy so sibling keys never share a backing array
		next := append(path[:len(path):len(path)], k)

		sub, ok := v.(map[string]any)
		if ok {
			err := walkMap(sub, store, next)
			if err != nil {
				return err
			}
			continue
		}

		err := store.Set(next, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// EmptyKeyError occurs when a source sets a value without naming a key.
type EmptyKeyError struct {
	Value any
}

// Error implements the error interface.
func (e EmptyKeyError) Error() string {
	return fmt.Sprintf("attempted to set value to an empty key: %v", e.Value)
}

// UnexpectedKeyValueTypeError occurs when a source nests keys under a
// key another source already set to a scalar.
type UnexpectedKeyValueTypeError struct {
	Key          string
	ExpectedType string
}

// Error implements the error interface.
func (e UnexpectedKeyValueTypeError) Error() string {
	return fmt.Sprintf("expected key value to be a %s: %s", e.ExpectedType, e.Key)
}

// Set implements the Store interface.
func (m Map) Set(k Key, v any) error {
	if len(k) == 0 {
		return EmptyKeyError{Value: v}
	}

	cur := map[string]any(m)
	for i, name := range k[:len(k)-1] {
		old, ok := cur[name]
		if !ok {
			old = make(map[string]any)
			cur[name] = old
		}

		sub, ok := old.(map[string]any)
		if !ok {
			return UnexpectedKeyValueTypeError{
				Key:          k[:i+1].String(),
				ExpectedType: "map[string]any",
			}
		}
		cur = sub
	}
	cur[k[len(k)-1]] = v
	return nil
}
