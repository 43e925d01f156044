// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/z5labs/starter/internal/try"

	"gopkg.in/yaml.v3"
)

// Format names a structured config encoding.
type Format string

// Supported formats.
const (
	YAML Format = "yaml"
	JSON Format = "json"
)

func (f Format) unmarshal(b []byte, v any) error {
	switch f {
	case YAML:
		return yaml.Unmarshal(b, v)
	case JSON:
		return json.Unmarshal(b, v)
	default:
		return fmt.Errorf("unknown config format: %s", string(f))
	}
}

// Decoded is a Source which decodes everything read from its
// underlying io.Reader, closing it if possible.
type Decoded struct {
	format Format
	name   string
	r      io.Reader
}

// FromYaml returns a source which will apply its config
// from YAML values parsed from the given io.Reader.
func FromYaml(r io.Reader) Decoded {
	return Decoded{format: YAML, r: r}
}

// FromJson returns a source which will apply its config
// from JSON values parsed from the given io.Reader.
func FromJson(r io.Reader) Decoded {
	return Decoded{format: JSON, r: r}
}

// DecodeError occurs if the underlying io.Reader does not hold
// valid YAML or JSON.
type DecodeError struct {
	Format Format

	// Name of the file the values were read from, if any.
	Name string

	Cause error
}

// Error implements the error interface.
func (e DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid %s: %s", e.Format, e.Cause)
	}
	return fmt.Sprintf("invalid %s in %s: %s", e.Format, e.Name, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e DecodeError) Unwrap() error {
	return e.Cause
}

// Apply implements the Source interface.
func (src Decoded) Apply(store Store) (err error) {
	defer try.Close(&err, src.r)

	b, err := io.ReadAll(src.r)
	if err != nil {
		return err
	}

	m := make(map[string]any)
	err = src.format.unmarshal(b, &m)
	if err != nil {
		return DecodeError{
			Format: src.format,
			Name:   src.name,
			Cause:  err,
		}
	}
	return Map(m).Apply(store)
}

// UnsupportedFileError is returned when a config file extension
// is neither YAML nor JSON.
type UnsupportedFileError struct {
	Path string
}

// Error implements the error interface.
func (e UnsupportedFileError) Error() string {
	return fmt.Sprintf("unsupported config file type: %s", e.Path)
}

// FormatOf returns the Format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return "", UnsupportedFileError{Path: path}
	}
}

// FromFile opens the YAML or JSON file at path. Its content is rendered
// with [RenderTextTemplate] before being decoded. The file is closed
// once the returned Source has been applied.
func FromFile(path string, opts ...RenderTextTemplateOption) (Decoded, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Decoded{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Decoded{}, err
	}

	src := Decoded{
		format: format,
		name:   path,
		r:      RenderTextTemplate(f, opts...),
	}
	return src, nil
}
