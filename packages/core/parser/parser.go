package parser

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseFile reads, validates and decodes a check file.
func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading check file: %w", err)
	}
	return Parse(content, path)
}

// Parse validates and decodes check file source. filename is used in
// errors and as File.Path.
func Parse(input []byte, filename string) (*File, error) {
	if err := ValidateSchema(input, filename); err != nil {
		return nil, err
	}

	file := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(input))
	dec.KnownFields(true)
	if err := dec.Decode(file); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	file.Path = filename

	names := make(map[string]bool, len(file.Checks))
	for _, check := range file.Checks {
		if names[check.Name] {
			return nil, fmt.Errorf("%s:%d: duplicate check name %q", filename, check.Line, check.Name)
		}
		names[check.Name] = true
	}
	for _, check := range file.Checks {
		for _, dep := range check.Depends {
			if !names[dep] {
				return nil, fmt.Errorf("%s:%d: check %q depends on unknown check %q", filename, check.Line, check.Name, dep)
			}
		}
	}

	return file, nil
}
