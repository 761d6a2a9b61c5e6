package parser

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON schema check files are validated against.
func Schema() []byte {
	return schemaJSON
}

// ErrSchema marks check files that do not match the schema.
var ErrSchema = errors.New("check file does not match schema")

// SchemaError lists every schema violation of a file.
type SchemaError struct {
	File   string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s:\n  - %s", e.File, ErrSchema, strings.Join(e.Issues, "\n  - "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ValidateSchema checks YAML source against the schema.
func ValidateSchema(input []byte, filename string) error {
	var data any
	if err := yaml.Unmarshal(input, &data); err != nil {
		return fmt.Errorf("%s: invalid YAML: %w", filename, err)
	}

	// Round-trip through JSON so the loader sees JSON-compatible types.
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("%s: validating schema: %w", filename, err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return &SchemaError{File: filename, Issues: issues}
}
