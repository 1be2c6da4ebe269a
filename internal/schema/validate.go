// Package schema validates JSON values against JSON Schema documents and
// infers schemas from sample values.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationResult reports whether a value conforms to a schema.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validator validates JSON values against a compiled schema.
type Validator struct {
	schema *sjsonschema.Schema
}

// NewValidator compiles a JSON Schema. The schema may be given as a JSON
// string, raw bytes, or an already decoded value.
func NewValidator(schema any) (*Validator, error) {
	doc, err := decode(schema)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON Schema: %w", err)
	}

	compiler := sjsonschema.NewCompiler()
	// doc must be a decoded JSON value, not an io.Reader
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// decode normalizes a schema into the plain JSON value form the compiler
// expects, round-tripping typed values through encoding/json.
func decode(schema any) (any, error) {
	var data []byte
	switch s := schema.(type) {
	case string:
		data = []byte(s)
	case []byte:
		data = s
	case json.RawMessage:
		data = s
	default:
		var err error
		if data, err = json.Marshal(s); err != nil {
			return nil, err
		}
	}
	return sjsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// Validate checks an already decoded JSON value against the schema.
func (v *Validator) Validate(value any) *ValidationResult {
	err := v.schema.Validate(value)
	if err == nil {
		return &ValidationResult{Valid: true}
	}
	return &ValidationResult{Valid: false, Errors: extractValidationErrors(err)}
}

// ValidateJSON decodes data and validates it.
func (v *Validator) ValidateJSON(data []byte) *ValidationResult {
	value, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("invalid JSON: %s", err)}}
	}
	return v.Validate(value)
}

func extractValidationErrors(err error) []string {
	var validationErr *sjsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}

	byPath := make(map[string][]string)
	collectErrors(validationErr, byPath)

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		seen := make(map[string]bool)
		for _, msg := range byPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	return result
}

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

// collectErrors gathers the leaf errors of a validation error tree by
// instance location.
func collectErrors(err *sjsonschema.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		// $ref wrappers carry no information of their own
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, byPath)
	}
}
