// Package query provides jq querying over decoded JSON values.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Engine executes jq expressions against JSON values.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Options control how results are collected.
type Options struct {
	Deduplicate bool
	MaxResults  int // 0 = unlimited
}

// Result contains the values produced by a jq expression.
type Result struct {
	Values   []any    `json:"values"`
	Errors   []string `json:"errors,omitempty"` // runtime errors, e.g. type mismatch
	RawCount int      `json:"raw_count"`        // count before deduplication
}

// Compile parses and compiles expression.
func (e *Engine) Compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// Query runs expression against input, which must be a decoded JSON value
// (maps, slices, float64, string, bool, nil). Runtime errors are collected in
// the result rather than aborting the query.
func (e *Engine) Query(ctx context.Context, input any, expression string, opts Options) (*Result, error) {
	code, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}

	result := &Result{Values: make([]any, 0)}
	seen := make(map[string]bool)
	iter := code.RunWithContext(ctx, input)

	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			result.Errors = append(result.Errors, formatError(err))
			continue
		}

		result.RawCount++

		if opts.Deduplicate {
			key := valueKey(v)
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		result.Values = append(result.Values, v)

		if opts.MaxResults > 0 && len(result.Values) >= opts.MaxResults {
			break
		}
	}

	return result, nil
}

// QueryJSON decodes data and runs expression against it.
func (e *Engine) QueryJSON(ctx context.Context, data []byte, expression string, opts Options) (*Result, error) {
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}
	return e.Query(ctx, input, expression, opts)
}

// formatError adds hints to common jq runtime errors.
//
// Runtime errors like "cannot iterate over: null" are plain errors in gojq, so
// the hints are chosen by message text. Only the display string depends on it.
func formatError(err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return "query halted"
		}
		return fmt.Sprintf("query halted with: %v", haltErr.Value())
	}

	errStr := err.Error()
	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this document)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}
	return errStr + hint
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64:
		return fmt.Sprintf("n:%v", val)
	case int:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
