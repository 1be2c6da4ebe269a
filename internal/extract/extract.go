// Package extract pulls values out of text documents with CSS selectors,
// XPath, regular expressions, form keys or jq.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/usestring/mcp-server-template/internal/query"
)

// Mode names an extraction language.
type Mode string

const (
	ModeCSS   Mode = "css"
	ModeXPath Mode = "xpath"
	ModeRegex Mode = "regex"
	ModeForm  Mode = "form"
	ModeJQ    Mode = "jq"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeCSS, ModeXPath, ModeRegex, ModeForm, ModeJQ}

// Format is the document format derived from a media type.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatYAML Format = "yaml"
	FormatForm Format = "form"
	FormatText Format = "text"
)

// FormatOf classifies a media type. Parameters such as charset are ignored;
// anything unrecognized is plain text.
func FormatOf(mediaType string) Format {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	switch {
	case strings.Contains(mt, "json"):
		return FormatJSON
	case mt == "text/html" || mt == "application/xhtml+xml":
		return FormatHTML
	case strings.Contains(mt, "xml"):
		return FormatXML
	case strings.Contains(mt, "yaml"):
		return FormatYAML
	case mt == "application/x-www-form-urlencoded":
		return FormatForm
	default:
		return FormatText
	}
}

// DetectMode picks the extraction mode for a media type.
func DetectMode(mediaType string) Mode {
	switch FormatOf(mediaType) {
	case FormatJSON, FormatYAML:
		return ModeJQ
	case FormatHTML:
		return ModeCSS
	case FormatXML:
		return ModeXPath
	case FormatForm:
		return ModeForm
	default:
		return ModeRegex
	}
}

// Request describes one extraction.
type Request struct {
	Document   string
	MediaType  string
	Expression string
	Mode       Mode // detected from MediaType when empty
	MaxResults int  // 0 = unlimited
}

// Result holds the extracted values.
type Result struct {
	Values []any    `json:"values"`
	Count  int      `json:"count"`
	Mode   Mode     `json:"mode"`
	Errors []string `json:"errors,omitempty"`
}

// Engine dispatches extraction requests by mode.
type Engine struct {
	jq *query.Engine
}

// NewEngine returns an engine that runs jq expressions through jq.
func NewEngine(jq *query.Engine) *Engine {
	if jq == nil {
		jq = query.NewEngine()
	}
	return &Engine{jq: jq}
}

// Extract runs req. Malformed documents and expressions are errors; jq
// runtime errors are reported in Result.Errors.
func (e *Engine) Extract(ctx context.Context, req Request) (*Result, error) {
	if req.Expression == "" {
		return nil, fmt.Errorf("expression is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = DetectMode(req.MediaType)
	}

	var (
		values []any
		errs   []string
		err    error
	)
	switch mode {
	case ModeCSS:
		values, err = selectCSS(req.Document, req.Expression, req.MaxResults)
	case ModeXPath:
		values, err = selectXPath(req.Document, FormatOf(req.MediaType) == FormatHTML, req.Expression, req.MaxResults)
	case ModeRegex:
		values, err = matchRegex(req.Document, req.Expression, req.MaxResults)
	case ModeForm:
		values, err = lookupForm(req.Document, req.Expression, req.MaxResults)
	case ModeJQ:
		values, errs, err = e.runJQ(ctx, req)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []any{}
	}
	return &Result{Values: values, Count: len(values), Mode: mode, Errors: errs}, nil
}

// runJQ decodes the document as JSON, or as YAML for any other media type.
func (e *Engine) runJQ(ctx context.Context, req Request) ([]any, []string, error) {
	var input any
	if FormatOf(req.MediaType) == FormatJSON {
		if err := json.Unmarshal([]byte(req.Document), &input); err != nil {
			return nil, nil, fmt.Errorf("invalid JSON document: %w", err)
		}
	} else {
		var doc any
		if err := yaml.Unmarshal([]byte(req.Document), &doc); err != nil {
			return nil, nil, fmt.Errorf("invalid YAML document: %w", err)
		}
		input = normalizeYAML(doc)
	}

	res, err := e.jq.Query(ctx, input, req.Expression, query.Options{MaxResults: req.MaxResults})
	if err != nil {
		return nil, nil, err
	}
	return res.Values, res.Errors, nil
}

// normalizeYAML converts yaml.v3 output to the value set jq accepts: string
// map keys and float64 numbers.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return v
	}
}
