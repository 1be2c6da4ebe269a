package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
	<h1 class="title">Hello</h1>
	<h1 class="title">World</h1>
	<div class="content"><span>Nested</span> text</div>
	<p class="empty">   </p>
</body></html>`

func extract(t *testing.T, req Request) *Result {
	t.Helper()
	res, err := NewEngine(nil).Extract(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestDetectMode(t *testing.T) {
	tests := []struct {
		mediaType string
		want      Mode
	}{
		{"text/html; charset=utf-8", ModeCSS},
		{"application/xhtml+xml", ModeCSS},
		{"application/vnd.foo+xml", ModeXPath},
		{"text/xml", ModeXPath},
		{"application/x-www-form-urlencoded", ModeForm},
		{"application/x-yaml", ModeJQ},
		{"application/vnd.api+json", ModeJQ},
		{"text/plain", ModeRegex},
		{"", ModeRegex},
	}
	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMode(tt.mediaType))
		})
	}
}

func TestExtract_CSS(t *testing.T) {
	res := extract(t, Request{Document: page, MediaType: "text/html", Expression: "h1.title"})
	assert.Equal(t, ModeCSS, res.Mode)
	assert.Equal(t, []any{"Hello", "World"}, res.Values)

	res = extract(t, Request{Document: page, MediaType: "text/html", Expression: "div.content"})
	assert.Equal(t, []any{"Nested text"}, res.Values)

	res = extract(t, Request{Document: page, Mode: ModeCSS, Expression: "h1, p.empty", MaxResults: 1})
	assert.Equal(t, 1, res.Count)

	res = extract(t, Request{Document: page, Mode: ModeCSS, Expression: "p.empty"})
	assert.Equal(t, []any{}, res.Values)
}

func TestExtract_XPath(t *testing.T) {
	doc := `<catalog><book id="1"><title>Go</title></book><book id="2"><title>Redis</title></book></catalog>`

	res := extract(t, Request{Document: doc, MediaType: "application/xml", Expression: "//book/title"})
	assert.Equal(t, ModeXPath, res.Mode)
	assert.Equal(t, []any{"Go", "Redis"}, res.Values)

	res = extract(t, Request{Document: doc, MediaType: "text/xml", Expression: "//book[@id='2']/title"})
	assert.Equal(t, []any{"Redis"}, res.Values)

	res = extract(t, Request{Document: page, MediaType: "text/html", Mode: ModeXPath, Expression: "//h1"})
	assert.Equal(t, []any{"Hello", "World"}, res.Values)

	_, err := NewEngine(nil).Extract(context.Background(), Request{Document: doc, Mode: ModeXPath, Expression: "//["})
	assert.ErrorContains(t, err, "invalid XPath expression")
}

func TestExtract_Regex(t *testing.T) {
	doc := "status=200 retry=3 status=404"

	res := extract(t, Request{Document: doc, Expression: `status=(\d+)`})
	assert.Equal(t, ModeRegex, res.Mode)
	assert.Equal(t, []any{"200", "404"}, res.Values)

	res = extract(t, Request{Document: doc, Expression: `\d+`, MaxResults: 2})
	assert.Equal(t, []any{"200", "3"}, res.Values)

	_, err := NewEngine(nil).Extract(context.Background(), Request{Document: doc, Expression: `(`})
	assert.ErrorContains(t, err, "invalid regular expression")
}

func TestExtract_Form(t *testing.T) {
	doc := "name=ada&tag=a&tag=b"
	ct := "application/x-www-form-urlencoded"

	res := extract(t, Request{Document: doc, MediaType: ct, Expression: "tag"})
	assert.Equal(t, []any{"a", "b"}, res.Values)

	res = extract(t, Request{Document: doc, MediaType: ct, Expression: "*"})
	require.Len(t, res.Values, 1)
	assert.Equal(t, map[string]any{"name": "ada", "tag": []any{"a", "b"}}, res.Values[0])

	res = extract(t, Request{Document: doc, MediaType: ct, Expression: "missing"})
	assert.Equal(t, 0, res.Count)
}

func TestExtract_JQ(t *testing.T) {
	res := extract(t, Request{Document: `{"items":[{"id":1},{"id":2}]}`, MediaType: "application/json", Expression: ".items[].id"})
	assert.Equal(t, ModeJQ, res.Mode)
	assert.Equal(t, []any{1.0, 2.0}, res.Values)

	res = extract(t, Request{Document: "server:\n  port: 8080\n", MediaType: "application/yaml", Expression: ".server.port"})
	assert.Equal(t, []any{8080.0}, res.Values)

	res = extract(t, Request{Document: `{"a":null}`, MediaType: "application/json", Expression: ".a[]"})
	assert.Empty(t, res.Values)
	assert.NotEmpty(t, res.Errors)

	_, err := NewEngine(nil).Extract(context.Background(), Request{Document: `{`, MediaType: "application/json", Expression: "."})
	assert.ErrorContains(t, err, "invalid JSON document")
}

func TestExtract_BadRequest(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.Extract(context.Background(), Request{Document: "x"})
	assert.ErrorContains(t, err, "expression is required")

	_, err = e.Extract(context.Background(), Request{Document: "x", Expression: ".", Mode: "sql"})
	assert.ErrorContains(t, err, `unknown mode "sql"`)
}
