package tools

import (
	"context"
	"fmt"

	"github.com/usestring/mcp-server-template/internal/extract"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// maxExtractResults caps the values returned by extract_text.
const maxExtractResults = 500

// Extract provides structured extraction from HTML, XML, form, YAML and plain
// text documents.
func Extract(d *Deps) registry.Provider {
	engine := extract.NewEngine(d.Query)
	modes := make([]string, len(extract.Modes))
	for i, m := range extract.Modes {
		modes[i] = string(m)
	}

	return registry.NewProvider("tools.extract", func(r *registry.Registrar) error {
		return r.Add(
			registry.Tool("extract_text",
				"Extract values from a document with a CSS selector, XPath, regular expression, form key or jq expression",
				func(ctx context.Context, args registry.Args) (registry.Reply, error) {
					return extractText(ctx, engine, args)
				},
				registry.StringParam("document", "Document to search").Require(),
				registry.StringParam("expression", "Selector, XPath, pattern, form key (* for all) or jq expression").Require(),
				registry.StringParam("mode", "Extraction mode; detected from content_type when omitted").OneOf(modes...),
				registry.StringParam("content_type", "Media type of the document").WithDefault("text/plain"),
				registry.IntegerParam("max_results", "Maximum values to return (1-500)").WithDefault(100),
			),
		)
	})
}

func extractText(ctx context.Context, engine *extract.Engine, args registry.Args) (registry.Reply, error) {
	limit := args.Int("max_results")
	if limit < 1 || limit > maxExtractResults {
		return registry.Reply{}, registry.ErrInvalidParameter("max_results", fmt.Sprintf("must be between 1 and %d", maxExtractResults))
	}

	res, err := engine.Extract(ctx, extract.Request{
		Document:   args.String("document"),
		MediaType:  args.String("content_type"),
		Expression: args.String("expression"),
		Mode:       extract.Mode(args.String("mode")),
		MaxResults: limit,
	})
	if err != nil {
		if ctx.Err() != nil {
			return registry.Reply{}, ctx.Err()
		}
		return registry.Reply{}, registry.Errorf(ErrCodeQueryError, "%v", err)
	}

	data := map[string]any{
		"values": res.Values,
		"count":  res.Count,
		"mode":   string(res.Mode),
	}
	if len(res.Errors) > 0 {
		data["errors"] = res.Errors
	}
	return registry.OK(data, fmt.Sprintf("Extracted %d values with %s", res.Count, res.Mode)), nil
}
