package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/usestring/mcp-server-template/internal/registry"
)

type jsonReport struct {
	Title       string         `json:"title"`
	Data        map[string]any `json:"data"`
	GeneratedAt *string        `json:"generated_at"`
	Format      string         `json:"format"`
}

func (d *Deps) generateReport(_ context.Context, args registry.Args) (registry.Reply, error) {
	title := strings.TrimSpace(args.String("title"))
	if title == "" {
		return registry.Reply{}, registry.NewError(ErrCodeEmptyTitle, "title cannot be empty")
	}
	data := args.Map("data")
	format := args.String("format_type")

	var generatedAt *string
	if args.Bool("include_timestamp") {
		ts := d.Now().UTC().Format(time.RFC3339)
		generatedAt = &ts
	}

	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return registry.Reply{}, err
	}

	var content string
	switch format {
	case "json":
		b, err := json.MarshalIndent(jsonReport{Title: title, Data: data, GeneratedAt: generatedAt, Format: "json"}, "", "  ")
		if err != nil {
			return registry.Reply{}, err
		}
		content = string(b)
	case "text":
		lines := []string{"Report: " + title}
		if generatedAt != nil {
			lines = append(lines, "Generated: "+*generatedAt)
		}
		lines = append(lines, strings.Repeat("-", 50), "Data: "+string(pretty))
		content = strings.Join(lines, "\n")
	case "markdown":
		lines := []string{"# " + title}
		if generatedAt != nil {
			lines = append(lines, "*Generated: "+*generatedAt+"*")
		}
		lines = append(lines, "\n## Data\n", "```json\n"+string(pretty)+"\n```")
		content = strings.Join(lines, "\n")
	}

	return registry.OK(map[string]any{
		"report_content": content,
		"title":          title,
		"format":         format,
		"size":           len(content),
		"generated_at":   generatedAt,
	}, "Report generated successfully"), nil
}
