// Package resources contains the resource providers of the server.
package resources

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// MIME types of the served resources.
const (
	MimeMarkdown = "text/markdown"
	MimeText     = "text/plain"
	MimeJSON     = "application/json"
	MimeYAML     = "application/yaml"
)

//go:embed templates
var files embed.FS

var licenseTemplate = template.Must(template.ParseFS(files, "templates/LICENSE.tmpl"))

// Deps contains the dependencies of the resource handlers.
type Deps struct {
	Config   *config.Config
	Registry *registry.Registry
	Now      func() time.Time
}

// Templates provides project templates, the example configuration, the API
// reference generated from the dispatch table and the Result schema.
func Templates(d *Deps) registry.Provider {
	return registry.NewProvider("resources.templates", func(r *registry.Registrar) error {
		return r.Add(
			registry.Resource("template://readme", "README template for new projects", MimeMarkdown,
				file("templates/readme.md")).WithTitle("README Template"),
			registry.Resource("template://dockerfile", "Multi-stage Dockerfile for a Go service", MimeText,
				file("templates/Dockerfile")).WithTitle("Dockerfile Template"),
			registry.Resource("template://gitignore", ".gitignore for Go projects", MimeText,
				file("templates/gitignore")).WithTitle("Gitignore Template"),
			registry.Resource("template://license/{holder}", "MIT license for the given copyright holder", MimeText,
				d.license, registry.StringParam("holder", "Copyright holder").Require()).WithTitle("MIT License"),
			registry.Resource("config://example", "Example configuration file with the effective settings", MimeYAML,
				d.exampleConfig).WithTitle("Example Configuration"),
			registry.Resource("docs://api", "Reference of every registered capability", MimeMarkdown,
				d.apiDocs).WithTitle("API Documentation"),
			registry.Resource("schema://invocation-result", "JSON Schema of the invocation result envelope", MimeJSON,
				resultSchema).WithTitle("Invocation Result Schema"),
		)
	})
}

func file(name string) registry.Handler {
	return func(context.Context, registry.Args) (registry.Reply, error) {
		b, err := files.ReadFile(name)
		if err != nil {
			return registry.Reply{}, fmt.Errorf("reading %s: %w", name, err)
		}
		return registry.OK(string(b), ""), nil
	}
}

func (d *Deps) license(_ context.Context, args registry.Args) (registry.Reply, error) {
	holder := strings.TrimSpace(args.String("holder"))
	if holder == "" {
		return registry.Reply{}, registry.ErrInvalidParameter("holder", "must not be empty")
	}
	var buf bytes.Buffer
	err := licenseTemplate.Execute(&buf, struct {
		Year   int
		Holder string
	}{d.Now().Year(), holder})
	if err != nil {
		return registry.Reply{}, fmt.Errorf("rendering license: %w", err)
	}
	return registry.OK(buf.String(), ""), nil
}

func (d *Deps) exampleConfig(context.Context, registry.Args) (registry.Reply, error) {
	var buf bytes.Buffer
	buf.WriteString("# Example configuration. Every key can also be set through the environment.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.Config.Redacted()); err != nil {
		return registry.Reply{}, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return registry.Reply{}, err
	}
	return registry.OK(buf.String(), ""), nil
}

func resultSchema(context.Context, registry.Args) (registry.Reply, error) {
	r := &jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(&registry.Result{})
	s.Title = "Invocation result"
	s.Description = "Outcome of every tool, resource and prompt invocation."
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return registry.Reply{}, err
	}
	return registry.OK(string(b), ""), nil
}

func (d *Deps) apiDocs(context.Context, registry.Args) (registry.Reply, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s API\n\n", d.Config.ServerName)
	if d.Config.ServerDescription != "" {
		sb.WriteString(d.Config.ServerDescription + "\n\n")
	}
	fmt.Fprintf(&sb, "Version %s.\n", d.Config.ServerVersion)

	for _, kind := range registry.Kinds {
		caps := d.Registry.List(kind)
		fmt.Fprintf(&sb, "\n## %ss (%d)\n", titleKind(kind), len(caps))
		for _, c := range caps {
			fmt.Fprintf(&sb, "\n### `%s`\n", c.Name)
			if c.Description != "" {
				sb.WriteString("\n" + c.Description + "\n")
			}
			if c.MIMEType != "" {
				fmt.Fprintf(&sb, "\nMIME type: `%s`\n", c.MIMEType)
			}
			writeParams(&sb, c.Params)
			if c.Timeout > 0 {
				fmt.Fprintf(&sb, "\nTimeout: %s\n", c.Timeout)
			}
			if c.Retry != nil {
				fmt.Fprintf(&sb, "\nRetries: up to %d attempts\n", c.Retry.MaxAttempts)
			}
		}
	}

	sb.WriteString("\n## Results\n\n")
	sb.WriteString("Every invocation returns a result envelope (see `schema://invocation-result`).\n")
	sb.WriteString("Failures carry `error`, `error_code` and, for invalid arguments, `field`:\n\n")
	sb.WriteString("```json\n")
	sb.WriteString(`{"success": false, "error": "missing required parameter", "error_code": "INVALID_PARAMETER", "field": "message"}`)
	sb.WriteString("\n```\n")
	return registry.OK(sb.String(), ""), nil
}

func writeParams(sb *strings.Builder, params []registry.Param) {
	if len(params) == 0 {
		return
	}
	sb.WriteString("\n| Parameter | Type | Required | Default | Description |\n")
	sb.WriteString("|-----------|------|----------|---------|-------------|\n")
	for _, p := range params {
		typ := string(p.Type)
		if p.Items != "" {
			typ += "<" + string(p.Items) + ">"
		}
		def := ""
		if p.Default != nil {
			b, _ := json.Marshal(p.Default)
			def = "`" + string(b) + "`"
		}
		desc := p.Description
		if len(p.Enum) > 0 {
			desc += " (one of: " + strings.Join(p.Enum, ", ") + ")"
		}
		req := "no"
		if p.Required {
			req = "yes"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s | %s |\n", p.Name, typ, req, def, desc)
	}
}

func titleKind(k registry.Kind) string {
	s := string(k)
	return strings.ToUpper(s[:1]) + s[1:]
}
