// Package mcp exposes the capability registry over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"

	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// Server bridges the dispatch table to an MCP server.
type Server struct {
	mcpServer *sdkmcp.Server
	registry  *registry.Registry
	cfg       *config.Config
	timeout   time.Duration
}

// NewServer creates an MCP server advertising every capability currently in
// reg. Call it after the registry has been loaded.
func NewServer(cfg *config.Config, reg *registry.Registry) (*Server, error) {
	if cfg == nil || reg == nil {
		return nil, fmt.Errorf("config and registry are required")
	}

	s := &Server{
		registry: reg,
		cfg:      cfg,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	s.mcpServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{
			Name:    cfg.ServerName,
			Version: cfg.ServerVersion,
		},
		&sdkmcp.ServerOptions{Instructions: cfg.ServerDescription},
	)
	s.mcpServer.AddReceivingMiddleware(LoggingMiddleware())

	s.registerTools()
	if err := s.registerResources(); err != nil {
		return nil, err
	}
	s.registerPrompts()
	return s, nil
}

// MCPServer returns the underlying MCP server for testing.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.mcpServer
}

// bound applies the per-invocation timeout imposed by the server.
func (s *Server) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func displayName(c registry.Capability) string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

func (s *Server) registerTools() {
	for _, c := range s.registry.List(registry.KindTool) {
		s.mcpServer.AddTool(&sdkmcp.Tool{
			Name:        c.Name,
			Title:       c.Title,
			Description: c.Description,
			InputSchema: registry.InputSchema(c.Params),
		}, s.toolHandler(c.Name))
	}
}

func (s *Server) toolHandler(name string) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var params map[string]any
		if raw := req.Params.Arguments; len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				return toolResult(invalidArguments(err)), nil
			}
		}

		ctx, cancel := s.bound(ctx)
		defer cancel()
		return toolResult(s.registry.Invoke(ctx, registry.KindTool, name, params)), nil
	}
}

func invalidArguments(err error) registry.Result {
	return registry.Result{
		Error:        fmt.Sprintf("arguments must be a JSON object: %v", err),
		ErrorCode:    registry.CodeInvalidParameter,
		Timestamp:    time.Now().UTC(),
		InvocationID: uuid.NewString(),
	}
}

// toolResult renders a Result as the JSON envelope in text content, with the
// same envelope as structured content.
func toolResult(res registry.Result) *sdkmcp.CallToolResult {
	b, err := json.Marshal(res)
	if err != nil {
		b = fmt.Appendf(nil, `{"success":false,"error":"encoding result: %s","error_code":%q}`, err, registry.CodeInternal)
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(b)}},
			IsError: true,
		}
	}
	return &sdkmcp.CallToolResult{
		Content:           []sdkmcp.Content{&sdkmcp.TextContent{Text: string(b)}},
		StructuredContent: json.RawMessage(b),
		IsError:           !res.Success,
	}
}

func (s *Server) registerResources() error {
	for _, c := range s.registry.List(registry.KindResource) {
		if !c.IsTemplate() {
			s.mcpServer.AddResource(&sdkmcp.Resource{
				URI:         c.Name,
				Name:        displayName(c),
				Title:       c.Title,
				Description: c.Description,
				MIMEType:    c.MIMEType,
			}, s.resourceHandler(c, nil))
			continue
		}

		tmpl, err := uritemplate.New(c.Name)
		if err != nil {
			return fmt.Errorf("resource template %q: %w", c.Name, err)
		}
		s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
			URITemplate: c.Name,
			Name:        displayName(c),
			Title:       c.Title,
			Description: c.Description,
			MIMEType:    c.MIMEType,
		}, s.resourceHandler(c, tmpl))
	}
	return nil
}

// resourceHandler reads a resource. For templates, the variables matched in
// the requested URI become the invocation params.
func (s *Server) resourceHandler(c registry.Capability, tmpl *uritemplate.Template) sdkmcp.ResourceHandler {
	return func(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		uri := req.Params.URI

		var params map[string]any
		if tmpl != nil {
			match := tmpl.Match(uri)
			if match == nil {
				return nil, sdkmcp.ResourceNotFoundError(uri)
			}
			params = make(map[string]any, len(tmpl.Varnames()))
			for _, name := range tmpl.Varnames() {
				if v := match.Get(name).String(); v != "" {
					params[name] = v
				}
			}
		}

		ctx, cancel := s.bound(ctx)
		defer cancel()
		res := s.registry.Invoke(ctx, registry.KindResource, c.Name, params)
		if !res.Success {
			if res.ErrorCode == registry.CodeNotFound {
				return nil, sdkmcp.ResourceNotFoundError(uri)
			}
			return nil, res.Err()
		}

		text, ok := res.Text()
		if !ok {
			b, err := json.MarshalIndent(res.Data, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encoding resource %s: %w", uri, err)
			}
			text = string(b)
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{URI: uri, MIMEType: c.MIMEType, Text: text}},
		}, nil
	}
}

func (s *Server) registerPrompts() {
	for _, c := range s.registry.List(registry.KindPrompt) {
		args := make([]*sdkmcp.PromptArgument, 0, len(c.Params))
		for _, p := range c.Params {
			args = append(args, &sdkmcp.PromptArgument{
				Name:        p.Name,
				Description: p.Description,
				Required:    p.Required,
			})
		}
		s.mcpServer.AddPrompt(&sdkmcp.Prompt{
			Name:        c.Name,
			Title:       c.Title,
			Description: c.Description,
			Arguments:   args,
		}, s.promptHandler(c))
	}
}

func (s *Server) promptHandler(c registry.Capability) sdkmcp.PromptHandler {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		params := make(map[string]any, len(req.Params.Arguments))
		for k, v := range req.Params.Arguments {
			params[k] = v
		}

		ctx, cancel := s.bound(ctx)
		defer cancel()
		res := s.registry.Invoke(ctx, registry.KindPrompt, c.Name, params)
		if !res.Success {
			return nil, res.Err()
		}

		text, ok := res.Text()
		if !ok {
			return nil, fmt.Errorf("prompt %s returned %T, want text", c.Name, res.Data)
		}
		description := res.Message
		if description == "" {
			description = c.Description
		}
		return &sdkmcp.GetPromptResult{
			Description: description,
			Messages: []*sdkmcp.PromptMessage{
				{Role: "user", Content: &sdkmcp.TextContent{Text: text}},
			},
		}, nil
	}
}
