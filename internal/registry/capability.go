// Package registry holds the capability dispatch table of the MCP server.
//
// Providers contribute tools, resources and prompts during a single load
// phase; afterwards the table is only read, and every invocation goes through
// a fixed pipeline (validate, timeout, retry, call) whose outcome is always a
// structured Result.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind tags a capability as a tool, a resource or a prompt.
type Kind string

const (
	KindTool     Kind = "tool"
	KindResource Kind = "resource"
	KindPrompt   Kind = "prompt"
)

// Kinds lists every capability kind in presentation order.
var Kinds = []Kind{KindTool, KindResource, KindPrompt}

// ParseKind accepts the singular or plural spelling of a kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tool", "tools":
		return KindTool, nil
	case "resource", "resources":
		return KindResource, nil
	case "prompt", "prompts":
		return KindPrompt, nil
	}
	return "", fmt.Errorf("unknown capability kind %q (want tool, resource or prompt)", s)
}

func (k Kind) valid() bool {
	return k == KindTool || k == KindResource || k == KindPrompt
}

// Handler implements a capability. Args have already been validated against
// the declared parameters, with defaults applied.
type Handler func(ctx context.Context, args Args) (Reply, error)

// Reply is the success payload of a handler.
type Reply struct {
	Data     any
	Message  string
	Metadata map[string]any
}

// OK builds a Reply carrying data and a human readable message.
func OK(data any, message string) Reply {
	return Reply{Data: data, Message: message}
}

// Capability is a named, invocable unit registered by a provider.
type Capability struct {
	Kind Kind
	// Name is the tool or prompt name, or the URI (or URI template) of a resource.
	Name        string
	Title       string
	Description string
	MIMEType    string // resources only
	Params      []Param
	Handler     Handler

	// Invocation policies. Zero values disable them.
	Timeout time.Duration
	Retry   *RetryPolicy

	// Provider is the ref of the provider that registered the capability.
	// Set by the registry.
	Provider string
}

// Tool declares a tool capability.
func Tool(name, description string, h Handler, params ...Param) Capability {
	return Capability{Kind: KindTool, Name: name, Description: description, Handler: h, Params: params}
}

// Resource declares a resource capability served at uri. A uri containing
// "{var}" segments is a template whose variables arrive as string params.
func Resource(uri, description, mimeType string, h Handler, params ...Param) Capability {
	return Capability{Kind: KindResource, Name: uri, Description: description, MIMEType: mimeType, Handler: h, Params: params}
}

// Prompt declares a prompt capability.
func Prompt(name, description string, h Handler, params ...Param) Capability {
	return Capability{Kind: KindPrompt, Name: name, Description: description, Handler: h, Params: params}
}

// WithTitle returns a copy of c with a display title.
func (c Capability) WithTitle(title string) Capability {
	c.Title = title
	return c
}

// WithTimeout returns a copy of c bounded by d per invocation.
func (c Capability) WithTimeout(d time.Duration) Capability {
	c.Timeout = d
	return c
}

// WithRetry returns a copy of c retried according to p.
func (c Capability) WithRetry(p RetryPolicy) Capability {
	c.Retry = &p
	return c
}

// IsTemplate reports whether a resource name is a URI template.
func (c Capability) IsTemplate() bool {
	return c.Kind == KindResource && strings.Contains(c.Name, "{")
}

// Param returns the declared parameter with the given name.
func (c Capability) Param(name string) (Param, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func (c Capability) check() error {
	if !c.Kind.valid() {
		return fmt.Errorf("capability %q: invalid kind %q", c.Name, c.Kind)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%s capability: empty name", c.Kind)
	}
	if c.Handler == nil {
		return fmt.Errorf("%s %q: nil handler", c.Kind, c.Name)
	}
	if c.Retry != nil && c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%s %q: retry policy needs at least one attempt", c.Kind, c.Name)
	}
	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		if err := p.check(); err != nil {
			return fmt.Errorf("%s %q: %w", c.Kind, c.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s %q: duplicate parameter %q", c.Kind, c.Name, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
