package mcp

import (
	"slices"

	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/mcp/prompts"
	"github.com/usestring/mcp-server-template/internal/mcp/resources"
	"github.com/usestring/mcp-server-template/internal/mcp/tools"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// Catalog maps every built-in provider ref to its constructor.
func Catalog(deps *tools.Deps) registry.Catalog {
	rd := &resources.Deps{Config: deps.Config, Registry: deps.Registry, Now: deps.Now}
	return registry.Catalog{
		"tools.examples":      static(tools.Examples(deps)),
		"tools.math":          static(tools.Math()),
		"tools.text":          static(tools.Text()),
		"tools.extract":       static(tools.Extract(deps)),
		"tools.health":        static(tools.Health(deps)),
		"tools.kv":            static(tools.KV(deps)),
		"resources.templates": static(resources.Templates(rd)),
		"prompts.examples":    static(prompts.Examples()),
	}
}

func static(p registry.Provider) func() (registry.Provider, error) {
	return func() (registry.Provider, error) { return p, nil }
}

// ProviderRefs returns the refs to load for cfg, in order. tools.health is
// dropped when the health check is disabled.
func ProviderRefs(cfg *config.Config) []string {
	refs := slices.Clone(cfg.Providers)
	if !cfg.EnableHealthCheck {
		refs = slices.DeleteFunc(refs, func(ref string) bool { return ref == "tools.health" })
	}
	return refs
}
