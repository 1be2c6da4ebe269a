package registry

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// InputSchema derives the JSON schema advertised for a capability's
// parameters. Unknown properties are tolerated because validation drops them.
func InputSchema(params []Param) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(params)),
	}
	for _, p := range params {
		s.Properties[p.Name] = paramSchema(p)
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

func paramSchema(p Param) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        string(p.Type),
		Description: p.Description,
	}
	if p.Type == TypeArray && p.Items != "" {
		s.Items = &jsonschema.Schema{Type: string(p.Items)}
	}
	for _, v := range p.Enum {
		s.Enum = append(s.Enum, v)
	}
	if p.Default != nil {
		if raw, err := json.Marshal(p.Default); err == nil {
			s.Default = raw
		}
	}
	return s
}
