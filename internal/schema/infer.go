package schema

import (
	"math"
	"sort"

	"github.com/invopop/jsonschema"
)

// Infer derives a JSON Schema describing a decoded JSON value. Object keys
// that are present and non-null in every sample are marked required; array
// items are merged into a single item schema.
func Infer(v any) *jsonschema.Schema {
	s := inferValue(v)
	markRequired(s, []any{v})
	return s
}

func inferValue(v any) *jsonschema.Schema {
	switch val := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "null"}
	case bool:
		return &jsonschema.Schema{Type: "boolean"}
	case float64:
		if math.Trunc(val) == val && !math.IsInf(val, 0) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}
	case string:
		return &jsonschema.Schema{Type: "string"}
	case []any:
		s := &jsonschema.Schema{Type: "array"}
		if len(val) > 0 {
			items := make([]*jsonschema.Schema, len(val))
			for i, item := range val {
				items[i] = inferValue(item)
			}
			s.Items = merge(items)
		}
		return s
	case map[string]any:
		s := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		for _, k := range sortedKeys(val) {
			s.Properties.Set(k, inferValue(val[k]))
		}
		return s
	}
	return &jsonschema.Schema{}
}

// merge combines the schemas of sibling values. Objects merge property-wise,
// arrays merge their items and mixed types become anyOf.
func merge(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}

	byType := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		byType[s.Type] = append(byType[s.Type], s)
	}
	// integer widens to number when both appear.
	if ints, ok := byType["integer"]; ok {
		if _, ok := byType["number"]; ok {
			byType["number"] = append(byType["number"], ints...)
			delete(byType, "integer")
		}
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([]*jsonschema.Schema, 0, len(types))
	for _, t := range types {
		group := byType[t]
		switch t {
		case "object":
			props := make(map[string][]*jsonschema.Schema)
			for _, s := range group {
				for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
					props[pair.Key] = append(props[pair.Key], pair.Value)
				}
			}
			m := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
			for _, k := range sortedKeys(props) {
				m.Properties.Set(k, merge(props[k]))
			}
			out = append(out, m)
		case "array":
			var items []*jsonschema.Schema
			for _, s := range group {
				if s.Items != nil {
					items = append(items, s.Items)
				}
			}
			m := &jsonschema.Schema{Type: "array"}
			if len(items) > 0 {
				m.Items = merge(items)
			}
			out = append(out, m)
		default:
			out = append(out, group[0])
		}
	}

	if len(out) == 1 {
		return out[0]
	}
	return &jsonschema.Schema{AnyOf: out}
}

// markRequired marks the keys present and non-null in every sample as required,
// recursing into nested objects and arrays of objects.
func markRequired(s *jsonschema.Schema, samples []any) {
	if s == nil {
		return
	}
	switch s.Type {
	case "object":
		objs := make([]map[string]any, 0, len(samples))
		for _, v := range samples {
			if m, ok := v.(map[string]any); ok {
				objs = append(objs, m)
			}
		}
		if len(objs) == 0 || s.Properties == nil {
			return
		}
		var required []string
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			all := true
			var nested []any
			for _, m := range objs {
				v, ok := m[pair.Key]
				if !ok || v == nil {
					all = false
					continue
				}
				nested = append(nested, v)
			}
			if all {
				required = append(required, pair.Key)
			}
			markRequired(pair.Value, nested)
		}
		s.Required = required
	case "array":
		var items []any
		for _, v := range samples {
			if arr, ok := v.([]any); ok {
				items = append(items, arr...)
			}
		}
		markRequired(s.Items, items)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
