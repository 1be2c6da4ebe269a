package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/usestring/mcp-server-template/internal/query"
	"github.com/usestring/mcp-server-template/internal/registry"
	"github.com/usestring/mcp-server-template/internal/schema"
)

// maxQueryResults caps the values returned by the query operation.
const maxQueryResults = 1000

func (d *Deps) processJSON(ctx context.Context, args registry.Args) (registry.Reply, error) {
	var data any
	if err := json.Unmarshal([]byte(args.String("json_string")), &data); err != nil {
		return registry.Reply{}, registry.Errorf(ErrCodeInvalidJSON, "invalid JSON: %v", err)
	}

	op := args.String("operation")
	result := map[string]any{"original_data": data}

	switch op {
	case "validate":
		validation := map[string]any{
			"valid": true,
			"type":  jsonType(data),
			"size":  len(args.String("json_string")),
		}
		if raw := args.String("schema"); raw != "" {
			v, err := schema.NewValidator(raw)
			if err != nil {
				return registry.Reply{}, registry.Errorf(ErrCodeInvalidSchema, "invalid schema: %v", err)
			}
			res := v.Validate(data)
			validation["valid"] = res.Valid
			validation["errors"] = res.Errors
		}
		result["validation"] = validation

	case "filter":
		key := args.String("filter_key")
		if key == "" {
			return registry.Reply{}, registry.ErrInvalidParameter("filter_key", "required for the filter operation")
		}
		items, ok := data.([]any)
		if !ok {
			return registry.Reply{}, registry.NewError(ErrCodeInvalidDataType, "filtering requires array data")
		}
		filtered := make([]any, 0, len(items))
		for _, item := range items {
			if obj, ok := item.(map[string]any); ok {
				if _, has := obj[key]; has {
					filtered = append(filtered, item)
				}
			}
		}
		result["filtered_data"] = filtered
		result["filter_stats"] = map[string]any{"original_count": len(items), "filtered_count": len(filtered)}

	case "sort":
		key := args.String("sort_by")
		if key == "" {
			return registry.Reply{}, registry.ErrInvalidParameter("sort_by", "required for the sort operation")
		}
		sorted, err := sortObjects(data, key)
		if err != nil {
			return registry.Reply{}, err
		}
		result["sorted_data"] = sorted
		result["sort_key"] = key

	case "transform":
		result["transformed_data"] = upperStrings(data)

	case "query":
		expr := args.String("expression")
		if expr == "" {
			return registry.Reply{}, registry.ErrInvalidParameter("expression", "required for the query operation")
		}
		res, err := d.Query.Query(ctx, data, expr, query.Options{MaxResults: maxQueryResults})
		if err != nil {
			if ctx.Err() != nil {
				return registry.Reply{}, ctx.Err()
			}
			return registry.Reply{}, registry.Errorf(ErrCodeQueryError, "%v", err)
		}
		result["query_result"] = res

	case "infer":
		result["schema"] = schema.Infer(data)
	}

	return registry.Reply{
		Data:     result,
		Message:  fmt.Sprintf("JSON %s completed successfully", op),
		Metadata: map[string]any{"operation": op},
	}, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "unknown"
}

// sortObjects stably sorts an array of objects by key. Objects missing the key
// sort first; values must be all numbers or all strings.
func sortObjects(data any, key string) ([]any, error) {
	items, ok := data.([]any)
	if !ok {
		return nil, registry.NewError(ErrCodeInvalidDataType, "sorting requires an array of objects")
	}
	kind := ""
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, registry.NewError(ErrCodeInvalidDataType, "sorting requires an array of objects")
		}
		v, has := obj[key]
		if !has {
			continue
		}
		k := jsonType(v)
		if k != "number" && k != "string" {
			return nil, registry.Errorf(ErrCodeSortError, "sort failed: %q values must be numbers or strings, got %s", key, k)
		}
		if kind != "" && kind != k {
			return nil, registry.Errorf(ErrCodeSortError, "sort failed: %q mixes %s and %s values", key, kind, k)
		}
		kind = k
	}

	sorted := append([]any(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aok := sorted[i].(map[string]any)[key]
		b, bok := sorted[j].(map[string]any)[key]
		switch {
		case !aok || !bok:
			return !aok && bok
		case kind == "number":
			return a.(float64) < b.(float64)
		default:
			return a.(string) < b.(string)
		}
	})
	return sorted, nil
}

// upperStrings uppercases the string values of an object or array one level
// deep, or the value itself when it is a scalar.
func upperStrings(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				val = strings.ToUpper(s)
			}
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			if s, ok := val.(string); ok {
				val = strings.ToUpper(s)
			}
			out[i] = val
		}
		return out
	case string:
		return strings.ToUpper(v)
	}
	return strings.ToUpper(fmt.Sprint(data))
}
