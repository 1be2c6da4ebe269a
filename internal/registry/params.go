package registry

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// ParamType is the declared JSON type of a parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

func (t ParamType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Param declares one named parameter of a capability.
type Param struct {
	Name        string
	Type        ParamType
	Items       ParamType // element type of arrays; empty accepts any element
	Description string
	Required    bool
	Default     any
	Enum        []string // allowed values of string params
}

// StringParam declares an optional string parameter.
func StringParam(name, description string) Param {
	return Param{Name: name, Type: TypeString, Description: description}
}

// NumberParam declares an optional number parameter.
func NumberParam(name, description string) Param {
	return Param{Name: name, Type: TypeNumber, Description: description}
}

// IntegerParam declares an optional integer parameter.
func IntegerParam(name, description string) Param {
	return Param{Name: name, Type: TypeInteger, Description: description}
}

// BoolParam declares an optional boolean parameter.
func BoolParam(name, description string) Param {
	return Param{Name: name, Type: TypeBoolean, Description: description}
}

// ArrayParam declares an optional array parameter whose elements have type items.
func ArrayParam(name string, items ParamType, description string) Param {
	return Param{Name: name, Type: TypeArray, Items: items, Description: description}
}

// ObjectParam declares an optional object parameter.
func ObjectParam(name, description string) Param {
	return Param{Name: name, Type: TypeObject, Description: description}
}

// Require marks the parameter as required.
func (p Param) Require() Param {
	p.Required = true
	return p
}

// WithDefault sets the value used when the parameter is absent.
func (p Param) WithDefault(v any) Param {
	p.Default = v
	return p
}

// OneOf restricts a string parameter to the given values.
func (p Param) OneOf(values ...string) Param {
	p.Enum = values
	return p
}

func (p Param) check() error {
	if p.Name == "" {
		return fmt.Errorf("parameter with empty name")
	}
	if !p.Type.valid() {
		return fmt.Errorf("parameter %q: invalid type %q", p.Name, p.Type)
	}
	if p.Items != "" && (p.Type != TypeArray || !p.Items.valid()) {
		return fmt.Errorf("parameter %q: invalid item type %q", p.Name, p.Items)
	}
	if len(p.Enum) > 0 && p.Type != TypeString {
		return fmt.Errorf("parameter %q: enum requires a string parameter", p.Name)
	}
	if p.Default != nil {
		if _, err := normalize(p.Type, p.Items, p.Default); err != nil {
			return fmt.Errorf("parameter %q: default: %w", p.Name, err)
		}
	}
	return nil
}

// Args are the validated arguments of an invocation. Numbers are float64,
// arrays []any and objects map[string]any.
type Args map[string]any

// Has reports whether the argument is present.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a Args) Float(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

func (a Args) Int(name string) int {
	f, _ := a[name].(float64)
	return int(f)
}

func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

func (a Args) Map(name string) map[string]any {
	m, _ := a[name].(map[string]any)
	return m
}

func (a Args) Slice(name string) []any {
	s, _ := a[name].([]any)
	return s
}

func (a Args) Strings(name string) []string {
	raw := a.Slice(name)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (a Args) Floats(name string) []float64 {
	raw := a.Slice(name)
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// validateArgs checks raw against the declared params and returns only the
// declared arguments, normalized, with defaults filled in.
func validateArgs(params []Param, raw map[string]any) (Args, error) {
	args := make(Args, len(params))
	for _, p := range params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, ErrInvalidParameter(p.Name, "missing required parameter")
			}
			if p.Default != nil {
				d, _ := normalize(p.Type, p.Items, p.Default)
				args[p.Name] = d
			}
			continue
		}

		nv, err := normalize(p.Type, p.Items, v)
		if err != nil {
			if te, ok := err.(*typeError); ok {
				return nil, ErrInvalidParameter(p.Name+te.path, te.Error())
			}
			return nil, ErrInvalidParameter(p.Name, err.Error())
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, nv.(string)) {
			return nil, ErrInvalidParameter(p.Name, fmt.Sprintf("must be one of %v", p.Enum))
		}
		args[p.Name] = nv
	}
	return args, nil
}

type typeError struct {
	path string
	want ParamType
	got  any
}

func (e *typeError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.want, describe(e.got))
}

func normalize(t ParamType, items ParamType, v any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeNumber:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case TypeInteger:
		if f, ok := toFloat(v); ok && math.Trunc(f) == f && !math.IsInf(f, 0) {
			return f, nil
		}
	case TypeArray:
		elems, ok := toSlice(v)
		if !ok {
			break
		}
		if items == "" {
			return elems, nil
		}
		for i, e := range elems {
			ne, err := normalize(items, "", e)
			if err != nil {
				return nil, &typeError{path: "[" + strconv.Itoa(i) + "]", want: items, got: e}
			}
			elems[i] = ne
		}
		return elems, nil
	case TypeObject:
		if m, ok := toMap(v); ok {
			return m, nil
		}
	}
	return nil, &typeError{want: t, got: v}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toSlice copies any slice or array into a fresh []any so callers can
// normalize elements without touching the caller's value.
func toSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return slices.Clone(s), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
