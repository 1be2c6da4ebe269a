package mcpsrv

import (
	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// Types for declaring capabilities outside this module.
type (
	Config      = config.Config
	Kind        = registry.Kind
	Capability  = registry.Capability
	Handler     = registry.Handler
	Args        = registry.Args
	Reply       = registry.Reply
	Param       = registry.Param
	ParamType   = registry.ParamType
	RetryPolicy = registry.RetryPolicy
	Provider    = registry.Provider
	Registrar   = registry.Registrar
	Result      = registry.Result
	LoadReport  = registry.LoadReport
	CodedError  = registry.CodedError
)

// Capability kinds.
const (
	KindTool     = registry.KindTool
	KindResource = registry.KindResource
	KindPrompt   = registry.KindPrompt
)

// Parameter types.
const (
	TypeString  = registry.TypeString
	TypeNumber  = registry.TypeNumber
	TypeInteger = registry.TypeInteger
	TypeBoolean = registry.TypeBoolean
	TypeArray   = registry.TypeArray
	TypeObject  = registry.TypeObject
)

// Kinds lists every capability kind in presentation order.
var Kinds = registry.Kinds

// Constructors re-exported from the registry.
var (
	ParseKind   = registry.ParseKind
	NewProvider = registry.NewProvider
	Tool        = registry.Tool
	Resource    = registry.Resource
	Prompt      = registry.Prompt
	OK          = registry.OK

	StringParam  = registry.StringParam
	NumberParam  = registry.NumberParam
	IntegerParam = registry.IntegerParam
	BoolParam    = registry.BoolParam
	ArrayParam   = registry.ArrayParam
	ObjectParam  = registry.ObjectParam

	NewError            = registry.NewError
	Errorf              = registry.Errorf
	ErrInvalidParameter = registry.ErrInvalidParameter
)

// LoadConfig loads configuration from the environment and the optional YAML
// file at path.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
