package mcpsrv

import (
	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// serverConfig holds configuration built from options.
type serverConfig struct {
	config     *config.Config
	configFile string

	// Overrides applied on top of the loaded configuration
	logLevel  string
	logFile   string
	transport string
	port      int
	refs      []string

	skipLogSetup    bool
	withoutBuiltins bool

	// Provider values loaded after the configured refs
	providers []registry.Provider
}

// Option configures the server.
type Option func(*serverConfig)

// WithConfig uses cfg instead of loading configuration from the environment.
func WithConfig(cfg *Config) Option {
	return func(sc *serverConfig) {
		sc.config = cfg
	}
}

// WithConfigFile overlays the YAML file at path on the environment
// configuration.
func WithConfigFile(path string) Option {
	return func(sc *serverConfig) {
		sc.configFile = path
	}
}

// WithLogLevel sets the log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(sc *serverConfig) {
		sc.logLevel = level
	}
}

// WithLogFile sets the log file path.
// If empty, logs are written to stderr only.
func WithLogFile(path string) Option {
	return func(sc *serverConfig) {
		sc.logFile = path
	}
}

// WithoutLogSetup leaves the process-wide slog logger untouched.
// Use this when embedding the server in a program that configures logging.
func WithoutLogSetup() Option {
	return func(sc *serverConfig) {
		sc.skipLogSetup = true
	}
}

// WithTransport selects the transport (http or stdio).
func WithTransport(transport string) Option {
	return func(sc *serverConfig) {
		sc.transport = transport
	}
}

// WithPort sets the HTTP listen port.
func WithPort(port int) Option {
	return func(sc *serverConfig) {
		sc.port = port
	}
}

// WithProviderRefs replaces the configured provider refs. Refs load in order.
func WithProviderRefs(refs ...string) Option {
	return func(sc *serverConfig) {
		sc.refs = append([]string(nil), refs...)
	}
}

// WithoutBuiltinProviders loads none of the configured refs, only providers
// added with WithProvider.
func WithoutBuiltinProviders() Option {
	return func(sc *serverConfig) {
		sc.withoutBuiltins = true
	}
}

// WithProvider adds a provider loaded after the configured refs. Its
// capabilities replace builtin ones with the same kind and name.
//
// Example:
//
//	mcpsrv.WithProvider(mcpsrv.NewProvider("tools.greet", func(r *mcpsrv.Registrar) error {
//	    return r.Add(mcpsrv.Tool("greet", "Greet someone",
//	        func(ctx context.Context, args mcpsrv.Args) (mcpsrv.Reply, error) {
//	            return mcpsrv.OK("hello "+args.String("name"), "greeted"), nil
//	        },
//	        mcpsrv.StringParam("name", "Who to greet").Require(),
//	    ))
//	}))
func WithProvider(p Provider) Option {
	return func(sc *serverConfig) {
		sc.providers = append(sc.providers, p)
	}
}

// WithCapabilities adds capabilities under a provider named "custom".
func WithCapabilities(caps ...Capability) Option {
	return WithProvider(registry.NewProvider("custom", func(r *registry.Registrar) error {
		return r.Add(caps...)
	}))
}
