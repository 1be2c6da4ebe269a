package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"

	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/logging"
	"github.com/usestring/mcp-server-template/internal/mcp"
	"github.com/usestring/mcp-server-template/internal/mcp/tools"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// Server is the MCP server template.
// It owns the capability registry and serves it over the configured transport.
type Server struct {
	cfg        *config.Config
	registry   *registry.Registry
	deps       *tools.Deps
	refs       []string
	logCleanup func() error

	initOnce sync.Once
	initErr  error
	report   registry.LoadReport
	internal *mcp.Server
}

// NewServer creates a server. Configuration is loaded from the environment
// unless WithConfig is given. Providers are not loaded until Initialize.
func NewServer(opts ...Option) (*Server, error) {
	sc := &serverConfig{}
	for _, opt := range opts {
		opt(sc)
	}

	cfg := sc.config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(sc.configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	applyOverrides(cfg, sc)

	logCleanup := func() error { return nil }
	if !sc.skipLogSetup {
		var err error
		logCleanup, err = logging.Setup(logging.Config{
			Level:      cfg.EffectiveLogLevel(),
			Format:     cfg.LogFormat,
			Enabled:    cfg.LogEnabled,
			FilePath:   cfg.LogFile,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
			Compress:   cfg.LogCompress,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to setup logging: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		if cfg.IsProduction() {
			_ = logCleanup()
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		slog.Warn("configuration has problems", slog.String("error", err.Error()))
	}

	reg := registry.New()
	deps, err := tools.NewDeps(cfg, reg)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create dependencies: %w", err)
	}

	catalog := mcp.Catalog(deps)
	var refs []string
	if !sc.withoutBuiltins {
		refs = mcp.ProviderRefs(cfg)
	}
	if len(sc.providers) > 0 {
		catalog = maps.Clone(catalog)
		for _, p := range sc.providers {
			ref := uniqueRef(catalog, p.Name())
			catalog[ref] = func() (registry.Provider, error) { return p, nil }
			refs = append(refs, ref)
		}
	}
	reg.SetResolver(catalog)

	return &Server{
		cfg:        cfg,
		registry:   reg,
		deps:       deps,
		refs:       refs,
		logCleanup: logCleanup,
	}, nil
}

// uniqueRef returns name, or name suffixed with "#2", "#3", ... when the
// catalog already holds an entry under name.
func uniqueRef(catalog registry.Catalog, name string) string {
	ref := name
	for n := 2; ; n++ {
		if _, taken := catalog[ref]; !taken {
			return ref
		}
		ref = fmt.Sprintf("%s#%d", name, n)
	}
}

func applyOverrides(cfg *config.Config, sc *serverConfig) {
	if sc.logLevel != "" {
		cfg.LogLevel = sc.logLevel
	}
	if sc.logFile != "" {
		cfg.LogFile = sc.logFile
	}
	if sc.transport != "" {
		cfg.Transport = sc.transport
	}
	if sc.port != 0 {
		cfg.Port = sc.port
	}
	if sc.refs != nil {
		cfg.Providers = sc.refs
	}
}

// Initialize loads every provider once and builds the MCP server from the
// resulting dispatch table. Providers that fail to load are reported and
// skipped; Initialize only fails when the MCP server cannot be built.
// Cancellation of ctx does not abort loading, since it happens only once.
func (s *Server) Initialize(ctx context.Context) (LoadReport, error) {
	s.initOnce.Do(func() {
		slog.Info("initializing MCP server",
			slog.String("name", s.cfg.ServerName),
			slog.String("version", s.cfg.ServerVersion),
			slog.String("environment", s.cfg.Environment),
			slog.Any("providers", s.refs),
		)

		s.report = s.registry.LoadAll(context.WithoutCancel(ctx), s.refs)
		if s.report.Total() == 0 {
			slog.Warn("no capabilities registered")
		}

		internal, err := mcp.NewServer(s.cfg, s.registry)
		if err != nil {
			s.initErr = fmt.Errorf("failed to create server: %w", err)
			return
		}
		s.internal = internal
	})
	return s.report, s.initErr
}

// Run serves the configured transport until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.Initialize(ctx); err != nil {
		return err
	}
	if s.cfg.Transport == config.TransportHTTP {
		slog.Info("MCP endpoint ready", slog.String("url", s.cfg.Endpoint()))
	}
	return s.internal.Run(ctx)
}

// Handler returns the HTTP handler of the server, for mounting in another
// HTTP server.
func (s *Server) Handler(ctx context.Context) (http.Handler, error) {
	if _, err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s.internal.Handler(), nil
}

// Invoke runs a capability in-process, without a transport. The server is
// initialized first if needed.
func (s *Server) Invoke(ctx context.Context, kind Kind, name string, params map[string]any) Result {
	if _, err := s.Initialize(ctx); err != nil {
		slog.Warn("invoking before a successful initialization", slog.String("error", err.Error()))
	}
	return s.registry.Invoke(ctx, kind, name, params)
}

// Capabilities returns the registered capabilities of kind, sorted by name.
func (s *Server) Capabilities(kind Kind) []Capability {
	return s.registry.List(kind)
}

// Config returns the effective configuration.
func (s *Server) Config() *Config {
	return s.cfg
}

// Close releases provider resources and the log file.
func (s *Server) Close() error {
	return errors.Join(s.deps.Close(), s.logCleanup())
}
