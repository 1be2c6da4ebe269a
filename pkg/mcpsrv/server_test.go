package mcpsrv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		ServerName:        "embedded",
		ServerVersion:     "0.0.1",
		Transport:         "http",
		Port:              8000,
		Path:              "/mcp",
		TimeoutSeconds:    5,
		MaxRequestSize:    1 << 20,
		EnableHealthCheck: true,
		Environment:       "test",
		LogLevel:          "info",
		LogFormat:         "text",
		Providers:         []string{"tools.math", "tools.health"},
	}
}

func newServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithConfig(testConfig()), WithoutLogSetup()}, opts...)
	s, err := NewServer(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func greetTool() Capability {
	return Tool("greet", "Greet someone", func(_ context.Context, args Args) (Reply, error) {
		return OK("hello "+args.String("name"), "greeted"), nil
	}, StringParam("name", "Who to greet").Require())
}

func TestInvoke_LibraryMode(t *testing.T) {
	s := newServer(t)

	res := s.Invoke(context.Background(), KindTool, "add", map[string]any{"a": 2, "b": 3})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 5.0, res.Data.(map[string]any)["result"])

	res = s.Invoke(context.Background(), KindTool, "echo", nil)
	assert.False(t, res.Success)
	assert.Equal(t, "NOT_FOUND", res.ErrorCode)
}

func TestInitialize_ReportsAndRunsOnce(t *testing.T) {
	s := newServer(t, WithProviderRefs("tools.math", "tools.missing"))

	report, err := s.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Counts[KindTool])
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "tools.missing", report.Failed[0].Ref)

	again, err := s.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report, again)
}

func TestWithCapabilities_OverridesBuiltins(t *testing.T) {
	divide := Tool("divide", "Always fails", func(context.Context, Args) (Reply, error) {
		return Reply{}, errors.New("boom")
	})
	s := newServer(t, WithCapabilities(greetTool(), divide))

	res := s.Invoke(context.Background(), KindTool, "greet", map[string]any{"name": "Ada"})
	require.True(t, res.Success)
	assert.Equal(t, "hello Ada", res.Data)

	res = s.Invoke(context.Background(), KindTool, "divide", map[string]any{"a": 1, "b": 1})
	assert.Equal(t, "INTERNAL_ERROR", res.ErrorCode)

	c, ok := s.registry.Lookup(KindTool, "divide")
	require.True(t, ok)
	assert.Equal(t, "custom", c.Provider)
}

func TestWithoutBuiltinProviders(t *testing.T) {
	s := newServer(t, WithoutBuiltinProviders(), WithCapabilities(greetTool()))
	_, err := s.Initialize(context.Background())
	require.NoError(t, err)

	tools := s.Capabilities(KindTool)
	require.Len(t, tools, 1)
	assert.Equal(t, "greet", tools[0].Name)
}

func TestHealthCheckDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableHealthCheck = false
	s, err := NewServer(WithConfig(cfg), WithoutLogSetup())
	require.NoError(t, err)
	defer s.Close()

	res := s.Invoke(context.Background(), KindTool, "health_check", nil)
	assert.Equal(t, "NOT_FOUND", res.ErrorCode)
}

func TestNewServer_InvalidConfigInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	cfg.Transport = "carrier-pigeon"

	_, err := NewServer(WithConfig(cfg), WithoutLogSetup())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MCP_TRANSPORT")

	cfg.Environment = "development"
	s, err := NewServer(WithConfig(cfg), WithoutLogSetup())
	require.NoError(t, err)
	_ = s.Close()
}

func TestOverrides(t *testing.T) {
	s := newServer(t, WithTransport("stdio"), WithPort(9090), WithLogLevel("debug"))
	assert.Equal(t, "stdio", s.Config().Transport)
	assert.Equal(t, 9090, s.Config().Port)
	assert.Equal(t, "debug", s.Config().LogLevel)
}

func TestHandler_ServesHealthz(t *testing.T) {
	s := newServer(t)
	h, err := s.Handler(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"initialized":true`)
}

func TestWithCapabilities_RepeatedOptionsAllLoad(t *testing.T) {
	farewell := Tool("farewell", "Say goodbye", func(_ context.Context, args Args) (Reply, error) {
		return OK("bye "+args.String("name"), "said goodbye"), nil
	}, StringParam("name", "Who to see off").Require())
	s := newServer(t, WithCapabilities(greetTool()), WithCapabilities(farewell))

	report, err := s.Initialize(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Failed)
	assert.Zero(t, report.Overwritten)
	assert.Equal(t, []string{"tools.math", "tools.health", "custom", "custom#2"}, s.refs)

	res := s.Invoke(context.Background(), KindTool, "greet", map[string]any{"name": "Ada"})
	require.True(t, res.Success, res.Error)
	res = s.Invoke(context.Background(), KindTool, "farewell", map[string]any{"name": "Ada"})
	require.True(t, res.Success, res.Error)

	c, ok := s.registry.Lookup(KindTool, "farewell")
	require.True(t, ok)
	assert.Equal(t, "custom#2", c.Provider)
}

func TestWithProvider_NameClashWithBuiltinLoadsBoth(t *testing.T) {
	s := newServer(t, WithProvider(NewProvider("tools.math", func(r *Registrar) error {
		return r.Add(greetTool())
	})))
	_, err := s.Initialize(context.Background())
	require.NoError(t, err)

	_, ok := s.registry.Lookup(KindTool, "add")
	assert.True(t, ok)
	_, ok = s.registry.Lookup(KindTool, "greet")
	assert.True(t, ok)
}

func TestInitialize_CanceledFirstCallerStillLoads(t *testing.T) {
	s := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := s.Initialize(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Failed)
	assert.Len(t, report.Loaded, 2)

	res := s.Invoke(context.Background(), KindTool, "add", map[string]any{"a": 1, "b": 2})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 3.0, res.Data.(map[string]any)["result"])
}
