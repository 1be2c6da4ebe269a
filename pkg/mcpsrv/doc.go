// Package mcpsrv provides an extensible MCP server built on a capability
// registry.
//
// Tools, resources and prompts are contributed by providers. During
// Initialize every configured provider is loaded once; a provider that fails
// is reported and skipped. Every invocation, over MCP or in-process, returns
// a Result envelope.
//
// # Basic Usage
//
// Create a server configured from the environment and run it:
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add capabilities through a provider:
//
//	greet := mcpsrv.Tool("greet", "Greet someone",
//	    func(ctx context.Context, args mcpsrv.Args) (mcpsrv.Reply, error) {
//	        return mcpsrv.OK("hello "+args.String("name"), "greeted"), nil
//	    },
//	    mcpsrv.StringParam("name", "Who to greet").Require(),
//	)
//
//	server, err := mcpsrv.NewServer(mcpsrv.WithCapabilities(greet))
//
// # Library Mode
//
// Invoke capabilities without a transport:
//
//	res := server.Invoke(ctx, mcpsrv.KindTool, "greet", map[string]any{"name": "Ada"})
//	if !res.Success {
//	    log.Printf("%s: %s", res.ErrorCode, res.Error)
//	}
//
// # Configuration
//
// Settings come from environment variables (MCP_TRANSPORT, MCP_PORT,
// MCP_PROVIDERS, LOG_LEVEL, ...), an optional YAML file, and options:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithConfigFile("config.yaml"),
//	    mcpsrv.WithTransport("stdio"),
//	    mcpsrv.WithLogLevel("debug"),
//	)
package mcpsrv
