package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/usestring/mcp-server-template/pkg/mcpsrv"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	logLevel   string
	transport  string
	port       int
}

// serverOptions converts the flags to server options. quiet lowers the
// default log level so command output is not interleaved with startup logs.
func (o *rootOptions) serverOptions(quiet bool) []mcpsrv.Option {
	opts := []mcpsrv.Option{mcpsrv.WithConfigFile(o.configFile)}
	switch {
	case o.logLevel != "":
		opts = append(opts, mcpsrv.WithLogLevel(o.logLevel))
	case quiet:
		opts = append(opts, mcpsrv.WithLogLevel("warn"))
	}
	if o.transport != "" {
		opts = append(opts, mcpsrv.WithTransport(o.transport))
	}
	if o.port != 0 {
		opts = append(opts, mcpsrv.WithPort(o.port))
	}
	return opts
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	serve := newServeCmd(opts)
	root := &cobra.Command{
		Use:   "mcp-server-template",
		Short: "MCP server exposing tools, resources and prompts from pluggable providers",
		Long: `mcp-server-template serves a registry of tools, resources and prompts over
the Model Context Protocol. Providers are loaded once at startup; a provider
that fails to load is reported and skipped.

Without a subcommand the server is started, as with "serve".`,
		Version: version,
		// SilenceUsage is set to true to prevent printing usage message on errors
		// handled by us (e.g. failed invocations)
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.SetVersionTemplate(`{{printf "mcp-server-template version %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file (overrides MCP_CONFIG_FILE)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.StringVar(&opts.transport, "transport", "", "transport: http or stdio (overrides MCP_TRANSPORT)")
	flags.IntVar(&opts.port, "port", 0, "HTTP listen port (overrides MCP_PORT)")

	root.AddCommand(serve)
	root.AddCommand(newCapabilitiesCmd(opts))
	root.AddCommand(newInvokeCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load providers and serve MCP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := mcpsrv.NewServer(opts.serverOptions(false)...)
			if err != nil {
				return err
			}
			defer server.Close()

			if err := server.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newCapabilitiesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities [kind]",
		Short: "List the loaded tools, resources and prompts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := mcpsrv.Kinds
			if len(args) == 1 {
				kind, err := mcpsrv.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []mcpsrv.Kind{kind}
			}

			server, err := mcpsrv.NewServer(opts.serverOptions(true)...)
			if err != nil {
				return err
			}
			defer server.Close()

			report, err := server.Initialize(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tNAME\tPROVIDER\tDESCRIPTION")
			for _, kind := range kinds {
				for _, c := range server.Capabilities(kind) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Kind, c.Name, c.Provider, c.Description)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, f := range report.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "provider %s failed: %s\n", f.Ref, f.Message)
			}
			return nil
		},
	}
}

func newInvokeCmd(opts *rootOptions) *cobra.Command {
	var rawParams string
	cmd := &cobra.Command{
		Use:   "invoke <kind> <name>",
		Short: "Invoke a capability in-process and print its result as JSON",
		Example: `  mcp-server-template invoke tool add --params '{"a": 2, "b": 3}'
  mcp-server-template invoke resource template://readme
  mcp-server-template invoke prompt code-review --params '{"code": "package main"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := mcpsrv.ParseKind(args[0])
			if err != nil {
				return err
			}
			var params map[string]any
			if strings.TrimSpace(rawParams) != "" {
				if err := json.Unmarshal([]byte(rawParams), &params); err != nil {
					return fmt.Errorf("--params must be a JSON object: %w", err)
				}
			}

			server, err := mcpsrv.NewServer(opts.serverOptions(true)...)
			if err != nil {
				return err
			}
			defer server.Close()

			res := server.Invoke(cmd.Context(), kind, args[1], params)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("%s: %s", res.ErrorCode, res.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rawParams, "params", "", "invocation parameters as a JSON object")
	return cmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML, with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := mcpsrv.NewServer(opts.serverOptions(true)...)
			if err != nil {
				return err
			}
			defer server.Close()

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(server.Config().Redacted()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
