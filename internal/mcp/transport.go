package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/registry"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Run serves the configured transport until ctx is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportStdio:
		slog.Info("serving MCP over stdio")
		return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	case config.TransportHTTP:
		ln, err := net.Listen("tcp", s.cfg.Addr())
		if err != nil {
			return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
		}
		return s.Serve(ctx, ln)
	}
	return fmt.Errorf("unsupported transport %q", s.cfg.Transport)
}

// Handler returns the HTTP handler: the streamable MCP endpoint at the
// configured path and a JSON health endpoint at /healthz. Request bodies are
// limited to MAX_REQUEST_SIZE.
func (s *Server) Handler() http.Handler {
	streamable := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, http.MaxBytesHandler(streamable, s.cfg.MaxRequestSize))
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// Serve serves HTTP on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("serving MCP over HTTP",
			slog.String("addr", ln.Addr().String()),
			slog.String("path", s.cfg.Path),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

type healthResponse struct {
	Status       string         `json:"status"`
	Server       string         `json:"server"`
	Version      string         `json:"version"`
	Initialized  bool           `json:"initialized"`
	Capabilities map[string]int `json:"capabilities"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:       "ok",
		Server:       s.cfg.ServerName,
		Version:      s.cfg.ServerVersion,
		Initialized:  s.registry.Serving(),
		Capabilities: make(map[string]int, len(registry.Kinds)),
	}
	for _, k := range registry.Kinds {
		resp.Capabilities[string(k)+"s"] = len(s.registry.List(k))
	}
	status := http.StatusOK
	if !resp.Initialized {
		resp.Status = "starting"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Debug("writing health response", slog.String("error", err.Error()))
	}
}
