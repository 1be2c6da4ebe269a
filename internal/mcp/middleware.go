package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoggingMiddleware returns middleware that logs all incoming method calls.
func LoggingMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()

			result, err := next(ctx, method, req)

			attrs := []slog.Attr{
				slog.String("method", method),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if target := requestTarget(req); target != "" {
				attrs = append(attrs, slog.String("target", target))
			}
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil && res.IsError {
				attrs = append(attrs, slog.Bool("is_error", true))
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				slog.LogAttrs(ctx, slog.LevelError, "method call failed", attrs...)
			} else {
				slog.LogAttrs(ctx, slog.LevelInfo, "method call completed", attrs...)
			}

			return result, err
		}
	}
}

// requestTarget names the tool, resource or prompt a request addresses.
func requestTarget(req sdkmcp.Request) string {
	switch r := req.(type) {
	case *sdkmcp.CallToolRequest:
		if r.Params != nil {
			return r.Params.Name
		}
	case *sdkmcp.ReadResourceRequest:
		if r.Params != nil {
			return r.Params.URI
		}
	case *sdkmcp.GetPromptRequest:
		if r.Params != nil {
			return r.Params.Name
		}
	}
	return ""
}
