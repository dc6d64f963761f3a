// Package server exposes the tax alert store as MCP tools.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pkdindustries/taxalert/internal/store"
)

const (
	Name = "taxalertd"

	instructions = "Tools for reading and maintaining the tax_alerts table. " +
		"Call the schema_info prompt for the column layout."
)

type Server struct {
	store  *store.Store
	logger *slog.Logger
	mcp    *mcp.Server
}

// New builds the MCP server with the query, insert, update and delete tools
// and the schema_info prompt registered.
func New(st *store.Store, logger *slog.Logger, version string) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		mcp: mcp.NewServer(
			&mcp.Implementation{Name: Name, Version: version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.mcp.AddReceivingMiddleware(loggingMiddleware(logger))
	s.registerTools()
	s.registerPrompts()
	return s
}

// MCP returns the underlying protocol server
func (s *Server) MCP() *mcp.Server { return s.mcp }

// RunStdio serves a single session over stdin/stdout until ctx is done or the peer disconnects
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("serving on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func loggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			attrs := []any{"method", method}
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil {
				attrs = append(attrs, "tool", call.Params.Name)
			}

			res, err := next(ctx, method, req)

			attrs = append(attrs, "duration", time.Since(start))
			if err != nil {
				logger.Warn("mcp request failed", append(attrs, "error", err)...)
			} else {
				logger.Debug("mcp request", attrs...)
			}
			return res, err
		}
	}
}
