package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"pkdindustries/taxalert/internal/config"
	"pkdindustries/taxalert/internal/core"
	"pkdindustries/taxalert/internal/server"
	"pkdindustries/taxalert/internal/store"
)

const version = "0.3"

func main() {
	// stdout carries the protocol in stdio mode, so everything human goes to stderr
	fmt.Fprintf(os.Stderr, "%s\n", core.GetBanner(server.Name, version))

	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:    server.Name,
		Usage:   "MCP tool server for the tax_alerts table",
		Version: version,
		Flags:   config.ServerFlags(os.Args),
		Action:  runServer,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, c *cli.Command) error {
	cfg := config.NewServerConfiguration(c)
	logger := core.InitLogger(os.Stderr, cfg.Log.Verbose)
	if cfg.Log.Verbose && cfg.Server.Transport != "stdio" {
		cfg.PrintConfig()
	}

	st, err := store.New(cfg.Store.Driver, cfg.Store.Path, store.WithLogger(logger))
	if err != nil {
		return err
	}

	if cfg.Store.Init {
		if err := st.Init(ctx); err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		logger.Info("table ready", "table", store.Table, "db", cfg.Store.Path)
	}

	exists, err := st.Check(ctx)
	if err != nil {
		logger.Error("database unreachable", "driver", st.Driver(), "db", st.Path(), "error", err)
		os.Exit(1)
	}
	if !exists {
		logger.Warn("table missing, tool calls will report query errors until it exists", "table", store.Table, "db", st.Path())
	}

	srv := server.New(st, logger, version)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Server.Transport {
	case "stdio":
		logger.Info("serving", "transport", "stdio", "db", st.Path())
		return srv.RunStdio(ctx)
	default:
		logger.Info("serving", "transport", "sse", "listen", cfg.Server.Listen, "db", st.Path())
		return srv.ListenAndServe(ctx, cfg.Server.Listen)
	}
}
