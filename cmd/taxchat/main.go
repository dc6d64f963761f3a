package main

//  _                       _               _
// | |_   __ _ __  __  ___ | |__    __ _  | |_
// | __| / _' |\ \/ / / __|| '_ \  / _' | | __|
// | |_ | (_| | >  < | (__ | | | || (_| | | |_
//  \__| \__,_|/_/\_\ \___||_| |_| \__,_|  \__|
//  .  .  .  ask  your  tax  alerts

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"pkdindustries/taxalert/internal/chat"
	"pkdindustries/taxalert/internal/config"
	"pkdindustries/taxalert/internal/core"
	"pkdindustries/taxalert/internal/ui"
)

const version = "0.3"

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:    "taxchat",
		Usage:   "chat with your tax alerts",
		Version: version,
		Flags:   config.ClientFlags(os.Args),
		Action:  runChat,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runChat(ctx context.Context, c *cli.Command) error {
	cfg := config.NewClientConfiguration(c)

	// the terminal belongs to the UI, logs go to a file
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := core.InitLogger(logFile, cfg.Log.Verbose)
	logger.Info("starting", "version", version, "model", cfg.Model.Model, "transport", cfg.Client.Transport)

	state := chat.NewState(chat.NewConnector(cfg, logger), chat.WithLogger(logger))
	defer func() {
		if err := state.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	p := tea.NewProgram(ui.NewModel(state, cfg, version, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
