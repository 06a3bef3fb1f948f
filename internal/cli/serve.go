// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Proxy server command handler for the scribe CLI.
//
// Handles the "scribe serve" command which runs the local backend proxy
// until SIGINT or SIGTERM.
//
// Command: serve
// Aliases: proxy
//
// Examples:
//   scribe serve               Listen on the configured port
//   scribe serve --port 8080   Override the listen port
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/proxy"
)

// shutdownGrace is how long in-flight requests get to finish on shutdown.
const shutdownGrace = 10 * time.Second

// HandleServeCommand handles the "serve" command: runs the proxy server
// and blocks until a termination signal arrives.
func HandleServeCommand(args Args) error {
	cfg := config.Global()

	port := cfg.Proxy.Port
	if args.Port > 0 {
		port = args.Port
	}

	client := backend.NewClient(cfg.Backend.URL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second)

	srv := proxy.NewServer(port, client).
		WithRateLimit(cfg.Proxy.RateLimitRPS, cfg.Proxy.RateLimitBurst)

	if !args.Quiet {
		fmt.Printf("scribe proxy listening on 127.0.0.1:%d (backend: %s)\n",
			srv.Port(), client.BaseURL())
		fmt.Println("Press Ctrl+C to stop.")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("proxy server failed: %w", err)
		}
		return nil
	case sig := <-sigCh:
		if !args.Quiet {
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("proxy shutdown failed: %w", err)
	}
	return <-errCh
}
