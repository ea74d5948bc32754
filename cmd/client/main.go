package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ProductManager/internal/cli/commands"
	"ProductManager/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg := config.NewConfig()
	if cfg.Version {
		printVersion(cfg)
		return
	}

	// Ctrl+C cancels requests in flight and ends a running watch
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Dispatch(ctx, cfg, flag.Args())
	stop()
	os.Exit(code)
}

func printVersion(cfg *config.Config) {
	fmt.Printf("ProductManager CLI\nVersion: %s\nBuild date: %s\nServer: %s\n", version, buildDate, cfg.ServerURL)
}
