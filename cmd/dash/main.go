package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"optimus-dashboard/pkg/config"
	"optimus-dashboard/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 2
	}
	if cfg == nil {
		return 0
	}
	if cfg.ShowVersion {
		fmt.Fprintln(stdout, version.Info().String())
		return 0
	}

	command, rest := "run", []string(nil)
	if len(cfg.Args) > 0 {
		command, rest = cfg.Args[0], cfg.Args[1:]
	}

	logger := log.New(stderr, "[dash] ", log.LstdFlags)

	switch command {
	case "run":
		err = runDashboard(ctx, cfg, logger)
	case "health":
		err = cmdHealth(ctx, cfg, stdout)
	case "metrics":
		err = cmdMetrics(ctx, cfg, stdout)
	case "rules":
		err = cmdRules(ctx, cfg, rest, stdout)
	case "history":
		err = cmdHistory(ctx, cfg, rest, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		config.PrintUsage(stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
