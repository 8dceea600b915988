package main

import (
	"context"
	"io"
	"log"

	"optimus-dashboard/pkg/clock"
	"optimus-dashboard/pkg/config"
	"optimus-dashboard/pkg/dashboard"
	"optimus-dashboard/pkg/statusapi"
	"optimus-dashboard/pkg/store"
	"optimus-dashboard/pkg/stream"
	"optimus-dashboard/pkg/streamstats"
	"optimus-dashboard/pkg/transport"

	"github.com/prometheus/client_golang/prometheus"
)

// runDashboard wires the live pipeline and blocks until ctx is cancelled or
// the user quits the terminal view.
func runDashboard(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !cfg.Quiet {
		// The terminal belongs to the view.
		logger.SetOutput(io.Discard)
	}

	st := store.New(clock.RealClock{})
	reg := prometheus.NewRegistry()

	stats := streamstats.NewAggregator(clock.RealClock{}, streamstats.DefaultConfig())
	stats.Start(ctx)
	defer stats.Stop()

	client := stream.New(st, transport.WebSocketDialer{ReadLimit: transport.DefaultReadLimit}, stream.Options{
		BaseDelay:    cfg.Reconnect.BaseDelay(),
		MaxAttempts:  cfg.Reconnect.MaxAttempts,
		DialTimeout:  cfg.Timeouts.Dial(),
		WriteTimeout: cfg.Timeouts.Write(),
		Debug:        cfg.Debug,
	}, logger, streamstats.MultiPublisher{stats, streamstats.NewPromPublisher(reg)})
	client.Start(ctx)
	defer client.Close()

	if cfg.Status.Addr != "" {
		srv := statusapi.New(st, client, stats, reg, logger)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Status.Addr); err != nil {
				logger.Printf("ERROR: status API: %v", err)
			}
		}()
	}

	client.Connect(cfg.StreamURL)

	if cfg.Quiet {
		return NewCLI(stats, st, cfg, logger).Run(ctx)
	}
	return dashboard.New(st, client, logger).Run(ctx)
}
