package main

import (
	"context"
	"log"
	"strings"
	"time"

	"optimus-dashboard/pkg/config"
	"optimus-dashboard/pkg/store"
	"optimus-dashboard/pkg/streamstats"
	"optimus-dashboard/pkg/utils"
)

// CLI is the quiet-mode runner: no terminal view, periodic status lines only.
type CLI struct {
	stats  streamstats.Reader
	store  *store.Store
	config *config.Config
	logger *log.Logger

	lastStats  streamstats.Snapshot
	lastAlerts int
	printed    bool
}

func NewCLI(stats streamstats.Reader, st *store.Store, cfg *config.Config, logger *log.Logger) *CLI {
	return &CLI{
		stats:  stats,
		store:  st,
		config: cfg,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled.
func (c *CLI) Run(ctx context.Context) error {
	c.logger.Printf("starting dashboard in quiet mode")
	c.logger.Printf("stream: %s", c.config.StreamURL)
	if c.config.Status.Addr != "" {
		c.logger.Printf("status API: %s", c.config.Status.Addr)
	}

	ticker := time.NewTicker(c.config.Status.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Printf("shutting down...")
			return nil
		case <-ticker.C:
			c.printStatus()
		}
	}
}

func (c *CLI) printStatus() {
	stats := c.stats.Snapshot()
	snap := c.store.Snapshot()
	active := len(snap.ActiveAlerts())

	if !c.shouldPrintStatus(stats, active) {
		return
	}

	c.logger.Printf("status - stream: %s, frames=%s, rate=%.1f/s, fps=%.1f, last=%s",
		stats.State,
		utils.FormatNumber(stats.FramesReceived),
		stats.FramesPerSecond,
		snap.Connection.FPS,
		utils.FormatAge(snap.Connection.LastMessage, time.Now()))

	if len(stats.FramesByKind) > 0 {
		kinds := make([]string, 0, len(stats.FramesByKind))
		for _, kc := range utils.SortKindsByCount(stats.FramesByKind) {
			kinds = append(kinds, kc.Kind+"="+utils.FormatNumber(kc.Count))
		}
		c.logger.Printf("frames by kind: %s", strings.Join(kinds, ", "))
	}

	if stats.DecodeFailures > 0 || stats.SendsDropped > 0 {
		c.logger.Printf("failures - decode=%d, ignored=%d, sends dropped=%d",
			stats.DecodeFailures, stats.MessagesIgnored, stats.SendsDropped)
	}

	if stats.RetriesExhausted > c.lastStats.RetriesExhausted {
		c.logger.Printf("ERROR: reconnection attempts exhausted; use POST /api/reconnect to retry")
	}

	if active > 0 {
		names := make([]string, 0, active)
		for _, a := range snap.ActiveAlerts() {
			names = append(names, a.Name)
		}
		c.logger.Printf("active alerts (%d): %s", active, strings.Join(names, ", "))
	}

	c.lastStats = stats
	c.lastAlerts = active
	c.printed = true
}

func (c *CLI) shouldPrintStatus(stats streamstats.Snapshot, active int) bool {
	if !c.printed {
		return true
	}
	if stats.FramesReceived != c.lastStats.FramesReceived {
		return true
	}
	if stats.DecodeFailures > c.lastStats.DecodeFailures ||
		stats.RetriesExhausted > c.lastStats.RetriesExhausted {
		return true
	}
	if stats.State != c.lastStats.State || active != c.lastAlerts {
		return true
	}
	return false
}
