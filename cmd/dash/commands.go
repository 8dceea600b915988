package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"optimus-dashboard/pkg/config"
	"optimus-dashboard/pkg/model"
	"optimus-dashboard/pkg/query"
	"optimus-dashboard/pkg/rulesfile"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func queryClient(cfg *config.Config) *query.Client {
	return query.New(cfg.APIURL, cfg.Timeouts.HTTP())
}

func cmdHealth(ctx context.Context, cfg *config.Config, w io.Writer) error {
	health, err := queryClient(cfg).Health(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return printJSON(w, health)
}

func cmdMetrics(ctx context.Context, cfg *config.Config, w io.Writer) error {
	text, err := queryClient(cfg).Metrics(ctx)
	if err != nil {
		return fmt.Errorf("fetch metrics: %w", err)
	}
	_, err = io.WriteString(w, text)
	return err
}

func cmdRules(ctx context.Context, cfg *config.Config, args []string, w io.Writer) error {
	if len(args) == 0 {
		rules, err := queryClient(cfg).AlertRules(ctx)
		if err != nil {
			return fmt.Errorf("fetch alert rules: %w", err)
		}
		return printRules(w, rules)
	}

	if len(args) != 2 {
		return errors.New("usage: dash rules [push|init] <file>")
	}
	switch sub, path := args[0], args[1]; sub {
	case "push":
		rules, err := rulesfile.Load(path)
		if err != nil {
			return err
		}
		resp, err := queryClient(cfg).UpdateAlertRules(ctx, rules)
		if err != nil {
			return fmt.Errorf("push alert rules: %w", err)
		}
		fmt.Fprintf(w, "%s: %d rules installed\n", resp.Status, resp.RulesCount)
		return nil
	case "init":
		if err := rulesfile.Save(path, model.DefaultAlertRules()); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote default alert rules to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown rules command %q", sub)
	}
}

func cmdHistory(ctx context.Context, cfg *config.Config, args []string, w io.Writer) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	seconds := fs.Int("seconds", query.DefaultHistorySeconds, "Size of the history window in seconds")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if *seconds <= 0 {
		return fmt.Errorf("history: --seconds must be positive, got %d", *seconds)
	}

	hist, err := queryClient(cfg).History(ctx, *seconds)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	return printHistory(w, hist)
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func printRules(w io.Writer, rules []model.AlertRule) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCONDITION\tTHRESHOLD\tSEVERITY\tENABLED")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%t\n", r.Name, r.Condition, r.Threshold, r.Severity, r.Enabled)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, hist query.HistoryResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tROBOT\tBATTERY\tTEMP\tMAX CURRENT\tSTATUS")
	for _, s := range hist.Data {
		ts := time.Unix(0, int64(s.TS*float64(time.Second))).UTC().Format("15:04:05.000")
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%.1f\t%.2f\t%s\n",
			ts, s.RobotID, s.BatteryPct, s.TempC, s.Joints.Max(), s.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d samples\n", hist.Count)
	return err
}
