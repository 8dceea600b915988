package main

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"optimus-dashboard/pkg/config"
	"optimus-dashboard/pkg/model"
	"optimus-dashboard/pkg/store"
	"optimus-dashboard/pkg/streamstats"
	"optimus-dashboard/pkg/testutil"

	"github.com/gorilla/mux"
)

type fakeAPI struct {
	mu      sync.Mutex
	rules   []model.AlertRule
	seconds string
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	api := &fakeAPI{rules: model.DefaultAlertRules()}

	r := mux.NewRouter().PathPrefix("/api").Subrouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","timestamp":1700000000}`))
	}).Methods("GET")
	r.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("telemetry_messages_total 7\n"))
	}).Methods("GET")
	r.HandleFunc("/config/alert-rules", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"rules": api.rules})
	}).Methods("GET")
	r.HandleFunc("/config/alert-rules", func(w http.ResponseWriter, r *http.Request) {
		var in []model.AlertRule
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad rules", http.StatusBadRequest)
			return
		}
		api.mu.Lock()
		api.rules = in
		api.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "rules_count": len(in)})
	}).Methods("POST")
	r.HandleFunc("/telemetry/history", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.seconds = r.URL.Query().Get("seconds")
		api.mu.Unlock()
		samples := []model.TelemetrySample{testutil.Sample("r1", 1), testutil.Sample("r1", 2)}
		json.NewEncoder(w).Encode(map[string]any{"data": samples, "count": len(samples)})
	}).Methods("GET")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api, srv.URL + "/api"
}

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(config.KeyConfigFile, "")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runArgs(t, "--version")
	if code != 0 || !strings.Contains(out, "dash version") {
		t.Errorf("expected version output, got %d %q", code, out)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	code, _, errOut := runArgs(t, "--stream-url", "http://localhost:8000/stream")
	if code != 2 || !strings.Contains(errOut, "Error loading configuration") {
		t.Errorf("expected configuration error, got %d %q", code, errOut)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runArgs(t, "frobnicate")
	if code != 2 || !strings.Contains(errOut, `unknown command "frobnicate"`) {
		t.Errorf("expected unknown command, got %d %q", code, errOut)
	}
}

func TestRun_HealthAndMetrics(t *testing.T) {
	_, base := newFakeAPI(t)

	code, out, errOut := runArgs(t, "--api-url", base, "health")
	if code != 0 || !strings.Contains(out, `"status": "ok"`) {
		t.Errorf("unexpected health output %d %q %q", code, out, errOut)
	}

	code, out, _ = runArgs(t, "--api-url", base, "metrics")
	if code != 0 || out != "telemetry_messages_total 7\n" {
		t.Errorf("unexpected metrics output %d %q", code, out)
	}
}

func TestRun_HealthUnreachable(t *testing.T) {
	code, _, errOut := runArgs(t, "--api-url", "http://127.0.0.1:1/api", "--timeout-http-seconds", "1", "health")
	if code != 1 || !strings.Contains(errOut, "health check") {
		t.Errorf("expected health check failure, got %d %q", code, errOut)
	}
}

func TestRun_RulesInitAndPush(t *testing.T) {
	api, base := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "rules.yaml")

	code, out, errOut := runArgs(t, "rules", "init", path)
	if code != 0 || !strings.Contains(out, path) {
		t.Fatalf("rules init failed: %d %q %q", code, out, errOut)
	}

	api.mu.Lock()
	api.rules = nil
	api.mu.Unlock()

	code, out, errOut = runArgs(t, "--api-url", base, "rules", "push", path)
	if code != 0 || !strings.Contains(out, "success: 3 rules installed") {
		t.Fatalf("rules push failed: %d %q %q", code, out, errOut)
	}

	code, out, _ = runArgs(t, "--api-url", base, "rules")
	if code != 0 {
		t.Fatalf("rules list failed: %d", code)
	}
	for _, name := range []string{"NAME", "low_battery", "overheat", "high_current"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %q in rules listing %q", name, out)
		}
	}

	if code, _, _ := runArgs(t, "rules", "push"); code != 1 {
		t.Errorf("expected usage error for missing file, got %d", code)
	}
}

func TestRun_History(t *testing.T) {
	api, base := newFakeAPI(t)

	code, out, errOut := runArgs(t, "--api-url", base, "history", "--seconds", "60")
	if code != 0 {
		t.Fatalf("history failed: %d %q", code, errOut)
	}
	if !strings.Contains(out, "2 samples") || !strings.Contains(out, "r1") {
		t.Errorf("unexpected history output %q", out)
	}
	api.mu.Lock()
	seconds := api.seconds
	api.mu.Unlock()
	if seconds != "60" {
		t.Errorf("expected seconds=60, got %q", seconds)
	}

	if code, _, _ := runArgs(t, "--api-url", base, "history", "--seconds", "0"); code != 1 {
		t.Errorf("expected error for zero window, got %d", code)
	}
}

func TestRunDashboard_QuietStopsOnCancel(t *testing.T) {
	cfg := &config.Config{
		StreamURL: "ws://127.0.0.1:1/stream/telemetry",
		Reconnect: config.ReconnectConfig{BaseDelayMs: 1000, MaxAttempts: 5},
		Timeouts:  config.TimeoutConfig{DialSeconds: 1, WriteSeconds: 1, HTTPSeconds: 1},
		Status:    config.StatusConfig{IntervalSeconds: 1},
		Quiet:     true,
	}
	var logs bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- runDashboard(ctx, cfg, log.New(&logs, "", 0)) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runDashboard did not return after cancellation")
	}
	if !strings.Contains(logs.String(), "quiet mode") {
		t.Errorf("expected quiet mode banner, got %q", logs.String())
	}
}

type staticStats struct{ snap streamstats.Snapshot }

func (s *staticStats) Snapshot() streamstats.Snapshot { return s.snap }

func TestCLI_PrintStatus(t *testing.T) {
	st := store.New(testutil.NewMockClock(time.Unix(1700000000, 0)))
	stats := &staticStats{snap: streamstats.Snapshot{
		State:          "open",
		FramesReceived: 1500,
		FramesByKind:   map[string]uint64{"telemetry": 1499, "initial_data": 1},
	}}
	var logs bytes.Buffer
	cli := NewCLI(stats, st, &config.Config{}, log.New(&logs, "", 0))

	cli.printStatus()
	out := logs.String()
	for _, want := range []string{"stream: open", "frames=1,500", "telemetry=1,499, initial_data=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}

	logs.Reset()
	cli.printStatus()
	if logs.Len() != 0 {
		t.Errorf("expected no output without changes, got %q", logs.String())
	}

	st.AddAlert(testutil.Alert("overheat", 61, 60, 1))
	stats.snap.RetriesExhausted = 1
	cli.printStatus()
	out = logs.String()
	if !strings.Contains(out, "active alerts (1): overheat") || !strings.Contains(out, "exhausted") {
		t.Errorf("expected alert and exhaustion lines, got %q", out)
	}
}

