package dashboard

import (
	"io"
	"log"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"optimus-dashboard/pkg/model"
	"optimus-dashboard/pkg/store"
	"optimus-dashboard/pkg/stream"
	"optimus-dashboard/pkg/testutil"

	"github.com/gdamore/tcell/v2"
)

func TestStatusLine(t *testing.T) {
	now := time.Unix(1700000000, 0)
	snap := store.Snapshot{Connection: model.ConnectionStatus{
		Connected:   true,
		FPS:         9.8,
		FrameCount:  12345,
		LastMessage: now.Add(-250 * time.Millisecond),
	}}

	line := StatusLine(snap, StreamStatus{State: "open"}, now)
	for _, want := range []string{"CONNECTED", "stream: open", "fps: 9.8", "frames: 12,345", "last: 250ms"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}

	snap.Connection.Connected = false
	line = StatusLine(snap, StreamStatus{State: "disconnected", Attempts: 3}, now.Add(2*time.Second))
	for _, want := range []string{"DISCONNECTED", "(retry 3)", "last: 2s"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}

	if line := StatusLine(store.Snapshot{}, StreamStatus{State: "connecting"}, now); !strings.Contains(line, "last: never") {
		t.Errorf("expected never for no messages, got %q", line)
	}
}

func TestStatusLine_RetriesExhausted(t *testing.T) {
	now := time.Unix(1700000000, 0)
	snap := store.Snapshot{}

	pending := StatusLine(snap, StreamStatus{State: "disconnected", Attempts: 5}, now)
	if !strings.Contains(pending, "(retry 5)") || strings.Contains(pending, "exhausted") {
		t.Errorf("expected a pending retry, got %q", pending)
	}

	exhausted := StatusLine(snap, StreamStatus{State: "disconnected", Attempts: 5, Exhausted: true}, now)
	if !strings.Contains(exhausted, "retries exhausted, press r") || strings.Contains(exhausted, "(retry 5)") {
		t.Errorf("expected exhaustion notice, got %q", exhausted)
	}
}

func TestTelemetryPanel(t *testing.T) {
	if got := TelemetryPanel(store.Snapshot{}); !strings.Contains(got, "waiting") {
		t.Errorf("expected placeholder, got %q", got)
	}

	s := testutil.Sample("r1", 1)
	s.BatteryPct = 15
	s.TempC = 40
	s.Status = model.StatusLowBattery
	got := TelemetryPanel(store.Snapshot{Telemetry: &s})

	if !strings.Contains(got, "[red]15.0%[-]") {
		t.Errorf("expected low battery highlighted, got %q", got)
	}
	if strings.Contains(got, "[red]40.0") {
		t.Errorf("expected normal temperature unhighlighted, got %q", got)
	}
	if !strings.Contains(got, "[red]LOW_BATTERY[-]") {
		t.Errorf("expected non-OK status in red, got %q", got)
	}
}

func TestJointsPanel_HighlightsHighCurrent(t *testing.T) {
	got := JointsPanel(model.Joints{ShoulderL: 1.0, ElbowL: 3.5, KneeL: 0, ShoulderR: 2.9})
	lines := strings.Split(got, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 4 joints and a max line, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "elbow_l") || !strings.Contains(lines[1], "[red] 3.50A[-]") {
		t.Errorf("expected elbow_l highlighted, got %q", lines[1])
	}
	if strings.Contains(lines[3], "[red]") {
		t.Errorf("expected shoulder_r below threshold, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "[red]3.50A[-]") {
		t.Errorf("expected max highlighted, got %q", lines[4])
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 7, 14}, 0); got != "▁▄█" {
		t.Errorf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}, 0); got != "▁▁▁" {
		t.Errorf("expected flat line, got %q", got)
	}
	if got := Sparkline([]float64{1, 2, 3, 4}, 2); got != "▁█" {
		t.Errorf("expected only the newest two values, got %q", got)
	}
	if got := Sparkline(nil, 10); got != "" {
		t.Errorf("expected empty sparkline, got %q", got)
	}
}

func TestSparkline_ExtremeRange(t *testing.T) {
	if got := Sparkline([]float64{-1.7e308, 0, 1.7e308}, 10); got != "▁▄█" {
		t.Errorf("unexpected sparkline for a range wider than MaxFloat64, got %q", got)
	}
	if got := Sparkline([]float64{-math.MaxFloat64, math.MaxFloat64}, 0); got != "▁█" {
		t.Errorf("unexpected sparkline at the float limits, got %q", got)
	}
	if got := Sparkline([]float64{1, math.NaN(), 2}, 0); len([]rune(got)) != 3 {
		t.Errorf("expected one rune per value, got %q", got)
	}

	low, high := testutil.Sample("r1", 1), testutil.Sample("r1", 2)
	low.BatteryPct, high.BatteryPct = -1.7e308, 1.7e308
	if got := HistoryPanel([]model.TelemetrySample{low, high}, 10); !strings.Contains(got, "2 samples") {
		t.Errorf("unexpected history panel %q", got)
	}
}

func TestAlertList(t *testing.T) {
	now := time.Unix(100, 0)
	if got := AlertList(nil, now); !strings.Contains(got, "no alerts") {
		t.Errorf("expected placeholder, got %q", got)
	}

	active := testutil.Alert("overheat", 61, 60, 95)
	active.Severity = model.SeverityError
	cleared := testutil.Alert("low_battery", 25, 20, 90)
	cleared.Action = model.ActionCleared

	lines := strings.Split(AlertList([]model.Alert{active, cleared}, now), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[red]ERROR") || !strings.Contains(lines[0], "5s ago") {
		t.Errorf("unexpected active line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[gray]") {
		t.Errorf("expected cleared alert dimmed, got %q", lines[1])
	}
}

func TestSeverityColor(t *testing.T) {
	testCases := map[model.Severity]string{
		model.SeverityError:   "red",
		model.SeverityWarning: "yellow",
		model.SeverityInfo:    "blue",
		"":                    "white",
	}
	for sev, want := range testCases {
		if got := SeverityColor(sev); got != want {
			t.Errorf("%q: expected %s, got %s", sev, want, got)
		}
	}
}

type fakeController struct {
	mu          sync.Mutex
	reconnects  int
	disconnects int
}

func (f *fakeController) Reconnect()          { f.mu.Lock(); f.reconnects++; f.mu.Unlock() }
func (f *fakeController) Disconnect()         { f.mu.Lock(); f.disconnects++; f.mu.Unlock() }
func (f *fakeController) State() stream.State { return stream.StateDisconnected }
func (f *fakeController) Attempts() int       { return 0 }
func (f *fakeController) Exhausted() bool     { return false }

func TestHandleKey(t *testing.T) {
	st := store.New(testutil.NewMockClock(time.Unix(0, 0)))
	st.UpdateTelemetry(testutil.Sample("r1", 1))
	ctrl := &fakeController{}
	d := New(st, ctrl, log.New(io.Discard, "", 0))

	key := func(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

	if ev := d.handleKey(key('r')); ev != nil {
		t.Error("expected r to be consumed")
	}
	d.handleKey(key('d'))
	d.handleKey(key('c'))
	if ev := d.handleKey(key('x')); ev == nil {
		t.Error("expected unbound keys to pass through")
	}

	if ctrl.reconnects != 1 || ctrl.disconnects != 1 {
		t.Errorf("expected one reconnect and one disconnect, got %d %d", ctrl.reconnects, ctrl.disconnects)
	}
	if n := len(st.Snapshot().History); n != 0 {
		t.Errorf("expected history cleared, got %d samples", n)
	}
}
