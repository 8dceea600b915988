package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"optimus-dashboard/pkg/model"
	"optimus-dashboard/pkg/store"
	"optimus-dashboard/pkg/utils"

	"github.com/rivo/tview"
)

// HighCurrentAmps is the joint current above which a reading is highlighted.
// It matches the server's default high_current rule.
const HighCurrentAmps = 3.0

// LowBatteryPct and OverheatC mirror the other default rule thresholds.
const (
	LowBatteryPct = 20.0
	OverheatC     = 60.0
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// SeverityColor maps an alert severity to a tview color name.
func SeverityColor(s model.Severity) string {
	switch s {
	case model.SeverityError:
		return "red"
	case model.SeverityWarning:
		return "yellow"
	case model.SeverityInfo:
		return "blue"
	default:
		return "white"
	}
}

// StreamStatus is what the header shows about the stream client itself.
type StreamStatus struct {
	State     string
	Attempts  int
	Exhausted bool
}

// StatusLine renders the one-line connection summary shown in the header.
func StatusLine(snap store.Snapshot, stream StreamStatus, now time.Time) string {
	conn := snap.Connection

	var b strings.Builder
	if conn.Connected {
		b.WriteString("[green]● CONNECTED[-]")
	} else {
		b.WriteString("[red]● DISCONNECTED[-]")
	}
	fmt.Fprintf(&b, "  stream: %s", stream.State)
	switch {
	case conn.Connected:
	case stream.Exhausted:
		b.WriteString(" [red](retries exhausted, press r)[-]")
	case stream.Attempts > 0:
		fmt.Fprintf(&b, " (retry %d)", stream.Attempts)
	}
	fmt.Fprintf(&b, "  fps: %.1f  frames: %s  last: %s",
		conn.FPS, utils.FormatNumber(conn.FrameCount), utils.FormatAge(conn.LastMessage, now))
	return b.String()
}

// TelemetryPanel renders the latest sample's scalar readings.
func TelemetryPanel(snap store.Snapshot) string {
	s, ok := snap.Latest()
	if !ok {
		return "[gray]waiting for telemetry...[-]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "robot:   %s\n", tview.Escape(s.RobotID))
	fmt.Fprintf(&b, "status:  %s\n", statusTag(s.Status))
	fmt.Fprintf(&b, "battery: %s\n", threshold(fmt.Sprintf("%.1f%%", s.BatteryPct), s.BatteryPct < LowBatteryPct))
	fmt.Fprintf(&b, "temp:    %s\n", threshold(fmt.Sprintf("%.1f°C", s.TempC), s.TempC > OverheatC))
	b.WriteString("\n")
	fmt.Fprintf(&b, "pos:  x=%7.3f  y=%7.3f  z=%7.3f\n", s.Pose.X, s.Pose.Y, s.Pose.Z)
	fmt.Fprintf(&b, "rot:  r=%7.3f  p=%7.3f  y=%7.3f", s.Pose.Roll, s.Pose.Pitch, s.Pose.Yaw)
	return b.String()
}

// JointsPanel renders one row per joint with a bar scaled to twice the
// high-current threshold.
func JointsPanel(j model.Joints) string {
	const width = 20

	var b strings.Builder
	for i, current := range j.Currents() {
		filled := int(math.Round(math.Min(current/(2*HighCurrentAmps), 1) * width))
		if filled < 0 {
			filled = 0
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
		value := fmt.Sprintf("%5.2fA", current)
		color := "green"
		if current > HighCurrentAmps {
			color = "red"
		}
		fmt.Fprintf(&b, "%-10s [%s]%s[-] %s\n", model.JointNames[i], color, bar, threshold(value, current > HighCurrentAmps))
	}
	fmt.Fprintf(&b, "max: %s", threshold(fmt.Sprintf("%.2fA", j.Max()), j.Max() > HighCurrentAmps))
	return b.String()
}

// HistoryPanel renders sparklines of battery and temperature over the
// history window.
func HistoryPanel(history []model.TelemetrySample, width int) string {
	if len(history) == 0 {
		return "[gray]no history[-]"
	}
	battery := make([]float64, len(history))
	temp := make([]float64, len(history))
	for i, s := range history {
		battery[i] = s.BatteryPct
		temp[i] = s.TempC
	}
	return fmt.Sprintf("battery %s\ntemp    %s\n[gray]%d samples[-]",
		Sparkline(battery, width), Sparkline(temp, width), len(history))
}

// Sparkline draws the last width values scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	top := len(sparkRunes) - 1
	out := make([]rune, len(values))
	for i, v := range values {
		// Halved so hi-lo cannot overflow to +Inf.
		ratio := (v/2 - lo/2) / (hi/2 - lo/2)
		idx := 0
		if hi > lo && !math.IsNaN(ratio) && !math.IsInf(ratio, 0) {
			idx = min(max(int(ratio*float64(top)), 0), top)
		}
		out[i] = sparkRunes[idx]
	}
	return string(out)
}

// AlertList renders the alert log newest first. Cleared entries are dimmed.
func AlertList(alerts []model.Alert, now time.Time) string {
	if len(alerts) == 0 {
		return "[green]no alerts[-]"
	}

	var b strings.Builder
	for i, a := range alerts {
		if i > 0 {
			b.WriteString("\n")
		}
		color := SeverityColor(a.Severity)
		if a.Cleared() {
			color = "gray"
		}
		msg := a.Message
		if msg == "" {
			msg = a.Name
		}
		fmt.Fprintf(&b, "[%s]%-8s[-] %-14s %s [gray](%.2f / %.2f, %s ago)[-]",
			color, strings.ToUpper(string(a.Severity)), tview.Escape(a.Name), tview.Escape(msg),
			a.Value, a.Threshold, utils.FormatAge(a.Time(), now))
	}
	return b.String()
}

func statusTag(status string) string {
	if status == model.StatusOK {
		return "[green]" + status + "[-]"
	}
	return "[red]" + tview.Escape(status) + "[-]"
}

func threshold(text string, breached bool) string {
	if breached {
		return "[red]" + text + "[-]"
	}
	return text
}
