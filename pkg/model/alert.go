package model

import "time"

// Severity of an alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ActionCleared marks an alert event as the end of the named condition.
const ActionCleared = "cleared"

// Alert is one named condition instance. Name is the dedup key among active
// alerts.
type Alert struct {
	Name      string   `json:"name"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
	Timestamp float64  `json:"timestamp"`
	Action    string   `json:"action,omitempty"`
}

// Cleared reports whether the alert carries the cleared lifecycle marker.
func (a Alert) Cleared() bool { return a.Action == ActionCleared }

// Time converts the float seconds timestamp.
func (a Alert) Time() time.Time {
	sec := int64(a.Timestamp)
	nsec := int64((a.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// AlertRule is the server-side rule configuration exposed by the query API.
type AlertRule struct {
	Name      string   `json:"name" yaml:"name"`
	Condition string   `json:"condition" yaml:"condition"`
	Threshold float64  `json:"threshold" yaml:"threshold"`
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Severity  Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// DefaultAlertRules mirrors the rule set the telemetry server installs on
// startup.
func DefaultAlertRules() []AlertRule {
	return []AlertRule{
		{Name: "low_battery", Condition: "battery_pct", Threshold: 20, Enabled: true, Severity: SeverityWarning},
		{Name: "overheat", Condition: "temp_c", Threshold: 60, Enabled: true, Severity: SeverityWarning},
		{Name: "high_current", Condition: "joint_current", Threshold: 3, Enabled: true, Severity: SeverityWarning},
	}
}
