package store

import "optimus-dashboard/pkg/model"

// Snapshot is an immutable view of the store at one Version. The slices are
// shared between snapshots and must be treated as read-only by subscribers.
type Snapshot struct {
	Version    uint64                  `json:"version"`
	Telemetry  *model.TelemetrySample  `json:"telemetry"`
	History    []model.TelemetrySample `json:"history"`
	Alerts     []model.Alert           `json:"alerts"`
	Connection model.ConnectionStatus  `json:"connection"`
}

// Latest returns the current sample, if any has arrived.
func (s Snapshot) Latest() (model.TelemetrySample, bool) {
	if s.Telemetry == nil {
		return model.TelemetrySample{}, false
	}
	return *s.Telemetry, true
}

// ActiveAlerts returns the alerts without a lifecycle marker, newest first.
func (s Snapshot) ActiveAlerts() []model.Alert {
	out := make([]model.Alert, 0, len(s.Alerts))
	for _, a := range s.Alerts {
		if !a.Cleared() {
			out = append(out, a)
		}
	}
	return out
}

// ClearedAlerts returns the alerts carrying the cleared marker, newest first.
func (s Snapshot) ClearedAlerts() []model.Alert {
	var out []model.Alert
	for _, a := range s.Alerts {
		if a.Cleared() {
			out = append(out, a)
		}
	}
	return out
}

// Alert looks up a logged alert by name.
func (s Snapshot) Alert(name string) (model.Alert, bool) {
	for _, a := range s.Alerts {
		if a.Name == name {
			return a, true
		}
	}
	return model.Alert{}, false
}
