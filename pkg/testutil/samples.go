package testutil

import (
	"fmt"

	"optimus-dashboard/pkg/model"
)

// Sample builds a plausible telemetry sample with the given timestamp.
func Sample(robotID string, ts float64) model.TelemetrySample {
	return model.TelemetrySample{
		RobotID:    robotID,
		TS:         ts,
		Pose:       model.Pose{X: 0.2, Z: 0.95, Pitch: 0.05, Yaw: 1.57},
		BatteryPct: 82.4,
		TempC:      41.2,
		Joints:     model.Joints{ShoulderL: 2.1, ElbowL: 1.4, KneeL: 1.9, ShoulderR: 2.0},
		Status:     model.StatusOK,
	}
}

// Alert builds an active warning alert.
func Alert(name string, value, threshold, ts float64) model.Alert {
	return model.Alert{
		Name:      name,
		Severity:  model.SeverityWarning,
		Message:   fmt.Sprintf("%s %v > %v", name, value, threshold),
		Value:     value,
		Threshold: threshold,
		Timestamp: ts,
	}
}
