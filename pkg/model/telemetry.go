package model

import (
	"fmt"
	"math"
)

// Sample status tags reported by the robot. The field is free-form; these are
// the values the simulator emits today.
const (
	StatusOK          = "OK"
	StatusLowBattery  = "LOW_BATTERY"
	StatusOverheat    = "OVERHEAT"
	StatusHighCurrent = "HIGH_CURRENT"
)

// Pose is the robot base position (metres) and orientation (radians).
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Joints holds the current draw (amps) of the instrumented joints.
type Joints struct {
	ShoulderL float64 `json:"shoulder_l"`
	ElbowL    float64 `json:"elbow_l"`
	KneeL     float64 `json:"knee_l"`
	ShoulderR float64 `json:"shoulder_r"`
}

// JointNames lists the joints in display order.
var JointNames = []string{"shoulder_l", "elbow_l", "knee_l", "shoulder_r"}

// Currents returns the readings in JointNames order.
func (j Joints) Currents() []float64 {
	return []float64{j.ShoulderL, j.ElbowL, j.KneeL, j.ShoulderR}
}

// Max returns the highest joint current.
func (j Joints) Max() float64 {
	return math.Max(math.Max(j.ShoulderL, j.ElbowL), math.Max(j.KneeL, j.ShoulderR))
}

// TelemetrySample is one robot-time-stamped observation.
type TelemetrySample struct {
	RobotID    string  `json:"robot_id"`
	TS         float64 `json:"ts"`
	Pose       Pose    `json:"pose"`
	BatteryPct float64 `json:"battery_pct"`
	TempC      float64 `json:"temp_c"`
	Joints     Joints  `json:"joints"`
	Status     string  `json:"status"`
}

// Validate rejects samples carrying a non-finite reading.
func (s TelemetrySample) Validate() error {
	values := []float64{s.TS, s.BatteryPct, s.TempC,
		s.Pose.X, s.Pose.Y, s.Pose.Z, s.Pose.Roll, s.Pose.Pitch, s.Pose.Yaw}
	values = append(values, s.Joints.Currents()...)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("sample at ts=%v has non-finite reading", s.TS)
		}
	}
	return nil
}
