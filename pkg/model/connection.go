package model

import "time"

// ConnectionStatus is the derived link-quality view. It is rebuilt from sample
// arrivals and transport lifecycle events and never persisted.
type ConnectionStatus struct {
	Connected     bool      `json:"connected"`
	LastMessage   time.Time `json:"last_message"`
	FPS           float64   `json:"fps"`
	FrameCount    uint64    `json:"frame_count"`
	LastFrameTime time.Time `json:"last_frame_time"`
}

// ConnectionStatusPatch is a partial update; nil fields are left untouched.
type ConnectionStatusPatch struct {
	Connected     *bool
	LastMessage   *time.Time
	FPS           *float64
	FrameCount    *uint64
	LastFrameTime *time.Time
}

// ConnectedPatch is the patch the transport layer uses on lifecycle changes.
func ConnectedPatch(connected bool) ConnectionStatusPatch {
	return ConnectionStatusPatch{Connected: &connected}
}

// Apply returns s with the set fields of p merged in.
func (s ConnectionStatus) Apply(p ConnectionStatusPatch) ConnectionStatus {
	if p.Connected != nil {
		s.Connected = *p.Connected
	}
	if p.LastMessage != nil {
		s.LastMessage = *p.LastMessage
	}
	if p.FPS != nil {
		s.FPS = *p.FPS
	}
	if p.FrameCount != nil {
		s.FrameCount = *p.FrameCount
	}
	if p.LastFrameTime != nil {
		s.LastFrameTime = *p.LastFrameTime
	}
	return s
}
