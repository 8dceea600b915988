package utils

import (
	"testing"
	"time"
)

func TestSortKindsByCount(t *testing.T) {
	got := SortKindsByCount(map[string]uint64{
		"telemetry":    500,
		"initial_data": 1,
		"unknown":      1,
	})

	want := []KindCount{{"telemetry", 500}, {"initial_data", 1}, {"unknown", 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input    uint64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.input); got != tt.expected {
			t.Errorf("FormatNumber(%d) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		name     string
		t        time.Time
		expected string
	}{
		{"never", time.Time{}, "never"},
		{"just now", now, "0ms"},
		{"sub-second", now.Add(-250 * time.Millisecond), "250ms"},
		{"rounds down", now.Add(-1400 * time.Millisecond), "1s"},
		{"rounds up", now.Add(-2600 * time.Millisecond), "3s"},
		{"clock skew", now.Add(time.Second), "0ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAge(tt.t, now); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
