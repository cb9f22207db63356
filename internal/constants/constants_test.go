package constants

import (
	"testing"
	"time"
)

func TestIsValidPolicy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"retry", PolicyRetry, true},
		{"ordered", PolicyOrdered, true},
		{"empty", "", false},
		{"uppercase", "RETRY", false},
		{"unknown", "waiter", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidPolicy(tt.input); got != tt.want {
				t.Errorf("IsValidPolicy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinTimeoutFor(t *testing.T) {
	tests := []struct {
		name    string
		maxDraw int
		unit    time.Duration
		want    time.Duration
	}{
		{"default table", DefaultMaxDraw, DefaultTimeUnit, 3 * time.Second},
		{"fast clock keeps floor", DefaultMaxDraw, 10 * time.Microsecond, DefaultJoinTimeout},
		{"slow clock", DefaultMaxDraw, 10 * time.Millisecond, 30 * time.Second},
		{"short draws slow clock", 100, 50 * time.Millisecond, 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinTimeoutFor(tt.maxDraw, tt.unit)
			if got != tt.want {
				t.Errorf("JoinTimeoutFor(%d, %v) = %v, want %v", tt.maxDraw, tt.unit, got, tt.want)
			}
			// One eating turn plus one thinking turn is the longest an agent
			// can take to notice the stop flag.
			if cycle := 2 * time.Duration(tt.maxDraw) * tt.unit; got <= cycle {
				t.Errorf("JoinTimeoutFor(%d, %v) = %v, want more than one full cycle (%v)", tt.maxDraw, tt.unit, got, cycle)
			}
		})
	}
}
