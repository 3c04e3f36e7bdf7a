package backoff

import (
	"testing"
	"time"
)

func TestExponentialDeterministicSequence(t *testing.T) {
	var s Exponential
	want := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped
		30 * time.Second,
	}
	for attempt, expected := range want {
		got := s.Calculate(attempt, time.Second, 30*time.Second, 2.0, 0)
		if got != expected {
			t.Errorf("Calculate(attempt=%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestExponentialNegativeAttempt(t *testing.T) {
	var s Exponential
	if got := s.Calculate(-5, time.Second, 30*time.Second, 2.0, 0); got != time.Second {
		t.Errorf("Calculate(-5) = %v, want initial delay", got)
	}
}

func TestExponentialLargeAttemptDoesNotOverflow(t *testing.T) {
	var s Exponential
	got := s.Calculate(1000, time.Second, 30*time.Second, 2.0, 0)
	if got < 0 || got > 30*time.Second {
		t.Errorf("Calculate(1000) = %v, want within (0, maxDelay]", got)
	}
}

func TestExponentialJitterBounds(t *testing.T) {
	var s Exponential
	base := 2 * time.Second
	for i := 0; i < 100; i++ {
		got := s.Calculate(1, time.Second, 30*time.Second, 2.0, 0.5)
		if got < base || got > base+base/2 {
			t.Fatalf("jittered delay %v outside [%v, %v]", got, base, base+base/2)
		}
	}
}

func TestExponentialJitterRespectsMaxDelay(t *testing.T) {
	var s Exponential
	for i := 0; i < 100; i++ {
		got := s.Calculate(10, time.Second, 30*time.Second, 2.0, 1.0)
		if got > 30*time.Second {
			t.Fatalf("jittered delay %v exceeds maxDelay", got)
		}
	}
}

func TestDecorrelatedJitterBounds(t *testing.T) {
	var s DecorrelatedJitter

	if got := s.Calculate(0, time.Second, 30*time.Second, 0, 0); got != time.Second {
		t.Errorf("Calculate(0) = %v, want initial delay", got)
	}
	for attempt := 1; attempt <= 12; attempt++ {
		for i := 0; i < 50; i++ {
			got := s.Calculate(attempt, time.Second, 30*time.Second, 0, 0)
			if got < time.Second || got > 30*time.Second {
				t.Fatalf("Calculate(attempt=%d) = %v outside [initial, max]", attempt, got)
			}
		}
	}
}

func TestPow(t *testing.T) {
	tests := []struct {
		base     float64
		exponent int
		want     float64
	}{
		{2.0, 0, 1.0},
		{2.0, 1, 2.0},
		{2.0, 10, 1024.0},
		{1.5, 2, 2.25},
		{3.0, 3, 27.0},
	}
	for _, tt := range tests {
		if got := Pow(tt.base, tt.exponent); got != tt.want {
			t.Errorf("Pow(%v, %d) = %v, want %v", tt.base, tt.exponent, got, tt.want)
		}
	}
}
