package backoff

import (
	"testing"
	"time"
)

func TestExponentialJitterBounds(t *testing.T) {
	base := 500 * time.Millisecond
	max := 30 * time.Second

	for attempt := 1; attempt <= 10; attempt++ {
		for i := 0; i < 50; i++ {
			d := ExponentialJitter(base, max, attempt)
			if d <= 0 {
				t.Fatalf("attempt %d: non-positive delay %v", attempt, d)
			}
			if d > max+max/5 {
				t.Fatalf("attempt %d: delay %v exceeds cap", attempt, d)
			}
		}
	}
}

func TestExponentialJitterGrows(t *testing.T) {
	base := time.Second
	max := time.Hour
	// compare midpoints to dodge jitter
	low := ExponentialJitter(base, max, 1)
	high := ExponentialJitter(base, max, 6)
	if high <= low {
		t.Errorf("attempt 6 delay %v not above attempt 1 delay %v", high, low)
	}
}
