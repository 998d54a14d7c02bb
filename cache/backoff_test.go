package cache

import (
	"testing"
	"time"
)

func TestNextWait_DoublesUpToCap(t *testing.T) {
	wait := DefaultInitialWait
	var schedule []time.Duration
	for n := 0; n < 6; n++ {
		schedule = append(schedule, wait)
		wait = nextWait(wait, DefaultMaxWait)
	}

	want := []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}
	for i, w := range want {
		if schedule[i] != w {
			t.Fatalf("round %d: got %v, want %v", i, schedule[i], w)
		}
	}
}

func TestNextWait_RespectsCustomCap(t *testing.T) {
	if got := nextWait(80*time.Millisecond, 100*time.Millisecond); got != 100*time.Millisecond {
		t.Fatalf("got %v, want cap of 100ms", got)
	}
}
