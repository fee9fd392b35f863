package timeutil

import (
	"testing"
	"time"
)

func TestRealClockNow(t *testing.T) {
	var c Clock = RealClock{}
	before := time.Now()
	got := c.Now()
	after := time.Now()
	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, outside [%v, %v]", got, before, after)
	}
}

func TestMockClock(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(base)

	if !c.Now().Equal(base) {
		t.Errorf("Now() = %v, want %v", c.Now(), base)
	}
	if c.Now() != c.Now() {
		t.Error("mock time advanced without Advance")
	}

	c.Advance(90 * time.Second)
	if got := c.Since(base); got != 90*time.Second {
		t.Errorf("Since = %v, want 90s", got)
	}

	later := base.Add(time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("after Set, Now() = %v, want %v", c.Now(), later)
	}
}
