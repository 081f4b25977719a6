package app

import (
	"testing"
	"time"
)

func TestApplicationNow(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	a := &Application{Clock: func() time.Time { return fixed }}
	if got := a.Now(); !got.Equal(fixed) {
		t.Fatalf("Now() = %v, want %v", got, fixed)
	}

	before := time.Now()
	if got := (&Application{}).Now(); got.Before(before) {
		t.Fatalf("Now() without Clock = %v, want wall time", got)
	}
}
