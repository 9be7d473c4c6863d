package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewSlidingWindow(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("request %d unexpectedly denied", i)
		}
	}
	if l.Allow("k") {
		t.Fatalf("request over limit unexpectedly allowed")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewSlidingWindow(1, time.Minute)
	if !l.Allow("a") {
		t.Fatalf("first request for a denied")
	}
	if !l.Allow("b") {
		t.Fatalf("first request for b denied")
	}
	if l.Allow("a") {
		t.Fatalf("second request for a allowed")
	}
}

func TestWindowSlides(t *testing.T) {
	l := NewSlidingWindow(1, time.Minute)
	base := time.Now()
	l.now = func() time.Time { return base }

	if !l.Allow("k") {
		t.Fatalf("first request denied")
	}
	if l.Allow("k") {
		t.Fatalf("second request within window allowed")
	}

	l.now = func() time.Time { return base.Add(61 * time.Second) }
	if !l.Allow("k") {
		t.Fatalf("request after window expiry denied")
	}
}

func TestZeroLimitDisables(t *testing.T) {
	l := NewSlidingWindow(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !l.Allow("k") {
			t.Fatalf("disabled limiter denied request %d", i)
		}
	}
}
