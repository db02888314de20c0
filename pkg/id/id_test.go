package id

import (
	"testing"
	"time"
)

func withClock(t *testing.T, fn func() int64) {
	t.Helper()
	prev := NowMs
	NowMs = fn
	t.Cleanup(func() { NowMs = prev })
}

func TestOrderingMonotonic(t *testing.T) {
	withClock(t, func() int64 { return 1000 })
	g := NewGenerator()
	a, b := g.Next(), g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected a<b, got %s %s", a, b)
	}
	if b.Seq() != 1 || b.Time().UnixMilli() != 1000 {
		t.Fatalf("unexpected layout: seq=%d ms=%d", b.Seq(), b.Time().UnixMilli())
	}
}

func TestClockRegressionGuard(t *testing.T) {
	now := int64(1000)
	withClock(t, func() int64 { return now })
	g := NewGenerator()
	a := g.Next()
	now = 900
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected b>a despite clock regression")
	}
}

func TestParseRoundTrip(t *testing.T) {
	a := New()
	got, err := Parse(a.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != a {
		t.Fatalf("got %s want %s", got, a)
	}
	if _, err := Parse("xyz"); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := Parse("zz000000000000000000000000000000"); err == nil {
		t.Fatalf("expected hex error")
	}
}

func TestSequenceOverflowWaitsNextMs(t *testing.T) {
	var mu = make(chan int64, 1)
	mu <- 2000
	withClock(t, func() int64 { v := <-mu; mu <- v; return v })

	g := NewGenerator()
	g.lastMs = 2000
	g.seq = ^uint64(0)

	done := make(chan ID)
	go func() { done <- g.Next() }()

	time.AfterFunc(10*time.Millisecond, func() { <-mu; mu <- 2001 })

	select {
	case got := <-done:
		if got.Time().UnixMilli() != 2001 || got.Seq() != 0 {
			t.Fatalf("unexpected id after overflow: %s", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for overflow handling")
	}
}
