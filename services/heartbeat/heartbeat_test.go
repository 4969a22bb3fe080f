package heartbeat

import (
	"sync"
	"testing"
	"time"
)

type fakeLED struct {
	mu    sync.Mutex
	level bool
	rises int
}

func (l *fakeLED) Set(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v && !l.level {
		l.rises++
	}
	l.level = v
}

func (l *fakeLED) Rises() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rises
}

// run steps the flasher every millisecond for d and returns the rising edges
// seen in each window split at gaps longer than 1s.
func run(f *Flasher, led *fakeLED, d time.Duration) []int {
	start := time.Unix(0, 0)
	var groups []int
	lastRise := start
	prev := 0
	for t := time.Duration(0); t <= d; t += time.Millisecond {
		now := start.Add(t)
		f.Step(now)
		if r := led.Rises(); r != prev {
			if len(groups) == 0 || now.Sub(lastRise) > time.Second {
				groups = append(groups, 0)
			}
			groups[len(groups)-1] += r - prev
			prev = r
			lastRise = now
		}
	}
	return groups
}

func TestFlashesBoardNumber(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4} {
		led := &fakeLED{}
		f := New(led, n, 50*time.Millisecond, 2*time.Second)
		groups := run(f, led, 7*time.Second)
		if len(groups) < 3 {
			t.Fatalf("n=%d: groups %v", n, groups)
		}
		for _, g := range groups[:3] {
			if g != n {
				t.Fatalf("n=%d: groups %v", n, groups)
			}
		}
	}
}

func TestZeroFlashesClamped(t *testing.T) {
	led := &fakeLED{}
	f := New(led, 0, 100*time.Millisecond, time.Second)
	f.Step(time.Unix(1, 0))
	if !led.level {
		t.Fatal("first step should switch the LED on")
	}
}
