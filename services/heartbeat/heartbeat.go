// Package heartbeat blinks a status LED in groups: n short flashes, then a
// long pause. The IO board flashes its board number; the USB board a fixed
// count.
package heartbeat

import "time"

// LED is the one thing the flasher needs from a pin.
type LED interface {
	Set(level bool)
}

type Flasher struct {
	led     LED
	flashes int
	on      time.Duration
	pause   time.Duration

	last  time.Time
	delay time.Duration
	state bool
	phase int
}

// New returns a flasher producing `flashes` pulses of length on, separated by
// on, followed by pause. flashes < 1 is treated as 1.
func New(led LED, flashes int, on, pause time.Duration) *Flasher {
	if flashes < 1 {
		flashes = 1
	}
	return &Flasher{led: led, flashes: flashes, on: on, pause: pause}
}

// Step advances the pattern on the caller's clock. It is cheap enough to call
// every loop cycle.
func (f *Flasher) Step(now time.Time) {
	if !f.last.IsZero() && now.Sub(f.last) <= f.delay {
		return
	}
	f.state = !f.state
	f.phase = (f.phase + 1) % (2 * f.flashes)
	f.led.Set(f.state)
	if f.phase == 0 {
		f.delay = f.pause
	} else {
		f.delay = f.on
	}
	f.last = now
}
