// Package ioboard is the panel side: it samples hats, buttons and axes each
// cycle, encodes them into the board's frame and serves the latest frame to
// bus reads at an address taken from two strap pins.
package ioboard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"collective-go/frame"
	"collective-go/services/diag"
	"collective-go/services/hal"
	"collective-go/services/heartbeat"
	"collective-go/types"
	"collective-go/x/timex"
)

// Board owns one IO board's state. Only Step mutates it; the responder reads
// the frame store concurrently.
type Board struct {
	log     *slog.Logger
	addr    Address
	layout  frame.Layout
	sampler *Sampler
	store   *frame.Store
	resp    *Responder
	state   frame.State
	cycle   time.Duration

	frameLog timex.Every
	led      *heartbeat.Flasher
	console  *diag.Console
}

// New brings the board up in the fixed order: analogue power, address straps,
// sampler, frame store, LED. Any error is a startup fault.
func New(p hal.Platform, prof *types.IOBoardProfile, log *slog.Logger) (*Board, error) {
	if prof.AnaloguePowerPin != nil {
		if _, err := hal.Output(p, *prof.AnaloguePowerPin, true); err != nil {
			return nil, err
		}
	}

	addr, err := ResolveAddress(p, prof.Address)
	if err != nil {
		return nil, err
	}

	s, err := NewSampler(p, prof)
	if err != nil {
		return nil, err
	}
	l := s.Layout()
	store := frame.NewStore(l.Size())

	b := &Board{
		log:      log.With("board", addr.Board),
		addr:     addr,
		layout:   l,
		sampler:  s,
		store:    store,
		resp:     NewResponder(store),
		state:    frame.NewState(l),
		cycle:    time.Duration(prof.CycleMs) * time.Millisecond,
		frameLog: timex.Every{Period: time.Duration(prof.FrameLogMs) * time.Millisecond},
	}

	led, err := hal.Output(p, prof.LED.Pin, false)
	if err != nil {
		return nil, err
	}
	flashes := prof.LED.Flashes
	if flashes == 0 {
		flashes = int(addr.Board)
	}
	b.led = heartbeat.New(led, flashes,
		time.Duration(prof.LED.OnMs)*time.Millisecond,
		time.Duration(prof.LED.PauseMs)*time.Millisecond)

	diag.Trace(b.log, "starting io board", "addr", addr.Bus, "frame", l.Size())
	return b, nil
}

func (b *Board) Address() Address      { return b.addr }
func (b *Board) Layout() frame.Layout  { return b.layout }
func (b *Board) Store() *frame.Store   { return b.store }
func (b *Board) Responder() *Responder { return b.resp }

// SetConsole attaches a console polled once per Step.
func (b *Board) SetConsole(c *diag.Console) { b.console = c }

// Step runs one cycle: sample, encode into a spare buffer, publish it, then
// the housekeeping (frame log, LED, one console byte).
func (b *Board) Step(now time.Time) error {
	b.sampler.Sample(&b.state)
	snap := b.store.Acquire()
	if err := frame.Encode(b.layout, &b.state, snap.Bytes); err != nil {
		return err
	}
	b.store.Publish(snap)

	if b.frameLog.Due(now) {
		b.logFrame(snap)
	}
	if b.led != nil {
		b.led.Step(now)
	}
	if b.console != nil {
		b.console.Poll()
	}
	return nil
}

// Run repeats Step every cycle until ctx is done.
func (b *Board) Run(ctx context.Context) error {
	period := b.cycle
	if period <= 0 {
		period = time.Millisecond
	}
	tick := time.NewTicker(period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-tick.C:
			if err := b.Step(now); err != nil {
				b.log.Error("cycle failed", "err", err)
			}
		}
	}
}

// logFrame traces the switch bits (highest first), the axes and the request
// and fault counts.
func (b *Board) logFrame(snap *frame.Snapshot) {
	if !b.log.Enabled(context.Background(), diag.LevelTrace) {
		return
	}
	n := b.layout.AxisOffset()
	var sb strings.Builder
	sb.Grow(8 * n)
	for i := 8*n - 1; i >= 0; i-- {
		if frame.Bit(snap.Bytes, i/8, i%8) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	axes := make([]int16, b.layout.Axes)
	for i := range axes {
		axes[i] = frame.Axis(snap.Bytes[b.layout.AxisField(i).Offset:])
	}
	diag.Trace(b.log, "frame", "bits", sb.String(), "axes", axes, "requests", b.resp.Requests(), "faults", b.resp.Faults(), "seq", snap.Seq)
}
