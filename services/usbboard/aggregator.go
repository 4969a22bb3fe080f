// Package usbboard is the host side: each cycle it reads the local angle
// sensor, collects every IO board's frame over the bus and publishes the
// mapped controller report.
package usbboard

import (
	"context"
	"log/slog"
	"time"

	"collective-go/frame"
	"collective-go/services/diag"
	"collective-go/services/heartbeat"
	"collective-go/services/hidreport"
	"collective-go/types"
)

// AngleSource yields the local angle already mapped to an axis value.
type AngleSource interface {
	Axis() (int16, error)
}

// Aggregator owns the frame set and the report. Only Step touches them.
type Aggregator struct {
	log       *slog.Logger
	angleSrc  AngleSource
	angle     int16
	collector *Collector
	set       *FrameSet
	mapper    *Mapper
	pub       *hidreport.Publisher
	report    hidreport.Report
	cycle     time.Duration
	cycles    uint64

	led     *heartbeat.Flasher
	console *diag.Console
}

// New wires an aggregator from a normalised profile. angle may be nil when
// no sensor is fitted; angle-sourced axes then stay centred.
func New(prof *types.USBBoardProfile, req Requester, angle AngleSource, sink hidreport.Sink, log *slog.Logger) (*Aggregator, error) {
	l := frame.Layout{Hats: prof.Frame.Hats, Buttons: prof.Frame.Buttons, Axes: prof.Frame.Axes}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	m, err := NewMapper(l, prof.Boards, prof.Axes, prof.Buttons)
	if err != nil {
		return nil, err
	}
	addrs := make([]uint16, prof.Boards)
	for i := range addrs {
		addrs[i] = prof.BoardAddress(i)
	}
	timeout := time.Duration(prof.RequestTimeoutMs) * time.Millisecond
	pub := hidreport.NewPublisher(sink)
	pub.SetEveryCycle(prof.ReportEveryCycle)
	return &Aggregator{
		log:       log,
		angleSrc:  angle,
		collector: NewCollector(req, addrs, l.Size(), timeout, log),
		set:       NewFrameSet(prof.Boards, l.Size()),
		mapper:    m,
		pub:       pub,
		cycle:     time.Duration(prof.CycleMs) * time.Millisecond,
	}, nil
}

// SetLED attaches a heartbeat stepped once per Run cycle.
func (a *Aggregator) SetLED(f *heartbeat.Flasher) { a.led = f }

// SetConsole attaches a console polled once per Run cycle.
func (a *Aggregator) SetConsole(c *diag.Console) { a.console = c }

func (a *Aggregator) Frames() *FrameSet               { return a.set }
func (a *Aggregator) Report() hidreport.Report        { return a.report }
func (a *Aggregator) Publisher() *hidreport.Publisher { return a.pub }

// Step runs one cycle in fixed order: angle, collect, map, publish. Bus
// faults are logged by the collector and never stop the cycle; the returned
// error is the sink's.
func (a *Aggregator) Step(ctx context.Context) ([]Result, error) {
	if a.angleSrc != nil {
		v, err := a.angleSrc.Axis()
		if err != nil {
			a.log.Error("angle read failed", "err", err)
		} else {
			a.angle = v
		}
	}

	res := a.collector.Collect(ctx, a.set)
	a.mapper.Map(a.set, a.angle, &a.report)
	a.cycles++

	sent, err := a.pub.Publish(&a.report)
	if err != nil {
		return res, err
	}
	if sent {
		diag.Verbose(a.log, "report", "axes", a.report.Axes, "cycle", a.cycles)
	}
	return res, nil
}

// Run repeats Step every interval until ctx is done. A non-positive interval
// uses the profile cycle.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = a.cycle
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-tick.C:
			if _, err := a.Step(ctx); err != nil {
				a.log.Error("report send failed", "err", err)
			}
			if a.led != nil {
				a.led.Step(now)
			}
			if a.console != nil {
				a.console.Poll()
			}
		}
	}
}
