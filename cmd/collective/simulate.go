package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"collective-go/services/hidreport"
)

// Simulate runs the real aggregator against in-memory IO boards and prints
// every report it publishes as hex.
type Simulate struct {
	IOProfile string        `name:"io-profile" help:"IO board profile YAML (default: the embedded one)" type:"existingfile"`
	Cycles    int           `help:"Cycles to run, 0 runs until interrupted" default:"10"`
	Interval  time.Duration `help:"Time between cycles" default:"10ms"`
	Press     []string      `help:"Hold an input pin low" placeholder:"BOARD:PIN"`
	ADC       []string      `name:"adc" help:"Set an ADC pin's raw 10-bit reading" placeholder:"BOARD:PIN=RAW"`
	Angle     uint16        `help:"Raw AS5600 magnet position, 0..4095" default:"2048"`
	DropBoard []int         `help:"Detach these boards from the bus" placeholder:"BOARD"`
	Short     []string      `help:"Cap how many bytes a board answers with" placeholder:"BOARD:BYTES"`

	out io.Writer
}

func (c *Simulate) Run(ctx context.Context, g *Globals, log *slog.Logger) error {
	usb, err := usbProfile(g.Profile)
	if err != nil {
		return err
	}
	iop, err := ioProfile(c.IOProfile)
	if err != nil {
		return err
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	var cycle int
	sink := hidreport.SinkFunc(func(r *hidreport.Report) error {
		var buf [hidreport.Size]byte
		if err := hidreport.Encode(r, buf[:]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "%6d %s\n", cycle, hex.EncodeToString(buf[:]))
		return err
	})

	r, err := newRig(usb, iop, sink, log)
	if err != nil {
		return err
	}
	if err := c.script(r); err != nil {
		return err
	}

	tick := time.NewTicker(c.Interval)
	defer tick.Stop()
	for cycle = 0; c.Cycles == 0 || cycle < c.Cycles; cycle++ {
		if err := r.sample(time.Now()); err != nil {
			return err
		}
		if _, err := r.agg.Step(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
	sent, suppressed := r.agg.Publisher().Stats()
	log.Info("simulation done", "cycles", cycle, "sent", sent, "suppressed", suppressed)
	return nil
}

// script applies the input and fault flags to the rig.
func (c *Simulate) script(r *rig) error {
	for _, s := range c.Press {
		b, pin, err := boardPin(s)
		if err != nil {
			return err
		}
		h, err := r.board(b)
		if err != nil {
			return err
		}
		h.FakePin(pin).Press()
	}
	for _, s := range c.ADC {
		b, pin, v, err := boardPinValue(s)
		if err != nil {
			return err
		}
		h, err := r.board(b)
		if err != nil {
			return err
		}
		if _, err := h.ADC(pin); err != nil {
			return fmt.Errorf("%q: %w", s, err)
		}
		h.FakeADC(pin).Set(uint16(v))
	}
	r.sensor.SetRaw(c.Angle)
	for _, b := range c.DropBoard {
		if _, err := r.board(b); err != nil {
			return err
		}
		r.bus.Detach(r.boards[b].Address().Bus)
	}
	for _, s := range c.Short {
		b, n, err := boardPin(s)
		if err != nil {
			return err
		}
		if _, err := r.board(b); err != nil {
			return err
		}
		r.bus.Limit(r.boards[b].Address().Bus, n)
	}
	return nil
}
