package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"collective-go/drivers/as5600"
	"collective-go/services/hidreport"
	"collective-go/services/usbboard"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Aggregate runs the USB board's loop on a Linux host wired to the IO boards'
// bus, printing each published report as hex.
type Aggregate struct {
	Bus      string        `help:"I2C bus name or number (default: the first bus found)"`
	Interval time.Duration `help:"Time between cycles (default: the profile cycle)"`
	Sensor   bool          `help:"Read an AS5600 on the same bus for angle-sourced axes"`

	out io.Writer
}

func (c *Aggregate) Run(ctx context.Context, g *Globals, log *slog.Logger) error {
	prof, err := usbProfile(g.Profile)
	if err != nil {
		return err
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph init: %w", err)
	}
	b, err := i2creg.Open(c.Bus)
	if err != nil {
		return fmt.Errorf("open i2c bus %q: %w", c.Bus, err)
	}
	defer b.Close()

	var angle usbboard.AngleSource
	if c.Sensor {
		dev := as5600.New(b)
		dev.Address = prof.Sensor.Address
		angle = usbboard.SensorAngle{Dev: &dev}
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	agg, err := usbboard.New(prof, usbboard.NewTxRequester(b), angle, hexSink(out), log)
	if err != nil {
		return err
	}
	log.Info("aggregating", "bus", b.String(), "boards", prof.Boards, "base", prof.BaseAddress)
	if err := agg.Run(ctx, c.Interval); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// hexSink prints each report's wire encoding on its own line.
func hexSink(w io.Writer) hidreport.Sink {
	return hidreport.SinkFunc(func(r *hidreport.Report) error {
		var buf [hidreport.Size]byte
		if err := hidreport.Encode(r, buf[:]); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, hex.EncodeToString(buf[:]))
		return err
	})
}
