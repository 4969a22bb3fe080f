//go:build rp2040

package ioboard

import (
	"context"
	"machine"
	"time"

	"collective-go/errcode"
	"collective-go/types"
)

// faultBackoff is the pause after a failed bus event.
const faultBackoff = time.Millisecond

// Serve puts the I2C peripheral named by pins into target mode at addr and
// answers reads from r until ctx is done. It must only be started after the
// address has been resolved.
func Serve(ctx context.Context, pins types.BusPins, addr uint16, r *Responder) error {
	var hw *machine.I2C
	switch pins.Controller {
	case 0:
		hw = machine.I2C0
	case 1:
		hw = machine.I2C1
	default:
		return &errcode.E{C: errcode.BusInit, Op: "ioboard.Serve", Msg: "unknown controller"}
	}
	err := hw.Configure(machine.I2CConfig{
		SDA:       machine.Pin(pins.SDA),
		SCL:       machine.Pin(pins.SCL),
		Frequency: pins.FrequencyHz,
		Mode:      machine.I2CModeTarget,
	})
	if err != nil {
		return errcode.Wrap(errcode.BusInit, "ioboard.Serve", err)
	}
	if err := hw.Listen(addr); err != nil {
		return errcode.Wrap(errcode.BusInit, "ioboard.Serve", err)
	}

	in := make([]byte, 16)
	out := make([]byte, 256)
	var written int
	for ctx.Err() == nil {
		evt, n, err := hw.WaitForEvent(in)
		if err != nil {
			r.Fault()
			time.Sleep(faultBackoff)
			continue
		}
		switch evt {
		case machine.I2CReceive:
			written = n
		case machine.I2CRequest:
			k := r.Transact(in[:written], out)
			if err := hw.Reply(out[:k]); err != nil {
				r.Fault()
			}
			written = 0
		case machine.I2CFinish:
			written = 0
		}
	}
	return ctx.Err()
}
