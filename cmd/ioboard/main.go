//go:build rp2040

// Command ioboard is the panel firmware: it samples the board's inputs and
// serves the latest frame to the USB board over I2C.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"collective-go/services/config"
	"collective-go/services/diag"
	"collective-go/services/hal"
	"collective-go/services/ioboard"
	"collective-go/x/shmring"
)

const (
	bootDelay   = 2 * time.Second
	faultPeriod = time.Second
	consoleRing = 64
)

func main() {
	// Allow USB CDC to enumerate before the first log line.
	time.Sleep(bootDelay)
	ctx := context.Background()

	lv := new(slog.LevelVar)
	lv.Set(diag.LevelFatal)
	log := diag.New(os.Stdout, lv)

	prof, err := config.LoadIOBoard(config.DeviceIOBoard)
	if err != nil {
		diag.Halt(ctx, log, nil, err, faultPeriod)
		return
	}
	diag.SetLevel(lv, prof.Log.Startup)

	port, err := hal.Default.Console(prof.Console)
	if err != nil {
		diag.Halt(ctx, log, nil, err, faultPeriod)
		return
	}
	log = diag.New(port, lv)
	ring := shmring.New(consoleRing)
	console := diag.NewConsole(ring, lv, log)
	go func() { _ = diag.Pump(ctx, port, ring) }()

	b, err := ioboard.New(hal.Default, prof, log)
	if err != nil {
		diag.Halt(ctx, log, console, err, faultPeriod)
		return
	}
	b.SetConsole(console)

	// The address is resolved; only now may the board answer on the bus.
	go func() {
		if err := ioboard.Serve(ctx, prof.Bus, b.Address().Bus, b.Responder()); err != nil {
			log.Error("responder stopped", "err", err)
		}
	}()

	diag.SetLevel(lv, prof.Log.Run)
	diag.Notice(log, "io board running", "board", b.Address().Board, "addr", b.Address().Bus, "frame", b.Layout().Size())
	_ = b.Run(ctx)
}
