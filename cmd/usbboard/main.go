//go:build rp2040

// Command usbboard is the host-facing firmware: it polls every IO board,
// reads the angle sensor and presents the result as a USB joystick.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"collective-go/drivers/as5600"
	"collective-go/services/config"
	"collective-go/services/diag"
	"collective-go/services/hal"
	"collective-go/services/heartbeat"
	"collective-go/services/hidreport"
	"collective-go/services/usbboard"
	"collective-go/types"
	"collective-go/x/shmring"
)

const (
	faultPeriod = time.Second
	consoleRing = 64
)

func main() {
	ctx := context.Background()

	// Registered before anything else so the host sees a joystick at
	// enumeration.
	sink := hidreport.NewJoystickSink()

	lv := new(slog.LevelVar)
	lv.Set(diag.LevelFatal)
	log := diag.New(os.Stdout, lv)

	prof, err := config.LoadUSBBoard(config.DeviceUSBBoard)
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

	agg, dev, err := setup(prof, sink, log)
	if err != nil {
		diag.Halt(ctx, log, console, err, faultPeriod)
		return
	}
	usbboard.RegisterCalibration(console, dev, log)
	agg.SetConsole(console)

	diag.SetLevel(lv, prof.Log.Run)
	diag.Notice(log, "usb board running", "boards", prof.Boards, "base", prof.BaseAddress)
	_ = agg.Run(ctx, 0)
}

// setup brings up the sensor, the board bus and the LED, in that order.
func setup(prof *types.USBBoardProfile, sink hidreport.Sink, log *slog.Logger) (*usbboard.Aggregator, *as5600.Device, error) {
	p := hal.Default
	if prof.Sensor.DirPin != nil {
		// DIR low: angle increases clockwise.
		if _, err := hal.Output(p, *prof.Sensor.DirPin, false); err != nil {
			return nil, nil, err
		}
	}
	sensorBus, err := p.I2C(prof.Sensor.Bus)
	if err != nil {
		return nil, nil, err
	}
	dev := as5600.New(sensorBus)
	dev.Address = prof.Sensor.Address

	boardBus, err := p.I2C(prof.Bus)
	if err != nil {
		return nil, nil, err
	}
	agg, err := usbboard.New(prof, usbboard.NewTxRequester(boardBus), usbboard.SensorAngle{Dev: &dev}, sink, log)
	if err != nil {
		return nil, nil, err
	}

	led, err := hal.Output(p, prof.LED.Pin, false)
	if err != nil {
		return nil, nil, err
	}
	agg.SetLED(heartbeat.New(led, prof.LED.Flashes,
		time.Duration(prof.LED.OnMs)*time.Millisecond,
		time.Duration(prof.LED.PauseMs)*time.Millisecond))
	return agg, &dev, nil
}
