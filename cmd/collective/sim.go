package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"collective-go/bus"
	"collective-go/drivers/as5600"
	"collective-go/services/hal"
	"collective-go/services/hidreport"
	"collective-go/services/ioboard"
	"collective-go/services/usbboard"
	"collective-go/types"
)

// rig is a whole controller in memory: IO boards on a shared bus, an AS5600
// on the sensor bus and the USB board's aggregator on top.
type rig struct {
	plats  []*hal.HostPlatform
	boards []*ioboard.Board
	bus    *bus.Bus
	sensor *as5600.Sim
	agg    *usbboard.Aggregator
}

// newRig builds one IO board per profile board. Board i has its address
// straps set so that it answers at usb.BoardAddress(i).
func newRig(usb *types.USBBoardProfile, iop *types.IOBoardProfile, sink hidreport.Sink, log *slog.Logger) (*rig, error) {
	if usb.Boards > 4 {
		return nil, fmt.Errorf("simulate: %d boards, straps address at most 4", usb.Boards)
	}
	if iop.Address.Base != usb.BaseAddress {
		return nil, fmt.Errorf("simulate: io board base 0x%02x != usb board base 0x%02x", iop.Address.Base, usb.BaseAddress)
	}
	want := usb.Frame
	if got := iop.Shape(); got != want {
		return nil, fmt.Errorf("simulate: io board frame %+v != usb board frame %+v", got, want)
	}

	r := &rig{bus: bus.New(), sensor: as5600.NewSim()}
	for i := 0; i < usb.Boards; i++ {
		h := hal.NewHostPlatform()
		if i&1 != 0 {
			h.FakePin(iop.Address.LSB).Press()
		}
		if i&2 != 0 {
			h.FakePin(iop.Address.MSB).Press()
		}
		b, err := ioboard.New(h, iop, log.With("sim", i))
		if err != nil {
			return nil, err
		}
		if b.Address().Bus != usb.BoardAddress(i) {
			return nil, fmt.Errorf("simulate: board %d came up at 0x%02x", i, b.Address().Bus)
		}
		if err := r.bus.Attach(b.Address().Bus, b.Responder()); err != nil {
			return nil, err
		}
		r.plats = append(r.plats, h)
		r.boards = append(r.boards, b)
	}

	sensorBus := bus.New()
	if err := sensorBus.Attach(usb.Sensor.Address, r.sensor); err != nil {
		return nil, err
	}
	dev := as5600.New(sensorBus)
	dev.Address = usb.Sensor.Address

	agg, err := usbboard.New(usb, r.bus, usbboard.SensorAngle{Dev: &dev}, sink, log)
	if err != nil {
		return nil, err
	}
	r.agg = agg
	return r, nil
}

// sample steps every IO board once.
func (r *rig) sample(now time.Time) error {
	for _, b := range r.boards {
		if err := b.Step(now); err != nil {
			return err
		}
	}
	return nil
}

func (r *rig) board(i int) (*hal.HostPlatform, error) {
	if i < 0 || i >= len(r.plats) {
		return nil, fmt.Errorf("board %d out of range 0..%d", i, len(r.plats)-1)
	}
	return r.plats[i], nil
}

// ---- flag value parsing ----

// boardPin parses "board:pin".
func boardPin(s string) (board, pin int, err error) {
	b, p, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%q: want board:pin", s)
	}
	if board, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("%q: board: %w", s, err)
	}
	if pin, err = strconv.Atoi(p); err != nil {
		return 0, 0, fmt.Errorf("%q: pin: %w", s, err)
	}
	return board, pin, nil
}

// boardPinValue parses "board:pin=value".
func boardPinValue(s string) (board, pin, value int, err error) {
	bp, v, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, 0, fmt.Errorf("%q: want board:pin=value", s)
	}
	if board, pin, err = boardPin(bp); err != nil {
		return 0, 0, 0, err
	}
	if value, err = strconv.Atoi(v); err != nil {
		return 0, 0, 0, fmt.Errorf("%q: value: %w", s, err)
	}
	return board, pin, value, nil
}
