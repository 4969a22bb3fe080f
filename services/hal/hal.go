// Package hal is the thin hardware layer both boards are written against:
// GPIO pins, ADC channels, controller-mode I2C buses and the console port.
// RP2040 builds bind it to TinyGo's machine package; host builds use fakes.
package hal

import (
	"io"
	"strconv"

	"collective-go/errcode"
	"collective-go/types"

	"tinygo.org/x/drivers"
)

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return "none"
	}
}

// GPIOPin is one configured GPIO.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// ADC is one analogue input. Get returns a 10-bit sample (0..1023).
type ADC interface {
	Get() uint16
}

// Platform hands out the board's hardware by number.
type Platform interface {
	Pin(n int) (GPIOPin, error)
	ADC(pin int) (ADC, error)
	I2C(b types.BusPins) (drivers.I2C, error)
	Console(c types.ConsoleConfig) (io.ReadWriter, error)
}

// MaxPin is the highest GPIO number on the RP2040.
const MaxPin = 29

func checkPin(n int) error {
	if n < 0 || n > MaxPin {
		return &errcode.E{C: errcode.UnknownPin, Op: "hal.Pin"}
	}
	return nil
}

// ADCPins are the GPIOs wired to ADC channels 0..3.
var ADCPins = [...]int{26, 27, 28, 29}

func adcChannel(pin int) (int, bool) {
	for i, p := range ADCPins {
		if p == pin {
			return i, true
		}
	}
	return 0, false
}

// ---- Helpers shared by the boards ----

// Inputs configures every pin in ns as an input with pull. The first failure
// is returned with the offending pin number.
func Inputs(p Platform, pull Pull, ns ...int) ([]GPIOPin, error) {
	out := make([]GPIOPin, len(ns))
	for i, n := range ns {
		pin, err := p.Pin(n)
		if err != nil {
			return nil, err
		}
		if err := pin.ConfigureInput(pull); err != nil {
			return nil, &errcode.E{C: errcode.Of(err), Op: "hal.Inputs", Msg: pinMsg(n), Err: err}
		}
		out[i] = pin
	}
	return out, nil
}

// Output configures pin n as an output at the given level.
func Output(p Platform, n int, initial bool) (GPIOPin, error) {
	pin, err := p.Pin(n)
	if err != nil {
		return nil, err
	}
	if err := pin.ConfigureOutput(initial); err != nil {
		return nil, &errcode.E{C: errcode.Of(err), Op: "hal.Output", Msg: pinMsg(n), Err: err}
	}
	return pin, nil
}

func pinMsg(n int) string { return "pin " + strconv.Itoa(n) }
