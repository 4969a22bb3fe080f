//go:build rp2040

package hal

import (
	"context"
	"io"
	"machine"
	"sync"
	"time"

	"collective-go/errcode"
	"collective-go/types"

	"github.com/jangala-dev/tinygo-uartx"
	"tinygo.org/x/drivers"
)

// -----------------------------------------------------------------------------
// GPIO handle
// -----------------------------------------------------------------------------

type rp2GPIO struct {
	p machine.Pin
	n int
}

func (r *rp2GPIO) Number() int { return r.n }

func (r *rp2GPIO) ConfigureInput(pull Pull) error {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2GPIO) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2GPIO) Set(b bool) { r.p.Set(b) }
func (r *rp2GPIO) Get() bool  { return r.p.Get() }
func (r *rp2GPIO) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

// -----------------------------------------------------------------------------
// ADC
// -----------------------------------------------------------------------------

// rp2ADC narrows machine.ADC's 16-bit scaled reading to 10 bits.
type rp2ADC struct{ a machine.ADC }

func (r rp2ADC) Get() uint16 { return r.a.Get() >> 6 }

// -----------------------------------------------------------------------------
// Platform
// -----------------------------------------------------------------------------

type rp2Platform struct {
	mu      sync.Mutex
	pins    map[int]*rp2GPIO
	adcInit bool
	i2c     [2]bool
}

// Default is the platform of the running board.
var Default Platform = &rp2Platform{pins: make(map[int]*rp2GPIO)}

func (r *rp2Platform) Pin(n int) (GPIOPin, error) {
	if err := checkPin(n); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.pins[n]
	if !ok {
		g = &rp2GPIO{p: machine.Pin(n), n: n}
		r.pins[n] = g
	}
	return g, nil
}

func (r *rp2Platform) ADC(pin int) (ADC, error) {
	if _, ok := adcChannel(pin); !ok {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "hal.ADC"}
	}
	r.mu.Lock()
	if !r.adcInit {
		machine.InitADC()
		r.adcInit = true
	}
	r.mu.Unlock()
	a := machine.ADC{Pin: machine.Pin(pin)}
	a.Configure(machine.ADCConfig{})
	return rp2ADC{a: a}, nil
}

// I2C configures a controller-mode bus. Each controller is configured once.
func (r *rp2Platform) I2C(b types.BusPins) (drivers.I2C, error) {
	var hw *machine.I2C
	switch b.Controller {
	case 0:
		hw = machine.I2C0
	case 1:
		hw = machine.I2C1
	default:
		return nil, &errcode.E{C: errcode.BusInit, Op: "hal.I2C", Msg: "unknown controller"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.i2c[b.Controller] {
		return hw, nil
	}
	sda := machine.Pin(b.SDA)
	scl := machine.Pin(b.SCL)
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := hw.Configure(machine.I2CConfig{SCL: scl, SDA: sda, Frequency: b.FrequencyHz}); err != nil {
		return nil, errcode.Wrap(errcode.BusInit, "hal.I2C", err)
	}
	r.i2c[b.Controller] = true
	return hw, nil
}

// Console returns the UART named by c, or the USB CDC port when c.UART is nil.
func (r *rp2Platform) Console(c types.ConsoleConfig) (io.ReadWriter, error) {
	if c.UART == nil {
		return cdcPort{}, nil
	}
	var hw *uartx.UART
	switch *c.UART {
	case 0:
		hw = uartx.UART0
	case 1:
		hw = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.BusInit, Op: "hal.Console", Msg: "unknown uart"}
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: c.Baud,
		TX:       machine.Pin(c.TX),
		RX:       machine.Pin(c.RX),
	}); err != nil {
		return nil, errcode.Wrap(errcode.BusInit, "hal.Console", err)
	}
	return uartPort{u: hw}, nil
}

// uartPort makes uartx's context receive look like a blocking io.Reader.
type uartPort struct{ u *uartx.UART }

func (p uartPort) Read(b []byte) (int, error) {
	return p.u.RecvSomeContext(context.Background(), b)
}

func (p uartPort) Write(b []byte) (int, error) { return p.u.Write(b) }

// cdcPort blocks politely on the USB serial port, which never waits itself.
type cdcPort struct{}

func (cdcPort) Read(b []byte) (int, error) {
	for machine.Serial.Buffered() == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	return machine.Serial.Read(b)
}

func (cdcPort) Write(b []byte) (int, error) { return machine.Serial.Write(b) }
