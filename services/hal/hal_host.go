//go:build !rp2040

package hal

import (
	"errors"
	"io"
	"sync"

	"collective-go/bus"
	"collective-go/errcode"
	"collective-go/types"

	"tinygo.org/x/drivers"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements GPIOPin. An input reads its pull level unless a test
// drives it with Drive.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	pull    Pull
	driven  bool
	ext     bool
	cfgErr  error
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

func (p *FakePin) ConfigureInput(pull Pull) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cfgErr != nil {
		return p.cfgErr
	}
	p.modeOut = false
	p.pull = pull
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cfgErr != nil {
		return p.cfgErr
	}
	p.modeOut = true
	p.level = initial
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch {
	case p.modeOut:
		return p.level
	case p.driven:
		return p.ext
	default:
		return p.pull == PullUp
	}
}

func (p *FakePin) Toggle() {
	p.mu.Lock()
	p.level = !p.level
	p.mu.Unlock()
}

func (p *FakePin) Number() int { return p.number }

// Drive forces the externally applied level of an input.
func (p *FakePin) Drive(level bool) {
	p.mu.Lock()
	p.driven, p.ext = true, level
	p.mu.Unlock()
}

// Release stops driving the pin; it floats back to its pull.
func (p *FakePin) Release() {
	p.mu.Lock()
	p.driven = false
	p.mu.Unlock()
}

// Press and Unpress model an active-low switch to ground.
func (p *FakePin) Press()   { p.Drive(false) }
func (p *FakePin) Unpress() { p.Release() }

// FailConfigure makes the next configure calls return err.
func (p *FakePin) FailConfigure(err error) {
	p.mu.Lock()
	p.cfgErr = err
	p.mu.Unlock()
}

func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

func (p *FakePin) Pull() Pull {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pull
}

// ----------------------------- ADC (host) ------------------------------------

type FakeADC struct {
	mu  sync.Mutex
	raw uint16
}

func (a *FakeADC) Get() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.raw
}

func (a *FakeADC) Set(raw uint16) {
	a.mu.Lock()
	a.raw = raw
	a.mu.Unlock()
}

// ----------------------------- Platform (host) -------------------------------

// HostPlatform hands out stable fakes per number. I2C requests all resolve to
// the in-memory bus for the requested controller.
type HostPlatform struct {
	mu      sync.Mutex
	pins    map[int]*FakePin
	adcs    map[int]*FakeADC
	buses   [2]*bus.Bus
	console io.ReadWriter
}

var _ Platform = (*HostPlatform)(nil)

func NewHostPlatform() *HostPlatform {
	return &HostPlatform{
		pins:  make(map[int]*FakePin),
		adcs:  make(map[int]*FakeADC),
		buses: [2]*bus.Bus{bus.New(), bus.New()},
	}
}

func (h *HostPlatform) Pin(n int) (GPIOPin, error) {
	if err := checkPin(n); err != nil {
		return nil, err
	}
	return h.FakePin(n), nil
}

// FakePin exposes the underlying *FakePin for tests.
func (h *HostPlatform) FakePin(n int) *FakePin {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pins[n]
	if !ok {
		p = NewFakePin(n)
		h.pins[n] = p
	}
	return p
}

func (h *HostPlatform) ADC(pin int) (ADC, error) {
	if _, ok := adcChannel(pin); !ok {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "hal.ADC"}
	}
	return h.FakeADC(pin), nil
}

func (h *HostPlatform) FakeADC(pin int) *FakeADC {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.adcs[pin]
	if !ok {
		a = &FakeADC{}
		h.adcs[pin] = a
	}
	return a
}

func (h *HostPlatform) I2C(b types.BusPins) (drivers.I2C, error) {
	if b.Controller < 0 || b.Controller > 1 {
		return nil, &errcode.E{C: errcode.BusInit, Op: "hal.I2C"}
	}
	return h.buses[b.Controller], nil
}

// Bus returns the in-memory bus behind controller i.
func (h *HostPlatform) Bus(i int) *bus.Bus { return h.buses[i] }

// SetConsole installs the stream returned by Console.
func (h *HostPlatform) SetConsole(rw io.ReadWriter) {
	h.mu.Lock()
	h.console = rw
	h.mu.Unlock()
}

func (h *HostPlatform) Console(types.ConsoleConfig) (io.ReadWriter, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.console == nil {
		return nil, errors.New("hal: no console attached")
	}
	return h.console, nil
}
