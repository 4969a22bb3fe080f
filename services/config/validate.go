package config

import (
	"fmt"

	"collective-go/errcode"
	"collective-go/frame"
	"collective-go/services/diag"
	"collective-go/types"
)

// Board limits.
const (
	MaxPin    = 29 // RP2040 GPIO0..GPIO29
	MaxBoards = 4  // two address straps
	maxAddr   = 0x77
)

func invalid(format string, args ...any) error {
	return &errcode.E{C: errcode.InvalidConfig, Op: "config", Msg: fmt.Sprintf(format, args...)}
}

// pinSet tracks pin ownership so two roles can never claim one GPIO.
type pinSet map[int]string

func (s pinSet) claim(pin int, role string) error {
	if pin < 0 || pin > MaxPin {
		return invalid("%s: pin %d out of range", role, pin)
	}
	if prev, ok := s[pin]; ok {
		return invalid("pin %d used by both %s and %s", pin, prev, role)
	}
	s[pin] = role
	return nil
}

func (s pinSet) claimOpt(pin *int, role string) error {
	if pin == nil {
		return nil
	}
	return s.claim(*pin, role)
}

func validateLog(lg types.LogConfig) error {
	for _, name := range []string{lg.Startup, lg.Run} {
		if name == "" {
			continue
		}
		if _, ok := diag.ParseLevel(name); !ok {
			return invalid("unknown log level %q", name)
		}
	}
	return nil
}

func validateBus(pins pinSet, b types.BusPins, role string) error {
	if b.Controller != 0 && b.Controller != 1 {
		return invalid("%s: controller must be 0 or 1", role)
	}
	if err := pins.claim(b.SDA, role+".sda"); err != nil {
		return err
	}
	return pins.claim(b.SCL, role+".scl")
}

func validateConsole(pins pinSet, c types.ConsoleConfig) error {
	if c.UART == nil {
		return nil
	}
	if *c.UART != 0 && *c.UART != 1 {
		return invalid("console: uart must be 0 or 1")
	}
	if err := pins.claim(c.TX, "console.tx"); err != nil {
		return err
	}
	return pins.claim(c.RX, "console.rx")
}

// ValidateIOBoard checks an IO board profile.
// It performs declarative validation only and MUST NOT mutate the profile.
func ValidateIOBoard(p *types.IOBoardProfile) error {
	if p == nil {
		return invalid("nil profile")
	}
	sh := p.Shape()
	if err := (frame.Layout{Hats: sh.Hats, Buttons: sh.Buttons, Axes: sh.Axes}).Validate(); err != nil {
		return err
	}
	if int(p.Address.Base)+MaxBoards-1 > maxAddr {
		return invalid("address base 0x%02x leaves no room for %d boards", p.Address.Base, MaxBoards)
	}

	pins := pinSet{}
	if err := pins.claim(p.Address.LSB, "address.lsb"); err != nil {
		return err
	}
	if err := pins.claim(p.Address.MSB, "address.msb"); err != nil {
		return err
	}
	if err := validateBus(pins, p.Bus, "bus"); err != nil {
		return err
	}
	for i, h := range p.Hats {
		role := fmt.Sprintf("hats[%d]", i)
		if h.Up == nil && h.Right == nil && h.Down == nil && h.Left == nil && h.Push == nil {
			return invalid("%s: no pins", role)
		}
		for _, pin := range []struct {
			p    *int
			name string
		}{{h.Up, "up"}, {h.Right, "right"}, {h.Down, "down"}, {h.Left, "left"}, {h.Push, "push"}} {
			if err := pins.claimOpt(pin.p, role+"."+pin.name); err != nil {
				return err
			}
		}
	}
	for i, b := range p.Buttons {
		if err := pins.claim(b, fmt.Sprintf("buttons[%d]", i)); err != nil {
			return err
		}
	}
	for i, a := range p.Axes {
		role := fmt.Sprintf("axes[%d]", i)
		if err := pins.claim(a.Pin, role); err != nil {
			return err
		}
		if !(a.Range.Min == 0 && a.Range.Max == 0) && a.Range.Min >= a.Range.Max {
			return invalid("%s: range min must be below max", role)
		}
	}
	if err := pins.claimOpt(p.AnaloguePowerPin, "analogue_power_pin"); err != nil {
		return err
	}
	if err := validateConsole(pins, p.Console); err != nil {
		return err
	}
	if p.LED.Flashes < 0 {
		return invalid("led: flashes must not be negative")
	}
	return validateLog(p.Log)
}

// ValidateUSBBoard checks a USB board profile, including every mapping entry
// against the frame shape. It MUST NOT mutate the profile.
func ValidateUSBBoard(p *types.USBBoardProfile) error {
	if p == nil {
		return invalid("nil profile")
	}
	if p.Boards < 1 || p.Boards > MaxBoards {
		return invalid("boards must be 1..%d", MaxBoards)
	}
	if int(p.BaseAddress)+p.Boards-1 > maxAddr {
		return invalid("board addresses exceed 0x%02x", maxAddr)
	}
	l := frame.Layout{Hats: p.Frame.Hats, Buttons: p.Frame.Buttons, Axes: p.Frame.Axes}
	if err := l.Validate(); err != nil {
		return err
	}

	sensor := p.Sensor.Address
	if sensor == 0 {
		sensor = DefaultSensorAddress
	}
	if sensor > 0x7F {
		return invalid("sensor: address out of range")
	}
	if p.Sensor.Bus.Controller == p.Bus.Controller && sensor >= p.BaseAddress && int(sensor) < int(p.BaseAddress)+p.Boards {
		return invalid("sensor address 0x%02x collides with an IO board", sensor)
	}

	pins := pinSet{}
	if err := validateBus(pins, p.Bus, "bus"); err != nil {
		return err
	}
	if p.Sensor.Bus.Controller != p.Bus.Controller {
		if err := validateBus(pins, p.Sensor.Bus, "sensor.bus"); err != nil {
			return err
		}
	}
	if err := pins.claimOpt(p.Sensor.DirPin, "sensor.dir_pin"); err != nil {
		return err
	}
	if err := validateConsole(pins, p.Console); err != nil {
		return err
	}

	outputs := map[types.AxisOutput]bool{}
	for i, a := range p.Axes {
		switch a.Output {
		case types.AxisX, types.AxisY, types.AxisZ, types.AxisThrottle:
		default:
			return invalid("axes[%d]: unknown output %q", i, a.Output)
		}
		if outputs[a.Output] {
			return invalid("axes[%d]: output %q mapped twice", i, a.Output)
		}
		outputs[a.Output] = true
		switch a.Source {
		case types.SourceAngle:
		case types.SourceFrame:
			if a.Board < 0 || a.Board >= p.Boards {
				return invalid("axes[%d]: board %d out of range", i, a.Board)
			}
			if a.Axis < 0 || a.Axis >= l.Axes {
				return invalid("axes[%d]: axis %d out of range", i, a.Axis)
			}
		default:
			return invalid("axes[%d]: unknown source %q", i, a.Source)
		}
	}

	seen := map[int]bool{}
	for i, b := range p.Buttons {
		if b.Output < 0 || b.Output >= types.ReportButtons {
			return invalid("buttons[%d]: output %d out of range", i, b.Output)
		}
		if seen[b.Output] {
			return invalid("buttons[%d]: output %d mapped twice", i, b.Output)
		}
		seen[b.Output] = true
		if b.Board < 0 || b.Board >= p.Boards {
			return invalid("buttons[%d]: board %d out of range", i, b.Board)
		}
		if b.Hat != "" {
			if _, ok := frame.ParseCardinal(b.Hat); !ok {
				return invalid("buttons[%d]: unknown hat switch %q", i, b.Hat)
			}
			if b.Byte < l.HatOffset() || b.Byte >= l.HatOffset()+l.HatBytes() {
				return invalid("buttons[%d]: byte %d is not a hat byte", i, b.Byte)
			}
			continue
		}
		if b.Byte < 0 || b.Byte >= l.AxisOffset() {
			return invalid("buttons[%d]: byte %d outside hat and button regions", i, b.Byte)
		}
		if b.Bit < 0 || b.Bit > 7 {
			return invalid("buttons[%d]: bit %d out of range", i, b.Bit)
		}
	}
	return validateLog(p.Log)
}
