// Package as5600 provides a driver for the AS5600 12-bit magnetic rotary
// position sensor.
//
//	d := as5600.New(bus)
//	a, err := d.Angle()          // 0..4095, after ZPOS/MPOS scaling
//	v := as5600.Axis(a)          // -32767..32767
//
// Word registers are big-endian (high byte at the lower register address).
// Calibration (ZPOS/MPOS) is volatile until BurnAngle commits it to OTP.
package as5600

import (
	"errors"
	"time"

	"collective-go/x/mathx"

	"tinygo.org/x/drivers"
)

// I2C address (fixed in silicon).
const Address = 0x36

// Register map.
const (
	RegZMCO      = 0x00
	RegZPOS      = 0x01
	RegMPOS      = 0x03
	RegMANG      = 0x05
	RegCONF      = 0x07
	RegStatus    = 0x0B
	RegRawAngle  = 0x0C
	RegAngle     = 0x0E
	RegAGC       = 0x1A
	RegMagnitude = 0x1B
	RegBurn      = 0xFF
)

// Burn register commands.
const (
	CmdBurnAngle   = 0x80
	CmdBurnSetting = 0x40
)

// OTP reload sequence written to RegBurn after a burn so the registers can be
// read back for verification.
var reloadSeq = [...]byte{0x01, 0x11, 0x10}

// Status bits.
const (
	StatusMagnetHigh     = 0x08
	StatusMagnetLow      = 0x10
	StatusMagnetDetected = 0x20
)

const (
	AngleMask = 0x0FFF
	FullScale = 4096
	// MaxBurns is the number of permanent angle writes the OTP allows.
	MaxBurns = 3
)

var (
	ErrBurnLimit = errors.New("as5600: angle burn limit reached")
	ErrNoMagnet  = errors.New("as5600: magnet not detected")
)

// Device wraps an I2C connection to an AS5600.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [3]byte
}

// New creates a Device on an already configured bus. It does not touch the
// hardware.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// ---- Raw register access ----

// ReadWord reads a 16-bit big-endian register pair starting at reg.
func (d *Device) ReadWord(reg uint8) (uint16, error) {
	d.buf[0] = reg
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:3]); err != nil {
		return 0, err
	}
	return uint16(d.buf[1])<<8 | uint16(d.buf[2]), nil
}

func (d *Device) ReadByte(reg uint8) (uint8, error) {
	d.buf[0] = reg
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}

// WriteWord writes v big-endian to reg and reg+1.
func (d *Device) WriteWord(reg uint8, v uint16) error {
	d.buf[0] = reg
	d.buf[1] = byte(v >> 8)
	d.buf[2] = byte(v)
	return d.bus.Tx(d.Address, d.buf[:3], nil)
}

func (d *Device) WriteByte(reg uint8, v uint8) error {
	d.buf[0] = reg
	d.buf[1] = v
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}

// ---- Angle ----

// Angle returns the scaled output angle (0..4095).
func (d *Device) Angle() (uint16, error) {
	v, err := d.ReadWord(RegAngle)
	return v & AngleMask, err
}

// RawAngle returns the unscaled angle (0..4095).
func (d *Device) RawAngle() (uint16, error) {
	v, err := d.ReadWord(RegRawAngle)
	return v & AngleMask, err
}

// Axis maps a 12-bit angle onto the signed axis range.
func Axis(angle uint16) int16 {
	return int16(mathx.MapRound(int32(angle), 0, FullScale, -32767, 32767))
}

// ---- Calibration ----

func (d *Device) ZPos() (uint16, error) {
	v, err := d.ReadWord(RegZPOS)
	return v & AngleMask, err
}

func (d *Device) SetZPos(v uint16) error { return d.WriteWord(RegZPOS, v&AngleMask) }

func (d *Device) MPos() (uint16, error) {
	v, err := d.ReadWord(RegMPOS)
	return v & AngleMask, err
}

func (d *Device) SetMPos(v uint16) error { return d.WriteWord(RegMPOS, v&AngleMask) }

// ZMCO returns how many times the angle has been burned (0..3).
func (d *Device) ZMCO() (uint8, error) {
	v, err := d.ReadByte(RegZMCO)
	return v & 0x03, err
}

func (d *Device) Status() (uint8, error) { return d.ReadByte(RegStatus) }

// SetZeroFromRaw stores the current raw angle as the start position.
func (d *Device) SetZeroFromRaw() (uint16, error) {
	raw, err := d.RawAngle()
	if err != nil {
		return 0, err
	}
	return raw, d.SetZPos(raw)
}

// SetMaxFromRaw stores the current raw angle as the stop position.
func (d *Device) SetMaxFromRaw() (uint16, error) {
	raw, err := d.RawAngle()
	if err != nil {
		return 0, err
	}
	return raw, d.SetMPos(raw)
}

// Registers is a snapshot of the calibration-relevant registers.
type Registers struct {
	Angle uint16
	Raw   uint16
	ZPos  uint16
	MPos  uint16
	ZMCO  uint8
}

func (d *Device) ReadRegisters() (Registers, error) {
	var r Registers
	var err error
	if r.Angle, err = d.Angle(); err != nil {
		return r, err
	}
	if r.Raw, err = d.RawAngle(); err != nil {
		return r, err
	}
	if r.ZPos, err = d.ZPos(); err != nil {
		return r, err
	}
	if r.MPos, err = d.MPos(); err != nil {
		return r, err
	}
	r.ZMCO, err = d.ZMCO()
	return r, err
}

// BurnAngle permanently writes ZPOS/MPOS to OTP, waits settle, then reloads
// the OTP content and returns the registers read back. The chip allows
// MaxBurns burns; it also refuses without a detected magnet.
func (d *Device) BurnAngle(settle time.Duration) (Registers, error) {
	n, err := d.ZMCO()
	if err != nil {
		return Registers{}, err
	}
	if n >= MaxBurns {
		return Registers{}, ErrBurnLimit
	}
	st, err := d.Status()
	if err != nil {
		return Registers{}, err
	}
	if st&StatusMagnetDetected == 0 {
		return Registers{}, ErrNoMagnet
	}
	if err := d.WriteByte(RegBurn, CmdBurnAngle); err != nil {
		return Registers{}, err
	}
	if settle > 0 {
		time.Sleep(settle)
	}
	for _, c := range reloadSeq {
		if err := d.WriteByte(RegBurn, c); err != nil {
			return Registers{}, err
		}
	}
	return d.ReadRegisters()
}
