package usbboard

import (
	"log/slog"
	"time"

	"collective-go/drivers/as5600"
	"collective-go/services/diag"
)

// BurnSettle is how long the chip is given to program OTP before reload.
const BurnSettle = 10 * time.Millisecond

// SensorAngle reads the AS5600 scaled angle as an axis value.
type SensorAngle struct {
	Dev *as5600.Device
}

func (s SensorAngle) Axis() (int16, error) {
	a, err := s.Dev.Angle()
	if err != nil {
		return 0, err
	}
	return as5600.Axis(a), nil
}

// RegisterCalibration adds the sensor commands to c: R dumps the registers,
// Z and M store the current raw angle as start and stop position, B burns
// them to OTP.
func RegisterCalibration(c *diag.Console, dev *as5600.Device, log *slog.Logger) {
	c.Handle('R', func() error {
		r, err := dev.ReadRegisters()
		if err != nil {
			return err
		}
		logRegisters(log, "as5600 registers", r)
		return nil
	})
	c.Handle('Z', func() error {
		raw, err := dev.SetZeroFromRaw()
		if err != nil {
			return err
		}
		diag.Notice(log, "as5600 zpos set", "raw", raw)
		return nil
	})
	c.Handle('M', func() error {
		raw, err := dev.SetMaxFromRaw()
		if err != nil {
			return err
		}
		diag.Notice(log, "as5600 mpos set", "raw", raw)
		return nil
	})
	c.Handle('B', func() error {
		r, err := dev.BurnAngle(BurnSettle)
		if err != nil {
			return err
		}
		logRegisters(log, "as5600 burned", r)
		return nil
	})
}

func logRegisters(log *slog.Logger, msg string, r as5600.Registers) {
	diag.Notice(log, msg, "angle", r.Angle, "raw", r.Raw, "zpos", r.ZPos, "mpos", r.MPos, "zmco", r.ZMCO)
}
