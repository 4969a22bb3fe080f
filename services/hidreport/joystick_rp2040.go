//go:build rp2040

package hidreport

import (
	"machine/usb/hid/joystick"
)

// joystickPort is the subset of TinyGo's joystick the sink drives.
type joystickPort interface {
	SetButton(index int, push bool)
	SetAxis(index int, v int)
	SendState()
}

// JoystickSink publishes reports as a USB HID joystick with NumButtons
// buttons and NumAxes 16-bit axes, in Axis order.
type JoystickSink struct {
	js joystickPort
}

// NewJoystickSink registers the joystick with the USB stack. Call it once,
// before the host enumerates the device.
func NewJoystickSink() *JoystickSink {
	axes := make([]joystick.Constraint, NumAxes)
	for i := range axes {
		axes[i] = joystick.Constraint{MinIn: -32767, MaxIn: 32767, MinOut: -32767, MaxOut: 32767}
	}
	js := joystick.UseSettings(joystick.Definitions{
		ReportID:  1,
		ButtonCnt: NumButtons,
		AxisDefs:  axes,
	}, nil, nil, nil)
	return &JoystickSink{js: js}
}

func (s *JoystickSink) Send(r *Report) error {
	for i, b := range r.Buttons {
		s.js.SetButton(i, b)
	}
	for i, v := range r.Axes {
		s.js.SetAxis(i, int(v))
	}
	s.js.SendState()
	return nil
}
