// Package hidreport is the host-facing game controller report: four signed
// axes and 33 buttons, its 13-byte wire encoding, and a publisher that only
// forwards reports that changed.
package hidreport

import (
	"encoding/binary"

	"collective-go/errcode"
	"collective-go/types"
)

// Axis indexes Report.Axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisThrottle
	NumAxes
)

var axisNames = [NumAxes]types.AxisOutput{types.AxisX, types.AxisY, types.AxisZ, types.AxisThrottle}

func (a Axis) String() string {
	if a >= 0 && a < NumAxes {
		return string(axisNames[a])
	}
	return "invalid"
}

// AxisFor maps a profile axis name to its report slot.
func AxisFor(o types.AxisOutput) (Axis, bool) {
	for i, n := range axisNames {
		if n == o {
			return Axis(i), true
		}
	}
	return 0, false
}

const NumButtons = types.ReportButtons

// Report is one complete controller state. It is comparable, so unchanged
// reports can be detected with ==.
type Report struct {
	Axes    [NumAxes]int16
	Buttons [NumButtons]bool
}

func (r *Report) SetAxis(a Axis, v int16) {
	if a >= 0 && a < NumAxes {
		r.Axes[a] = v
	}
}

func (r *Report) SetButton(i int, pressed bool) {
	if i >= 0 && i < NumButtons {
		r.Buttons[i] = pressed
	}
}

// Wire layout: button bits little-endian from byte 0 bit 0, then X, Y, Z and
// Rz (throttle) as little-endian int16.
const (
	buttonBytes = (NumButtons + 7) / 8
	Size        = buttonBytes + 2*int(NumAxes)
)

// Encode writes r into dst[:Size].
func Encode(r *Report, dst []byte) error {
	if len(dst) < Size {
		return &errcode.E{C: errcode.InvalidParams, Op: "hidreport.Encode", Msg: "buffer too short"}
	}
	clear(dst[:buttonBytes])
	for i, b := range r.Buttons {
		if b {
			dst[i/8] |= 1 << (i % 8)
		}
	}
	for i, v := range r.Axes {
		binary.LittleEndian.PutUint16(dst[buttonBytes+2*i:], uint16(v))
	}
	return nil
}

// Decode is the inverse of Encode.
func Decode(src []byte, r *Report) error {
	if len(src) < Size {
		return &errcode.E{C: errcode.ShortRead, Op: "hidreport.Decode"}
	}
	for i := range r.Buttons {
		r.Buttons[i] = src[i/8]&(1<<(i%8)) != 0
	}
	for i := range r.Axes {
		r.Axes[i] = int16(binary.LittleEndian.Uint16(src[buttonBytes+2*i:]))
	}
	return nil
}

func (r *Report) MarshalBinary() ([]byte, error) {
	b := make([]byte, Size)
	return b, Encode(r, b)
}
