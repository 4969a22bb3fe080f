package frame

import (
	"collective-go/errcode"
)

// State is one board's sampled channels, sized by a Layout.
type State struct {
	Hats    []Hat
	Buttons []bool
	Axes    []int16
}

// NewState allocates a zeroed State for l.
func NewState(l Layout) State {
	return State{
		Hats:    make([]Hat, l.Hats),
		Buttons: make([]bool, l.Buttons),
		Axes:    make([]int16, l.Axes),
	}
}

func (s *State) fits(l Layout) bool {
	return len(s.Hats) == l.Hats && len(s.Buttons) == l.Buttons && len(s.Axes) == l.Axes
}

// Encode writes s into dst[:l.Size()] following l's field table. dst is
// overwritten wholesale, so stale bits never survive a cycle.
func Encode(l Layout, s *State, dst []byte) error {
	if !s.fits(l) {
		return &errcode.E{C: errcode.InvalidParams, Op: "frame.Encode", Msg: "state does not match layout"}
	}
	if len(dst) < l.Size() {
		return &errcode.E{C: errcode.InvalidParams, Op: "frame.Encode", Msg: "destination too short"}
	}
	dst = dst[:l.Size()]
	clear(dst)

	for _, f := range l.Fields() {
		switch f.Kind {
		case KindHat:
			dst[f.Offset] = s.Hats[f.Index].Byte()
		case KindButton:
			if s.Buttons[f.Index] {
				dst[f.Offset] |= 1 << f.Bit
			}
		case KindAxis:
			PutAxis(dst[f.Offset:], s.Axes[f.Index])
		}
	}
	return nil
}

// Decode reads src[:l.Size()] into s, which must have been sized by NewState(l).
func Decode(l Layout, src []byte, s *State) error {
	if !s.fits(l) {
		return &errcode.E{C: errcode.InvalidParams, Op: "frame.Decode", Msg: "state does not match layout"}
	}
	if len(src) < l.Size() {
		return &errcode.E{C: errcode.ShortRead, Op: "frame.Decode"}
	}

	for _, f := range l.Fields() {
		switch f.Kind {
		case KindHat:
			s.Hats[f.Index] = HatFromByte(src[f.Offset])
		case KindButton:
			s.Buttons[f.Index] = Bit(src, f.Offset, f.Bit)
		case KindAxis:
			s.Axes[f.Index] = Axis(src[f.Offset:])
		}
	}
	return nil
}

// PutAxis stores v big-endian in b[0:2].
func PutAxis(b []byte, v int16) {
	_ = b[1]
	u := uint16(v)
	b[0] = byte(u >> 8) // msb
	b[1] = byte(u)      // lsb
}

// Axis reads a big-endian signed 16-bit value from b[0:2]. The high byte's
// bit 7 is the sign; negative values are extended through the upper bits.
func Axis(b []byte) int16 {
	_ = b[1]
	v := int32(b[0])<<8 | int32(b[1])
	if b[0]&0x80 != 0 {
		v |= ^int32(0xFFFF)
	}
	return int16(v)
}

// Bit reports bit `bit` of src[offset].
func Bit(src []byte, offset, bit int) bool {
	return src[offset]&(1<<bit) != 0
}
