package ioboard

import (
	"collective-go/frame"
	"collective-go/services/hal"
	"collective-go/types"
	"collective-go/x/mathx"
)

// Axis output range. -32768 is never produced so the range is symmetric.
const (
	AxisMin = -32767
	AxisMax = 32767
)

// HatInputs are the configured pins of one hat. Absent pins are nil.
type HatInputs struct {
	Up, Right, Down, Left, Push hal.GPIOPin
}

type AxisInput struct {
	ADC   hal.ADC
	Range types.AxisRange
}

// Sampler reads every wired channel of one board in a single pass.
type Sampler struct {
	layout  frame.Layout
	hats    []HatInputs
	buttons []hal.GPIOPin
	axes    []AxisInput
}

// NewSampler configures all switch pins as pulled-up inputs and claims the
// ADC channels named in prof.
func NewSampler(p hal.Platform, prof *types.IOBoardProfile) (*Sampler, error) {
	sh := prof.Shape()
	s := &Sampler{
		layout: frame.Layout{Hats: sh.Hats, Buttons: sh.Buttons, Axes: sh.Axes},
		hats:   make([]HatInputs, len(prof.Hats)),
		axes:   make([]AxisInput, len(prof.Axes)),
	}

	for i, h := range prof.Hats {
		in := &s.hats[i]
		for _, x := range [...]struct {
			n   *int
			dst *hal.GPIOPin
		}{{h.Up, &in.Up}, {h.Right, &in.Right}, {h.Down, &in.Down}, {h.Left, &in.Left}, {h.Push, &in.Push}} {
			if x.n == nil {
				continue
			}
			pins, err := hal.Inputs(p, hal.PullUp, *x.n)
			if err != nil {
				return nil, err
			}
			*x.dst = pins[0]
		}
	}

	var err error
	if s.buttons, err = hal.Inputs(p, hal.PullUp, prof.Buttons...); err != nil {
		return nil, err
	}

	for i, a := range prof.Axes {
		adc, err := p.ADC(a.Pin)
		if err != nil {
			return nil, err
		}
		s.axes[i] = AxisInput{ADC: adc, Range: a.Range}
	}
	return s, nil
}

func (s *Sampler) Layout() frame.Layout { return s.layout }

// Sample fills st, which must be sized for s.Layout().
func (s *Sampler) Sample(st *frame.State) {
	for i, h := range s.hats {
		st.Hats[i] = frame.Hat{
			Dir:  DecodeHat(pressed(h.Up), pressed(h.Right), pressed(h.Down), pressed(h.Left)),
			Push: pressed(h.Push),
		}
	}
	for i, b := range s.buttons {
		st.Buttons[i] = pressed(b)
	}
	for i, a := range s.axes {
		st.Axes[i] = AxisValue(a.ADC.Get(), a.Range)
	}
}

// pressed reads an active-low switch; an absent pin is never pressed.
func pressed(p hal.GPIOPin) bool { return p != nil && !p.Get() }

// DecodeHat maps the live switch combination to a direction. Contradictory
// combinations (up with down, left with right) decode to centered.
func DecodeHat(up, right, down, left bool) frame.Direction {
	return frame.DirectionOf(up, right, down, left)
}

// AxisValue rescales a raw sample from r onto AxisMin..AxisMax.
func AxisValue(raw uint16, r types.AxisRange) int16 {
	return int16(mathx.MapRound(int32(raw), r.Min, r.Max, AxisMin, AxisMax))
}
