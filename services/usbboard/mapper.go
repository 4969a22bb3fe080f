package usbboard

import (
	"fmt"

	"collective-go/errcode"
	"collective-go/frame"
	"collective-go/services/hidreport"
	"collective-go/types"
)

type axisRoute struct {
	out    hidreport.Axis
	angle  bool
	board  int
	offset int
}

type buttonRoute struct {
	out    int
	board  int
	offset int
	bit    int
	hat    bool
	card   frame.Cardinal
}

// Mapper turns a collected frame set into a host report using the profile's
// axis and button tables. Routes are resolved once; Map only indexes bytes.
type Mapper struct {
	layout  frame.Layout
	axes    []axisRoute
	buttons []buttonRoute
}

// NewMapper resolves the tables against layout. Tables are expected to have
// passed config validation; anything still out of range is rejected here.
func NewMapper(l frame.Layout, boards int, axes []types.AxisMapping, buttons []types.ButtonMapping) (*Mapper, error) {
	m := &Mapper{layout: l}
	for i, a := range axes {
		out, ok := hidreport.AxisFor(a.Output)
		if !ok {
			return nil, mapErr("axes[%d]: unknown output %q", i, a.Output)
		}
		r := axisRoute{out: out}
		switch a.Source {
		case types.SourceAngle:
			r.angle = true
		case types.SourceFrame:
			if a.Board < 0 || a.Board >= boards || a.Axis < 0 || a.Axis >= l.Axes {
				return nil, mapErr("axes[%d]: board %d axis %d out of range", i, a.Board, a.Axis)
			}
			r.board = a.Board
			r.offset = l.AxisField(a.Axis).Offset
		default:
			return nil, mapErr("axes[%d]: unknown source %q", i, a.Source)
		}
		m.axes = append(m.axes, r)
	}
	for i, b := range buttons {
		if b.Output < 0 || b.Output >= hidreport.NumButtons || b.Board < 0 || b.Board >= boards {
			return nil, mapErr("buttons[%d]: output %d board %d out of range", i, b.Output, b.Board)
		}
		r := buttonRoute{out: b.Output, board: b.Board, offset: b.Byte, bit: b.Bit}
		if b.Hat != "" {
			c, ok := frame.ParseCardinal(b.Hat)
			if !ok || b.Byte < l.HatOffset() || b.Byte >= l.HatOffset()+l.HatBytes() {
				return nil, mapErr("buttons[%d]: bad hat entry %q at byte %d", i, b.Hat, b.Byte)
			}
			r.hat, r.card = true, c
		} else if b.Byte < 0 || b.Byte >= l.Size() || b.Bit < 0 || b.Bit > 7 {
			return nil, mapErr("buttons[%d]: byte %d bit %d out of range", i, b.Byte, b.Bit)
		}
		m.buttons = append(m.buttons, r)
	}
	return m, nil
}

func mapErr(format string, args ...any) error {
	return &errcode.E{C: errcode.InvalidConfig, Op: "usbboard.NewMapper", Msg: fmt.Sprintf(format, args...)}
}

// Map fills r from set and the local angle axis. Channels with no table entry
// are left as they are in r.
func (m *Mapper) Map(set *FrameSet, angle int16, r *hidreport.Report) {
	for _, a := range m.axes {
		if a.angle {
			r.SetAxis(a.out, angle)
			continue
		}
		r.SetAxis(a.out, frame.Axis(set.Frame(a.board)[a.offset:]))
	}
	for _, b := range m.buttons {
		src := set.Frame(b.board)
		if b.hat {
			r.SetButton(b.out, frame.HatFromByte(src[b.offset]).Dir.Has(b.card))
			continue
		}
		r.SetButton(b.out, frame.Bit(src, b.offset, b.bit))
	}
}
