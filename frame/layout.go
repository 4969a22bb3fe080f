// Package frame defines the fixed-layout byte frame an IO board serves on the
// bus, and the codec between that frame and sampled channel values.
//
// A frame is three contiguous regions in fixed order:
//
//	[hat bytes][button bytes][axis words]
//	 1/hat      ceil(n/8)     2/axis, big-endian int16
//
// The layout is held as data (a field table) so encoder, decoder and report
// mapping all iterate the same description.
package frame

import (
	"collective-go/errcode"
	"collective-go/x/mathx"
)

// Layout is the per-board channel count. It never changes after boot.
type Layout struct {
	Hats    int
	Buttons int
	Axes    int
}

// Kind names the region a field lives in.
type Kind uint8

const (
	KindHat Kind = iota
	KindButton
	KindAxis
)

func (k Kind) String() string {
	switch k {
	case KindHat:
		return "hat"
	case KindButton:
		return "button"
	case KindAxis:
		return "axis"
	default:
		return "unknown"
	}
}

// Field locates one channel inside the frame. Width is in bits: 8 for hats,
// 1 for buttons, 16 for axes.
type Field struct {
	Kind   Kind
	Index  int
	Offset int
	Bit    int
	Width  int
}

// Region is a contiguous byte range dedicated to one channel class.
type Region struct {
	Kind   Kind
	Offset int
	Len    int
}

// Validate rejects negative counts and frames larger than a single bus read.
func (l Layout) Validate() error {
	if l.Hats < 0 || l.Buttons < 0 || l.Axes < 0 {
		return &errcode.E{C: errcode.InvalidConfig, Op: "frame", Msg: "negative channel count"}
	}
	if l.Size() == 0 {
		return &errcode.E{C: errcode.InvalidConfig, Op: "frame", Msg: "empty layout"}
	}
	if l.Size() > MaxSize {
		return &errcode.E{C: errcode.InvalidConfig, Op: "frame", Msg: "layout exceeds bus transfer limit"}
	}
	return nil
}

// MaxSize bounds a frame to what a single target-mode reply can carry.
const MaxSize = 255

func (l Layout) HatBytes() int    { return l.Hats }
func (l Layout) ButtonBytes() int { return mathx.CeilDiv(l.Buttons, 8) }
func (l Layout) AxisBytes() int   { return 2 * l.Axes }

func (l Layout) HatOffset() int    { return 0 }
func (l Layout) ButtonOffset() int { return l.HatBytes() }
func (l Layout) AxisOffset() int   { return l.ButtonOffset() + l.ButtonBytes() }

// Size is hats + ceil(buttons/8) + 2*axes.
func (l Layout) Size() int { return l.AxisOffset() + l.AxisBytes() }

// Regions returns the three regions in frame order.
func (l Layout) Regions() [3]Region {
	return [3]Region{
		{Kind: KindHat, Offset: l.HatOffset(), Len: l.HatBytes()},
		{Kind: KindButton, Offset: l.ButtonOffset(), Len: l.ButtonBytes()},
		{Kind: KindAxis, Offset: l.AxisOffset(), Len: l.AxisBytes()},
	}
}

// HatField, ButtonField and AxisField locate single channels.
func (l Layout) HatField(i int) Field {
	return Field{Kind: KindHat, Index: i, Offset: l.HatOffset() + i, Width: 8}
}

func (l Layout) ButtonField(i int) Field {
	return Field{Kind: KindButton, Index: i, Offset: l.ButtonOffset() + i/8, Bit: i % 8, Width: 1}
}

func (l Layout) AxisField(i int) Field {
	return Field{Kind: KindAxis, Index: i, Offset: l.AxisOffset() + 2*i, Width: 16}
}

// Fields returns the full field table in frame order.
func (l Layout) Fields() []Field {
	out := make([]Field, 0, l.Hats+l.Buttons+l.Axes)
	for i := 0; i < l.Hats; i++ {
		out = append(out, l.HatField(i))
	}
	for i := 0; i < l.Buttons; i++ {
		out = append(out, l.ButtonField(i))
	}
	for i := 0; i < l.Axes; i++ {
		out = append(out, l.AxisField(i))
	}
	return out
}
