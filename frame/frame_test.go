package frame

import (
	"sync"
	"testing"

	"collective-go/errcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutSizeAndOffsets(t *testing.T) {
	cases := []struct {
		l      Layout
		size   int
		btnOff int
		axOff  int
	}{
		{Layout{Hats: 2, Buttons: 9, Axes: 2}, 8, 2, 4},
		{Layout{Hats: 1, Buttons: 18, Axes: 2}, 8, 1, 4},
		{Layout{Hats: 0, Buttons: 8, Axes: 0}, 1, 0, 1},
		{Layout{Hats: 0, Buttons: 0, Axes: 3}, 6, 0, 0},
		{Layout{Hats: 3, Buttons: 1, Axes: 1}, 6, 3, 4},
		{Layout{Hats: 0, Buttons: 16, Axes: 4}, 10, 0, 2},
		{Layout{Hats: 4, Buttons: 17, Axes: 0}, 7, 4, 7},
	}
	for _, c := range cases {
		assert.Equal(t, c.size, c.l.Size(), "%+v size", c.l)
		assert.Equal(t, c.btnOff, c.l.ButtonOffset(), "%+v button offset", c.l)
		assert.Equal(t, c.axOff, c.l.AxisOffset(), "%+v axis offset", c.l)
		assert.Equal(t, c.l.Hats+(c.l.Buttons+7)/8+2*c.l.Axes, c.l.Size())
	}
}

func TestRegionsContiguous(t *testing.T) {
	for hats := 0; hats <= 3; hats++ {
		for buttons := 0; buttons <= 25; buttons++ {
			for axes := 0; axes <= 3; axes++ {
				l := Layout{Hats: hats, Buttons: buttons, Axes: axes}
				next := 0
				for _, r := range l.Regions() {
					require.Equal(t, next, r.Offset, "%+v %s region", l, r.Kind)
					next += r.Len
				}
				require.Equal(t, l.Size(), next)

				// Every field lies inside its region, and no two fields share a bit.
				seen := map[[2]int]bool{}
				regions := l.Regions()
				for _, f := range l.Fields() {
					r := regions[f.Kind]
					require.GreaterOrEqual(t, f.Offset, r.Offset)
					require.LessOrEqual(t, f.Offset+(f.Width+7)/8, r.Offset+r.Len)
					key := [2]int{f.Offset, f.Bit}
					require.False(t, seen[key], "overlap at %v", key)
					seen[key] = true
				}
			}
		}
	}
}

func TestLayoutValidate(t *testing.T) {
	require.NoError(t, Layout{Hats: 2, Buttons: 9, Axes: 2}.Validate())

	err := Layout{Hats: -1}.Validate()
	require.ErrorIs(t, err, errcode.InvalidConfig)
	require.ErrorIs(t, Layout{}.Validate(), errcode.InvalidConfig)
	require.ErrorIs(t, Layout{Axes: 200}.Validate(), errcode.InvalidConfig)
}

func TestAxisSignExtension(t *testing.T) {
	assert.Equal(t, int16(-32768), Axis([]byte{0x80, 0x00}))
	assert.Equal(t, int16(32767), Axis([]byte{0x7F, 0xFF}))
	assert.Equal(t, int16(-1), Axis([]byte{0xFF, 0xFF}))
	assert.Equal(t, int16(-32767), Axis([]byte{0x80, 0x01}))
	assert.Equal(t, int16(0), Axis([]byte{0x00, 0x00}))

	var b [2]byte
	for _, v := range []int16{-32768, -32767, -1, 0, 1, 255, 256, 32767} {
		PutAxis(b[:], v)
		assert.Equal(t, v, Axis(b[:]))
	}
}

func TestHatByte(t *testing.T) {
	for d := Centered; d <= UpLeft; d++ {
		for _, push := range []bool{false, true} {
			h := Hat{Dir: d, Push: push}
			assert.Equal(t, h, HatFromByte(h.Byte()))
		}
	}
	assert.Equal(t, byte(0x01), Hat{Dir: Up}.Byte())
	assert.Equal(t, byte(0x83), Hat{Dir: Right, Push: true}.Byte())
	// Unknown codes fail safe.
	assert.Equal(t, Hat{Dir: Centered}, HatFromByte(0x0C))
}

func TestDirectionOf(t *testing.T) {
	cases := []struct {
		u, r, d, l bool
		want       Direction
	}{
		{false, false, false, false, Centered},
		{true, false, false, false, Up},
		{true, true, false, false, UpRight},
		{false, true, false, false, Right},
		{false, true, true, false, DownRight},
		{false, false, true, false, Down},
		{false, false, true, true, DownLeft},
		{false, false, false, true, Left},
		{true, false, false, true, UpLeft},
		// Contradictions.
		{true, false, true, false, Centered},
		{false, true, false, true, Centered},
		{true, true, true, false, Centered},
		{true, true, false, true, Centered},
		{true, true, true, true, Centered},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DirectionOf(c.u, c.r, c.d, c.l), "u=%v r=%v d=%v l=%v", c.u, c.r, c.d, c.l)
	}
}

func TestDirectionHas(t *testing.T) {
	// A direction composed from switches engages exactly those switches.
	for mask := 0; mask < 16; mask++ {
		u, r, d, l := mask&1 != 0, mask&2 != 0, mask&4 != 0, mask&8 != 0
		dir := DirectionOf(u, r, d, l)
		if dir == Centered {
			continue
		}
		assert.Equal(t, u, dir.Has(CardinalUp), "%s", dir)
		assert.Equal(t, r, dir.Has(CardinalRight), "%s", dir)
		assert.Equal(t, d, dir.Has(CardinalDown), "%s", dir)
		assert.Equal(t, l, dir.Has(CardinalLeft), "%s", dir)
	}
}

func TestEncodeReference(t *testing.T) {
	l := Layout{Hats: 1, Buttons: 18, Axes: 2}
	s := NewState(l)
	s.Hats[0] = Hat{Dir: Up}
	s.Buttons[0], s.Buttons[8], s.Buttons[17] = true, true, true
	s.Axes[0], s.Axes[1] = -32767, 32767

	buf := make([]byte, l.Size())
	require.NoError(t, Encode(l, &s, buf))
	require.Equal(t, []byte{0x01, 0x01, 0x01, 0x02, 0x80, 0x01, 0x7F, 0xFF}, buf)

	got := NewState(l)
	require.NoError(t, Decode(l, buf, &got))
	require.Equal(t, s, got)
}

func TestEncodeOverwritesStaleBits(t *testing.T) {
	l := Layout{Hats: 1, Buttons: 9, Axes: 1}
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	s := NewState(l)
	require.NoError(t, Encode(l, &s, buf))
	require.Equal(t, make([]byte, 5), buf)
}

func TestEncodeDecodeErrors(t *testing.T) {
	l := Layout{Hats: 1, Buttons: 2, Axes: 1}
	s := NewState(l)
	require.ErrorIs(t, Encode(l, &s, make([]byte, 2)), errcode.InvalidParams)

	wrong := NewState(Layout{Hats: 2})
	require.ErrorIs(t, Encode(l, &wrong, make([]byte, 8)), errcode.InvalidParams)
	require.ErrorIs(t, Decode(l, make([]byte, 3), &s), errcode.ShortRead)
}

func TestStoreNeverTears(t *testing.T) {
	const size = 16
	st := NewStore(size)
	require.Len(t, st.Load().Bytes, size)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		p := make([]byte, size)
		for {
			select {
			case <-stop:
				return
			default:
			}
			st.CopyTo(p)
			for i := 1; i < size; i++ {
				if p[i] != p[0] {
					t.Errorf("torn frame: %v", p)
					return
				}
			}
		}
	}()

	for n := 0; n < 2000; n++ {
		snap := st.Acquire()
		for i := range snap.Bytes {
			snap.Bytes[i] = byte(n)
		}
		st.Publish(snap)
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, uint64(2000), st.Load().Seq)
}

func TestStoreRecyclesBuffers(t *testing.T) {
	st := NewStore(8)
	seen := map[*Snapshot]bool{}
	for n := 0; n < 10; n++ {
		snap := st.Acquire()
		require.NotSame(t, st.Load(), snap)
		snap.Bytes[0] = byte(n)
		st.Publish(snap)
		seen[snap] = true
	}
	assert.Len(t, seen, poolSize)

	allocs := testing.AllocsPerRun(100, func() {
		snap := st.Acquire()
		snap.Bytes[0]++
		st.Publish(snap)
	})
	assert.Zero(t, allocs)
}

func TestStoreSkipsPinnedBuffers(t *testing.T) {
	st := NewStore(4)
	cur := st.Load()
	var spares []*Snapshot
	for _, snap := range st.pool {
		if snap != cur {
			snap.pins.Add(1)
			spares = append(spares, snap)
		}
	}

	fresh := st.Acquire()
	assert.NotSame(t, cur, fresh)
	for _, s := range spares {
		assert.NotSame(t, s, fresh)
	}
	assert.Len(t, fresh.Bytes, 4)

	spares[0].pins.Add(-1)
	assert.Same(t, spares[0], st.Acquire())
}
