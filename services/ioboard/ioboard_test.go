package ioboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"collective-go/bus"
	"collective-go/errcode"
	"collective-go/frame"
	"collective-go/services/diag"
	"collective-go/services/hal"
	"collective-go/types"
	"collective-go/x/shmring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int { return &n }

// refProfile is one hat (up only), 18 buttons on GPIO1..18 and two axes.
func refProfile() *types.IOBoardProfile {
	buttons := make([]int, 18)
	for i := range buttons {
		buttons[i] = i + 1
	}
	return &types.IOBoardProfile{
		Address:          types.AddressPins{Base: 8, LSB: 22, MSB: 23},
		Hats:             []types.HatPins{{Up: intp(0)}},
		Buttons:          buttons,
		Axes:             []types.AxisInput{{Pin: 26, Range: types.AxisRange{Max: 1023}}, {Pin: 27, Range: types.AxisRange{Max: 1023}}},
		AnaloguePowerPin: intp(24),
		LED:              types.LEDConfig{Pin: 25, OnMs: 50, PauseMs: 2000},
		CycleMs:          1,
		FrameLogMs:       300,
	}
}

func TestAddressAllStraps(t *testing.T) {
	cases := []struct {
		msbHigh, lsbHigh bool
		bus              uint16
		board            uint8
	}{
		{true, true, 8, 1},
		{true, false, 9, 2},
		{false, true, 10, 3},
		{false, false, 11, 4},
	}
	for _, c := range cases {
		assert.Equal(t, Address{Bus: c.bus, Board: c.board}, AddressFromPins(8, c.msbHigh, c.lsbHigh))

		h := hal.NewHostPlatform()
		if !c.msbHigh {
			h.FakePin(19).Press()
		}
		if !c.lsbHigh {
			h.FakePin(18).Press()
		}
		got, err := ResolveAddress(h, types.AddressPins{Base: 8, LSB: 18, MSB: 19})
		require.NoError(t, err)
		assert.Equal(t, Address{Bus: c.bus, Board: c.board}, got)
		assert.Equal(t, hal.PullUp, h.FakePin(18).Pull())
	}
}

func TestResolveAddressFault(t *testing.T) {
	h := hal.NewHostPlatform()
	h.FakePin(18).FailConfigure(errors.New("bad pad"))
	_, err := ResolveAddress(h, types.AddressPins{Base: 8, LSB: 18, MSB: 19})
	require.ErrorIs(t, err, errcode.PinUnreadable)

	_, err = New(h, &types.IOBoardProfile{Address: types.AddressPins{LSB: 18, MSB: 19}}, diag.Discard())
	require.ErrorIs(t, err, errcode.PinUnreadable)
}

func TestSamplerHats(t *testing.T) {
	h := hal.NewHostPlatform()
	prof := &types.IOBoardProfile{
		Hats: []types.HatPins{{Up: intp(4), Right: intp(1), Down: intp(2), Left: intp(3), Push: intp(0)}},
	}
	s, err := NewSampler(h, prof)
	require.NoError(t, err)
	st := frame.NewState(s.Layout())

	press := func(ns ...int) {
		for n := 0; n <= 4; n++ {
			h.FakePin(n).Unpress()
		}
		for _, n := range ns {
			h.FakePin(n).Press()
		}
	}
	cases := []struct {
		pins []int
		want frame.Hat
	}{
		{nil, frame.Hat{}},
		{[]int{4}, frame.Hat{Dir: frame.Up}},
		{[]int{4, 1}, frame.Hat{Dir: frame.UpRight}},
		{[]int{2, 3}, frame.Hat{Dir: frame.DownLeft}},
		{[]int{4, 2}, frame.Hat{}},
		{[]int{1, 3, 0}, frame.Hat{Push: true}},
		{[]int{4, 1, 2, 3}, frame.Hat{}},
		{[]int{0}, frame.Hat{Push: true}},
	}
	for _, c := range cases {
		press(c.pins...)
		s.Sample(&st)
		assert.Equal(t, c.want, st.Hats[0], "pins %v", c.pins)
	}
}

func TestSamplerPartialHat(t *testing.T) {
	h := hal.NewHostPlatform()
	s, err := NewSampler(h, &types.IOBoardProfile{Hats: []types.HatPins{{Up: intp(4), Down: intp(2)}}})
	require.NoError(t, err)
	st := frame.NewState(s.Layout())
	h.FakePin(2).Press()
	s.Sample(&st)
	assert.Equal(t, frame.Down, st.Hats[0].Dir)
}

func TestAxisRoundTrip(t *testing.T) {
	r := types.AxisRange{Min: 0, Max: 1023}
	assert.Equal(t, int16(-32767), AxisValue(0, r))
	assert.Equal(t, int16(32767), AxisValue(1023, r))
	assert.Equal(t, int16(-32), AxisValue(511, r))
	assert.Equal(t, int16(32), AxisValue(512, r))
	assert.Equal(t, int16(32767), AxisValue(4000, r), "clamped")

	l := frame.Layout{Axes: 1}
	st := frame.NewState(l)
	buf := make([]byte, l.Size())
	for raw := 0; raw <= 1023; raw++ {
		want := AxisValue(uint16(raw), r)
		st.Axes[0] = want
		require.NoError(t, frame.Encode(l, &st, buf))
		got := frame.NewState(l)
		require.NoError(t, frame.Decode(l, buf, &got))
		require.Equal(t, want, got.Axes[0], "raw %d", raw)
	}
}

func TestBoardEndToEnd(t *testing.T) {
	h := hal.NewHostPlatform()
	var logs bytes.Buffer
	lv := new(slog.LevelVar)
	lv.Set(diag.LevelTrace)

	b, err := New(h, refProfile(), diag.New(&logs, lv))
	require.NoError(t, err)
	assert.Equal(t, Address{Bus: 8, Board: 1}, b.Address())
	assert.True(t, h.FakePin(24).Get(), "analogue power on")
	assert.True(t, h.FakePin(25).IsOutput(), "led configured")
	assert.Equal(t, 8, b.Layout().Size())

	h.FakePin(0).Press()
	h.FakePin(1).Press()
	h.FakePin(9).Press()
	h.FakePin(18).Press()
	h.FakeADC(26).Set(0)
	h.FakeADC(27).Set(1023)

	require.NoError(t, b.Step(time.Unix(100, 0)))
	want := []byte{0x01, 0x01, 0x01, 0x02, 0x80, 0x01, 0x7F, 0xFF}
	assert.Equal(t, want, b.Store().Load().Bytes)

	// Served over the bus.
	bb := bus.New()
	require.NoError(t, bb.Attach(b.Address().Bus, b.Responder()))
	p := make([]byte, 8)
	n, err := bb.RequestFrom(context.Background(), 8, p)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, want, p)
	assert.Equal(t, uint32(1), b.Responder().Requests())

	got := frame.NewState(b.Layout())
	require.NoError(t, frame.Decode(b.Layout(), p, &got))
	assert.Equal(t, frame.Up, got.Hats[0].Dir)
	for i, pressed := range got.Buttons {
		assert.Equal(t, i == 0 || i == 8 || i == 17, pressed, "button %d", i)
	}
	assert.Equal(t, []int16{-32767, 32767}, got.Axes)

	assert.Contains(t, logs.String(), "msg=frame")
	assert.Contains(t, logs.String(), "bits=000000100000000100000001")
	assert.Contains(t, logs.String(), "requests=0 faults=0")
}

func TestResponderFaultsReachFrameLog(t *testing.T) {
	h := hal.NewHostPlatform()
	var logs bytes.Buffer
	lv := new(slog.LevelVar)
	lv.Set(diag.LevelTrace)
	b, err := New(h, refProfile(), diag.New(&logs, lv))
	require.NoError(t, err)

	b.Responder().Fault()
	b.Responder().Fault()
	assert.Equal(t, uint32(2), b.Responder().Faults())

	require.NoError(t, b.Step(time.Unix(100, 0)))
	assert.Contains(t, logs.String(), "faults=2")
}

func TestBoardStepDoesNotAllocateFrames(t *testing.T) {
	h := hal.NewHostPlatform()
	b, err := New(h, refProfile(), diag.Discard())
	require.NoError(t, err)
	now := time.Unix(0, 0)
	require.NoError(t, b.Step(now))

	seen := map[*frame.Snapshot]bool{}
	for i := 1; i <= 12; i++ {
		require.NoError(t, b.Step(now.Add(time.Duration(i)*time.Millisecond)))
		seen[b.Store().Load()] = true
	}
	assert.LessOrEqual(t, len(seen), 3, "frames come from a fixed pool")
}

func TestBoardStepReplacesFrame(t *testing.T) {
	h := hal.NewHostPlatform()
	b, err := New(h, refProfile(), diag.Discard())
	require.NoError(t, err)

	now := time.Unix(0, 0)
	require.NoError(t, b.Step(now))
	first := b.Store().Load()

	h.FakePin(0).Press()
	require.NoError(t, b.Step(now.Add(time.Millisecond)))
	second := b.Store().Load()

	assert.Equal(t, byte(0), first.Bytes[0], "the previous frame is not reused by the next cycle")
	assert.Equal(t, byte(1), second.Bytes[0])
	assert.Greater(t, second.Seq, first.Seq)
}

func TestBoardConsole(t *testing.T) {
	h := hal.NewHostPlatform()
	b, err := New(h, refProfile(), diag.Discard())
	require.NoError(t, err)

	lv := new(slog.LevelVar)
	ring := shmring.New(8)
	b.SetConsole(diag.NewConsole(ring, lv, diag.Discard()))
	ring.WriteFrom([]byte("v"))
	require.NoError(t, b.Step(time.Unix(1, 0)))
	assert.Equal(t, diag.LevelVerbose, lv.Level())
}

func TestBoardRun(t *testing.T) {
	h := hal.NewHostPlatform()
	b, err := New(h, refProfile(), diag.Discard())
	require.NoError(t, err)

	h.FakePin(0).Press()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, b.Run(ctx), context.DeadlineExceeded)
	assert.Equal(t, byte(1), b.Store().Load().Bytes[0])
}
