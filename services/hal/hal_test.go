package hal

import (
	"errors"
	"testing"

	"collective-go/errcode"
	"collective-go/types"
)

func TestFakePinPullAndDrive(t *testing.T) {
	p := NewFakePin(3)
	if err := p.ConfigureInput(PullUp); err != nil {
		t.Fatal(err)
	}
	if !p.Get() {
		t.Fatal("pulled-up input should read high")
	}
	p.Press()
	if p.Get() {
		t.Fatal("pressed switch should read low")
	}
	p.Unpress()
	if !p.Get() {
		t.Fatal("released switch should float high")
	}
	if p.Pull() != PullUp || p.IsOutput() {
		t.Fatalf("pull=%s output=%v", p.Pull(), p.IsOutput())
	}
}

func TestFakePinOutput(t *testing.T) {
	p := NewFakePin(25)
	if err := p.ConfigureOutput(true); err != nil {
		t.Fatal(err)
	}
	p.Toggle()
	if p.Get() {
		t.Fatal("toggle should drive low")
	}
	p.Set(true)
	if !p.Get() {
		t.Fatal("set should drive high")
	}
}

func TestInputsReportsFailingPin(t *testing.T) {
	h := NewHostPlatform()
	h.FakePin(19).FailConfigure(errors.New("stuck"))

	if _, err := Inputs(h, PullUp, 18, 19); err == nil {
		t.Fatal("want error")
	} else if got := err.Error(); got != "hal.Inputs: error: pin 19: stuck" {
		t.Fatalf("err = %q", got)
	}

	if _, err := Inputs(h, PullUp, 40); errcode.Of(err) != errcode.UnknownPin {
		t.Fatalf("want unknown_pin, got %v", err)
	}

	pins, err := Inputs(h, PullUp, 1, 2)
	if err != nil || len(pins) != 2 || pins[1].Number() != 2 {
		t.Fatalf("pins=%v err=%v", pins, err)
	}
}

func TestOutput(t *testing.T) {
	h := NewHostPlatform()
	pin, err := Output(h, 22, true)
	if err != nil {
		t.Fatal(err)
	}
	if !pin.Get() || !h.FakePin(22).IsOutput() {
		t.Fatal("output not driven high")
	}
}

func TestADCAndI2C(t *testing.T) {
	h := NewHostPlatform()
	if _, err := h.ADC(5); errcode.Of(err) != errcode.UnknownPin {
		t.Fatalf("ADC(5) err = %v", err)
	}
	a, err := h.ADC(27)
	if err != nil {
		t.Fatal(err)
	}
	h.FakeADC(27).Set(512)
	if a.Get() != 512 {
		t.Fatalf("adc = %d", a.Get())
	}

	b1, err := h.I2C(types.BusPins{Controller: 1})
	if err != nil || b1 != h.Bus(1) {
		t.Fatalf("I2C(1) = %v, %v", b1, err)
	}
	if _, err := h.I2C(types.BusPins{Controller: 2}); errcode.Of(err) != errcode.BusInit {
		t.Fatalf("I2C(2) err = %v", err)
	}
	if _, err := h.Console(types.ConsoleConfig{}); err == nil {
		t.Fatal("console without stream should fail")
	}
}
