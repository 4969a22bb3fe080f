package timex

import (
	"testing"
	"time"
)

func TestEvery(t *testing.T) {
	t0 := time.Unix(100, 0)
	e := Every{Period: 300 * time.Millisecond}
	if !e.Due(t0) {
		t.Fatal("first call should fire")
	}
	if e.Due(t0.Add(300 * time.Millisecond)) {
		t.Fatal("fired at exactly one period")
	}
	if !e.Due(t0.Add(301 * time.Millisecond)) {
		t.Fatal("did not fire after one period")
	}
	var off Every
	if off.Due(t0) {
		t.Fatal("zero period fired")
	}
}
