package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	if got := Of(nil); got != OK {
		t.Fatalf("Of(nil) = %q, want %q", got, OK)
	}
	if got := Of(Timeout); got != Timeout {
		t.Fatalf("Of(Timeout) = %q", got)
	}
	wrapped := fmt.Errorf("collect: %w", &E{C: ShortRead, Op: "board0"})
	if got := Of(wrapped); got != ShortRead {
		t.Fatalf("Of(wrapped) = %q, want %q", got, ShortRead)
	}
	if got := Of(errors.New("boom")); got != Error {
		t.Fatalf("Of(plain) = %q, want %q", got, Error)
	}
}

func TestEIsMatchesCode(t *testing.T) {
	err := Wrap(PinUnreadable, "address", errors.New("configure failed"))
	if !errors.Is(err, PinUnreadable) {
		t.Fatal("errors.Is should match the wrapped code")
	}
	if errors.Is(err, Timeout) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if got, want := err.Error(), "address: pin_unreadable: configure failed"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
