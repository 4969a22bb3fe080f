package ioboard

import (
	"collective-go/errcode"
	"collective-go/services/hal"
	"collective-go/types"
)

// Address is where a board listens and which board it is.
type Address struct {
	Bus   uint16 // 7-bit bus address
	Board uint8  // 1-based board number
}

// AddressFromPins applies base + (!msb << 1) + !lsb to the pin levels
// (true = high). Straps are active-low: an unstrapped board is board 1 at base.
func AddressFromPins(base uint16, msbHigh, lsbHigh bool) Address {
	var off uint16
	if !msbHigh {
		off += 2
	}
	if !lsbHigh {
		off++
	}
	return Address{Bus: base + off, Board: uint8(off) + 1}
}

// ResolveAddress configures both strap pins as pulled-up inputs and reads
// them once. A pin that cannot be configured is a fatal startup fault.
func ResolveAddress(p hal.Platform, cfg types.AddressPins) (Address, error) {
	pins, err := hal.Inputs(p, hal.PullUp, cfg.MSB, cfg.LSB)
	if err != nil {
		return Address{}, errcode.Wrap(errcode.PinUnreadable, "ioboard.ResolveAddress", err)
	}
	return AddressFromPins(cfg.Base, pins[0].Get(), pins[1].Get()), nil
}
