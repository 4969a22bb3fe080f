package usbboard

import (
	"context"

	"collective-go/errcode"

	"tinygo.org/x/drivers"
)

// TxRequester bounds drivers.I2C reads with a context. The Tx runs in its own
// goroutine; if the context expires first the read is reported as a timeout
// and the bus stays reserved until the abandoned Tx returns, so transactions
// never overlap.
type TxRequester struct {
	bus  drivers.I2C
	busy chan struct{}
}

func NewTxRequester(bus drivers.I2C) *TxRequester {
	return &TxRequester{bus: bus, busy: make(chan struct{}, 1)}
}

// RequestFrom reports either len(p) bytes or none: drivers.I2C has no notion
// of a partial read.
func (r *TxRequester) RequestFrom(ctx context.Context, addr uint16, p []byte) (int, error) {
	select {
	case r.busy <- struct{}{}:
	case <-ctx.Done():
		return 0, errcode.Wrap(errcode.Timeout, "usbboard.RequestFrom", ctx.Err())
	}

	buf := make([]byte, len(p))
	done := make(chan error, 1)
	go func() {
		err := r.bus.Tx(addr, nil, buf)
		<-r.busy
		done <- err
	}()

	select {
	case <-ctx.Done():
		return 0, errcode.Wrap(errcode.Timeout, "usbboard.RequestFrom", ctx.Err())
	case err := <-done:
		if err != nil {
			return 0, err
		}
		return copy(p, buf), nil
	}
}
