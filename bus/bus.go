// Package bus is an in-memory two-wire device bus. Targets attach at 7-bit
// addresses; controllers address them with the drivers.I2C Tx shape or with
// a context-bounded RequestFrom. It backs the host simulator and the tests,
// and has per-address fault injection (byte limits, stalls, NAKs).
package bus

import (
	"context"
	"sync"
	"time"

	"collective-go/errcode"

	"tinygo.org/x/drivers"
)

// -----------------------------------------------------------------------------
// Targets
// -----------------------------------------------------------------------------

// Target is a device in target (peripheral) mode. Transact receives the
// controller's write bytes and fills r, returning how many bytes it supplied.
// Write-only transactions pass an empty r.
type Target interface {
	Transact(w, r []byte) int
}

// TargetFunc adapts a function to Target.
type TargetFunc func(w, r []byte) int

func (f TargetFunc) Transact(w, r []byte) int { return f(w, r) }

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

const maxAddr = 0x7F

type slot struct {
	t     Target
	limit int // bytes the target may supply; <0 = unlimited
	stall time.Duration
	nak   bool
}

type Bus struct {
	mu      sync.Mutex
	targets map[uint16]*slot
	txs     uint64
	trace   func(addr uint16, w []byte, n int, err error)
}

var _ drivers.I2C = (*Bus)(nil)

func New() *Bus {
	return &Bus{targets: make(map[uint16]*slot)}
}

// Attach places t at addr. Two targets can never share an address.
func (b *Bus) Attach(addr uint16, t Target) error {
	if addr > maxAddr {
		return &errcode.E{C: errcode.InvalidParams, Op: "bus.Attach", Msg: "address out of range"}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.targets[addr]; ok {
		return &errcode.E{C: errcode.AddressInUse, Op: "bus.Attach"}
	}
	b.targets[addr] = &slot{t: t, limit: -1}
	return nil
}

func (b *Bus) Detach(addr uint16) {
	b.mu.Lock()
	delete(b.targets, addr)
	b.mu.Unlock()
}

// Limit caps how many bytes the target at addr may supply per read.
// n < 0 removes the cap.
func (b *Bus) Limit(addr uint16, n int) {
	b.with(addr, func(s *slot) { s.limit = n })
}

// Stall delays every transaction at addr by d before the target answers.
func (b *Bus) Stall(addr uint16, d time.Duration) {
	b.with(addr, func(s *slot) { s.stall = d })
}

// NAK makes the target at addr refuse transactions while on is true.
func (b *Bus) NAK(addr uint16, on bool) {
	b.with(addr, func(s *slot) { s.nak = on })
}

// Trace installs a hook called after every transaction. Nil disables it.
func (b *Bus) Trace(fn func(addr uint16, w []byte, n int, err error)) {
	b.mu.Lock()
	b.trace = fn
	b.mu.Unlock()
}

// Transactions returns the number of transactions issued so far.
func (b *Bus) Transactions() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.txs
}

func (b *Bus) with(addr uint16, fn func(*slot)) {
	b.mu.Lock()
	if s, ok := b.targets[addr]; ok {
		fn(s)
	}
	b.mu.Unlock()
}

// lookup snapshots the slot so the target runs without the bus lock held.
func (b *Bus) lookup(addr uint16) (slot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs++
	s, ok := b.targets[addr]
	if !ok {
		return slot{}, false
	}
	return *s, true
}

func (b *Bus) done(addr uint16, w []byte, n int, err error) {
	b.mu.Lock()
	fn := b.trace
	b.mu.Unlock()
	if fn != nil {
		fn(addr, w, n, err)
	}
}

// transact runs one transaction against s. The target fills a scratch buffer
// so a byte limit never lets it touch r beyond what it may supply.
func transact(s slot, w, r []byte) int {
	want := len(r)
	if s.limit >= 0 && s.limit < want {
		want = s.limit
	}
	scratch := make([]byte, want)
	n := s.t.Transact(w, scratch)
	if n > want {
		n = want
	}
	if n < 0 {
		n = 0
	}
	return copy(r, scratch[:n])
}

// Tx implements drivers.I2C. A read that the target cannot fill completely is
// reported as errcode.ShortRead; r[n:] is left untouched.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	s, ok := b.lookup(addr)
	if !ok || s.nak {
		err := &errcode.E{C: errcode.NoDevice, Op: "bus.Tx"}
		b.done(addr, w, 0, err)
		return err
	}
	if s.stall > 0 {
		time.Sleep(s.stall)
	}
	n := transact(s, w, r)
	var err error
	if n < len(r) {
		err = &errcode.E{C: errcode.ShortRead, Op: "bus.Tx"}
	}
	b.done(addr, w, n, err)
	return err
}

// RequestFrom reads len(p) bytes from addr, giving up when ctx is done. It
// returns the true number of bytes the target supplied.
func (b *Bus) RequestFrom(ctx context.Context, addr uint16, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errcode.Wrap(errcode.Timeout, "bus.RequestFrom", err)
	}
	s, ok := b.lookup(addr)
	if !ok || s.nak {
		err := &errcode.E{C: errcode.NoDevice, Op: "bus.RequestFrom"}
		b.done(addr, nil, 0, err)
		return 0, err
	}
	if s.stall > 0 {
		t := time.NewTimer(s.stall)
		select {
		case <-ctx.Done():
			t.Stop()
			err := errcode.Wrap(errcode.Timeout, "bus.RequestFrom", ctx.Err())
			b.done(addr, nil, 0, err)
			return 0, err
		case <-t.C:
		}
	}
	n := transact(s, nil, p)
	var err error
	if n < len(p) {
		err = &errcode.E{C: errcode.ShortRead, Op: "bus.RequestFrom"}
	}
	b.done(addr, nil, n, err)
	return n, err
}
