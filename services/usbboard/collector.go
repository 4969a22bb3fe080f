package usbboard

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"collective-go/errcode"
)

// Requester performs one fixed-length read from a bus address. It returns the
// number of bytes actually received.
type Requester interface {
	RequestFrom(ctx context.Context, addr uint16, p []byte) (int, error)
}

// FrameSet holds the latest bytes received from every IO board. Only the
// collector writes it; the mapper reads it after Collect returns.
type FrameSet struct {
	size   int
	frames [][]byte
}

func NewFrameSet(boards, size int) *FrameSet {
	s := &FrameSet{size: size, frames: make([][]byte, boards)}
	for i := range s.frames {
		s.frames[i] = make([]byte, size)
	}
	return s
}

func (s *FrameSet) Boards() int { return len(s.frames) }
func (s *FrameSet) Size() int   { return s.size }

// Frame returns board i's slot. Callers must not retain it across cycles.
func (s *FrameSet) Frame(i int) []byte { return s.frames[i] }

// Result is the outcome of one board's read in a cycle.
type Result struct {
	Board int
	Addr  uint16
	N     int
	Err   error
}

// Collector polls each board once per cycle, strictly in ascending address
// order and one transaction at a time.
type Collector struct {
	req     Requester
	addrs   []uint16
	order   []int
	timeout time.Duration
	log     *slog.Logger
	scratch []byte
	results []Result
}

// NewCollector polls board i at addrs[i], reading size bytes each, with
// timeout bounding every transaction.
func NewCollector(req Requester, addrs []uint16, size int, timeout time.Duration, log *slog.Logger) *Collector {
	order := make([]int, len(addrs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return addrs[order[a]] < addrs[order[b]] })
	return &Collector{
		req:     req,
		addrs:   append([]uint16(nil), addrs...),
		order:   order,
		timeout: timeout,
		log:     log,
		scratch: make([]byte, size),
		results: make([]Result, len(addrs)),
	}
}

// Collect reads every board into set. A board that returns fewer bytes than
// the frame size keeps its previous bytes from the first missing one on; the
// fault is logged and the cycle moves on. Results are indexed by board and
// valid until the next call.
func (c *Collector) Collect(ctx context.Context, set *FrameSet) []Result {
	want := len(c.scratch)
	for _, i := range c.order {
		addr := c.addrs[i]
		tctx, cancel := context.WithTimeout(ctx, c.timeout)
		n, err := c.req.RequestFrom(tctx, addr, c.scratch)
		cancel()

		if n > want {
			n = want
		}
		if n < 0 {
			n = 0
		}
		copy(set.Frame(i)[:n], c.scratch[:n])

		if err == nil && n < want {
			err = &errcode.E{C: errcode.ShortRead, Op: "usbboard.Collect"}
		}
		if err != nil {
			c.log.Error("board read incomplete", "board", i, "addr", addr, "got", n, "want", want, "err", err)
		}
		c.results[i] = Result{Board: i, Addr: addr, N: n, Err: err}
	}
	return c.results
}
