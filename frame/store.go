package frame

import "sync/atomic"

// poolSize buffers cover the current frame, one a reader may still be
// copying, and one to fill.
const poolSize = 3

// Snapshot is one complete frame. Seq increments per publish. Once published
// its bytes do not change until the store hands it back out of Acquire,
// which never happens while it is current or pinned by a reader.
type Snapshot struct {
	Seq   uint64
	Bytes []byte
	pins  atomic.Int32
}

// Store holds the currently servable frame. A single writer (the sampling
// loop) fills a spare buffer and swaps it in; readers on the bus path copy
// whatever is current and never see a partially written frame. Buffers are
// recycled so the loop does not allocate per cycle.
type Store struct {
	cur  atomic.Pointer[Snapshot]
	seq  atomic.Uint64
	pool [poolSize]*Snapshot
	next int
}

// NewStore seeds the store with an all-zero frame of the given size so the
// responder has something to serve before the first cycle completes.
func NewStore(size int) *Store {
	s := &Store{}
	for i := range s.pool {
		s.pool[i] = &Snapshot{Bytes: make([]byte, size)}
	}
	s.cur.Store(s.pool[0])
	s.next = 1
	return s
}

// Acquire returns a buffer the writer may fill: never the current frame and
// never one a reader holds. If every spare is pinned a fresh one is made.
// Writer side only.
func (s *Store) Acquire() *Snapshot {
	cur := s.cur.Load()
	for i := 0; i < poolSize; i++ {
		snap := s.pool[s.next]
		s.next = (s.next + 1) % poolSize
		if snap != cur && snap.pins.Load() == 0 {
			return snap
		}
	}
	return &Snapshot{Bytes: make([]byte, len(cur.Bytes))}
}

// Publish makes snap current. The writer must not touch it afterwards.
func (s *Store) Publish(snap *Snapshot) {
	snap.Seq = s.seq.Add(1)
	s.cur.Store(snap)
}

// Load returns the current snapshot. Its bytes stay valid only until the
// writer's next Acquire cycles back to it; other goroutines use CopyTo.
func (s *Store) Load() *Snapshot { return s.cur.Load() }

// CopyTo copies the current frame into p and returns the number of bytes
// copied. The snapshot is pinned for the copy and re-checked as current
// after pinning, so a buffer being refilled is never read.
func (s *Store) CopyTo(p []byte) int {
	for {
		snap := s.cur.Load()
		if snap == nil {
			return 0
		}
		snap.pins.Add(1)
		if s.cur.Load() == snap {
			n := copy(p, snap.Bytes)
			snap.pins.Add(-1)
			return n
		}
		snap.pins.Add(-1)
	}
}
