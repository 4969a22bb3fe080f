package ioboard

import (
	"sync/atomic"

	"collective-go/frame"
)

// Responder serves the installed frame to bus reads. It never waits on the
// sampling loop: it copies whatever snapshot is current.
type Responder struct {
	store    *frame.Store
	requests atomic.Uint32
	faults   atomic.Uint32
}

func NewResponder(store *frame.Store) *Responder {
	return &Responder{store: store}
}

// Transact implements bus.Target. Controller writes carry no meaning and are
// ignored; a read gets as much of the frame as it asked for.
func (r *Responder) Transact(w, p []byte) int {
	if len(p) == 0 {
		return 0
	}
	r.requests.Add(1)
	return r.store.CopyTo(p)
}

// Requests counts read requests served since boot.
func (r *Responder) Requests() uint32 { return r.requests.Load() }

// Fault records a failed bus event or reply on the target side.
func (r *Responder) Fault() { r.faults.Add(1) }

// Faults counts bus faults seen since boot.
func (r *Responder) Faults() uint32 { return r.faults.Load() }
