package hidreport

import (
	"io"
	"sync"
)

// Sink publishes one report to the host.
type Sink interface {
	Send(r *Report) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(r *Report) error

func (f SinkFunc) Send(r *Report) error { return f(r) }

// WriterSink writes each report's wire encoding to W.
type WriterSink struct {
	W   io.Writer
	buf [Size]byte
}

func (s *WriterSink) Send(r *Report) error {
	if err := Encode(r, s.buf[:]); err != nil {
		return err
	}
	_, err := s.W.Write(s.buf[:])
	return err
}

// Publisher forwards reports to a sink, dropping any report identical to the
// last one delivered unless every-cycle mode is on. A failed send is not
// remembered, so the same report is retried on the next cycle.
type Publisher struct {
	mu         sync.Mutex
	sink       Sink
	last       Report
	primed     bool
	every      bool
	sent       uint64
	suppressed uint64
}

func NewPublisher(s Sink) *Publisher { return &Publisher{sink: s} }

// Publish reports whether r was handed to the sink.
func (p *Publisher) Publish(r *Report) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.every && p.primed && *r == p.last {
		p.suppressed++
		return false, nil
	}
	if err := p.sink.Send(r); err != nil {
		return false, err
	}
	p.last = *r
	p.primed = true
	p.sent++
	return true, nil
}

// SetEveryCycle turns duplicate suppression off, so each Publish reaches the
// sink.
func (p *Publisher) SetEveryCycle(on bool) {
	p.mu.Lock()
	p.every = on
	p.mu.Unlock()
}

// Reset forces the next Publish through, e.g. after the host re-enumerates.
func (p *Publisher) Reset() {
	p.mu.Lock()
	p.primed = false
	p.mu.Unlock()
}

// Stats returns delivered and suppressed counts.
func (p *Publisher) Stats() (sent, suppressed uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent, p.suppressed
}
