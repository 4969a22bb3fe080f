package as5600

import "sync"

// Sim emulates an AS5600 register file for the in-memory bus. A write sets
// the register pointer from its first byte and stores any remaining bytes;
// reads start at the pointer and auto-increment, like the real part.
type Sim struct {
	mu      sync.Mutex
	regs    [256]byte
	ptr     uint8
	raw     uint16
	magnet  bool
	reloads int
}

func NewSim() *Sim {
	return &Sim{magnet: true}
}

// SetRaw positions the simulated magnet (0..4095).
func (s *Sim) SetRaw(raw uint16) {
	s.mu.Lock()
	s.raw = raw & AngleMask
	s.mu.Unlock()
}

func (s *Sim) SetMagnet(present bool) {
	s.mu.Lock()
	s.magnet = present
	s.mu.Unlock()
}

// Burns returns the simulated ZMCO counter.
func (s *Sim) Burns() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[RegZMCO]
}

// Reloads counts OTP reload commands seen.
func (s *Sim) Reloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloads
}

func (s *Sim) word(reg uint8) uint16 {
	return (uint16(s.regs[reg])<<8 | uint16(s.regs[reg+1])) & AngleMask
}

func (s *Sim) putWord(reg uint8, v uint16) {
	s.regs[reg] = byte(v >> 8)
	s.regs[reg+1] = byte(v)
}

// angle applies ZPOS/MPOS scaling to the raw position.
func (s *Sim) angle() uint16 {
	zpos, mpos := s.word(RegZPOS), s.word(RegMPOS)
	rel := (s.raw - zpos) & AngleMask
	if mpos == 0 || mpos == zpos {
		return rel
	}
	span := uint32((mpos - zpos) & AngleMask)
	a := uint32(rel) * FullScale / span
	if a > AngleMask {
		a = AngleMask
	}
	return uint16(a)
}

func (s *Sim) refresh() {
	s.putWord(RegRawAngle, s.raw)
	s.putWord(RegAngle, s.angle())
	var st byte
	if s.magnet {
		st = StatusMagnetDetected
	}
	s.regs[RegStatus] = st
}

func (s *Sim) write(reg uint8, v byte) {
	switch reg {
	case RegBurn:
		switch v {
		case CmdBurnAngle:
			if s.regs[RegZMCO] < MaxBurns && s.magnet {
				s.regs[RegZMCO]++
			}
		case reloadSeq[0], reloadSeq[1], reloadSeq[2]:
			s.reloads++
		}
	case RegZMCO, RegStatus, RegRawAngle, RegRawAngle + 1, RegAngle, RegAngle + 1:
		// read-only
	default:
		s.regs[reg] = v
	}
}

// Transact implements bus.Target.
func (s *Sim) Transact(w, r []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(w) > 0 {
		s.ptr = w[0]
		for i, v := range w[1:] {
			s.write(s.ptr+uint8(i), v)
		}
	}
	if len(r) == 0 {
		return 0
	}
	s.refresh()
	for i := range r {
		r[i] = s.regs[s.ptr+uint8(i)]
	}
	return len(r)
}
