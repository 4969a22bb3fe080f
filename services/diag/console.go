package diag

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"collective-go/errcode"
	"collective-go/x/shmring"
)

// Console applies single-character commands taken from an input ring. Level
// characters (s,f,e,w,n,t,v) are built in; boards register extra commands
// with Handle. The loop calls Poll once per cycle.
type Console struct {
	in    *shmring.Ring
	level *slog.LevelVar
	log   *slog.Logger
	cmds  map[byte]func() error
}

func NewConsole(in *shmring.Ring, level *slog.LevelVar, log *slog.Logger) *Console {
	return &Console{in: in, level: level, log: log, cmds: make(map[byte]func() error)}
}

// Handle registers fn for key. Level characters cannot be overridden.
func (c *Console) Handle(key byte, fn func() error) {
	if _, ok := CommandLevel(key); ok {
		return
	}
	c.cmds[key] = fn
}

// Poll consumes at most one pending byte. It reports whether a byte was read.
func (c *Console) Poll() bool {
	b, ok := c.in.ReadByte()
	if !ok {
		return false
	}
	_ = c.Apply(b)
	return true
}

// Apply runs the command for b. Unknown characters leave the level unchanged
// and return errcode.Unsupported.
func (c *Console) Apply(b byte) error {
	if l, ok := CommandLevel(b); ok {
		c.level.Set(l)
		Fatal(c.log, "log level", "level", string(rune(b)))
		return nil
	}
	if fn, ok := c.cmds[b]; ok {
		if err := fn(); err != nil {
			c.log.Error("console command failed", "cmd", string(rune(b)), "err", err)
			return err
		}
		return nil
	}
	if b == '\r' || b == '\n' {
		return nil
	}
	c.log.Warn("unknown console command", "cmd", string(rune(b)))
	return errcode.Unsupported
}

// Pump copies r into ring until ctx is done or r fails. It is the producer
// side of the console; the ring drops bytes rather than blocking.
func Pump(ctx context.Context, r io.Reader, ring *shmring.Ring) error {
	buf := make([]byte, 16)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			ring.WriteFrom(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
