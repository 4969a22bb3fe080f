package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"collective-go/services/diag"

	"go.bug.st/serial"
)

// Console opens a board's serial console, sends command characters and
// streams whatever the board prints.
type Console struct {
	Port     string        `arg:"" help:"Serial port, e.g. /dev/ttyACM0"`
	Baud     int           `help:"Baud rate" default:"115200"`
	Send     string        `help:"Characters to send: a level (s,f,e,w,n,t,v) or a sensor command (R,Z,M,B)"`
	Duration time.Duration `help:"Stop after this long, 0 streams until interrupted" default:"0s"`

	out io.Writer
}

// readTimeout bounds each Read so cancellation is noticed.
const readTimeout = 100 * time.Millisecond

func (c *Console) Run(ctx context.Context, log *slog.Logger) error {
	if err := checkCommands(c.Send); err != nil {
		return err
	}
	port, err := serial.Open(c.Port, &serial.Mode{
		BaudRate: c.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", c.Port, err)
	}
	defer port.Close()
	if err := port.SetReadTimeout(readTimeout); err != nil {
		return err
	}

	if c.Send != "" {
		if _, err := port.Write([]byte(c.Send)); err != nil {
			return fmt.Errorf("write %s: %w", c.Port, err)
		}
		log.Debug("sent console commands", "port", c.Port, "cmds", c.Send)
	}

	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	return stream(ctx, port, out)
}

// stream copies r to w until ctx is done. r must return periodically, with
// or without data.
func stream(ctx context.Context, r io.Reader, w io.Writer) error {
	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	return nil
}

// checkCommands rejects characters no board understands.
func checkCommands(s string) error {
	for i := 0; i < len(s); i++ {
		if _, ok := diag.CommandLevel(s[i]); ok {
			continue
		}
		switch s[i] {
		case 'R', 'Z', 'M', 'B':
			continue
		}
		return fmt.Errorf("unknown console command %q", s[i])
	}
	return nil
}
