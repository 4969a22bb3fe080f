package diag

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// NewHandler returns a text handler gated by lv that prints the diagnostic
// level names. Timestamps are dropped unless withTime is set; the boards have
// no wall clock.
func NewHandler(w io.Writer, lv slog.Leveler, withTime bool) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lv,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				if !withTime {
					return slog.Attr{}
				}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					return slog.String(slog.LevelKey, strings.ToUpper(LevelName(l)))
				}
			}
			return a
		},
	})
}

// New builds a logger writing to w at the level held in lv.
func New(w io.Writer, lv *slog.LevelVar) *slog.Logger {
	return slog.New(NewHandler(w, lv, false))
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	lv := new(slog.LevelVar)
	lv.Set(LevelSilent)
	return New(io.Discard, lv)
}

// Setup builds the host logger: errors and above go to errw, the rest to
// outw. The level is parsed from one of the seven names (default notice).
func Setup(level string, outw, errw io.Writer) (*slog.Logger, *slog.LevelVar) {
	lv := new(slog.LevelVar)
	if l, ok := ParseLevel(level); ok {
		lv.Set(l)
	} else {
		lv.Set(LevelNotice)
	}
	h := MultiHandler{hs: []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < LevelError }, h: NewHandler(outw, lv, true)},
		LevelFilter{pass: func(l slog.Level) bool { return l >= LevelError }, h: NewHandler(errw, lv, true)},
	}}
	return slog.New(h), lv
}

// ---- Level helpers for the levels slog has no method for ----

func Fatal(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelFatal, msg, args...)
}

func Notice(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelNotice, msg, args...)
}

func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

func Verbose(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelVerbose, msg, args...)
}

// ---- Handler plumbing ----

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func NewMultiHandler(hs ...slog.Handler) MultiHandler { return MultiHandler{hs: hs} }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter passes only levels accepted by pass to h.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.pass(level) && f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}
