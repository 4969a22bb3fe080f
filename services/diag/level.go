// Package diag is the leveled diagnostics sink shared by both boards: a
// slog.Logger with seven named levels and a console that switches the level
// at runtime from single-character commands.
package diag

import "log/slog"

// Levels, lowest to highest. Notice, Warning and Error sit on slog's own
// Info, Warn and Error; Trace on Debug.
const (
	LevelVerbose slog.Level = -8
	LevelTrace              = slog.LevelDebug
	LevelNotice             = slog.LevelInfo
	LevelWarning            = slog.LevelWarn
	LevelError              = slog.LevelError
	LevelFatal   slog.Level = 12
	// LevelSilent is above every emitted level, so nothing passes.
	LevelSilent slog.Level = 16
)

var levels = [...]struct {
	level slog.Level
	name  string
	cmd   byte
}{
	{LevelSilent, "silent", 's'},
	{LevelFatal, "fatal", 'f'},
	{LevelError, "error", 'e'},
	{LevelWarning, "warning", 'w'},
	{LevelNotice, "notice", 'n'},
	{LevelTrace, "trace", 't'},
	{LevelVerbose, "verbose", 'v'},
}

// ParseLevel accepts the seven level names.
func ParseLevel(name string) (slog.Level, bool) {
	for _, l := range levels {
		if l.name == name {
			return l.level, true
		}
	}
	return 0, false
}

// CommandLevel maps a console character (s,f,e,w,n,t,v) to its level.
func CommandLevel(c byte) (slog.Level, bool) {
	for _, l := range levels {
		if l.cmd == c {
			return l.level, true
		}
	}
	return 0, false
}

// LevelName returns the diagnostic name of l, rounding down to the nearest
// named level.
func LevelName(l slog.Level) string {
	for _, x := range levels {
		if l >= x.level {
			return x.name
		}
	}
	return "verbose"
}

// SetLevel sets lv to the named level. Unknown names leave lv unchanged.
func SetLevel(lv *slog.LevelVar, name string) bool {
	l, ok := ParseLevel(name)
	if ok {
		lv.Set(l)
	}
	return ok
}
