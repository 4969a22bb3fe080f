package diag

import (
	"context"
	"log/slog"
	"time"
)

// Halt is where firmware goes after a startup fault. It reports err at fatal
// level every period and keeps draining the console, so the level can still
// be raised to see the report. It only returns when ctx is done.
func Halt(ctx context.Context, log *slog.Logger, c *Console, err error, period time.Duration) {
	tick := time.NewTicker(period)
	defer tick.Stop()
	for {
		Fatal(log, "startup fault", "err", err)
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		if c != nil {
			for c.Poll() {
			}
		}
	}
}
