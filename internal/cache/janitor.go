package cache

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper is anything that can drop its expired entries.
type Sweeper interface {
	Sweep() int
}

// RunJanitor sweeps every target on each tick until ctx is done.
func RunJanitor(ctx context.Context, interval time.Duration, targets ...Sweeper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			total := 0
			for _, t := range targets {
				total += t.Sweep()
			}
			if total > 0 {
				slog.DebugContext(ctx, "Swept expired cache entries", "count", total)
			}
		case <-ctx.Done():
			return
		}
	}
}
