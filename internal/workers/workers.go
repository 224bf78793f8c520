package workers

import (
	"context"
	"log"
	"time"
)

// SessionSweeper drops sessions idle for longer than ttl.
type SessionSweeper interface {
	SweepIdle(ttl time.Duration, now time.Time) int
}

// StartSessionSweeper runs the sweep every interval until ctx is done.
func StartSessionSweeper(ctx context.Context, sweeper SessionSweeper, ttl, interval time.Duration) {
	if interval <= 0 || ttl <= 0 {
		log.Println("Session sweeper disabled")
		return
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sweep(sweeper, ttl, now)
			}
		}
	}()
}

func sweep(sweeper SessionSweeper, ttl time.Duration, now time.Time) {
	if n := sweeper.SweepIdle(ttl, now); n > 0 {
		log.Printf("Swept %d idle editor sessions", n)
	}
}
