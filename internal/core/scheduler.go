package core

// scheduler.go runs background maintenance for the Service.
//
// The only job is the session sweep: import sessions hold whole files in
// memory, so sessions nobody touched within the TTL are dropped.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often expired sessions are removed.
const DefaultSweepInterval = time.Minute

// StartSessionSweeper removes expired sessions every interval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	slog.Info("session sweeper started", "interval", interval, "ttl", s.sessionTTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case now := <-ticker.C:
			if n := s.SweepExpired(now); n > 0 {
				slog.Info("expired import sessions removed", "count", n, "remaining", s.ActiveSessions())
			}
		}
	}
}
