package service

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically ends sessions that have been idle longer than
// the configured TTL.
type Reaper struct {
	sessions *SessionService
	ttl      time.Duration
	interval time.Duration
	done     chan struct{}
}

// NewReaper creates a new idle-session reaper.
func NewReaper(sessions *SessionService, ttl, interval time.Duration) *Reaper {
	return &Reaper{
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the reap loop in a background goroutine.
func (r *Reaper) Start(ctx context.Context) {
	slog.Info("session reaper started", "ttl", r.ttl, "interval", r.interval)

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		// Run once immediately on start
		r.runReap(ctx)

		for {
			select {
			case <-ticker.C:
				r.runReap(ctx)
			case <-ctx.Done():
				slog.Info("session reaper stopping")
				close(r.done)
				return
			}
		}
	}()
}

// Wait blocks until the reaper has fully stopped.
func (r *Reaper) Wait() {
	<-r.done
}

func (r *Reaper) runReap(ctx context.Context) {
	reaped, err := r.sessions.ReapIdle(ctx, r.ttl)
	if err != nil {
		slog.Error("failed to reap idle sessions", "error", err)
		return
	}
	if reaped > 0 {
		slog.Info("reap cycle complete", "reaped", reaped)
	}
}
