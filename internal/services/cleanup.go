package services

import (
	"context"
	"time"

	"github.com/inkpost/backend/internal/logging"
)

// tokenCleaner is the slice of AuthService the sweeper needs.
type tokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context)
}

// Sweeper periodically reclaims expired refresh-token and blacklist records.
// It never returns an error: cleanup failures are logged inside
// CleanupExpiredTokens and the next tick simply tries again.
type Sweeper struct {
	cleaner  tokenCleaner
	interval time.Duration
	logger   logging.Logger
}

func NewSweeper(cleaner tokenCleaner, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{cleaner: cleaner, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, invoking the cleanup once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "token sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "token sweeper stopped")
			return
		case <-ticker.C:
			s.cleaner.CleanupExpiredTokens(ctx)
		}
	}
}
