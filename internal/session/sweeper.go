package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Sweeper periodically evicts expired sessions that logout left behind.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	clock    clockwork.Clock
	logger   *zap.SugaredLogger
	onPurge  func(n int64)
}

// NewSweeper returns a sweeper; onPurge (optional) observes every successful pass.
func NewSweeper(svc *Service, interval time.Duration, clock clockwork.Clock, logger *zap.SugaredLogger, onPurge func(n int64)) *Sweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sweeper{svc: svc, interval: interval, clock: clock, logger: logger, onPurge: onPurge}
}

// Run blocks until ctx is done. A non-positive interval disables sweeping.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			n, err := s.svc.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Warnw("session sweep failed", "err", err)
				continue
			}
			if s.onPurge != nil {
				s.onPurge(n)
			}
			if n > 0 {
				s.logger.Infow("expired sessions purged", "count", n)
			}
		}
	}
}
