package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Expirer expires lapsed booking holds and reports how many changed.
type Expirer interface {
	ExpirePending(ctx context.Context) (int, error)
}

// ExpirySweeper periodically expires unpaid bookings whose hold window has passed.
type ExpirySweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *zap.Logger
}

// NewExpirySweeper creates a new ExpirySweeper.
func NewExpirySweeper(expirer Expirer, interval time.Duration, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{expirer: expirer, interval: interval, logger: logger}
}

// Start sweeps once, then on every tick until ctx is cancelled. It blocks.
func (s *ExpirySweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))
	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep runs a single pass. Failures are logged; the next tick retries.
func (s *ExpirySweeper) Sweep(ctx context.Context) int {
	n, err := s.expirer.ExpirePending(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Int("expired", n), zap.Error(err))
		return n
	}
	if n > 0 {
		s.logger.Info("expired unpaid bookings", zap.Int("expired", n))
	}
	return n
}
