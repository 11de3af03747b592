package jobs

import (
	"context"
	"time"

	"notekeeper/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

const DefaultSweepInterval = 15 * time.Minute

type TokenRepository interface {
	ClearExpiredTokens(now int64) (int64, error)
}

// TokenCleaner periodically nulls verify and reset tokens past their
// expiry. Expired tokens are already rejected on use, the sweep only keeps
// the table tidy.
type TokenCleaner struct {
	userRepo TokenRepository
	interval time.Duration
}

func NewTokenCleaner(repo TokenRepository, interval time.Duration) *TokenCleaner {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &TokenCleaner{userRepo: repo, interval: interval}
}

// Start blocks until ctx is cancelled.
func (c *TokenCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Infof("Token cleaner cron started, sweeping every %s", c.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping token cleaner...")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *TokenCleaner) cleanup() {
	cleared, err := c.userRepo.ClearExpiredTokens(utils.NowUTC())
	if err != nil {
		log.Errorf("Cleaner: failed to clear expired tokens: %v", err)
		return
	}

	if cleared > 0 {
		log.Infof("Cleaner: cleared %d expired tokens", cleared)
		return
	}
	log.Debug("Cleaner: no expired tokens found")
}
