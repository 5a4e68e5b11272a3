package cleanup

import (
	"context"
	"time"

	"github.com/talkroom-app/backend/internal/auth/repository"
	"github.com/talkroom-app/backend/internal/common/constants"
	"github.com/talkroom-app/backend/internal/common/logger"
	"github.com/talkroom-app/backend/internal/observability/metrics"
)

// StartRefreshTokenCleanup deletes expired refresh tokens on a fixed
// interval until ctx is cancelled.
func StartRefreshTokenCleanup(ctx context.Context, repo repository.RefreshTokenRepository, log *logger.Logger) {
	go func() {
		ticker := time.NewTicker(constants.RefreshTokenCleanupEvery)
		defer ticker.Stop()

		runCleanup(ctx, repo, log)

		for {
			select {
			case <-ctx.Done():
				log.Info("refresh token cleanup stopped")
				return
			case <-ticker.C:
				runCleanup(ctx, repo, log)
			}
		}
	}()
}

func runCleanup(ctx context.Context, repo repository.RefreshTokenRepository, log *logger.Logger) {
	deleted, err := repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Errorf("refresh token cleanup failed: %v", err)
		return
	}

	if deleted > 0 {
		metrics.RefreshTokensCleanupDeleted.Add(float64(deleted))
		log.WithFields(ctx, logger.Fields{
			"deleted": deleted,
			"action":  "refresh_token_cleanup",
		}).Info("deleted expired refresh tokens")
	}
}
