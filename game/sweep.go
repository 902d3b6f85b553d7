package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunSweeper periodically deletes games untouched for longer than
// retention, along with their players. It is leak prevention, not a
// gameplay timeout; active rooms refresh their last-modified time on
// every write and never qualify.
func RunSweeper(ctx context.Context, games GameStore, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := games.PurgeIdleGames(ctx, time.Now().Add(-retention))
			if err != nil {
				log.Error().Err(err).Msg("retention sweep failed")
				continue
			}
			if purged > 0 {
				log.Info().Int64("purged", purged).Msg("idle games cleaned up")
			}
		}
	}
}
