package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/codequesthq/codequest-backend/internal/clock"
	"github.com/codequesthq/codequest-backend/internal/config"
	"github.com/codequesthq/codequest-backend/internal/model"
	"github.com/codequesthq/codequest-backend/internal/websocket"
)

// SweepStore is the slice of competition persistence the status worker
// needs: every scheduled competition, and a way to persist recomputed
// derived fields.
type SweepStore interface {
	ListScheduled(ctx context.Context) ([]model.Competition, error)
	UpdateDerived(ctx context.Context, c *model.Competition) error
}

// StatusWorker periodically recomputes competition statuses from their
// schedules. Each sweep is idempotent: a competition whose resolved status
// matches the stored one is left alone, so overlapping or repeated sweeps
// converge to the same state.
type StatusWorker struct {
	store    SweepStore
	rdb      *redis.Client
	clk      clock.Clock
	interval time.Duration
	log      zerolog.Logger
}

// NewStatusWorker creates a new StatusWorker.
func NewStatusWorker(store SweepStore, rdb *redis.Client, clk clock.Clock, interval time.Duration, log zerolog.Logger) *StatusWorker {
	return &StatusWorker{
		store:    store,
		rdb:      rdb,
		clk:      clk,
		interval: interval,
		log:      log.With().Str("component", "status_worker").Logger(),
	}
}

// Start runs the sweep loop until ctx is cancelled. Call in a goroutine.
func (w *StatusWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// One sweep up front so restarts don't wait a full interval to correct
	// statuses that drifted while the process was down.
	if _, err := w.Sweep(ctx); err != nil {
		w.log.Error().Err(err).Msg("Initial sweep failed")
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.log.Error().Err(err).Msg("Sweep failed")
			}
		}
	}
}

// Sweep resolves every scheduled competition once and persists the ones
// whose derived state changed, returning how many changed. Per-competition
// failures are logged and skipped so one bad row cannot stall the rest.
func (w *StatusWorker) Sweep(ctx context.Context) (int, error) {
	comps, err := w.store.ListScheduled(ctx)
	if err != nil {
		return 0, err
	}

	now := w.clk.Now()
	changed := 0
	for i := range comps {
		c := &comps[i]
		if !c.Resolve(now) {
			continue
		}
		if err := w.store.UpdateDerived(ctx, c); err != nil {
			w.log.Error().
				Err(err).
				Str("competition_id", c.ID.String()).
				Msg("Failed to persist status, skipping")
			continue
		}
		changed++
		w.publishStatus(ctx, c)
		w.log.Info().
			Str("competition_id", c.ID.String()).
			Str("status", string(c.Status)).
			Bool("archived", c.Archived).
			Msg("Status transitioned")
	}

	if changed > 0 {
		w.log.Debug().Int("changed", changed).Int("scanned", len(comps)).Msg("Sweep complete")
	}
	return changed, nil
}

// publishStatus pushes a status event onto the competition's Redis channel
// for websocket subscribers. Best effort; a miss only delays clients until
// their next poll.
func (w *StatusWorker) publishStatus(ctx context.Context, c *model.Competition) {
	if w.rdb == nil {
		return
	}
	event := websocket.StatusEvent{
		Event:         websocket.EventStatus,
		CompetitionID: c.ID.String(),
		Status:        c.Status,
		IsLive:        c.IsLive,
		Archived:      c.Archived,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		w.log.Error().Err(err).Msg("Marshal status event failed")
		return
	}
	channel := config.CacheKey.CompetitionEventsChannel(c.ID.String())
	if err := w.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		w.log.Warn().Err(err).Str("channel", channel).Msg("Publish status event failed")
	}
}
