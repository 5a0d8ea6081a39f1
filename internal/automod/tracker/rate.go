package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/straznik-bot/straznik/internal/storage"
	"go.uber.org/zap"
)

// RateTracker records per-user message timestamps and flags bursts that
// exceed the configured limit within the rolling time window. The mutex
// serializes the load-modify-save cycle across concurrent observations.
type RateTracker struct {
	store  storage.Store
	logger *zap.Logger
	clock  func() time.Time
	mu     sync.Mutex
}

// NewRateTracker creates a tracker backed by the given store.
func NewRateTracker(store storage.Store, logger *zap.Logger, opts ...Option) *RateTracker {
	o := applyOptions(opts)

	return &RateTracker{
		store:  store,
		logger: logger.Named("rate_tracker"),
		clock:  o.clock,
	}
}

// Observe records one message from the user and reports whether the user
// has now exceeded maxMessages within the window. The limit itself is the
// maximum allowed; only the limit+1th message within the window flags.
// Every call appends a timestamp, so the check is deliberately not
// idempotent.
func (t *RateTracker) Observe(ctx context.Context, userID string, window time.Duration, maxMessages int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := make(map[string][]int64)
	_ = t.store.Load(ctx, storage.DomainSpamTracker, &log)

	now := t.clock().UnixMilli()
	cutoff := now - window.Milliseconds()

	recent := make([]int64, 0, len(log[userID])+1)

	for _, ts := range log[userID] {
		if ts > cutoff {
			recent = append(recent, ts)
		}
	}

	recent = append(recent, now)
	log[userID] = recent

	if err := t.store.Save(ctx, storage.DomainSpamTracker, log); err != nil {
		t.logger.Warn("Failed to persist message-rate log", zap.Error(err))
	}

	return len(recent) > maxMessages
}
