package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/straznik-bot/straznik/internal/storage"
	"go.uber.org/zap"
)

// PenaltyTypeSpam is the only penalty type currently recorded.
const PenaltyTypeSpam = "spam"

// PenaltyEvent is one recorded spam enforcement action.
type PenaltyEvent struct {
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}

// PenaltyTracker records spam penalties per user over the trailing hour.
// The mutex serializes the load-modify-save cycle across concurrent
// recordings.
type PenaltyTracker struct {
	store  storage.Store
	logger *zap.Logger
	clock  func() time.Time
	mu     sync.Mutex
}

// NewPenaltyTracker creates a tracker backed by the given store.
func NewPenaltyTracker(store storage.Store, logger *zap.Logger, opts ...Option) *PenaltyTracker {
	o := applyOptions(opts)

	return &PenaltyTracker{
		store:  store,
		logger: logger.Named("penalty_tracker"),
		clock:  o.clock,
	}
}

// Record prunes the user's penalties outside the rolling hour, appends a
// new penalty, persists the log, and returns the resulting count.
func (t *PenaltyTracker) Record(ctx context.Context, userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	penalties := make(map[string][]PenaltyEvent)
	_ = t.store.Load(ctx, storage.DomainSpamPenalties, &penalties)

	now := t.clock().UnixMilli()
	cutoff := now - PenaltyWindow.Milliseconds()

	recent := make([]PenaltyEvent, 0, len(penalties[userID])+1)

	for _, event := range penalties[userID] {
		if event.Timestamp > cutoff {
			recent = append(recent, event)
		}
	}

	recent = append(recent, PenaltyEvent{Timestamp: now, Type: PenaltyTypeSpam})
	penalties[userID] = recent

	if err := t.store.Save(ctx, storage.DomainSpamPenalties, penalties); err != nil {
		t.logger.Warn("Failed to persist spam-penalty log", zap.Error(err))
	}

	return len(recent)
}

// Count returns the user's penalty count within the rolling hour without
// recording anything.
func (t *PenaltyTracker) Count(ctx context.Context, userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	penalties := make(map[string][]PenaltyEvent)
	_ = t.store.Load(ctx, storage.DomainSpamPenalties, &penalties)

	cutoff := t.clock().UnixMilli() - PenaltyWindow.Milliseconds()
	count := 0

	for _, event := range penalties[userID] {
		if event.Timestamp > cutoff {
			count++
		}
	}

	return count
}
