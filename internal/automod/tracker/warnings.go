package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/straznik-bot/straznik/internal/storage"
	"go.uber.org/zap"
)

// WarningEvent is one recorded profanity violation. The millisecond
// timestamp drives window pruning; the date string is informational and
// kept for compatibility with the persisted document layout.
type WarningEvent struct {
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
}

// WarningTracker records profanity violations per user over the trailing
// 24-hour window. The mutex serializes every load-modify-save cycle, so
// the background sweep can never overwrite a warning recorded while it
// was running.
type WarningTracker struct {
	store  storage.Store
	logger *zap.Logger
	clock  func() time.Time
	mu     sync.Mutex
}

// NewWarningTracker creates a tracker backed by the given store.
func NewWarningTracker(store storage.Store, logger *zap.Logger, opts ...Option) *WarningTracker {
	o := applyOptions(opts)

	return &WarningTracker{
		store:  store,
		logger: logger.Named("warning_tracker"),
		clock:  o.clock,
	}
}

// Record appends a violation for the user, prunes events outside the
// 24-hour window, persists the log, and returns the user's resulting
// warning count.
func (t *WarningTracker) Record(ctx context.Context, userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	warnings := make(map[string][]WarningEvent)
	_ = t.store.Load(ctx, storage.DomainProfanityWarnings, &warnings)

	now := t.clock()
	cutoff := now.Add(-WarningWindow).UnixMilli()

	events := append(warnings[userID], WarningEvent{
		Timestamp: now.UnixMilli(),
		Date:      now.UTC().Format(time.RFC3339),
	})

	recent := events[:0]

	for _, event := range events {
		if event.Timestamp > cutoff {
			recent = append(recent, event)
		}
	}

	warnings[userID] = recent

	if err := t.store.Save(ctx, storage.DomainProfanityWarnings, warnings); err != nil {
		t.logger.Warn("Failed to persist profanity-warning log", zap.Error(err))
	}

	return len(recent)
}

// Count returns the user's warning count within the 24-hour window without
// recording anything.
func (t *WarningTracker) Count(ctx context.Context, userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	warnings := make(map[string][]WarningEvent)
	_ = t.store.Load(ctx, storage.DomainProfanityWarnings, &warnings)

	cutoff := t.clock().Add(-WarningWindow).UnixMilli()
	count := 0

	for _, event := range warnings[userID] {
		if event.Timestamp > cutoff {
			count++
		}
	}

	return count
}

// PruneAll sweeps every user's log and drops expired events and empty
// users. The sweep holds the same mutex as Record for its whole
// load-filter-save cycle, so a warning recorded concurrently is either
// already in the loaded document or written after the sweep's save; it is
// never lost.
func (t *WarningTracker) PruneAll(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	warnings := make(map[string][]WarningEvent)
	_ = t.store.Load(ctx, storage.DomainProfanityWarnings, &warnings)

	cutoff := t.clock().Add(-WarningWindow).UnixMilli()

	for userID, events := range warnings {
		recent := events[:0]

		for _, event := range events {
			if event.Timestamp > cutoff {
				recent = append(recent, event)
			}
		}

		if len(recent) == 0 {
			delete(warnings, userID)
			continue
		}

		warnings[userID] = recent
	}

	if err := t.store.Save(ctx, storage.DomainProfanityWarnings, warnings); err != nil {
		t.logger.Warn("Failed to persist pruned profanity-warning log", zap.Error(err))
	}
}
