// Package history keeps the append-only per-user audit log of moderation
// actions. The ledger is independent of the escalation counters: entries
// are never pruned, mutated, or deleted.
package history

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/straznik-bot/straznik/internal/storage"
	"go.uber.org/zap"
)

// Entry is one recorded moderation action against a user.
type Entry struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Reason     string    `json:"reason"`
	Moderator  Moderator `json:"moderator"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs *int64    `json:"duration"`
}

// legacyEntry is the flat array element layout written by early releases,
// with the user ID embedded in each entry instead of keying a map.
type legacyEntry struct {
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
	Moderator Moderator `json:"moderator"`
	Timestamp time.Time `json:"timestamp"`
}

// document is the persisted history layout: user ID to entries. Its
// unmarshaler transparently upgrades the legacy array layout, so readers
// of either format see the same map and the next write persists the
// upgraded form.
type document map[string][]*Entry

// UnmarshalJSON accepts both the current map layout and the legacy array
// layout.
func (d *document) UnmarshalJSON(data []byte) error {
	var byUser map[string][]*Entry
	if err := sonic.Unmarshal(data, &byUser); err == nil {
		*d = byUser
		return nil
	}

	var legacy []legacyEntry
	if err := sonic.Unmarshal(data, &legacy); err != nil {
		return err
	}

	byUser = make(map[string][]*Entry, len(legacy))
	for _, old := range legacy {
		byUser[old.UserID] = append(byUser[old.UserID], &Entry{
			ID:        uuid.New().String(),
			Type:      old.Action,
			Reason:    old.Reason,
			Moderator: old.Moderator,
			Timestamp: old.Timestamp,
		})
	}

	*d = byUser

	return nil
}

// Ledger appends to and reads the moderation history document.
type Ledger struct {
	store  storage.Store
	logger *zap.Logger
	clock  func() time.Time
}

// NewLedger creates a ledger backed by the given store.
func NewLedger(store storage.Store, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger.Named("history"),
		clock:  time.Now,
	}
}

// Append records an action against the user and persists the ledger. A
// failed write is logged and swallowed; the returned entry reflects what
// was attempted either way.
func (l *Ledger) Append(
	ctx context.Context, userID, actionType, reason string, moderator Moderator, duration *time.Duration,
) *Entry {
	doc := make(document)
	_ = l.store.Load(ctx, storage.DomainHistory, &doc)

	entry := &Entry{
		ID:        uuid.New().String(),
		Type:      actionType,
		Reason:    reason,
		Moderator: moderator,
		Timestamp: l.clock().UTC(),
	}
	if duration != nil {
		ms := duration.Milliseconds()
		entry.DurationMs = &ms
	}

	doc[userID] = append(doc[userID], entry)

	if err := l.store.Save(ctx, storage.DomainHistory, doc); err != nil {
		l.logger.Warn("Failed to persist moderation history",
			zap.String("userID", userID),
			zap.Error(err))
	}

	return entry
}

// RecordManualAction appends an entry on behalf of a human moderator.
// Hosts that run their own command layer call this after executing a
// manual warn, kick, or ban.
func (l *Ledger) RecordManualAction(ctx context.Context, userID, actionType, reason, moderatorID string) *Entry {
	return l.Append(ctx, userID, actionType, reason, Human(moderatorID), nil)
}

// UserHistory returns all recorded entries for the user, oldest first.
func (l *Ledger) UserHistory(ctx context.Context, userID string) []*Entry {
	doc := make(document)
	_ = l.store.Load(ctx, storage.DomainHistory, &doc)

	return doc[userID]
}

// All returns the full ledger keyed by user ID.
func (l *Ledger) All(ctx context.Context) map[string][]*Entry {
	doc := make(document)
	_ = l.store.Load(ctx, storage.DomainHistory, &doc)

	return doc
}
