// Package automod implements the auto-moderation decision-and-penalty
// engine: it classifies inbound messages for profanity and spam, tracks
// per-user violation state over rolling time windows, escalates penalties
// based on accumulated history, and executes the resulting enforcement
// action against the platform.
package automod

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/straznik-bot/straznik/internal/automod/history"
	"github.com/straznik-bot/straznik/internal/automod/tracker"
	"github.com/straznik-bot/straznik/internal/storage"
	"go.uber.org/zap"
)

// maintenanceChance is the per-message probability of triggering a
// background sweep of expired profanity warnings. The sweep is a side
// task: it never blocks or alters the outcome for the current message.
const maintenanceChance = 0.001

// Service is the per-message dispatcher. One message makes one pass:
// exemption check, profanity check, spam check, in that order, stopping at
// the first policy that fires.
type Service struct {
	store     storage.Store
	matcher   *Matcher
	rate      *tracker.RateTracker
	warnings  *tracker.WarningTracker
	penalties *tracker.PenaltyTracker
	ledger    *history.Ledger
	executor  *Executor
	platform  Platform
	logger    *zap.Logger
	randFloat func() float64
}

// Option configures the service.
type Option func(*serviceOptions)

type serviceOptions struct {
	clock     func() time.Time
	randFloat func() float64
}

// WithClock overrides the time source used by the rolling-window trackers.
func WithClock(clock func() time.Time) Option {
	return func(o *serviceOptions) {
		o.clock = clock
	}
}

// WithRandFloat overrides the random source that schedules background
// maintenance.
func WithRandFloat(randFloat func() float64) Option {
	return func(o *serviceOptions) {
		o.randFloat = randFloat
	}
}

// New wires the engine together on top of a document store and a platform
// adapter.
func New(store storage.Store, platform Platform, denylist []string, logger *zap.Logger, opts ...Option) *Service {
	o := serviceOptions{clock: time.Now, randFloat: rand.Float64}
	for _, opt := range opts {
		opt(&o)
	}

	logger = logger.Named("automod")
	clock := tracker.WithClock(o.clock)
	warnings := tracker.NewWarningTracker(store, logger, clock)
	ledger := history.NewLedger(store, logger)

	return &Service{
		store:     store,
		matcher:   NewMatcher(denylist),
		rate:      tracker.NewRateTracker(store, logger, clock),
		warnings:  warnings,
		penalties: tracker.NewPenaltyTracker(store, logger, clock),
		ledger:    ledger,
		executor:  NewExecutor(platform, warnings, ledger, logger),
		platform:  platform,
		logger:    logger,
		randFloat: o.randFloat,
	}
}

// Ledger exposes the moderation history for hosts that run their own
// command layer and for export tooling.
func (s *Service) Ledger() *history.Ledger {
	return s.ledger
}

// Matcher exposes the lexical matcher.
func (s *Service) Matcher() *Matcher {
	return s.matcher
}

// ProcessMessage runs one moderation pass over an inbound message. All
// failures are local: a failed store write or platform call is logged and
// the pass continues or ends, but never panics or propagates.
func (s *Service) ProcessMessage(ctx context.Context, msg *Message) {
	// Bots and messages without server context are discarded outright.
	if msg.AuthorIsBot || msg.GuildID == "" {
		return
	}

	if s.randFloat() < maintenanceChance {
		s.pruneInBackground(ctx)
	}

	cfg := LoadModerationConfig(ctx, s.store)

	profanityExempt := isExempt(msg, &cfg.ProfanityFilter)
	spamExempt := isExempt(msg, &cfg.SpamProtection)

	if profanityExempt && spamExempt {
		return
	}

	if cfg.ProfanityFilter.Enabled && !profanityExempt && s.matcher.ContainsProfanity(msg.Content) {
		s.executor.Execute(ctx, msg, cfg.ProfanityFilter.Action, "Use of disallowed language", cfg)
		return
	}

	if cfg.SpamProtection.Enabled && !spamExempt {
		flagged := s.rate.Observe(ctx, msg.AuthorID, cfg.SpamProtection.TimeWindow(), cfg.SpamProtection.MaxMessages)
		if !flagged {
			return
		}

		// Remove the burst first. Bulk removal is best-effort; fall back
		// to deleting the triggering message only.
		if err := s.platform.BulkDeleteRecent(ctx, msg, cfg.SpamProtection.TimeWindow()); err != nil {
			s.logger.Warn("Bulk delete failed, falling back to single delete",
				zap.String("userID", msg.AuthorID),
				zap.Error(err))

			if err := s.platform.DeleteMessage(ctx, msg); err != nil {
				s.logger.Debug("Fallback delete failed", zap.Error(err))
			}
		}

		count := s.penalties.Record(ctx, msg.AuthorID)
		decision := EscalateSpam(&cfg.SpamProtection, count)
		s.executor.ExecuteSpam(ctx, msg, decision, count)
	}
}

// pruneInBackground sweeps expired profanity warnings on a fire-and-forget
// goroutine. The sweep detaches from the message's context so an
// already-finished pass cannot cancel it.
func (s *Service) pruneInBackground(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	go func() {
		if r := panics.Try(func() { s.warnings.PruneAll(ctx) }); r != nil {
			s.logger.Error("Warning prune panicked", zap.Any("recovered", r.Value))
		}
	}()
}

// isExempt reports whether the author is exempt from one policy, either by
// role membership or by channel. Exemption is evaluated independently per
// policy.
func isExempt(msg *Message, policy *PolicyConfig) bool {
	for _, channel := range policy.ExemptChannels {
		if channel == msg.ChannelID {
			return true
		}
	}

	for _, role := range msg.MemberRoles {
		for _, exempt := range policy.ExemptRoles {
			if role == exempt {
				return true
			}
		}
	}

	return false
}
