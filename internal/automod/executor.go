package automod

import (
	"context"
	"fmt"

	"github.com/straznik-bot/straznik/internal/automod/history"
	"github.com/straznik-bot/straznik/internal/automod/tracker"
	"go.uber.org/zap"
)

// DefaultProtectedRoles exempt their holders from disciplinary actions
// (timeout, kick, ban). Content removal still applies to them.
var DefaultProtectedRoles = []string{"Admin", "Moderator"}

// Audit entry types written by the executor.
const (
	entryWarn     = "warn"
	entryTimeout  = "timeout"
	entryKick     = "kick"
	entryBan      = "ban"
	entryAutoKick = "auto-kick"
	entryDelete   = "delete"
)

// Executor performs enforcement decisions against the platform: it removes
// content, applies disciplinary actions subject to the protected-role
// override, notifies the user and channel, and records every executed
// action in the moderation history.
type Executor struct {
	platform       Platform
	warnings       *tracker.WarningTracker
	ledger         *history.Ledger
	logger         *zap.Logger
	protectedRoles []string
}

// NewExecutor creates an executor with the default protected roles.
func NewExecutor(
	platform Platform, warnings *tracker.WarningTracker, ledger *history.Ledger, logger *zap.Logger,
) *Executor {
	return &Executor{
		platform:       platform,
		warnings:       warnings,
		ledger:         ledger,
		logger:         logger.Named("executor"),
		protectedRoles: DefaultProtectedRoles,
	}
}

// Execute carries out the configured profanity action against the
// message's author. An unrecognized action falls back to removing the
// message, so a flagged message is never silently left in place even when
// the configured action is malformed.
func (e *Executor) Execute(ctx context.Context, msg *Message, action Action, reason string, cfg *ModerationConfig) {
	protected := e.isProtected(msg.MemberRoles)

	switch action {
	case ActionDelete:
		e.deleteMessage(ctx, msg)
		e.ledger.Append(ctx, msg.AuthorID, entryDelete, reason, history.AutoMod, nil)

	case ActionWarn:
		e.executeWarn(ctx, msg, reason, protected)

	case ActionTimeout:
		e.deleteMessage(ctx, msg)

		if protected {
			e.notifySkipped(ctx, msg, "timeout")
			return
		}

		duration := cfg.ProfanityFilter.TimeoutDuration()
		if duration <= 0 {
			duration = DefaultProfanityTimeout
		}

		if err := e.platform.Timeout(ctx, msg, duration, reason); err != nil {
			e.logger.Error("Failed to apply timeout",
				zap.String("userID", msg.AuthorID),
				zap.Error(err))

			return
		}

		e.notifyChannel(ctx, msg, fmt.Sprintf("<@%s> received a %d minute timeout. Reason: %s",
			msg.AuthorID, int(duration.Minutes()), reason))
		e.ledger.Append(ctx, msg.AuthorID, entryTimeout, reason, history.AutoMod, &duration)

	case ActionKick:
		e.deleteMessage(ctx, msg)

		if protected {
			e.notifySkipped(ctx, msg, "kick")
			return
		}

		// Notify before removal: the user is unreachable by DM afterwards
		e.notifyUser(ctx, msg.AuthorID, fmt.Sprintf(
			"You were kicked from the server.\nReason: %s", reason))
		e.notifyChannel(ctx, msg, fmt.Sprintf("<@%s> was kicked from the server. Reason: %s",
			msg.AuthorID, reason))

		if err := e.platform.Kick(ctx, msg, reason); err != nil {
			e.logger.Error("Failed to kick user",
				zap.String("userID", msg.AuthorID),
				zap.Error(err))

			return
		}

		e.ledger.Append(ctx, msg.AuthorID, entryKick, reason, history.AutoMod, nil)

	case ActionBan:
		e.deleteMessage(ctx, msg)

		if protected {
			e.notifySkipped(ctx, msg, "ban")
			return
		}

		e.notifyChannel(ctx, msg, fmt.Sprintf("<@%s> was banned from the server. Reason: %s",
			msg.AuthorID, reason))

		if err := e.platform.Ban(ctx, msg, reason); err != nil {
			e.logger.Error("Failed to ban user",
				zap.String("userID", msg.AuthorID),
				zap.Error(err))

			return
		}

		e.ledger.Append(ctx, msg.AuthorID, entryBan, reason, history.AutoMod, nil)

	default:
		e.deleteMessage(ctx, msg)
		e.ledger.Append(ctx, msg.AuthorID, entryDelete, reason, history.AutoMod, nil)
		e.logger.Warn("Unrecognized action, removed message only",
			zap.String("action", string(action)),
			zap.String("userID", msg.AuthorID))
	}
}

// executeWarn removes the message, records a profanity warning, notifies
// the user, and escalates to an automatic kick once the warning count
// reaches the threshold.
func (e *Executor) executeWarn(ctx context.Context, msg *Message, reason string, protected bool) {
	e.deleteMessage(ctx, msg)

	count := e.warnings.Record(ctx, msg.AuthorID)

	e.notifyUser(ctx, msg.AuthorID, fmt.Sprintf(
		"You received a warning for using disallowed language.\nReason: %s\nWarnings within 24h: %d/%d\n"+
			"Exceeding %d warnings within 24 hours results in an automatic kick.",
		reason, count, ProfanityKickThreshold, ProfanityKickThreshold))

	decision := EscalateProfanityWarning(count)

	if decision.Action == ActionKick {
		if protected {
			e.notifySkipped(ctx, msg, "kick")
			return
		}

		e.notifyUser(ctx, msg.AuthorID, fmt.Sprintf(
			"You were kicked from the server for exceeding the profanity warning limit within 24 hours (%d/%d).",
			count, ProfanityKickThreshold))
		e.notifyChannel(ctx, msg, fmt.Sprintf(
			"<@%s> was automatically kicked for exceeding the profanity warning limit within 24h (%d/%d).",
			msg.AuthorID, count, ProfanityKickThreshold))

		if err := e.platform.Kick(ctx, msg, decision.Reason); err != nil {
			e.logger.Error("Failed to kick user",
				zap.String("userID", msg.AuthorID),
				zap.Error(err))

			return
		}

		e.ledger.Append(ctx, msg.AuthorID, entryAutoKick, decision.Reason, history.AutoMod, nil)

		return
	}

	e.notifyChannel(ctx, msg, fmt.Sprintf(
		"<@%s> received a warning for using disallowed language.\nWarnings within 24h: %d/%d",
		msg.AuthorID, count, ProfanityKickThreshold))
	e.ledger.Append(ctx, msg.AuthorID, entryWarn, reason, history.AutoMod, nil)
}

// ExecuteSpam carries out a spam enforcement decision. The caller has
// already removed the user's recent messages and recorded the penalty.
func (e *Executor) ExecuteSpam(ctx context.Context, msg *Message, decision Decision, penaltyCount int) {
	protected := e.isProtected(msg.MemberRoles)

	switch decision.Action {
	case ActionKick:
		if protected {
			e.notifySkipped(ctx, msg, "kick for spam")
			return
		}

		e.notifyUser(ctx, msg.AuthorID, fmt.Sprintf(
			"You were automatically kicked from the server for spam.\nReason: %s", decision.Reason))
		e.notifyChannel(ctx, msg, fmt.Sprintf(
			"<@%s> was automatically kicked for spam (penalty %d within the hour).",
			msg.AuthorID, penaltyCount))

		if err := e.platform.Kick(ctx, msg, decision.Reason); err != nil {
			e.logger.Error("Failed to kick user for spam",
				zap.String("userID", msg.AuthorID),
				zap.Error(err))

			return
		}

		e.ledger.Append(ctx, msg.AuthorID, entryAutoKick, decision.Reason, history.AutoMod, nil)

	default:
		// Timeout is the default spam action, including for unrecognized
		// configured actions.
		if protected {
			e.notifySkipped(ctx, msg, "timeout for spam")
			return
		}

		if err := e.platform.Timeout(ctx, msg, decision.Timeout, decision.Reason); err != nil {
			e.logger.Error("Failed to apply spam timeout",
				zap.String("userID", msg.AuthorID),
				zap.Error(err))

			return
		}

		e.notifyChannel(ctx, msg, fmt.Sprintf(
			"<@%s> received a %d second timeout for spam.\nPenalties within the hour: %d/%d",
			msg.AuthorID, int(decision.Timeout.Seconds()), penaltyCount, SpamEscalationThreshold))
		e.notifyUser(ctx, msg.AuthorID, fmt.Sprintf(
			"You received a %d second timeout for spam.\nReason: %s\nPenalties within the hour: %d/%d\n"+
				"A second spam penalty within an hour results in a longer timeout (5 minutes).",
			int(decision.Timeout.Seconds()), decision.Reason, penaltyCount, SpamEscalationThreshold))

		timeout := decision.Timeout
		e.ledger.Append(ctx, msg.AuthorID, entryTimeout, decision.Reason, history.AutoMod, &timeout)
	}
}

func (e *Executor) isProtected(roles []string) bool {
	for _, role := range roles {
		for _, protected := range e.protectedRoles {
			if role == protected {
				return true
			}
		}
	}

	return false
}

func (e *Executor) deleteMessage(ctx context.Context, msg *Message) {
	if err := e.platform.DeleteMessage(ctx, msg); err != nil {
		e.logger.Error("Failed to delete message",
			zap.String("messageID", msg.MessageID),
			zap.Error(err))
	}
}

func (e *Executor) notifySkipped(ctx context.Context, msg *Message, action string) {
	e.notifyChannel(ctx, msg, fmt.Sprintf(
		"<@%s> holds a protected role - the %s was skipped. The message was removed.",
		msg.AuthorID, action))
}

func (e *Executor) notifyChannel(ctx context.Context, msg *Message, notice string) {
	if err := e.platform.NotifyChannel(ctx, msg, notice); err != nil {
		e.logger.Debug("Failed to post channel notice", zap.Error(err))
	}
}

func (e *Executor) notifyUser(ctx context.Context, userID, notice string) {
	if err := e.platform.NotifyUser(ctx, userID, notice); err != nil {
		e.logger.Debug("Failed to send private notice", zap.String("userID", userID), zap.Error(err))
	}
}
