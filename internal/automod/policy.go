package automod

import (
	"fmt"
	"time"
)

const (
	// ProfanityKickThreshold is the warning count within the 24-hour
	// window at which the user is kicked regardless of the configured
	// action. Deliberately not configurable: the terminal tier of the
	// ladder is fixed at 5 warnings.
	ProfanityKickThreshold = 5

	// SpamEscalationThreshold is the penalty count within the rolling
	// hour at which the escalated timeout applies.
	SpamEscalationThreshold = 2

	// EscalatedSpamTimeout is the fixed timeout for the second and every
	// subsequent spam penalty within the rolling hour, irrespective of
	// configuration. There is no tier beyond it.
	EscalatedSpamTimeout = 5 * time.Minute

	// DefaultSpamTimeout applies to a first spam penalty when the policy
	// has no timeout duration configured.
	DefaultSpamTimeout = time.Minute

	// DefaultProfanityTimeout applies to the timeout action when the
	// policy has no timeout duration configured.
	DefaultProfanityTimeout = 5 * time.Minute
)

// Decision is the outcome of the escalation policy for one violation.
// Computed fresh per violation, never cached or persisted.
type Decision struct {
	Action  Action
	Reason  string
	Timeout time.Duration // Only meaningful for timeout actions
	Tier    int
}

// EscalateProfanityWarning maps a user's post-record warning count to a
// decision. Counts 1 through 4 stay at the ordinary warning tier; at the
// threshold the decision becomes an automatic kick that overrides the
// administrator-configured action.
func EscalateProfanityWarning(count int) Decision {
	if count >= ProfanityKickThreshold {
		return Decision{
			Action: ActionKick,
			Reason: fmt.Sprintf("Exceeded the profanity warning limit within 24h (%d/%d)",
				count, ProfanityKickThreshold),
			Tier: 2,
		}
	}

	return Decision{
		Action: ActionWarn,
		Reason: "Use of disallowed language",
		Tier:   1,
	}
}

// EscalateSpam maps a user's post-record penalty count to a decision. The
// first penalty in the rolling hour uses the configured timeout, every
// further penalty the fixed escalated timeout.
func EscalateSpam(cfg *PolicyConfig, count int) Decision {
	action := cfg.Action
	if action == "" {
		action = ActionTimeout
	}

	if count >= SpamEscalationThreshold {
		return Decision{
			Action: action,
			Reason: fmt.Sprintf("Spam - repeated penalty within an hour (%d/%d)",
				count, SpamEscalationThreshold),
			Timeout: EscalatedSpamTimeout,
			Tier:    2,
		}
	}

	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = DefaultSpamTimeout
	}

	return Decision{
		Action: action,
		Reason: fmt.Sprintf("Spam - too many messages in a short time (%d/%d)",
			count, SpamEscalationThreshold),
		Timeout: timeout,
		Tier:    1,
	}
}
