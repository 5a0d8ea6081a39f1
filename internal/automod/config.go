package automod

import (
	"context"
	"time"

	"github.com/straznik-bot/straznik/internal/storage"
	"go.uber.org/zap"
)

// Action is an enforcement action name as it appears in the persisted
// configuration document.
type Action string

const (
	ActionDelete  Action = "delete"
	ActionWarn    Action = "warn"
	ActionTimeout Action = "timeout"
	ActionKick    Action = "kick"
	ActionBan     Action = "ban"
)

// PolicyConfig configures one moderation policy. Durations are persisted
// as milliseconds to match the document layout.
type PolicyConfig struct {
	Enabled           bool     `json:"enabled"`
	Action            Action   `json:"action"`
	MaxMessages       int      `json:"maxMessages,omitempty"`
	TimeWindowMs      int64    `json:"timeWindow,omitempty"`
	TimeoutDurationMs int64    `json:"timeoutDuration"`
	ExemptRoles       []string `json:"exemptRoles"`
	ExemptChannels    []string `json:"exemptChannels"`
}

// TimeWindow returns the policy's time window as a duration.
func (c *PolicyConfig) TimeWindow() time.Duration {
	return time.Duration(c.TimeWindowMs) * time.Millisecond
}

// TimeoutDuration returns the policy's timeout duration as a duration.
func (c *PolicyConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.TimeoutDurationMs) * time.Millisecond
}

// ModerationConfig is the dynamic configuration document. It is loaded
// fresh from the store once per message-processing pass and persisted
// immediately after every administrative update, so no component ever
// holds a stale copy across mutations.
type ModerationConfig struct {
	ProfanityFilter PolicyConfig `json:"profanityFilter"`
	SpamProtection  PolicyConfig `json:"spamProtection"`
}

// DefaultModerationConfig returns the defaults merged under any missing
// keys when the document is loaded.
func DefaultModerationConfig() *ModerationConfig {
	return &ModerationConfig{
		ProfanityFilter: PolicyConfig{
			Enabled:           false,
			Action:            ActionWarn,
			TimeoutDurationMs: 300000,
			ExemptRoles:       []string{"Admin"},
			ExemptChannels:    []string{},
		},
		SpamProtection: PolicyConfig{
			Enabled:           true,
			Action:            ActionTimeout,
			MaxMessages:       5,
			TimeWindowMs:      10000,
			TimeoutDurationMs: 60000,
			ExemptRoles:       []string{"Admin"},
			ExemptChannels:    []string{},
		},
	}
}

// LoadModerationConfig reads the configuration document with defaults
// merged under missing keys. A missing or malformed document yields the
// defaults.
func LoadModerationConfig(ctx context.Context, store storage.Store) *ModerationConfig {
	cfg := DefaultModerationConfig()
	_ = store.Load(ctx, storage.DomainConfig, cfg)

	return cfg
}

// SaveModerationConfig persists the configuration document. Called by the
// host's administrative update path after each mutation.
func SaveModerationConfig(ctx context.Context, store storage.Store, cfg *ModerationConfig, logger *zap.Logger) error {
	if err := store.Save(ctx, storage.DomainConfig, cfg); err != nil {
		logger.Error("Failed to persist moderation config", zap.Error(err))
		return err
	}

	return nil
}
