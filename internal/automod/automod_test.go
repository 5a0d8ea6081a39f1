package automod_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/straznik-bot/straznik/internal/automod"
	"github.com/straznik-bot/straznik/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePlatform records every call the engine makes against the chat
// platform.
type fakePlatform struct {
	mu             sync.Mutex
	deleted        []string
	bulkDeletes    int
	bulkDeleteErr  error
	timeouts       []time.Duration
	timeoutReasons []string
	kicked         []string
	banned         []string
	channelNotices []string
	userNotices    []string
	notifyUserErr  error
}

func (p *fakePlatform) DeleteMessage(_ context.Context, msg *automod.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, msg.MessageID)

	return nil
}

func (p *fakePlatform) BulkDeleteRecent(_ context.Context, _ *automod.Message, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bulkDeleteErr != nil {
		return p.bulkDeleteErr
	}

	p.bulkDeletes++

	return nil
}

func (p *fakePlatform) Timeout(_ context.Context, _ *automod.Message, duration time.Duration, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeouts = append(p.timeouts, duration)
	p.timeoutReasons = append(p.timeoutReasons, reason)

	return nil
}

func (p *fakePlatform) Kick(_ context.Context, msg *automod.Message, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kicked = append(p.kicked, msg.AuthorID)

	return nil
}

func (p *fakePlatform) Ban(_ context.Context, msg *automod.Message, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.banned = append(p.banned, msg.AuthorID)

	return nil
}

func (p *fakePlatform) NotifyChannel(_ context.Context, _ *automod.Message, notice string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channelNotices = append(p.channelNotices, notice)

	return nil
}

func (p *fakePlatform) NotifyUser(_ context.Context, _ string, notice string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.notifyUserErr != nil {
		return p.notifyUserErr
	}

	p.userNotices = append(p.userNotices, notice)

	return nil
}

type testEnv struct {
	service  *automod.Service
	platform *fakePlatform
	store    storage.Store
	clock    *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupService(t *testing.T, cfg *automod.ModerationConfig) *testEnv {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, automod.SaveModerationConfig(t.Context(), store, cfg, zap.NewNop()))

	platform := &fakePlatform{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	service := automod.New(store, platform, []string{"kurwa", "suka"}, zap.NewNop(),
		automod.WithClock(clock.Now),
		// Disable the probabilistic background prune so tests stay
		// deterministic
		automod.WithRandFloat(func() float64 { return 1 }),
	)

	return &testEnv{
		service:  service,
		platform: platform,
		store:    store,
		clock:    clock,
	}
}

func profanityConfig(action automod.Action) *automod.ModerationConfig {
	cfg := automod.DefaultModerationConfig()
	cfg.ProfanityFilter.Enabled = true
	cfg.ProfanityFilter.Action = action
	cfg.SpamProtection.Enabled = false

	return cfg
}

func message(id, content string, roles ...string) *automod.Message {
	return &automod.Message{
		MessageID:   id,
		ChannelID:   "chan1",
		GuildID:     "guild1",
		AuthorID:    "user1",
		Content:     content,
		MemberRoles: roles,
	}
}

func TestServiceMatcherUsesDenylist(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionWarn))

	assert.True(t, env.service.Matcher().ContainsProfanity("no kurwa"))
	assert.False(t, env.service.Matcher().ContainsProfanity("hello"))
}

func TestDiscardsBotsAndDMs(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionWarn))
	ctx := t.Context()

	bot := message("m1", "kurwa")
	bot.AuthorIsBot = true
	env.service.ProcessMessage(ctx, bot)

	dm := message("m2", "kurwa")
	dm.GuildID = ""
	env.service.ProcessMessage(ctx, dm)

	assert.Empty(t, env.platform.deleted)
	assert.Empty(t, env.platform.channelNotices)
}

func TestProfanityWarnEscalatesToKick(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionWarn))
	ctx := t.Context()

	// Five denylisted messages inside 24h: four warnings, then a kick
	for i := range 4 {
		env.service.ProcessMessage(ctx, message("m", "no kurwa"))
		assert.Empty(t, env.platform.kicked, "message %d should not kick", i+1)
		env.clock.Advance(time.Minute)
	}

	require.Len(t, env.platform.deleted, 4)
	require.Len(t, env.platform.channelNotices, 4)
	assert.Contains(t, env.platform.channelNotices[0], "1/5")
	assert.Contains(t, env.platform.channelNotices[3], "4/5")

	env.service.ProcessMessage(ctx, message("m", "no kurwa"))

	assert.Equal(t, []string{"user1"}, env.platform.kicked)
	assert.Len(t, env.platform.deleted, 5)
	assert.Contains(t, env.platform.channelNotices[4], "5/5")

	// The sixth message within the window kicks again at count 6
	env.clock.Advance(time.Minute)
	env.service.ProcessMessage(ctx, message("m", "no kurwa"))
	assert.Len(t, env.platform.kicked, 2)
}

func TestProfanityKickOverridesConfiguredAction(t *testing.T) {
	t.Parallel()

	// Even with action=warn, the fifth violation is a kick; with
	// action=delete no escalation happens at all
	env := setupService(t, profanityConfig(automod.ActionDelete))
	ctx := t.Context()

	for range 6 {
		env.service.ProcessMessage(ctx, message("m", "ta suka"))
		env.clock.Advance(time.Minute)
	}

	assert.Len(t, env.platform.deleted, 6)
	assert.Empty(t, env.platform.kicked)
	assert.Empty(t, env.platform.timeouts)
}

func TestProfanityTimeoutAction(t *testing.T) {
	t.Parallel()

	cfg := profanityConfig(automod.ActionTimeout)
	cfg.ProfanityFilter.TimeoutDurationMs = 120000

	env := setupService(t, cfg)
	env.service.ProcessMessage(t.Context(), message("m1", "kurwa"))

	assert.Len(t, env.platform.deleted, 1)
	require.Len(t, env.platform.timeouts, 1)
	assert.Equal(t, 2*time.Minute, env.platform.timeouts[0])
}

func TestProfanityKickActionNotifiesUser(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionKick))
	env.service.ProcessMessage(t.Context(), message("m1", "kurwa"))

	assert.Len(t, env.platform.deleted, 1)
	assert.Equal(t, []string{"user1"}, env.platform.kicked)

	// The user is told privately before removal from the server
	require.Len(t, env.platform.userNotices, 1)
	assert.Contains(t, env.platform.userNotices[0], "kicked from the server")
}

func TestProfanityBanAction(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionBan))
	env.service.ProcessMessage(t.Context(), message("m1", "kurwa"))

	assert.Len(t, env.platform.deleted, 1)
	assert.Equal(t, []string{"user1"}, env.platform.banned)
}

func TestUnrecognizedActionDeletesOnly(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.Action("explode")))
	env.service.ProcessMessage(t.Context(), message("m1", "kurwa"))

	// Fail-safe: the flagged message never stays, nothing else happens
	assert.Len(t, env.platform.deleted, 1)
	assert.Empty(t, env.platform.timeouts)
	assert.Empty(t, env.platform.kicked)
	assert.Empty(t, env.platform.banned)
}

func TestProtectedRoleSkipsDiscipline(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionTimeout))
	ctx := t.Context()

	env.service.ProcessMessage(ctx, message("m1", "kurwa", "Moderator"))

	// Content removal still happens, the timeout does not
	assert.Len(t, env.platform.deleted, 1)
	assert.Empty(t, env.platform.timeouts)
	require.Len(t, env.platform.channelNotices, 1)
	assert.Contains(t, env.platform.channelNotices[0], "protected role")
}

func TestProtectedRoleSkipsWarnKick(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionWarn))
	ctx := t.Context()

	for range 5 {
		env.service.ProcessMessage(ctx, message("m", "kurwa", "Moderator"))
		env.clock.Advance(time.Minute)
	}

	// The fifth warning would kick an ordinary user
	assert.Empty(t, env.platform.kicked)
	assert.Len(t, env.platform.deleted, 5)
}

func TestExemptRoleSkipsPolicyIndependently(t *testing.T) {
	t.Parallel()

	cfg := automod.DefaultModerationConfig()
	cfg.ProfanityFilter.Enabled = true
	cfg.ProfanityFilter.ExemptRoles = []string{"Trusted"}
	cfg.SpamProtection.Enabled = true
	cfg.SpamProtection.ExemptRoles = []string{"Admin"}

	env := setupService(t, cfg)
	ctx := t.Context()

	// Exempt from profanity: the denylisted word passes through, but the
	// message still counts toward the spam window
	for range 5 {
		env.service.ProcessMessage(ctx, message("m", "kurwa", "Trusted"))
	}

	assert.Empty(t, env.platform.deleted)
	assert.Empty(t, env.platform.timeouts)

	// The burst continues: the sixth message trips spam enforcement
	env.service.ProcessMessage(ctx, message("m", "kurwa", "Trusted"))

	assert.Equal(t, 1, env.platform.bulkDeletes)
	require.Len(t, env.platform.timeouts, 1)
	assert.Equal(t, time.Minute, env.platform.timeouts[0])
}

func TestSpamFirstAndSecondPenalty(t *testing.T) {
	t.Parallel()

	cfg := automod.DefaultModerationConfig()
	cfg.ProfanityFilter.Enabled = false

	env := setupService(t, cfg)
	ctx := t.Context()

	// Six plain messages inside the 10s window: the sixth flags
	for i := range 5 {
		env.service.ProcessMessage(ctx, message("m", "hello"))
		assert.Empty(t, env.platform.timeouts, "message %d should not flag", i+1)
	}

	env.service.ProcessMessage(ctx, message("m", "hello"))

	assert.Equal(t, 1, env.platform.bulkDeletes)
	require.Len(t, env.platform.timeouts, 1)
	assert.Equal(t, time.Minute, env.platform.timeouts[0])

	// A second burst within the same rolling hour escalates to the fixed
	// five-minute timeout
	env.clock.Advance(20 * time.Minute)

	for range 6 {
		env.service.ProcessMessage(ctx, message("m", "hello again"))
	}

	require.Len(t, env.platform.timeouts, 2)
	assert.Equal(t, 5*time.Minute, env.platform.timeouts[1])

	// A burst after the hour resets to the configured timeout
	env.clock.Advance(2 * time.Hour)

	for range 6 {
		env.service.ProcessMessage(ctx, message("m", "once more"))
	}

	require.Len(t, env.platform.timeouts, 3)
	assert.Equal(t, time.Minute, env.platform.timeouts[2])
}

func TestSpamBulkDeleteFallback(t *testing.T) {
	t.Parallel()

	cfg := automod.DefaultModerationConfig()
	cfg.ProfanityFilter.Enabled = false

	env := setupService(t, cfg)
	env.platform.bulkDeleteErr = errors.New("missing permission")

	ctx := t.Context()

	for range 6 {
		env.service.ProcessMessage(ctx, message("m6", "hello"))
	}

	// Bulk removal failed, so only the triggering message was deleted
	assert.Zero(t, env.platform.bulkDeletes)
	assert.Equal(t, []string{"m6"}, env.platform.deleted)
	require.Len(t, env.platform.timeouts, 1)
}

func TestProfanityCheckedBeforeSpam(t *testing.T) {
	t.Parallel()

	cfg := automod.DefaultModerationConfig()
	cfg.ProfanityFilter.Enabled = true
	cfg.SpamProtection.Enabled = true

	env := setupService(t, cfg)
	ctx := t.Context()

	// A denylisted word dispatches the profanity action and stops; spam
	// never evaluates for that message, so no timestamps accumulate
	for range 10 {
		env.service.ProcessMessage(ctx, message("m", "kurwa"))
		env.clock.Advance(time.Minute)
	}

	assert.Zero(t, env.platform.bulkDeletes)
	assert.Empty(t, env.platform.timeouts)
}

func TestNotificationFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionWarn))
	env.platform.notifyUserErr = errors.New("DMs closed")

	ctx := t.Context()

	for range 5 {
		env.service.ProcessMessage(ctx, message("m", "kurwa"))
		env.clock.Advance(time.Minute)
	}

	// Enforcement proceeds even though every DM failed
	assert.Len(t, env.platform.deleted, 5)
	assert.Equal(t, []string{"user1"}, env.platform.kicked)
}

func TestLedgerRecordsEscalationTrail(t *testing.T) {
	t.Parallel()

	env := setupService(t, profanityConfig(automod.ActionWarn))
	ctx := t.Context()

	for range 5 {
		env.service.ProcessMessage(ctx, message("m", "kurwa"))
		env.clock.Advance(time.Minute)
	}

	entries := env.service.Ledger().UserHistory(ctx, "user1")
	require.Len(t, entries, 5)

	for _, entry := range entries[:4] {
		assert.Equal(t, "warn", entry.Type)
		assert.True(t, entry.Moderator.IsAutomated())
	}

	assert.Equal(t, "auto-kick", entries[4].Type)

	// The audit trail survives a store round trip
	var doc map[string]any
	require.NoError(t, env.store.Load(ctx, storage.DomainHistory, &doc))
	assert.Contains(t, doc, "user1")
}

func TestSpamTimeoutRecordedWithDuration(t *testing.T) {
	t.Parallel()

	cfg := automod.DefaultModerationConfig()
	cfg.ProfanityFilter.Enabled = false

	env := setupService(t, cfg)
	ctx := t.Context()

	for range 6 {
		env.service.ProcessMessage(ctx, message("m", "hello"))
	}

	entries := env.service.Ledger().UserHistory(ctx, "user1")
	require.Len(t, entries, 1)
	assert.Equal(t, "timeout", entries[0].Type)
	require.NotNil(t, entries[0].DurationMs)
	assert.Equal(t, int64(60000), *entries[0].DurationMs)
}

func TestBothFiltersDisabled(t *testing.T) {
	t.Parallel()

	cfg := automod.DefaultModerationConfig()
	cfg.ProfanityFilter.Enabled = false
	cfg.SpamProtection.Enabled = false

	env := setupService(t, cfg)

	for range 10 {
		env.service.ProcessMessage(t.Context(), message("m", "kurwa"))
	}

	assert.Empty(t, env.platform.deleted)
	assert.Empty(t, env.platform.timeouts)
}
