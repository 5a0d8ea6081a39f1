package automod_test

import (
	"testing"
	"time"

	"github.com/straznik-bot/straznik/internal/automod"
	"github.com/straznik-bot/straznik/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupConfigStore(t *testing.T) *storage.FileStore {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	return store
}

func TestLoadModerationConfigDefaults(t *testing.T) {
	t.Parallel()

	store := setupConfigStore(t)

	cfg := automod.LoadModerationConfig(t.Context(), store)

	assert.False(t, cfg.ProfanityFilter.Enabled)
	assert.Equal(t, automod.ActionWarn, cfg.ProfanityFilter.Action)
	assert.True(t, cfg.SpamProtection.Enabled)
	assert.Equal(t, 5, cfg.SpamProtection.MaxMessages)
	assert.Equal(t, 10*time.Second, cfg.SpamProtection.TimeWindow())
	assert.Equal(t, time.Minute, cfg.SpamProtection.TimeoutDuration())
	assert.Equal(t, []string{"Admin"}, cfg.SpamProtection.ExemptRoles)
}

func TestLoadModerationConfigRoundTrip(t *testing.T) {
	t.Parallel()

	store := setupConfigStore(t)
	ctx := t.Context()

	cfg := automod.DefaultModerationConfig()
	cfg.ProfanityFilter.Enabled = true
	cfg.ProfanityFilter.Action = automod.ActionTimeout
	cfg.SpamProtection.MaxMessages = 8

	require.NoError(t, automod.SaveModerationConfig(ctx, store, cfg, zap.NewNop()))

	loaded := automod.LoadModerationConfig(ctx, store)
	assert.Equal(t, cfg, loaded)
}

func TestLoadModerationConfigCorruptFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	store := setupConfigStore(t)
	ctx := t.Context()

	require.NoError(t, store.Save(ctx, storage.DomainConfig, "not an object"))

	cfg := automod.LoadModerationConfig(ctx, store)
	assert.Equal(t, automod.DefaultModerationConfig(), cfg)
}
