// Package bot composes the Discord client with the auto-moderation engine.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/straznik-bot/straznik/internal/automod"
	"github.com/straznik-bot/straznik/internal/discord"
	"github.com/straznik-bot/straznik/internal/setup"
	"go.uber.org/zap"
)

// Bot owns the Discord client and the moderation engine wired to its
// message events.
type Bot struct {
	client   bot.Client
	listener *discord.Listener
	logger   *zap.Logger
}

// New builds the Discord client with the gateway intents and caches the
// engine needs, then wires the message listener to it.
func New(app *setup.App) (*Bot, error) {
	b := &Bot{logger: app.Logger}

	client, err := disgo.New(app.Config.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentMessageContent,
			),
		),
		bot.WithCacheConfigOpts(
			cache.WithCaches(cache.FlagGuilds | cache.FlagRoles),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnMessageCreate: b.onMessageCreate,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord client: %w", err)
	}

	adapter := discord.NewAdapter(client, app.Logger)
	service := automod.New(app.Store, adapter, app.Denylist, app.Logger)

	b.client = client
	b.listener = discord.NewListener(service, app.Logger)

	return b, nil
}

// Start opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.client.OpenGateway(ctx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	b.logger.Info("Gateway connection opened")

	return nil
}

// Close shuts down the Discord connection.
func (b *Bot) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b.client.Close(ctx)
	b.logger.Info("Gateway connection closed")
}

func (b *Bot) onMessageCreate(event *events.MessageCreate) {
	b.listener.OnMessageCreate(event)
}
