// Package discord adapts the auto-moderation engine to the Discord API:
// it implements the engine's platform interface over disgo's REST client
// and translates gateway events into engine messages.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
	"github.com/straznik-bot/straznik/internal/automod"
	"go.uber.org/zap"
)

// recentMessagesLimit bounds how many channel messages are fetched when
// collecting a spam burst for bulk removal.
const recentMessagesLimit = 50

// Embed colors for moderation notices.
const (
	noticeColor = 0xFF8C00
	dmColor     = 0xFFFF00
)

// Adapter implements automod.Platform over the Discord REST API.
type Adapter struct {
	client bot.Client
	logger *zap.Logger
}

// NewAdapter wraps an existing Discord client.
func NewAdapter(client bot.Client, logger *zap.Logger) *Adapter {
	return &Adapter{
		client: client,
		logger: logger.Named("discord"),
	}
}

// DeleteMessage removes the triggering message.
func (a *Adapter) DeleteMessage(ctx context.Context, msg *automod.Message) error {
	channelID, err := snowflake.Parse(msg.ChannelID)
	if err != nil {
		return fmt.Errorf("invalid channel ID %q: %w", msg.ChannelID, err)
	}

	messageID, err := snowflake.Parse(msg.MessageID)
	if err != nil {
		return fmt.Errorf("invalid message ID %q: %w", msg.MessageID, err)
	}

	return a.client.Rest().DeleteMessage(channelID, messageID, rest.WithCtx(ctx))
}

// BulkDeleteRecent removes the author's messages sent within the window
// from the message's channel. A single matching message is deleted
// directly because Discord's bulk endpoint requires at least two.
func (a *Adapter) BulkDeleteRecent(ctx context.Context, msg *automod.Message, window time.Duration) error {
	channelID, err := snowflake.Parse(msg.ChannelID)
	if err != nil {
		return fmt.Errorf("invalid channel ID %q: %w", msg.ChannelID, err)
	}

	messages, err := a.client.Rest().GetMessages(channelID, 0, 0, 0, recentMessagesLimit, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch recent messages: %w", err)
	}

	cutoff := time.Now().Add(-window)
	targets := make([]snowflake.ID, 0, len(messages))

	for _, message := range messages {
		if message.Author.ID.String() == msg.AuthorID && message.ID.Time().After(cutoff) {
			targets = append(targets, message.ID)
		}
	}

	switch len(targets) {
	case 0:
		return nil
	case 1:
		return a.client.Rest().DeleteMessage(channelID, targets[0], rest.WithCtx(ctx))
	default:
		return a.client.Rest().BulkDeleteMessages(channelID, targets, rest.WithCtx(ctx))
	}
}

// Timeout applies a timed communication restriction to the author.
func (a *Adapter) Timeout(ctx context.Context, msg *automod.Message, duration time.Duration, reason string) error {
	guildID, err := snowflake.Parse(msg.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q: %w", msg.GuildID, err)
	}

	userID, err := snowflake.Parse(msg.AuthorID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", msg.AuthorID, err)
	}

	until := json.NewNullable(time.Now().Add(duration))

	_, err = a.client.Rest().UpdateMember(guildID, userID, discord.MemberUpdate{
		CommunicationDisabledUntil: &until,
	}, rest.WithCtx(ctx), rest.WithReason(reason))

	return err
}

// Kick removes the author from the server.
func (a *Adapter) Kick(ctx context.Context, msg *automod.Message, reason string) error {
	guildID, err := snowflake.Parse(msg.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q: %w", msg.GuildID, err)
	}

	userID, err := snowflake.Parse(msg.AuthorID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", msg.AuthorID, err)
	}

	return a.client.Rest().RemoveMember(guildID, userID, rest.WithCtx(ctx), rest.WithReason(reason))
}

// Ban permanently removes the author from the server.
func (a *Adapter) Ban(ctx context.Context, msg *automod.Message, reason string) error {
	guildID, err := snowflake.Parse(msg.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q: %w", msg.GuildID, err)
	}

	userID, err := snowflake.Parse(msg.AuthorID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", msg.AuthorID, err)
	}

	return a.client.Rest().AddBan(guildID, userID, 0, rest.WithCtx(ctx), rest.WithReason(reason))
}

// NotifyChannel posts a moderation notice embed to the message's channel.
func (a *Adapter) NotifyChannel(ctx context.Context, msg *automod.Message, notice string) error {
	channelID, err := snowflake.Parse(msg.ChannelID)
	if err != nil {
		return fmt.Errorf("invalid channel ID %q: %w", msg.ChannelID, err)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Auto-Moderation").
		SetDescription(notice).
		SetColor(noticeColor).
		SetTimestamp(time.Now()).
		Build()

	_, err = a.client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		Build(), rest.WithCtx(ctx))

	return err
}

// NotifyUser sends a private moderation notice to the user. The user may
// have direct messages closed; callers treat failures as non-fatal.
func (a *Adapter) NotifyUser(ctx context.Context, userID, notice string) error {
	id, err := snowflake.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", userID, err)
	}

	channel, err := a.client.Rest().CreateDMChannel(id, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to create DM channel: %w", err)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Auto-Moderation").
		SetDescription(notice).
		SetColor(dmColor).
		SetTimestamp(time.Now()).
		SetFooter("Automated moderation notice", "").
		Build()

	_, err = a.client.Rest().CreateMessage(channel.ID(), discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		Build(), rest.WithCtx(ctx))

	return err
}
