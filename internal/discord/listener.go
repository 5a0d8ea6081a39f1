package discord

import (
	"context"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/straznik-bot/straznik/internal/automod"
	"go.uber.org/zap"
)

// Listener translates gateway message events into engine messages and
// runs the moderation pass on each one.
type Listener struct {
	service *automod.Service
	logger  *zap.Logger
}

// NewListener creates a listener for the given engine.
func NewListener(service *automod.Service, logger *zap.Logger) *Listener {
	return &Listener{
		service: service,
		logger:  logger.Named("listener"),
	}
}

// OnMessageCreate handles one inbound message. Messages without guild
// context keep an empty GuildID and are discarded by the engine.
func (l *Listener) OnMessageCreate(event *events.MessageCreate) {
	message := event.Message

	msg := &automod.Message{
		MessageID:   message.ID.String(),
		ChannelID:   message.ChannelID.String(),
		AuthorID:    message.Author.ID.String(),
		AuthorIsBot: message.Author.Bot,
		Content:     message.Content,
	}

	if message.GuildID != nil {
		msg.GuildID = message.GuildID.String()
		msg.MemberRoles = l.roleNames(event, message.GuildID)
	}

	l.service.ProcessMessage(context.Background(), msg)
}

// roleNames resolves the author's role IDs to names through the role
// cache. Roles missing from the cache are skipped; exemption and
// protection checks simply treat them as unconfigured roles.
func (l *Listener) roleNames(event *events.MessageCreate, guildID *snowflake.ID) []string {
	if event.Message.Member == nil {
		return nil
	}

	names := make([]string, 0, len(event.Message.Member.RoleIDs))

	for _, roleID := range event.Message.Member.RoleIDs {
		role, ok := event.Client().Caches().Role(*guildID, roleID)
		if !ok {
			l.logger.Debug("Role missing from cache",
				zap.String("guildID", guildID.String()),
				zap.String("roleID", roleID.String()))

			continue
		}

		names = append(names, role.Name)
	}

	return names
}
