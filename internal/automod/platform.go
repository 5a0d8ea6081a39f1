package automod

import (
	"context"
	"time"
)

// Message is the engine's view of one inbound chat message. The transport
// adapter builds it from the platform event; the engine never touches the
// platform types directly.
type Message struct {
	MessageID   string
	ChannelID   string
	GuildID     string // Empty when the message has no server context
	AuthorID    string
	AuthorIsBot bool
	Content     string
	MemberRoles []string // Role names the author holds
}

// Platform is everything the engine needs from the chat platform. Every
// method may fail; callers log and continue, because a failed downstream
// action must never abort message processing or roll back what already
// happened.
type Platform interface {
	// DeleteMessage removes the triggering message.
	DeleteMessage(ctx context.Context, msg *Message) error
	// BulkDeleteRecent removes the author's recent messages within the
	// window from the message's channel.
	BulkDeleteRecent(ctx context.Context, msg *Message, window time.Duration) error
	// Timeout applies a timed communication restriction to the author.
	Timeout(ctx context.Context, msg *Message, duration time.Duration, reason string) error
	// Kick removes the author from the server.
	Kick(ctx context.Context, msg *Message, reason string) error
	// Ban permanently removes the author from the server.
	Ban(ctx context.Context, msg *Message, reason string) error
	// NotifyChannel posts a visible notice to the message's channel.
	NotifyChannel(ctx context.Context, msg *Message, notice string) error
	// NotifyUser sends a private notice to the user. Best-effort: the
	// user may have direct messages closed.
	NotifyUser(ctx context.Context, userID, notice string) error
}
