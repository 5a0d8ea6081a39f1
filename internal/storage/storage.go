// Package storage persists the moderation state as JSON documents, one
// document per tracking domain. Two interchangeable backends exist: a
// file-based store for single-host deployments and a Redis-backed store.
package storage

import (
	"context"
	"errors"
)

// Domain identifies one persisted JSON document.
type Domain string

const (
	// DomainConfig holds the moderation configuration document.
	DomainConfig Domain = "automod_config"
	// DomainHistory holds the per-user moderation history ledger.
	DomainHistory Domain = "moderation_history"
	// DomainSpamTracker holds per-user message timestamps for spam detection.
	DomainSpamTracker Domain = "spam_tracker"
	// DomainProfanityWarnings holds per-user profanity warning events.
	DomainProfanityWarnings Domain = "profanity_warnings"
	// DomainSpamPenalties holds per-user spam penalty events.
	DomainSpamPenalties Domain = "spam_penalties"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Store reads and writes domain documents. Implementations must treat a
// missing document as "no data yet" and leave the destination untouched,
// and must degrade malformed documents to "no data yet" rather than fail,
// so a corrupt file can never take down message processing.
type Store interface {
	// Load unmarshals the domain document into v. Missing or unreadable
	// documents leave v unchanged and return nil.
	Load(ctx context.Context, domain Domain, v any) error
	// Save marshals v and replaces the domain document.
	Save(ctx context.Context, domain Domain, v any) error
}
