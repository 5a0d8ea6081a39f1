// Package tracker maintains the per-user rolling-window event logs backing
// the auto-moderation engine: recent message timestamps for spam detection,
// profanity warnings over a trailing 24 hours, and spam penalties over a
// trailing hour. Every read-modify-write cycle prunes events that fell out
// of the window, so the persisted documents never grow unbounded.
package tracker

import "time"

const (
	// WarningWindow is the trailing window for profanity warnings. It is
	// anchored at "now" on every evaluation and slides continuously; it is
	// not a calendar day.
	WarningWindow = 24 * time.Hour

	// PenaltyWindow is the trailing window for spam penalties.
	PenaltyWindow = time.Hour
)

// Option configures a tracker.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock overrides the time source. Used by tests to control window
// expiry deterministically.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func applyOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
