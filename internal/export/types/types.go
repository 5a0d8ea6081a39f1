// Package types defines the flat record layout shared by the export
// formats.
package types

// ExportRecord is one moderation history entry flattened for export.
type ExportRecord struct {
	UserID     string `json:"userId"`
	EntryID    string `json:"entryId"`
	Type       string `json:"type"`
	Reason     string `json:"reason"`
	Moderator  string `json:"moderator"`
	Timestamp  string `json:"timestamp"`
	DurationMs int64  `json:"durationMs"` // Zero when the action had no duration
}
