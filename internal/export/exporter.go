// Package export flattens the moderation history ledger into portable
// file formats.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/straznik-bot/straznik/internal/automod/history"
	"github.com/straznik-bot/straznik/internal/export/csv"
	"github.com/straznik-bot/straznik/internal/export/sqlite"
	"github.com/straznik-bot/straznik/internal/export/types"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents a supported export format.
type Format string

const (
	FormatSQLite Format = "sqlite"
	FormatCSV    Format = "csv"
)

// Exporter flattens the ledger and writes it in the requested formats.
type Exporter struct {
	ledger *history.Ledger
	outDir string
}

// New creates an exporter writing into outDir.
func New(ledger *history.Ledger, outDir string) *Exporter {
	return &Exporter{
		ledger: ledger,
		outDir: outDir,
	}
}

// Export writes the full moderation history in each requested format.
func (e *Exporter) Export(ctx context.Context, formats []Format) error {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	records := e.flatten(ctx)

	for _, format := range formats {
		switch format {
		case FormatCSV:
			if err := csv.New(e.outDir).Export(records); err != nil {
				return fmt.Errorf("csv export failed: %w", err)
			}
		case FormatSQLite:
			if err := sqlite.New(e.outDir).Export(records); err != nil {
				return fmt.Errorf("sqlite export failed: %w", err)
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
		}
	}

	return nil
}

// flatten turns the per-user ledger into a single record list ordered by
// user then timestamp.
func (e *Exporter) flatten(ctx context.Context) []*types.ExportRecord {
	byUser := e.ledger.All(ctx)

	userIDs := make([]string, 0, len(byUser))
	for userID := range byUser {
		userIDs = append(userIDs, userID)
	}

	sort.Strings(userIDs)

	var records []*types.ExportRecord

	for _, userID := range userIDs {
		for _, entry := range byUser[userID] {
			record := &types.ExportRecord{
				UserID:    userID,
				EntryID:   entry.ID,
				Type:      entry.Type,
				Reason:    entry.Reason,
				Moderator: entry.Moderator.String(),
				Timestamp: entry.Timestamp.UTC().Format(time.RFC3339),
			}
			if entry.DurationMs != nil {
				record.DurationMs = *entry.DurationMs
			}

			records = append(records, record)
		}
	}

	return records
}
