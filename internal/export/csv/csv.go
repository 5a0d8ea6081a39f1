// Package csv writes moderation history exports as CSV.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/straznik-bot/straznik/internal/export/types"
)

// FileName is the CSV export file written into the output directory.
const FileName = "moderation_history.csv"

// Exporter handles exporting history records to a csv file.
type Exporter struct {
	outDir string
}

// New creates a new csv exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes the records to the csv file, replacing any previous
// export.
func (e *Exporter) Export(records []*types.ExportRecord) error {
	path := filepath.Join(e.outDir, FileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing file %s: %w", FileName, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{"userId", "entryId", "type", "reason", "moderator", "timestamp", "durationMs"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write records
	for _, record := range records {
		row := []string{
			record.UserID,
			record.EntryID,
			record.Type,
			record.Reason,
			record.Moderator,
			record.Timestamp,
			strconv.FormatInt(record.DurationMs, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}
