// Package sqlite writes moderation history exports as a SQLite database.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/straznik-bot/straznik/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// FileName is the SQLite export file written into the output directory.
const FileName = "moderation_history.db"

// Exporter handles exporting history records to a SQLite database.
type Exporter struct {
	outDir string
}

// New creates a new SQLite exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes the records to the database file, replacing any previous
// export.
func (e *Exporter) Export(records []*types.ExportRecord) error {
	path := filepath.Join(e.outDir, FileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing file %s: %w", FileName, err)
	}

	// Open database
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	// Create table
	err = sqlitex.Execute(conn, `
		CREATE TABLE history (
			entry_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			reason TEXT NOT NULL,
			moderator TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)
	`, nil)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	// Insert records in batches
	const batchSize = 1000
	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))

		// Begin transaction
		err = sqlitex.Execute(conn, "BEGIN TRANSACTION", nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		// Insert batch
		for _, record := range records[i:end] {
			err = sqlitex.Execute(conn,
				"INSERT INTO history (entry_id, user_id, type, reason, moderator, timestamp, duration_ms) "+
					"VALUES (?, ?, ?, ?, ?, ?, ?)",
				&sqlitex.ExecOptions{
					Args: []any{
						record.EntryID, record.UserID, record.Type, record.Reason,
						record.Moderator, record.Timestamp, record.DurationMs,
					},
				})
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}

		// Commit transaction
		err = sqlitex.Execute(conn, "COMMIT", nil)
		if err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	return nil
}
