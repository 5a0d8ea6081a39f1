package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// FileStore keeps each domain document as a pretty-printed JSON file in a
// single data directory. Writes go through a temp file and rename so a
// crash mid-write never leaves a torn document behind.
type FileStore struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex // Serializes writes across domains
}

// NewFileStore creates the data directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileStore{
		dir:    dir,
		logger: logger.Named("file_store"),
	}, nil
}

// Load reads the domain file into v. A missing file or malformed JSON is
// treated as an empty document.
func (s *FileStore) Load(_ context.Context, domain Domain, v any) error {
	data, err := os.ReadFile(s.path(domain))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read document, treating as empty",
				zap.String("domain", string(domain)),
				zap.Error(err))
		}

		return nil
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		s.logger.Warn("Malformed document, treating as empty",
			zap.String("domain", string(domain)),
			zap.Error(err))
	}

	return nil
}

// Save atomically replaces the domain file with the marshaled value.
func (s *FileStore) Save(_ context.Context, domain Domain, v any) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", domain, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, string(domain)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", domain, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to write document %s: %w", domain, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", domain, err)
	}

	if err := os.Rename(tmp.Name(), s.path(domain)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace document %s: %w", domain, err)
	}

	return nil
}

func (s *FileStore) path(domain Domain) string {
	return filepath.Join(s.dir, string(domain)+".json")
}
