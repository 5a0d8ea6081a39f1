package storage

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// KeyPrefix namespaces all document keys so the store can share a Redis
// database with other applications.
const KeyPrefix = "straznik:"

// RedisStore keeps each domain document as a JSON string under a single
// Redis key. Documents are small (per-user event maps), so whole-document
// GET/SET keeps the read-modify-write cycle identical to the file store.
type RedisStore struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client rueidis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger.Named("redis_store"),
	}
}

// Load reads the domain key into v. A missing key or malformed JSON is
// treated as an empty document.
func (s *RedisStore) Load(ctx context.Context, domain Domain, v any) error {
	resp := s.client.Do(ctx, s.client.B().Get().Key(KeyPrefix+string(domain)).Build())

	data, err := resp.AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
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

// Save replaces the domain key with the marshaled value.
func (s *RedisStore) Save(ctx context.Context, domain Domain, v any) error {
	data, err := sonic.MarshalString(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", domain, err)
	}

	cmd := s.client.B().Set().Key(KeyPrefix + string(domain)).Value(data).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store document %s: %w", domain, err)
	}

	return nil
}
