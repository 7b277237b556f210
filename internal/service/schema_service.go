package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

const definesKey = "frontend_defines"

// SchemaProvider supplies the frontend defines with an explicit load/refresh
// lifecycle: loaded at login, invalidated at logout.
type SchemaProvider interface {
	// Defines returns the cached field-definition table, fetching it from
	// the upstream on a cache miss.
	Defines(ctx context.Context, up Upstream) ([]domain.FieldSchema, error)

	// Invalidate drops the cached table.
	Invalidate(ctx context.Context) error
}

// SchemaService caches the frontend defines in Redis with a TTL.
type SchemaService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSchemaService connects to Redis and verifies the connection.
func NewSchemaService(redisURL string, ttl time.Duration) (*SchemaService, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SchemaService{client: client, ttl: ttl}, nil
}

// Defines returns the cached defines table, fetching from the upstream on a
// miss and repopulating the cache.
func (s *SchemaService) Defines(ctx context.Context, up Upstream) ([]domain.FieldSchema, error) {
	data, err := s.client.Get(ctx, definesKey).Bytes()
	if err == nil {
		var defines []domain.FieldSchema
		if err := json.Unmarshal(data, &defines); err == nil {
			return defines, nil
		}
		// A corrupt cache entry falls through to a refetch.
	} else if err != redis.Nil {
		return nil, fmt.Errorf("failed to read schema cache: %w", err)
	}

	defines, err := up.FrontendDefines(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(defines); err == nil {
		if err := s.client.Set(ctx, definesKey, encoded, s.ttl).Err(); err != nil {
			return defines, fmt.Errorf("failed to cache schema: %w", err)
		}
	}
	return defines, nil
}

// Invalidate drops the cached defines table.
func (s *SchemaService) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, definesKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate schema cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *SchemaService) Close() error {
	return s.client.Close()
}
