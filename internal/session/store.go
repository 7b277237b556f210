// Package session holds the working copies of invoices being edited. A
// session is owned by exactly one edit overlay: it is created when the user
// enters edit mode, replaced wholesale on every patch, and discarded or
// promoted atomically at cancel/save time.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

// ErrNotFound is returned when a session id does not resolve.
var ErrNotFound = errors.New("session not found")

// Session is one open edit session: the identity of the editor plus the
// transient working copy of the invoice.
type Session struct {
	ID        string         `json:"id"`
	UserUUID  string         `json:"user_uuid"`
	Invoice   domain.Invoice `json:"invoice"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store is the interface for persisting edit sessions.
type Store interface {
	// Create registers a new session for the invoice and returns it.
	Create(ctx context.Context, userUUID string, inv domain.Invoice) (*Session, error)

	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Put replaces the stored session wholesale.
	Put(ctx context.Context, s *Session) error

	// Delete discards the session; deleting a missing session is a no-op.
	Delete(ctx context.Context, id string) error
}

// RedisStore implements Store on Redis with a TTL so abandoned sessions
// expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
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

	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(id string) string { return "session:" + id }

// Create registers a new session for the invoice.
func (s *RedisStore) Create(ctx context.Context, userUUID string, inv domain.Invoice) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserUUID:  userUUID,
		Invoice:   inv,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

// Put replaces the stored session and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Delete discards the session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
