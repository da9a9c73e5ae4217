package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore remembers revoked token ids until the tokens would have expired anyway
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const revokedKeyPrefix = "laundrybear:revoked:"

// RedisTokenStore keeps revocations in redis with a matching expiry
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore connects to the redis instance at url and checks it responds
func NewRedisTokenStore(ctx context.Context, url string) (*RedisTokenStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisTokenStore{client: client}, nil
}

// NewRedisTokenStoreWith wraps an existing client
func NewRedisTokenStoreWith(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the redis connection pool
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}

// MemoryTokenStore is a process-local TokenStore for development and tests
type MemoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenStore creates an empty in-memory store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (s *MemoryTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[tokenID]
	return ok && s.now().Before(until), nil
}

var tokenStoreInstance TokenStore = NewMemoryTokenStore()

// InitTokenStore picks redis when url is set and the in-memory store otherwise
func InitTokenStore(ctx context.Context, url string) (TokenStore, error) {
	if url == "" {
		tokenStoreInstance = NewMemoryTokenStore()
		return tokenStoreInstance, nil
	}
	store, err := NewRedisTokenStore(ctx, url)
	if err != nil {
		return nil, err
	}
	tokenStoreInstance = store
	return tokenStoreInstance, nil
}

// GetTokenStore returns the process-wide token store
func GetTokenStore() TokenStore {
	return tokenStoreInstance
}

// SetTokenStore sets the process-wide token store (primarily for testing)
func SetTokenStore(store TokenStore) {
	tokenStoreInstance = store
}
