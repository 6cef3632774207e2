package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenStore persists one bearer token per browser session in Redis.
type RedisTokenStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

// NewRedisTokenStore binds a token store to a browser session ID.
func NewRedisTokenStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, sessionID: sessionID, ttl: ttl}
}

func (s *RedisTokenStore) key() string {
	return "token:" + s.sessionID
}

// Read returns the stored token, or empty when none is stored.
func (s *RedisTokenStore) Read(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Write stores the token with the session TTL.
func (s *RedisTokenStore) Write(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key(), token, s.ttl).Err()
}

// Clear removes the stored token.
func (s *RedisTokenStore) Clear(ctx context.Context) error {
	err := s.client.Del(ctx, s.key()).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// MemoryTokenStore is an in-process TokenStore used by tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
	has   bool

	// Reads counts Read calls, letting tests assert the bootstrap-once rule.
	Reads int
}

// NewMemoryTokenStore returns an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Seed pre-populates the store, simulating a token surviving a restart.
func (s *MemoryTokenStore) Seed(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.has = token != ""
}

func (s *MemoryTokenStore) Read(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	if !s.has {
		return "", nil
	}
	return s.token, nil
}

func (s *MemoryTokenStore) Write(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.has = true
	return nil
}

func (s *MemoryTokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.has = false
	return nil
}
