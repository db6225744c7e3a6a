// Package session keeps a server-side record per issued login token so the
// client state (user id, role, email, school) lives in one place and logout
// clears it atomically. The record is keyed by the token's hash and expires
// with the token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/registry/internal/crypto"
)

type Record struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	SchoolID string `json:"schoolId,omitempty"`
}

// Client is the slice of the redis API the store uses. *redis.Client
// satisfies it.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store is optional: a nil client turns every operation into a no-op, the
// same way the attendance features degrade without Redis. Callers must pass
// a literal nil, not a nil *redis.Client.
type Store struct {
	client Client
	ttl    time.Duration
}

func NewStore(client Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Enabled reports whether session records are actually kept. When false,
// authentication is purely JWT and logout is best-effort.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *Store) Create(ctx context.Context, token string, record Record) error {
	if s == nil || s.client == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(token), data, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, token string) (Record, bool, error) {
	if s == nil || s.client == nil {
		return Record{}, false, nil
	}
	data, err := s.client.Get(ctx, key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, false, err
	}
	return record, true, nil
}

// Clear removes the session record. The record is a single key, so every
// field disappears together.
func (s *Store) Clear(ctx context.Context, token string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Del(ctx, key(token)).Err()
}

func key(token string) string {
	return "session:" + crypto.HashToken(token)
}

// MapClient is an in-memory Client used as a test double. TTLs are ignored.
type MapClient struct {
	mu   sync.Mutex
	data map[string]string
}

var _ Client = (*MapClient)(nil)

func NewMapClient() *MapClient {
	return &MapClient{data: make(map[string]string)}
}

func (m *MapClient) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusCmd(ctx)
}

func (m *MapClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	if v, ok := m.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *MapClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	var removed int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			removed++
		}
	}
	cmd.SetVal(removed)
	return cmd
}
