// Package selection keeps the plan a visitor picked for booking, scoped to a
// browser session identifier and expiring after a TTL. Absence is a normal
// outcome, reported as ErrEmpty.
package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Get when the session has no live selection.
var ErrEmpty = errors.New("no selection")

// Selection is the stored booking choice.
type Selection struct {
	PlanID     uuid.UUID `json:"plan_id"`
	SelectedAt time.Time `json:"selected_at"`
}

// Store is implemented by the Redis and in-memory backends.
type Store interface {
	Put(ctx context.Context, sessionID string, sel Selection) error
	Get(ctx context.Context, sessionID string) (Selection, error)
	Clear(ctx context.Context, sessionID string) error
}

const keyPrefix = "selection:"

// RedisStore keeps selections as JSON strings with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a Store backed by rdb.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, sel Selection) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("selection.RedisStore.Put: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("selection.RedisStore.Put: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Selection, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Selection{}, ErrEmpty
	}
	if err != nil {
		return Selection{}, fmt.Errorf("selection.RedisStore.Get: %w", err)
	}
	var sel Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return Selection{}, fmt.Errorf("selection.RedisStore.Get: %w", err)
	}
	return sel, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("selection.RedisStore.Clear: %w", err)
	}
	return nil
}

// MemoryStore is the fallback used when no Redis address is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	ttl     time.Duration
	now     func() time.Time
}

type memEntry struct {
	sel     Selection
	expires time.Time
}

// NewMemoryStore returns an in-process Store. Expired entries are dropped lazily.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memEntry{sel: sel, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return Selection{}, ErrEmpty
	}
	if s.ttl > 0 && !s.now().Before(e.expires) {
		delete(s.entries, sessionID)
		return Selection{}, ErrEmpty
	}
	return e.sel, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
