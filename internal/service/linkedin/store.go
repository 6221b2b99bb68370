package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store key layout in Redis.
const (
	keyToken       = "postpilot:linkedin:token"
	keyStatePrefix = "postpilot:linkedin:state:"
)

// ErrNoToken is returned when no LinkedIn login has completed yet.
var ErrNoToken = errors.New("no linkedin token stored")

// StoredToken is the credential set kept after a completed login.
type StoredToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	PersonURN   string    `json:"person_urn"`
	Name        string    `json:"name"`
}

// Expired reports whether the token is past its expiry. Tokens without a
// recorded expiry are treated as live.
func (t *StoredToken) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// Store keeps the OAuth token and the pending login states. Implementations
// must be safe for concurrent use.
type Store interface {
	// SaveToken stores the credential set, replacing any previous one.
	SaveToken(ctx context.Context, token StoredToken) error

	// Token returns the stored credential set or ErrNoToken.
	Token(ctx context.Context) (*StoredToken, error)

	// SaveState records a pending OAuth state for ttl.
	SaveState(ctx context.Context, state string, ttl time.Duration) error

	// ConsumeState removes state and reports whether it was pending and
	// unexpired. A state can be consumed at most once.
	ConsumeState(ctx context.Context, state string) (bool, error)
}

// MemoryStore is the default single-process store.
type MemoryStore struct {
	mu     sync.Mutex
	token  *StoredToken
	states map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]time.Time)}
}

func (s *MemoryStore) SaveToken(_ context.Context, token StoredToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = &token
	return nil
}

func (s *MemoryStore) Token(_ context.Context) (*StoredToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil, ErrNoToken
	}
	token := *s.token
	return &token, nil
}

func (s *MemoryStore) SaveState(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) ConsumeState(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return time.Now().Before(deadline), nil
}

// RedisStore persists the token so a restart does not force a new login.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SaveToken(ctx context.Context, token StoredToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyToken, data, 0).Err()
}

func (s *RedisStore) Token(ctx context.Context) (*StoredToken, error) {
	data, err := s.client.Get(ctx, keyToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoToken
		}
		return nil, err
	}

	var token StoredToken
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *RedisStore) SaveState(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, keyStatePrefix+state, "1", ttl).Err()
}

func (s *RedisStore) ConsumeState(ctx context.Context, state string) (bool, error) {
	deleted, err := s.client.Del(ctx, keyStatePrefix+state).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
