package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/autotradehub/autotradehub-backend/pkg/redis"
)

type kv interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

// Store persists a user's cart as a single JSON blob.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) ([]Line, error)
	Save(ctx context.Context, userID uuid.UUID, lines []Line) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type redisStore struct {
	kv  kv
	ttl time.Duration
}

// NewStore returns a Redis-backed cart store. The TTL applies on every save,
// so an active cart keeps sliding forward while abandoned ones expire.
func NewStore(client kv, ttl time.Duration) (Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &redisStore{kv: client, ttl: ttl}, nil
}

func (s *redisStore) Load(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Line{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		// A corrupt blob is unrecoverable; treat it as an empty cart rather
		// than locking the user out of checkout.
		return []Line{}, nil
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}

func (s *redisStore) Save(ctx context.Context, userID uuid.UUID, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	blob, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(userID.String()), blob, s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(userID.String())); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
