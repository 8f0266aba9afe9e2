// Package session gives each request an explicit handle on the client's session data.
// A handle is loaded once, mutated in memory, and written back with Save.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-basket/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidPayload = errors.New("invalid session payload")

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func NewID() string { return uuid.NewString() }

// Load reads the session's fields. A session unknown to Redis yields an empty handle.
func (s *Store) Load(ctx context.Context, id string) (*Handle, error) {
	vals, err := s.rdb.HGetAll(ctx, key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if vals == nil {
		vals = map[string]string{}
	}
	return &Handle{id: id, values: vals, store: s}, nil
}

func key(id string) string { return fmt.Sprintf(redisx.KeySession, id) }

// Handle is owned by a single request and is not safe for concurrent use.
type Handle struct {
	id     string
	values map[string]string
	dirty  bool
	store  *Store
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) Get(k string) (string, bool) {
	v, ok := h.values[k]
	return v, ok
}

func (h *Handle) Set(k, v string) {
	h.values[k] = v
	h.dirty = true
}

func (h *Handle) Modified() bool { return h.dirty }

// Save writes all fields and refreshes the TTL in one MULTI/EXEC, so a request
// never leaves a half-written session behind. Unmodified handles are not written.
func (h *Handle) Save(ctx context.Context) error {
	if !h.dirty {
		return nil
	}
	args := make([]any, 0, 2*len(h.values))
	for k, v := range h.values {
		args = append(args, k, v)
	}
	k := key(h.id)
	_, err := h.store.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, args...)
		p.Expire(ctx, k, h.store.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	h.dirty = false
	return nil
}
