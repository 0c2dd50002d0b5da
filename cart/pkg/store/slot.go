package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Slot is the durable key-value slot a cart snapshot lives in. Load returns
// found=false when no snapshot exists yet.
type Slot interface {
	Load(c context.Context) (data []byte, found bool, err error)
	Store(c context.Context, data []byte) error
}

const cartKeyFormat = "cart:%s"

// RedisSlot persists the snapshot under cart:<owner> in redis.
type RedisSlot struct {
	cache *redis.Client
	key   string
}

func NewRedisSlot(cache *redis.Client, owner string) RedisSlot {
	return RedisSlot{cache: cache, key: fmt.Sprintf(cartKeyFormat, owner)}
}

func (s RedisSlot) Key() string {
	return s.key
}

func (s RedisSlot) Load(c context.Context) ([]byte, bool, error) {
	data, err := s.cache.Get(c, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed loading cart slot with error=%w", err)
	}
	return data, true, nil
}

func (s RedisSlot) Store(c context.Context, data []byte) error {
	err := s.cache.Set(c, s.key, data, 0).Err()
	if err != nil {
		return fmt.Errorf("failed storing cart slot with error=%w", err)
	}
	return nil
}

// MemorySlot is an in-process slot for tests.
type MemorySlot struct {
	data  []byte
	found bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Seed(data []byte) {
	s.data = append([]byte(nil), data...)
	s.found = true
}

func (s *MemorySlot) Load(context.Context) ([]byte, bool, error) {
	if !s.found {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

func (s *MemorySlot) Store(_ context.Context, data []byte) error {
	s.Seed(data)
	return nil
}

func (s *MemorySlot) Snapshot() []byte {
	return append([]byte(nil), s.data...)
}
