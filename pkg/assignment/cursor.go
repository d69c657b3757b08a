package assignment

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MemoryCursorStore keeps cursors for the life of the process.
type MemoryCursorStore struct {
	mu      sync.Mutex
	cursors map[uint]uint64
}

func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{cursors: make(map[uint]uint64)}
}

func (s *MemoryCursorStore) Next(_ context.Context, locationId uint) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[locationId]++
	return s.cursors[locationId], nil
}

// RedisCursorStore shares cursors across API instances with INCR.
type RedisCursorStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisCursorStore(rdb redis.Cmdable) *RedisCursorStore {
	return &RedisCursorStore{rdb: rdb, prefix: "assignment:cursor:"}
}

func (s *RedisCursorStore) Next(ctx context.Context, locationId uint) (uint64, error) {
	n, err := s.rdb.Incr(ctx, fmt.Sprintf("%s%d", s.prefix, locationId)).Uint64()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return n, nil
}

// FallbackCursorStore tries each store in order and returns the first success.
type FallbackCursorStore struct {
	stores []CursorStore
	logger *zap.Logger
}

func NewFallbackCursorStore(logger *zap.Logger, stores ...CursorStore) *FallbackCursorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackCursorStore{stores: stores, logger: logger}
}

func (s *FallbackCursorStore) Next(ctx context.Context, locationId uint) (uint64, error) {
	var lastErr error
	for i, store := range s.stores {
		n, err := store.Next(ctx, locationId)
		if err == nil {
			return n, nil
		}
		s.logger.Warn("cursor store failed", zap.Int("store", i), zap.Uint("location_id", locationId), zap.Error(err))
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no cursor store configured")
	}
	return 0, lastErr
}
