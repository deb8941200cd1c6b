package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"vendorportal/catalog"
	"vendorportal/config"
)

// BatchEntry is one product added to a single product batch.
type BatchEntry struct {
	Vendor        string       `json:"vendor"`
	SKU           string       `json:"sku"`
	MethodSummary string       `json:"method_summary"`
	AddedAt       time.Time    `json:"added_at"`
	Rows          catalog.Book `json:"rows"`
}

// BatchStore accumulates products per login session until the batch is
// generated or cleared.
type BatchStore interface {
	Append(ctx context.Context, key string, e BatchEntry) error
	Load(ctx context.Context, key string) ([]BatchEntry, error)
	Clear(ctx context.Context, key string) error
}

type MemoryBatchStore struct {
	mu      sync.Mutex
	batches map[string][]BatchEntry
}

func NewMemoryBatchStore() *MemoryBatchStore {
	return &MemoryBatchStore{batches: make(map[string][]BatchEntry)}
}

func (s *MemoryBatchStore) Append(_ context.Context, key string, e BatchEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[key] = append(s.batches[key], e)
	return nil
}

func (s *MemoryBatchStore) Load(_ context.Context, key string) ([]BatchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]BatchEntry(nil), s.batches[key]...), nil
}

func (s *MemoryBatchStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, key)
	return nil
}

const batchKeyPrefix = "vendorportal:batch:"

// RedisBatchStore keeps each batch as a Redis list of JSON entries. The TTL is
// refreshed on every append.
type RedisBatchStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func NewRedisBatchStore(rdb *redis.Client, ttl time.Duration) *RedisBatchStore {
	return &RedisBatchStore{rdb: rdb, ttl: ttl}
}

func (s *RedisBatchStore) Append(ctx context.Context, key string, e BatchEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode batch entry: %w", err)
	}
	k := batchKeyPrefix + key
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, k, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append batch entry: %w", err)
	}
	return nil
}

func (s *RedisBatchStore) Load(ctx context.Context, key string) ([]BatchEntry, error) {
	raw, err := s.rdb.LRange(ctx, batchKeyPrefix+key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	return decodeBatch(raw)
}

func (s *RedisBatchStore) Clear(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, batchKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear batch: %w", err)
	}
	return nil
}

func decodeBatch(raw []string) ([]BatchEntry, error) {
	entries := make([]BatchEntry, 0, len(raw))
	for i, item := range raw {
		var e BatchEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode batch entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
