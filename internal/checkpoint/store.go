// Package checkpoint stores intraday analysis snapshots in Redis, one slot
// per (date, checkpoint, symbol). Keys expire at 21:00 IST so every panel
// resets for the next trading day. When Redis is unavailable the store keeps
// an in-memory fallback so same-process saves stay readable, but saves are
// reported as failed to the caller.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"stock-intelligence/internal/market"
)

// KeyPrefix is the Redis key prefix for checkpoint snapshots.
// Format: checkpoint:{YYYY-MM-DD}:{HHMM}:{symbol}
const KeyPrefix = "checkpoint"

// Keys expire at this hour IST so panels reset overnight
const expiryHourIST = 21

// minTTL keeps a just-saved snapshot readable even right at the expiry edge
const minTTL = 60 * time.Second

// Store provides Redis-backed checkpoint persistence with an in-memory
// fallback cache
type Store struct {
	client         *redis.Client
	inMemoryCache  map[string]*Snapshot
	cacheMu        sync.RWMutex
	redisAvailable atomic.Bool
}

// NewStore creates a checkpoint store. A nil client puts the store in
// memory-only mode where every Save reports failure.
func NewStore(client *redis.Client) *Store {
	s := &Store{
		client:        client,
		inMemoryCache: make(map[string]*Snapshot),
	}

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[CHECKPOINT-STORE] Redis unavailable at startup: %v, using in-memory cache", err)
			s.redisAvailable.Store(false)
		} else {
			log.Printf("[CHECKPOINT-STORE] Redis connected successfully")
			s.redisAvailable.Store(true)
		}
	} else {
		log.Printf("[CHECKPOINT-STORE] No Redis client provided, using in-memory cache only")
		s.redisAvailable.Store(false)
	}

	return s
}

// key generates the Redis key for a checkpoint snapshot.
// Format: checkpoint:2026-02-20:0915:^NSEI
func (s *Store) key(date, checkpointID, symbol string) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefix, date, checkpointID, symbol)
}

// ttlUntilExpiry returns the duration until 21:00 IST, rolling to the next
// day when already past
func ttlUntilExpiry(now time.Time) time.Duration {
	ist := now.In(market.IST)
	expireAt := time.Date(ist.Year(), ist.Month(), ist.Day(), expiryHourIST, 0, 0, 0, market.IST)
	if !expireAt.After(ist) {
		expireAt = expireAt.AddDate(0, 0, 1)
	}
	ttl := expireAt.Sub(ist)
	if ttl < minTTL {
		ttl = minTTL
	}
	return ttl
}

// Save writes a snapshot with the end-of-day TTL. The returned bool reports
// whether the snapshot landed in Redis; the in-memory cache is updated either
// way so reads in this process keep working.
func (s *Store) Save(ctx context.Context, date, checkpointID, symbol string, snap *Snapshot) bool {
	if snap == nil {
		return false
	}

	key := s.key(date, checkpointID, symbol)
	s.updateCache(key, snap)

	if s.client == nil || !s.redisAvailable.Load() {
		log.Printf("[CHECKPOINT-STORE] Redis unavailable, snapshot %s held in memory only", key)
		return false
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[CHECKPOINT-STORE] Failed to marshal snapshot %s: %v", key, err)
		return false
	}

	ttl := ttlUntilExpiry(time.Now())
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, ttl)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[CHECKPOINT-STORE] Failed to save %s: %v", key, err)
		s.redisAvailable.Store(false)
		return false
	}

	log.Printf("[CHECKPOINT-STORE] Saved %s (signal=%s, ttl=%s)", key, snap.ScalpSignal, ttl.Round(time.Second))
	return true
}

// Load reads one snapshot. Returns nil when the slot has not been captured.
func (s *Store) Load(ctx context.Context, date, checkpointID, symbol string) *Snapshot {
	key := s.key(date, checkpointID, symbol)

	if s.client != nil && s.redisAvailable.Load() {
		data, err := s.client.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return s.getFromCache(key)
			}
			log.Printf("[CHECKPOINT-STORE] Redis read error: %v, using in-memory cache", err)
			s.redisAvailable.Store(false)
			return s.getFromCache(key)
		}

		var snap Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			log.Printf("[CHECKPOINT-STORE] Failed to unmarshal %s: %v", key, err)
			return nil
		}
		s.updateCache(key, &snap)
		return &snap
	}

	return s.getFromCache(key)
}

// LoadAll returns all seven panels for a day and symbol, Data nil for slots
// not yet captured
func (s *Store) LoadAll(ctx context.Context, date, symbol string) []Panel {
	panels := make([]Panel, 0, len(Checkpoints))
	for _, cp := range Checkpoints {
		panels = append(panels, Panel{
			ID:    cp.ID,
			Label: cp.Label,
			Time:  cp.Time,
			Data:  s.Load(ctx, date, cp.ID, symbol),
		})
	}
	return panels
}

// IsAvailable reports whether Redis is currently reachable
func (s *Store) IsAvailable() bool {
	return s.redisAvailable.Load()
}

// CheckConnection pings Redis and updates the availability flag
func (s *Store) CheckConnection(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("no Redis client configured")
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.redisAvailable.Store(false)
		return fmt.Errorf("redis ping failed: %w", err)
	}
	wasUnavailable := !s.redisAvailable.Load()
	s.redisAvailable.Store(true)
	if wasUnavailable {
		log.Printf("[CHECKPOINT-STORE] Redis connection recovered")
	}
	return nil
}

// --- In-memory cache operations ---

func (s *Store) updateCache(key string, snap *Snapshot) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	copied := *snap
	s.inMemoryCache[key] = &copied
}

func (s *Store) getFromCache(key string) *Snapshot {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	if snap, ok := s.inMemoryCache[key]; ok {
		copied := *snap
		return &copied
	}
	return nil
}
