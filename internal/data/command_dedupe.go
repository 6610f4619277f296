package data

import (
	"context"
	"sync"
	"time"

	"point-service/internal/constants"

	"github.com/go-redis/redis/v8"
)

const defaultDedupeTTL = 24 * time.Hour

// redisCommandDeduper 基于 SETNX 的命令去重，多副本共享
type redisCommandDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func newRedisCommandDeduper(rdb *redis.Client, ttl time.Duration) *redisCommandDeduper {
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	return &redisCommandDeduper{rdb: rdb, ttl: ttl}
}

func (d *redisCommandDeduper) Acquire(ctx context.Context, requestID string) (bool, error) {
	return d.rdb.SetNX(ctx, constants.RedisKeyPointCommand+requestID, 1, d.ttl).Result()
}

func (d *redisCommandDeduper) Release(ctx context.Context, requestID string) error {
	return d.rdb.Del(ctx, constants.RedisKeyPointCommand+requestID).Err()
}

// memoryCommandDeduper 未配置 Redis 时的进程内去重，重启后失效
//
// 与 Redis 版本一样按 ttl 过期；过期记录在 Acquire 时按 ttl 间隔批量清理。
type memoryCommandDeduper struct {
	mu        sync.Mutex
	ttl       time.Duration
	seen      map[string]time.Time // requestID -> 过期时间
	nextSweep time.Time
	now       func() time.Time
}

func newMemoryCommandDeduper(ttl time.Duration) *memoryCommandDeduper {
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	return &memoryCommandDeduper{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (d *memoryCommandDeduper) Acquire(_ context.Context, requestID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if now.After(d.nextSweep) {
		for id, expireAt := range d.seen {
			if !now.Before(expireAt) {
				delete(d.seen, id)
			}
		}
		d.nextSweep = now.Add(d.ttl)
	}
	if expireAt, ok := d.seen[requestID]; ok && now.Before(expireAt) {
		return false, nil
	}
	d.seen[requestID] = now.Add(d.ttl)
	return true, nil
}

func (d *memoryCommandDeduper) Release(_ context.Context, requestID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, requestID)
	return nil
}
