package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"point-service/internal/biz"
	"point-service/internal/constants"
	"point-service/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/redis/v8"
)

const defaultCacheTTL = 5 * time.Minute

// cachedBalanceStore Redis 余额缓存
//
// ReadBalance 始终读主存储且不回填，变更路径与对账不会读到缓存里的旧值。
// 只有查询走 ReadCachedBalance：命中直接返回，未命中回源后用 SETNX 回填，
// 不会覆盖提交时写入的新值。
// 缓存失败不影响主流程，只记录日志；不存在的用户不缓存。
type cachedBalanceStore struct {
	next    biz.BalanceStore
	rdb     *redis.Client
	ttl     time.Duration
	log     *log.Helper
	metrics *metrics.PointMetrics
}

type cachedUserPoint struct {
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCachedBalanceStore(next biz.BalanceStore, rdb *redis.Client, ttl time.Duration, logger log.Logger) *cachedBalanceStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &cachedBalanceStore{
		next:    next,
		rdb:     rdb,
		ttl:     ttl,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

func balanceKey(userID int64) string {
	return fmt.Sprintf("%s%d", constants.RedisKeyPointBalance, userID)
}

// ReadBalance 直接读主存储
func (s *cachedBalanceStore) ReadBalance(ctx context.Context, userID int64) (*biz.UserPoint, error) {
	return s.next.ReadBalance(ctx, userID)
}

// ReadCachedBalance 先读缓存，未命中回源并回填
func (s *cachedBalanceStore) ReadCachedBalance(ctx context.Context, userID int64) (*biz.UserPoint, error) {
	key := balanceKey(userID)
	val, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var c cachedUserPoint
		if jerr := json.Unmarshal(val, &c); jerr == nil {
			s.count(constants.CacheHit)
			return &biz.UserPoint{UserID: userID, Balance: c.Balance, UpdatedAt: c.UpdatedAt}, nil
		}
		s.log.WithContext(ctx).Warnf("Invalid balance cache: key=%s", key)
		s.count(constants.CacheError)
	case err == redis.Nil:
		s.count(constants.CacheMiss)
	default:
		s.log.WithContext(ctx).Warnf("Read balance cache failed: key=%s, error=%v", key, err)
		s.count(constants.CacheError)
	}

	p, err := s.next.ReadBalance(ctx, userID)
	if err != nil || p == nil {
		return p, err
	}
	s.fill(ctx, p)
	return p, nil
}

// WriteBalance 写存储后更新缓存
func (s *cachedBalanceStore) WriteBalance(ctx context.Context, userID int64, balance int64) (*biz.UserPoint, error) {
	p, err := s.next.WriteBalance(ctx, userID, balance)
	if err != nil {
		s.del(ctx, userID)
		return nil, err
	}
	s.set(ctx, p)
	return p, nil
}

func (s *cachedBalanceStore) set(ctx context.Context, p *biz.UserPoint) {
	data, err := json.Marshal(cachedUserPoint{Balance: p.Balance, UpdatedAt: p.UpdatedAt})
	if err != nil {
		return
	}
	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
	defer cancel()
	if err := s.rdb.Set(cacheCtx, balanceKey(p.UserID), data, s.ttl).Err(); err != nil {
		s.log.WithContext(ctx).Warnf("Set balance cache failed: user_id=%d, error=%v", p.UserID, err)
		// 写缓存失败时删除旧值，避免读到过期余额
		s.del(ctx, p.UserID)
	}
}

// fill 回填缓存，key 已存在时不覆盖
func (s *cachedBalanceStore) fill(ctx context.Context, p *biz.UserPoint) {
	data, err := json.Marshal(cachedUserPoint{Balance: p.Balance, UpdatedAt: p.UpdatedAt})
	if err != nil {
		return
	}
	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
	defer cancel()
	if err := s.rdb.SetNX(cacheCtx, balanceKey(p.UserID), data, s.ttl).Err(); err != nil {
		s.log.WithContext(ctx).Warnf("Fill balance cache failed: user_id=%d, error=%v", p.UserID, err)
	}
}

func (s *cachedBalanceStore) del(ctx context.Context, userID int64) {
	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
	defer cancel()
	if err := s.rdb.Del(cacheCtx, balanceKey(userID)).Err(); err != nil {
		s.log.WithContext(ctx).Errorf("Delete balance cache failed: user_id=%d, error=%v", userID, err)
	}
}

func (s *cachedBalanceStore) count(result string) {
	if s.metrics != nil {
		s.metrics.CacheTotal.WithLabelValues(result).Inc()
	}
}
