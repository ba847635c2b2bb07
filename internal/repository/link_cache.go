package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"guestlink/constant"
)

// CachedLink 跳转只需要的字段
type CachedLink struct {
	URL        string `json:"url"`
	UseLanding bool   `json:"useLanding"`
}

// LinkCache 短码解析的旁路缓存。Redis 出错只记日志并按未命中处理，pool 为 nil 时所有方法都不做事
//
// 每个条目是一个 hash {v: 版本, d: 数据}，版本为记录 updatedAt 的毫秒数，旧版本不能覆盖新版本。
// 写操作留下墓碑（只有版本没有数据），写之前读到旧记录的请求无法再把旧状态写回缓存
type LinkCache struct {
	pool        *redis.Pool
	ttl         time.Duration
	negativeTTL time.Duration
	logger      *zap.Logger
}

// putScript 参数：KEYS[1] 键；ARGV 版本、是否有数据(1/0)、数据、过期秒数
var putScript = redis.NewScript(1, `
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call('DEL', KEYS[1])
if ARGV[2] == '1' then
  redis.call('HSET', KEYS[1], 'v', ARGV[1], 'd', ARGV[3])
else
  redis.call('HSET', KEYS[1], 'v', ARGV[1])
end
redis.call('EXPIRE', KEYS[1], ARGV[4])
return 1
`)

func NewLinkCache(pool *redis.Pool, ttl, negativeTTL time.Duration, logger *zap.Logger) *LinkCache {
	return &LinkCache{
		pool:        pool,
		ttl:         ttl,
		negativeTTL: negativeTTL,
		logger:      logger,
	}
}

func (c *LinkCache) Enabled() bool {
	return c != nil && c.pool != nil
}

// Get 命中返回 (link, true)，缓存的不存在返回 (nil, true)；无缓存或墓碑时 found 为 false
func (c *LinkCache) Get(ctx context.Context, code string) (link *CachedLink, found bool) {
	if !c.Enabled() {
		return nil, false
	}
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		c.logger.Warn("Redis connection unavailable", zap.Error(err))
		return nil, false
	}
	defer c.closeConn(conn)

	key := constant.GetLinkCacheKey(code)
	fields, err := redis.ByteSlices(conn.Do("HMGET", key, "v", "d"))
	if err != nil {
		c.logger.Warn("Error getting from Redis",
			zap.String("cache_key", key),
			zap.Error(err))
		return nil, false
	}
	if len(fields) != 2 || fields[0] == nil || fields[1] == nil {
		return nil, false
	}
	if len(fields[1]) == 0 {
		return nil, true
	}

	var value CachedLink
	if err := json.Unmarshal(fields[1], &value); err != nil {
		c.logger.Warn("Failed to unmarshal cached value",
			zap.String("cache_key", key),
			zap.Error(err))
		return nil, false
	}
	return &value, true
}

// Set 按读取时的记录版本写入缓存
func (c *LinkCache) Set(ctx context.Context, code string, link CachedLink, version time.Time) {
	if !c.Enabled() {
		return
	}
	payload, err := json.Marshal(link)
	if err != nil {
		c.logger.Warn("Failed to marshal cache value", zap.Error(err))
		return
	}
	c.put(ctx, code, versionOf(version), payload, c.ttl)
}

// SetMissing 缓存短码不存在（空值缓存），不会覆盖任何带版本的条目
func (c *LinkCache) SetMissing(ctx context.Context, code string) {
	if !c.Enabled() {
		return
	}
	c.put(ctx, code, 0, []byte{}, c.negativeTTL)
}

// Invalidate 写操作之后调用，用该次写入产生的 updatedAt 留下墓碑
func (c *LinkCache) Invalidate(ctx context.Context, code string, version time.Time) {
	if !c.Enabled() {
		return
	}
	c.put(ctx, code, versionOf(version), nil, c.ttl)
}

func versionOf(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// put 以 payload 为 nil 表示写入墓碑
func (c *LinkCache) put(ctx context.Context, code string, version int64, payload []byte, ttl time.Duration) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		c.logger.Warn("Redis connection unavailable", zap.Error(err))
		return
	}
	defer c.closeConn(conn)

	key := constant.GetLinkCacheKey(code)
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	hasPayload := "0"
	if payload != nil {
		hasPayload = "1"
	}
	if _, err := putScript.Do(conn, key, version, hasPayload, payload, seconds); err != nil {
		c.logger.Error("Failed to set cache",
			zap.String("cache_key", key),
			zap.Error(err))
	}
}

func (c *LinkCache) closeConn(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection",
			zap.Error(err),
			zap.String("operation", "close"),
			zap.String("connection_type", "redis"),
		)
	}
}
