package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/bookstore/internal/config"
)

// TokenCache 基于一致性哈希分片的 JWT 解析结果缓存
type TokenCache struct {
	redis radix.Client
	ring  *ConsistentHashRing
	ttl   time.Duration
}

// NewTokenCache 构建缓存器，redis 为 nil 时退化为每次解析
func NewTokenCache(redis radix.Client, ring *ConsistentHashRing, ttl time.Duration) *TokenCache {
	if ring == nil {
		ring = NewConsistentHashRing(nil, 0)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{
		redis: redis,
		ring:  ring,
		ttl:   ttl,
	}
}

func (c *TokenCache) cacheKey(token string) string {
	node := c.ring.GetNode(token)
	sum := sha1.Sum([]byte(token))
	return fmt.Sprintf("bookstore:jwt:%s:%s", node, hex.EncodeToString(sum[:]))
}

// Get 尝试命中缓存的 claims，已过期的视为未命中
func (c *TokenCache) Get(ctx context.Context, token string) (*Claims, bool, error) {
	if c.redis == nil {
		return nil, false, nil
	}
	key := c.cacheKey(token)
	var raw string
	if err := c.redis.Do(radix.Cmd(&raw, "GET", key)); err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil || claims.Expired(time.Now()) {
		_ = c.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false, nil
	}
	return &claims, true, nil
}

// Set 缓存解析结果，缓存时间不超过 token 剩余有效期
func (c *TokenCache) Set(ctx context.Context, token string, claims *Claims) error {
	if c.redis == nil || claims == nil {
		return nil
	}
	ttl := c.ttl
	if claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left < ttl {
			ttl = left
		}
	}
	if ttl < time.Second {
		return nil
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", c.cacheKey(token), int64(ttl/time.Second), body))
}

// Resolve 先查缓存再解析，Redis 故障不影响鉴权
func (c *TokenCache) Resolve(ctx context.Context, cfg *config.JWTConfig, token string) (*Claims, error) {
	claims, ok, err := c.Get(ctx, token)
	if err != nil {
		zap.L().Warn("token cache get failed", zap.Error(err))
	}
	if ok {
		return claims, nil
	}
	claims, err = ParseToken(cfg, token)
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, token, claims); err != nil {
		zap.L().Warn("token cache set failed", zap.Error(err))
	}
	return claims, nil
}
