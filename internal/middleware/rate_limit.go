package middleware

import (
	"sync"
	"time"

	"github.com/kataras/iris/v12"
)

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	capacity   float64    // 桶容量
	tokens     float64    // 当前令牌数
	refillRate float64    // 每秒补充的令牌数
	lastRefill time.Time  // 上次补充时间
	mu         sync.Mutex // 互斥锁
	now        func() time.Time
}

// NewTokenBucket 创建令牌桶
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// 按经过的时间补充令牌
	now := tb.now()
	if elapsed := now.Sub(tb.lastRefill).Seconds(); elapsed > 0 {
		tb.tokens += elapsed * tb.refillRate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// KeyedLimiter 按 key（客户端 IP 或用户）分别限流
type KeyedLimiter struct {
	capacity   int64
	refillRate int64
	mu         sync.Mutex
	buckets    map[string]*TokenBucket
}

func NewKeyedLimiter(capacity, refillRate int64) *KeyedLimiter {
	return &KeyedLimiter{
		capacity:   capacity,
		refillRate: refillRate,
		buckets:    make(map[string]*TokenBucket),
	}
}

func (l *KeyedLimiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = NewTokenBucket(l.capacity, l.refillRate)
		l.buckets[key] = b
	}
	return b
}

// Allow 检查 key 对应的桶
func (l *KeyedLimiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

// RateLimitMiddleware 全局限流中间件
func RateLimitMiddleware(bucket *TokenBucket) iris.Handler {
	return func(ctx iris.Context) {
		if !bucket.Allow() {
			tooMany(ctx)
			return
		}
		ctx.Next()
	}
}

// KeyedRateLimit 已登录按用户限流，否则按客户端 IP
func KeyedRateLimit(l *KeyedLimiter) iris.Handler {
	return func(ctx iris.Context) {
		key := ctx.RemoteAddr()
		if id := ctx.Values().GetInt64Default(KeyUserID, 0); id > 0 {
			key = "user:" + ctx.Values().GetString(KeyUsername)
		}
		if !l.Allow(key) {
			tooMany(ctx)
			return
		}
		ctx.Next()
	}
}

func tooMany(ctx iris.Context) {
	ctx.StopWithJSON(iris.StatusTooManyRequests, iris.Map{
		"code": iris.StatusTooManyRequests,
		"msg":  "too many requests, please retry later",
	})
}

var (
	loginLimiter    = NewKeyedLimiter(10, 1) // 每个 IP 突发 10 次，每秒补 1 次
	checkoutLimiter = NewKeyedLimiter(5, 1)
)

// LoginRateLimit 登录/注册接口限流
func LoginRateLimit() iris.Handler {
	return KeyedRateLimit(loginLimiter)
}

// CheckoutRateLimit 下单接口限流
func CheckoutRateLimit() iris.Handler {
	return KeyedRateLimit(checkoutLimiter)
}
