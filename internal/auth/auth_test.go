package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bookstore/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret", ExpireMinutes: 5}
	tok, err := GenerateToken(cfg, 42, "alice", "admin")
	require.NoError(t, err)

	claims, err := ParseToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(time.Now().Add(10*time.Minute)))

	_, err = ParseToken(&config.JWTConfig{Secret: "other"}, tok)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", h)
	assert.True(t, CheckPassword(h, "hunter22"))
	assert.False(t, CheckPassword(h, "hunter23"))

	h2, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salt must differ")
}

func TestTokenCacheWithoutRedis(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret"}
	tok, err := GenerateToken(cfg, 7, "bob", "user")
	require.NoError(t, err)

	c := NewTokenCache(nil, nil, 0)
	claims, err := c.Resolve(context.Background(), cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)

	_, err = c.Resolve(context.Background(), cfg, "garbage")
	assert.Error(t, err)
}

func TestConsistentHashRing(t *testing.T) {
	ring := NewConsistentHashRing([]string{"a", "b", "c"}, 20)
	assert.Equal(t, 3, ring.Len())

	// 同一个 key 总是落在同一节点
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("token-%d", i)
		assert.Equal(t, ring.GetNode(key), ring.GetNode(key))
	}

	owners := map[string]int{}
	for i := 0; i < 300; i++ {
		owners[ring.GetNode(fmt.Sprintf("token-%d", i))]++
	}
	assert.Len(t, owners, 3)

	// 移除节点后，原本属于其它节点的 key 不迁移
	before := map[string]string{}
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("token-%d", i)
		before[key] = ring.GetNode(key)
	}
	ring.Remove("b")
	assert.Equal(t, 2, ring.Len())
	for key, node := range before {
		got := ring.GetNode(key)
		assert.NotEqual(t, "b", got)
		if node != "b" {
			assert.Equal(t, node, got, key)
		}
	}

	ring.Add("a") // duplicate
	assert.Equal(t, 2, ring.Len())
}

func TestDefaultRing(t *testing.T) {
	ring := NewConsistentHashRing(nil, 0)
	assert.Equal(t, "auth-node-default", ring.GetNode("x"))
	ring.Remove("auth-node-default")
	assert.Equal(t, "", ring.GetNode("x"))
}
