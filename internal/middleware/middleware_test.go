package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bookstore/internal/auth"
	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/datamodels/user"
	"github.com/example/bookstore/internal/service"
)

func TestTokenBucketRefill(t *testing.T) {
	now := time.Unix(1000, 0)
	tb := NewTokenBucket(2, 1)
	tb.now = func() time.Time { return now }
	tb.lastRefill = now

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	now = now.Add(500 * time.Millisecond)
	assert.False(t, tb.Allow())
	now = now.Add(500 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestKeyedLimiterSeparatesKeys(t *testing.T) {
	l := NewKeyedLimiter(1, 0)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
}

type fakeUsers map[int64]*user.User

func (f fakeUsers) Profile(ctx context.Context, id int64) (*user.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, service.ErrUserNotFound
}

func TestAuthAndRequireAdmin(t *testing.T) {
	jwtCfg := &config.JWTConfig{Secret: "mw-test", ExpireMinutes: 5}
	users := fakeUsers{
		1: {ID: 1, Username: "alice", Role: user.RoleUser},
		2: {ID: 2, Username: "root", Role: user.RoleAdmin},
	}
	cache := auth.NewTokenCache(nil, nil, time.Minute)

	app := iris.New()
	authed := app.Party("/", Auth(cache, jwtCfg, users))
	authed.Get("/me", func(ctx iris.Context) {
		a := CurrentActor(ctx)
		_ = ctx.JSON(iris.Map{"id": a.UserID, "name": a.Username, "admin": a.Admin})
	})
	authed.Get("/admin", RequireAdmin(), func(ctx iris.Context) {
		ctx.StatusCode(http.StatusNoContent)
	})
	e := httptest.New(t, app)

	// token 里写的是 admin，但库里已经降级为普通用户
	stale, err := auth.GenerateToken(jwtCfg, 1, "alice", user.RoleAdmin)
	require.NoError(t, err)
	root, err := auth.GenerateToken(jwtCfg, 2, "root", user.RoleAdmin)
	require.NoError(t, err)
	ghost, err := auth.GenerateToken(jwtCfg, 3, "ghost", user.RoleUser)
	require.NoError(t, err)

	e.GET("/me").Expect().Status(http.StatusUnauthorized)
	e.GET("/me").WithHeader("Authorization", "Bearer "+ghost).Expect().Status(http.StatusUnauthorized)

	me := e.GET("/me").WithHeader("Authorization", "Bearer "+stale).
		Expect().Status(http.StatusOK).JSON().Object()
	assert.Equal(t, "alice", me.Value("name").String().Raw())
	assert.False(t, me.Value("admin").Boolean().Raw())

	e.GET("/admin").WithHeader("Authorization", "Bearer "+stale).Expect().Status(http.StatusForbidden)
	e.GET("/admin").WithHeader("Authorization", "Bearer "+root).Expect().Status(http.StatusNoContent)
	e.GET("/admin").WithCookie("token", root).Expect().Status(http.StatusNoContent)
}
