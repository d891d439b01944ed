package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/bookstore/internal/auth"
	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/datamodels/user"
	"github.com/example/bookstore/internal/service"
)

// 请求上下文中的 key
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// UserLoader 按 ID 加载用户，token 里的角色可能已过期，以库里为准
type UserLoader interface {
	Profile(ctx context.Context, userID int64) (*user.User, error)
}

// Auth 校验 Authorization: Bearer <jwt>，通过后写入 user_id/username/role
func Auth(cache *auth.TokenCache, jwtCfg *config.JWTConfig, users UserLoader) iris.Handler {
	return func(ctx iris.Context) {
		token := bearerToken(ctx.GetHeader("Authorization"))
		if token == "" {
			// 浏览器登录后走 cookie
			token = ctx.GetCookie("token")
		}
		if token == "" {
			unauthorized(ctx, "missing token")
			return
		}
		claims, err := cache.Resolve(ctx.Request().Context(), jwtCfg, token)
		if err != nil {
			unauthorized(ctx, "invalid token")
			return
		}
		u, err := users.Profile(ctx.Request().Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, service.ErrNotFound) {
				zap.L().Error("load user for token failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
			}
			unauthorized(ctx, "invalid token")
			return
		}
		ctx.Values().Set(KeyUserID, u.ID)
		ctx.Values().Set(KeyUsername, u.Username)
		ctx.Values().Set(KeyRole, u.Role)
		ctx.Next()
	}
}

// RequireAdmin 需在 Auth 之后使用
func RequireAdmin() iris.Handler {
	return func(ctx iris.Context) {
		if ctx.Values().GetString(KeyRole) != user.RoleAdmin {
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"code": iris.StatusForbidden, "msg": "admin only"})
			return
		}
		ctx.Next()
	}
}

// UserID 当前登录用户 ID
func UserID(ctx iris.Context) int64 {
	return ctx.Values().GetInt64Default(KeyUserID, 0)
}

// CurrentActor 当前请求的操作人
func CurrentActor(ctx iris.Context) service.Actor {
	return service.Actor{
		UserID:   UserID(ctx),
		Username: ctx.Values().GetString(KeyUsername),
		Admin:    ctx.Values().GetString(KeyRole) == user.RoleAdmin,
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	// 兼容直接传 token
	return header
}

func unauthorized(ctx iris.Context, msg string) {
	ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": msg})
}
