package middleware

import (
	"context"
	"strconv"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// VisitRecorder 访问统计
type VisitRecorder interface {
	Record(ctx context.Context, visitor string) error
}

// Visits 记录目录浏览，统计失败不影响请求
func Visits(rec VisitRecorder) iris.Handler {
	return func(ctx iris.Context) {
		visitor := ctx.RemoteAddr()
		if id := UserID(ctx); id > 0 {
			visitor = "u" + strconv.FormatInt(id, 10)
		}
		if err := rec.Record(ctx.Request().Context(), visitor); err != nil {
			zap.L().Warn("record visit failed", zap.Error(err))
		}
		ctx.Next()
	}
}
