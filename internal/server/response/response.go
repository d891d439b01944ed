// Package response 统一的 JSON 返回格式与错误码映射
package response

import (
	"errors"
	"net/http"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/bookstore/internal/service"
)

// OK 成功：{"code":0,"data":...}
func OK(ctx iris.Context, data interface{}) {
	_ = ctx.JSON(iris.Map{"code": 0, "data": data})
}

// Fail 失败：{"code":<http status>,"msg":...}
func Fail(ctx iris.Context, status int, msg string) {
	ctx.StopWithJSON(status, iris.Map{"code": status, "msg": msg})
}

// Error 按错误类型映射 HTTP 状态码，未知错误记录日志并返回 500
func Error(ctx iris.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Error(err))
		Fail(ctx, status, "internal server error")
		return
	}
	Fail(ctx, status, err.Error())
}

// StatusOf 错误到 HTTP 状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidBook),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
