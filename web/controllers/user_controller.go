package controllers

import (
	"net/http"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/bookstore/internal/middleware"
	"github.com/example/bookstore/internal/server/response"
	"github.com/example/bookstore/internal/service"
)

// UserController 注册登录与个人资料，后台用户管理也在这里
type UserController struct {
	userService *service.UserService
}

// NewUserController 构造函数，前台和后台路由复用同一套逻辑。
func NewUserController(userSvc *service.UserService) *UserController {
	return &UserController{userService: userSvc}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register POST /api/register
func (c *UserController) Register(ctx iris.Context) {
	var req credentials
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	u, err := c.userService.Register(ctx.Request().Context(), service.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	response.OK(ctx, u)
}

// Login POST /api/login，token 同时写入 cookie
func (c *UserController) Login(ctx iris.Context) {
	var req credentials
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	token, u, err := c.userService.Login(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	c.setTokenCookie(ctx, token)
	response.OK(ctx, iris.Map{"token": token, "user": u})
}

// AdminLogin 后台 POST /api/login，非管理员返回 403
func (c *UserController) AdminLogin(ctx iris.Context) {
	var req credentials
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	token, u, err := c.userService.AdminLogin(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, iris.Map{"token": token, "user": u})
}

// Logout 清理 cookie
func (c *UserController) Logout(ctx iris.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:    "token",
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	response.OK(ctx, nil)
}

// Profile GET /api/profile
func (c *UserController) Profile(ctx iris.Context) {
	u, err := c.userService.Profile(ctx.Request().Context(), middleware.UserID(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, u)
}

// UpdateProfile PUT /api/profile，只修改请求里出现的字段
func (c *UserController) UpdateProfile(ctx iris.Context) {
	var req struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	u, err := c.userService.UpdateProfile(ctx.Request().Context(), middleware.UserID(ctx), service.ProfileUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, u)
}

// ListUsers GET /api/users
func (c *UserController) ListUsers(ctx iris.Context) {
	list, err := c.userService.ListUsers(ctx.Request().Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, list)
}

// SetRole PUT /api/users/{id}/role {"role":"admin"}
func (c *UserController) SetRole(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		response.Fail(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	u, err := c.userService.SetRole(ctx.Request().Context(), middleware.CurrentActor(ctx), id, req.Role)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, u)
}

func (c *UserController) setTokenCookie(ctx iris.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}
